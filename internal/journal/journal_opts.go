package journal

import "time"

type JournalOpt func(*Journal)

func WithPrefix(prefix string) JournalOpt {
	return func(j *Journal) {
		j.prefix = prefix
	}
}

// WithQueueSize bounds how many entries may wait for the writer before new
// ones are dropped.
func WithQueueSize(n int) JournalOpt {
	return func(j *Journal) {
		if n > 0 {
			j.queueSize = n
		}
	}
}

func WithClock(now func() time.Time) JournalOpt {
	return func(j *Journal) {
		j.now = now
	}
}
