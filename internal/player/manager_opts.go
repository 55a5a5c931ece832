package player

type PlayerManagerOpt func(*PlayerManager)

// WithGreeting sets the first line a new connection sees.
func WithGreeting(greeting string) PlayerManagerOpt {
	return func(m *PlayerManager) {
		m.greeting = greeting
	}
}

// WithWidth sets the column descriptions are wrapped at.
func WithWidth(width int) PlayerManagerOpt {
	return func(m *PlayerManager) {
		m.width = width
	}
}
