package game

import "time"

type SessionOpt func(*Session)

func WithRules(r Rules) SessionOpt {
	return func(s *Session) {
		s.rules = r
	}
}

func WithRand(r Rand) SessionOpt {
	return func(s *Session) {
		s.rand = r
	}
}

func WithClock(now func() time.Time) SessionOpt {
	return func(s *Session) {
		s.now = now
	}
}

// WithDefaultActivity names the per-location kind players fall back to.
func WithDefaultActivity(kind string) SessionOpt {
	return func(s *Session) {
		s.defaultKind = kind
	}
}

func WithFrontend(f Frontend) SessionOpt {
	return func(s *Session) {
		s.frontends = append(s.frontends, f)
	}
}

// WithPersister enables Save and Load.
func WithPersister(p *Persister) SessionOpt {
	return func(s *Session) {
		s.persister = p
	}
}
