package service

// Option tunes behaviour that is still open for a product decision.
type Option func(*Service)

// WithStrictAssignment makes an assignment fail when any referenced id does not resolve.
// By default unresolved ids are skipped as long as at least one id resolves.
func WithStrictAssignment(strict bool) Option {
	return func(s *Service) {
		s.strictAssignment = strict
	}
}

// WithClearCompletedAtOnReopen clears completed_at when a completed task moves to another status.
// By default the timestamp is left untouched.
func WithClearCompletedAtOnReopen(clear bool) Option {
	return func(s *Service) {
		s.clearCompletedOnReopen = clear
	}
}
