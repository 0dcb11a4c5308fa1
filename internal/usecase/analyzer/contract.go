package analyzer

import "context"

// Completer generates a text completion from a system+user prompt
// pair. Used for the classification fallback when no rule matches.
type Completer interface {
	Complete(ctx context.Context, purpose, system, user string) (string, error)
}
