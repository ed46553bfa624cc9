package port

import "context"

// WebSearcher is a best-effort external search. Implementations return
// rendered snippet lines; failures should be reported as errors so the
// caller can substitute a graceful message.
type WebSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}
