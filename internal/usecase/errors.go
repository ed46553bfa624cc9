package usecase

import "errors"

// ErrCompletionService marks a failed or unreachable chat-completion
// call. It is the only failure that changes the user-visible answer; the
// orchestrator converts it to a localized apology instead of propagating.
var ErrCompletionService = errors.New("completion service error")
