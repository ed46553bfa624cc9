package usecase

import "strings"

// Conversation modes. The set is closed; prompt personas, tool sets, and
// store groups are all keyed by the canonical mode.
const (
	ModeMom       = "mom"
	ModeDoctor    = "doctor"
	ModeNutrition = "nutrition"
)

// Router maps a conversation mode to the ordered store groups relevant to
// it. Pure lookup: it returns group names only and performs no I/O.
type Router struct {
	modes       map[string][]string
	defaultMode string
}

// NewRouter builds a router from the mode table. defaultMode's groups
// serve any unrecognized mode so a client sending an unexpected string
// never blocks a turn.
func NewRouter(modes map[string][]string, defaultMode string) *Router {
	if defaultMode == "" {
		defaultMode = ModeMom
	}
	return &Router{modes: modes, defaultMode: defaultMode}
}

// Canonical collapses synonymous mode labels onto one internal key, so
// routing and prompt selection never diverge for the same mode. Unknown
// labels fall back to the default mode.
func (r *Router) Canonical(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeMom:
		return ModeMom
	case ModeDoctor:
		return ModeDoctor
	case ModeNutrition, "nutritionist", "nutrient", "nutri":
		return ModeNutrition
	default:
		return r.defaultMode
	}
}

// Resolve returns the ordered store group names for a mode label. The
// label is canonicalized first; a mode missing from the table falls back
// to the default mode's groups.
func (r *Router) Resolve(mode string) []string {
	canonical := r.Canonical(mode)
	if groups, ok := r.modes[canonical]; ok {
		return groups
	}
	return r.modes[r.defaultMode]
}
