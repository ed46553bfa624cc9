package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"todoc/internal/domain"
	"todoc/internal/port"
)

// Sentinel strings substituted when context cannot be built. They are
// interpolated straight into the prompt, so they must be descriptive text,
// never empty strings and never errors.
const (
	noKidSentinel      = "No kid selected."
	noLatestSentinel   = "No latest record available."
	noDigestSentinel   = "Recent diary digest unavailable."
	noRecipesSentinel  = "No recipe posts found for this topic."
	noRecipeDBSentinel = "Recipe search unavailable."
)

// recipeExcerptLen caps the body excerpt in a recipe search line,
// counted in runes so Korean bodies are never cut mid-character.
const recipeExcerptLen = 240

// ContextBuilder derives grounding text from a child's record history and
// from community content. All methods are pure read projections: they
// tolerate missing data by returning placeholder strings because their
// output lands inside a model prompt where a panic or error would abort an
// otherwise answerable turn.
type ContextBuilder struct {
	kid       *domain.Kid
	records   port.RecordStore
	community port.CommunityStore
	logger    *zap.Logger
}

// NewContextBuilder binds a builder to an optional kid and optional
// stores. A nil kid or store degrades every projection to its sentinel.
func NewContextBuilder(kid *domain.Kid, records port.RecordStore, community port.CommunityStore, logger *zap.Logger) *ContextBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContextBuilder{
		kid:       kid,
		records:   records,
		community: community,
		logger:    logger,
	}
}

// KidSnapshot renders the child's identity in the caller's language.
func (b *ContextBuilder) KidSnapshot(language string) string {
	if b.kid == nil {
		return noKidSentinel
	}

	birth := b.kid.BirthDate.Format("2006-01-02")
	if strings.EqualFold(language, "ko") {
		gender := "여아"
		if b.kid.Gender == "male" {
			gender = "남아"
		}
		return fmt.Sprintf("- 아이: %s\n- 생년월일: %s\n- 성별: %s", b.kid.Name, birth, gender)
	}

	gender := "Girl"
	if b.kid.Gender == "male" {
		gender = "Boy"
	}
	return fmt.Sprintf("- Child: %s\n- Birth date: %s\n- Gender: %s", b.kid.Name, birth, gender)
}

// LatestRecord renders the child's single most recent diary entry.
func (b *ContextBuilder) LatestRecord(ctx context.Context) string {
	if b.records == nil || b.kid == nil {
		return noLatestSentinel
	}

	rec, err := b.records.LatestRecord(ctx, b.kid.ID)
	if err != nil {
		if !isNotFound(err) {
			b.logger.Warn("latest record lookup failed", zap.Int64("kid_id", b.kid.ID), zap.Error(err))
		}
		return noLatestSentinel
	}
	return rec.Describe()
}

// RecentDigest renders one line per record in the trailing window, newest
// first.
func (b *ContextBuilder) RecentDigest(ctx context.Context, days, limit int) string {
	if b.records == nil || b.kid == nil {
		return noDigestSentinel
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	recs, err := b.records.RecentRecords(ctx, b.kid.ID, since, limit)
	if err != nil {
		b.logger.Warn("recent records lookup failed", zap.Int64("kid_id", b.kid.ID), zap.Error(err))
		return noDigestSentinel
	}
	if len(recs) == 0 {
		return fmt.Sprintf("No diary records in the last %d days.", days)
	}

	lines := make([]string, len(recs))
	for i, rec := range recs {
		lines[i] = rec.Describe()
	}
	return strings.Join(lines, "\n")
}

// RecipeSearch renders recent community recipe posts matching the query.
func (b *ContextBuilder) RecipeSearch(ctx context.Context, query string, limit int) string {
	if b.community == nil {
		return noRecipeDBSentinel
	}

	posts, err := b.community.SearchPosts(ctx, domain.CategoryRecipe, query, limit)
	if err != nil {
		b.logger.Warn("recipe search failed", zap.String("query", query), zap.Error(err))
		return noRecipeDBSentinel
	}
	if len(posts) == 0 {
		return noRecipesSentinel
	}

	lines := make([]string, len(posts))
	for i, post := range posts {
		excerpt := post.Content
		marker := ""
		if runes := []rune(excerpt); len(runes) > recipeExcerptLen {
			excerpt = string(runes[:recipeExcerptLen])
			marker = "..."
		}
		lines[i] = fmt.Sprintf("- [%d] %s (likes %d) :: %s%s",
			post.ID, post.Title, post.LikesCount, excerpt, marker)
	}
	return strings.Join(lines, "\n")
}

func isNotFound(err error) bool {
	return errors.Is(err, port.ErrNotFound)
}
