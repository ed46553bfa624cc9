package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"todoc/config"
	"todoc/internal/adapter/vecstore"
	"todoc/internal/domain"
	"todoc/internal/port"
)

// Agent runs one tool-using conversational turn. It holds no per-turn
// state beyond what the caller supplies, so one instance serves all
// concurrent requests.
type Agent struct {
	cfg       *config.Config
	cache     *vecstore.Cache
	retriever *vecstore.Retriever
	chat      port.ChatModel
	records   port.RecordStore
	community port.CommunityStore
	detector  port.LanguageDetector
	web       port.WebSearcher
	router    *Router
	logger    *zap.Logger
}

// Request is one inbound conversational turn.
type Request struct {
	Message string
	Mode    string
	History []domain.ConversationTurn
	// KidID binds a child to the turn; 0 means no kid selected.
	KidID int64
}

// NewAgent wires the orchestrator. chat, records, community, detector,
// and web may each be nil; every absence degrades gracefully rather than
// disabling the agent.
func NewAgent(
	cfg *config.Config,
	cache *vecstore.Cache,
	retriever *vecstore.Retriever,
	chat port.ChatModel,
	records port.RecordStore,
	community port.CommunityStore,
	detector port.LanguageDetector,
	web port.WebSearcher,
	logger *zap.Logger,
) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		cfg:       cfg,
		cache:     cache,
		retriever: retriever,
		chat:      chat,
		records:   records,
		community: community,
		detector:  detector,
		web:       web,
		router:    NewRouter(cfg.Vector.Modes, cfg.Agent.DefaultMode),
		logger:    logger,
	}
}

// tool is a named callable the model may invoke mid-turn. Executors
// return strings only; failures become short notices fed to the model,
// never errors that abort the turn.
type tool struct {
	spec port.ToolSpec
	run  func(ctx context.Context, query string) string
}

// Respond runs exactly one agent turn and returns plain text. A failing
// completion service yields a localized apology; every other dependency
// failure only degrades grounding quality.
func (a *Agent) Respond(ctx context.Context, req Request) string {
	language := a.detectLanguage(req.Message)
	mode := a.router.Canonical(req.Mode)

	kid := a.lookupKid(ctx, req.KidID)
	builder := NewContextBuilder(kid, a.records, a.community, a.logger)

	kidSnapshot := builder.KidSnapshot(language)
	latestRecord := builder.LatestRecord(ctx)
	recentDigest := builder.RecentDigest(ctx, a.cfg.Agent.DigestDays, a.cfg.Agent.DigestLimit)

	tools := a.buildTools(mode, builder)
	toolLines := make([]string, len(tools))
	for i, t := range tools {
		toolLines[i] = t.spec.Name + ": " + t.spec.Description
	}

	systemPrompt := buildSystemPrompt(
		mode, language, kidSnapshot, latestRecord, recentDigest,
		a.cfg.Agent.DigestDays, toolLines)

	if a.chat == nil {
		a.logger.Warn("completion service not configured")
		return notReadyMessage(language)
	}

	answer, err := a.runTurn(ctx, systemPrompt, req, tools)
	if err != nil {
		a.logger.Warn("turn failed", zap.String("mode", mode), zap.Error(err))
		return apologyMessage(language)
	}
	return answer
}

// runTurn executes the bounded tool-call loop: completion, zero or more
// synchronous tool executions, final text. The loop terminates even if
// the model keeps requesting tools.
func (a *Agent) runTurn(ctx context.Context, systemPrompt string, req Request, tools []tool) (string, error) {
	byName := make(map[string]tool, len(tools))
	specs := make([]port.ToolSpec, len(tools))
	for i, t := range tools {
		byName[t.spec.Name] = t
		specs[i] = t.spec
	}

	messages := make([]port.ChatMessage, 0, len(req.History)+2)
	messages = append(messages, port.ChatMessage{Role: port.RoleSystem, Content: systemPrompt})
	messages = append(messages, historyMessages(req.History)...)
	messages = append(messages, port.ChatMessage{Role: port.RoleUser, Content: req.Message})

	maxCalls := a.cfg.Agent.MaxToolCalls
	if maxCalls <= 0 {
		maxCalls = 6
	}

	calls := 0
	// One extra round allows the final no-tools completion after the
	// budget is spent.
	for round := 0; round <= maxCalls+1; round++ {
		offered := specs
		if calls >= maxCalls {
			offered = nil
		}

		msg, err := a.chat.Complete(ctx, messages, offered)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrCompletionService, err)
		}

		if len(msg.ToolCalls) == 0 {
			if strings.TrimSpace(msg.Content) == "" {
				return "", fmt.Errorf("%w: empty completion", ErrCompletionService)
			}
			return msg.Content, nil
		}

		messages = append(messages, msg)
		for _, tc := range msg.ToolCalls {
			var result string
			t, known := byName[tc.Name]
			switch {
			case !known:
				result = fmt.Sprintf("Unknown tool %q.", tc.Name)
			case calls >= maxCalls:
				result = "Tool budget exhausted; answer with the information you already have."
			default:
				calls++
				query := parseToolQuery(tc.Arguments)
				a.logger.Debug("running tool",
					zap.String("tool", tc.Name),
					zap.String("query", query))
				result = t.run(ctx, query)
			}
			messages = append(messages, port.ChatMessage{
				Role:       port.RoleTool,
				ToolCallID: tc.ID,
				Name:       tc.Name,
				Content:    result,
			})
		}
	}

	return "", fmt.Errorf("%w: model kept requesting tools past the budget", ErrCompletionService)
}

// buildTools assembles the fixed tool set for a mode. Retrieval and diary
// tools are always present; recipe and web search only apply to nutrition.
func (a *Agent) buildTools(mode string, builder *ContextBuilder) []tool {
	tools := []tool{
		{
			spec: port.ToolSpec{
				Name:        "rag_search",
				Description: fmt.Sprintf("Search %s + common vector docs for the user question.", mode),
			},
			run: func(ctx context.Context, query string) string {
				return a.ragSearch(ctx, mode, query)
			},
		},
		{
			spec: port.ToolSpec{
				Name:        "diary_recent",
				Description: fmt.Sprintf("Summarized diary records from the last %d days.", a.cfg.Agent.DigestDays),
			},
			run: func(ctx context.Context, _ string) string {
				return builder.RecentDigest(ctx, a.cfg.Agent.DigestDays, a.cfg.Agent.DigestLimit)
			},
		},
		{
			spec: port.ToolSpec{
				Name:        "diary_latest",
				Description: "Most recent diary entry for immediate context.",
			},
			run: func(ctx context.Context, _ string) string {
				return builder.LatestRecord(ctx)
			},
		},
	}

	if mode == ModeNutrition {
		tools = append(tools, tool{
			spec: port.ToolSpec{
				Name:        "recipe_search",
				Description: "Community recipe posts that may match the topic.",
			},
			run: func(ctx context.Context, query string) string {
				return builder.RecipeSearch(ctx, query, 5)
			},
		})
		if a.cfg.WebSearch.Enabled && a.web != nil {
			tools = append(tools, tool{
				spec: port.ToolSpec{
					Name:        "web_search",
					Description: "Last-resort lightweight web search for diet/recipe ideas if configured.",
				},
				run: func(ctx context.Context, query string) string {
					out, err := a.web.Search(ctx, query)
					if err != nil {
						return fmt.Sprintf("Web search unavailable or failed: %v", err)
					}
					return out
				},
			})
		}
	}

	return tools
}

// ragSearch resolves the mode's store groups, loads each group from the
// cache, and searches it with its own retrieval knobs. Group results keep
// the router's group order. Retrieval failures degrade to no grounding.
func (a *Agent) ragSearch(ctx context.Context, mode, query string) string {
	var sections []string
	for _, group := range a.router.Resolve(mode) {
		indexes, err := a.cache.LoadGroup(a.cfg.GroupDir(group))
		if err != nil {
			a.logger.Warn("group load failed", zap.String("group", group), zap.Error(err))
			continue
		}

		knobs := a.cfg.Retrieve.ForGroup(group)
		out, err := a.retriever.Search(ctx, query, indexes, knobs.TopK, knobs.ScoreThreshold)
		if err != nil {
			// RetrievalUnavailable: treat as empty grounding for the turn.
			a.logger.Warn("retrieval failed", zap.String("group", group), zap.Error(err))
			continue
		}
		if out != "" {
			sections = append(sections, out)
		}
	}
	return strings.Join(sections, "\n")
}

// lookupKid fetches the bound child; any failure means no kid for the
// turn, never a failed turn.
func (a *Agent) lookupKid(ctx context.Context, kidID int64) *domain.Kid {
	if kidID == 0 || a.records == nil {
		return nil
	}
	kid, err := a.records.GetKid(ctx, kidID)
	if err != nil {
		if !isNotFound(err) {
			a.logger.Warn("kid lookup failed", zap.Int64("kid_id", kidID), zap.Error(err))
		}
		return nil
	}
	return &kid
}

// detectLanguage guesses the message language, with a Hangul-range scan
// as a cheap secondary signal before defaulting.
func (a *Agent) detectLanguage(message string) string {
	cleaned := strings.TrimSpace(message)
	if cleaned == "" {
		return a.cfg.Agent.DefaultLanguage
	}

	if a.detector != nil {
		if code, ok := a.detector.Detect(cleaned); ok {
			return code
		}
	}

	if containsHangul(cleaned) {
		return "ko"
	}
	return "en"
}

func containsHangul(s string) bool {
	for _, r := range s {
		if r >= 0xAC00 && r <= 0xD7A3 {
			return true
		}
	}
	return false
}

// historyMessages converts caller-supplied turns into the alternating
// role form the completion service expects, oldest first.
func historyMessages(history []domain.ConversationTurn) []port.ChatMessage {
	sorted := make([]domain.ConversationTurn, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	out := make([]port.ChatMessage, len(sorted))
	for i, turn := range sorted {
		role := port.RoleAssistant
		if turn.Speaker == domain.SpeakerUser {
			role = port.RoleUser
		}
		out[i] = port.ChatMessage{Role: role, Content: turn.Text}
	}
	return out
}

// parseToolQuery extracts the query argument from a tool call. Arguments
// arrive as JSON; a bare string is accepted as a fallback.
func parseToolQuery(arguments string) string {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err == nil && args.Query != "" {
		return args.Query
	}
	return strings.Trim(arguments, `" `)
}

// notReadyMessage is shown when the completion service is not configured.
func notReadyMessage(language string) string {
	if language == "ko" {
		return "AI 서비스가 준비되지 않았습니다. 관리자에게 문의해주세요."
	}
	return "The AI service is not configured yet. Please contact the administrator."
}

// apologyMessage is shown when the completion service fails mid-turn.
func apologyMessage(language string) string {
	if language == "ko" {
		return "답변 생성 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요."
	}
	return "Sorry, something went wrong while generating the answer. Please try again shortly."
}
