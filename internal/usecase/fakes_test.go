package usecase

import (
	"context"
	"errors"
	"time"

	"todoc/internal/domain"
	"todoc/internal/port"
)

// fakeRecordStore serves canned records.
type fakeRecordStore struct {
	kid     *domain.Kid
	latest  *domain.Record
	recent  []domain.Record
	failAll bool
}

func (f *fakeRecordStore) GetKid(context.Context, int64) (domain.Kid, error) {
	if f.failAll {
		return domain.Kid{}, errors.New("db down")
	}
	if f.kid == nil {
		return domain.Kid{}, port.ErrNotFound
	}
	return *f.kid, nil
}

func (f *fakeRecordStore) LatestRecord(context.Context, int64) (domain.Record, error) {
	if f.failAll {
		return domain.Record{}, errors.New("db down")
	}
	if f.latest == nil {
		return domain.Record{}, port.ErrNotFound
	}
	return *f.latest, nil
}

func (f *fakeRecordStore) RecentRecords(context.Context, int64, time.Time, int) ([]domain.Record, error) {
	if f.failAll {
		return nil, errors.New("db down")
	}
	return f.recent, nil
}

// fakeCommunityStore serves canned posts.
type fakeCommunityStore struct {
	posts []domain.Post
	err   error
}

func (f *fakeCommunityStore) SearchPosts(context.Context, domain.CommunityCategory, string, int) ([]domain.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.posts, nil
}

// scriptedChat replays a fixed sequence of completions and records every
// request it sees.
type scriptedChat struct {
	replies []port.ChatMessage
	err     error

	requests [][]port.ChatMessage
	tools    [][]port.ToolSpec
	calls    int
}

func (f *scriptedChat) Complete(_ context.Context, messages []port.ChatMessage, tools []port.ToolSpec) (port.ChatMessage, error) {
	f.requests = append(f.requests, append([]port.ChatMessage(nil), messages...))
	f.tools = append(f.tools, tools)
	if f.err != nil {
		return port.ChatMessage{}, f.err
	}
	if f.calls >= len(f.replies) {
		return port.ChatMessage{Role: port.RoleAssistant, Content: "fallback answer"}, nil
	}
	reply := f.replies[f.calls]
	f.calls++
	return reply, nil
}

func (f *scriptedChat) ModelName() string { return "scripted" }

// loopingChat requests the same tool forever, for loop-bound tests.
type loopingChat struct {
	toolName string
	calls    int
}

func (f *loopingChat) Complete(context.Context, []port.ChatMessage, []port.ToolSpec) (port.ChatMessage, error) {
	f.calls++
	return port.ChatMessage{
		Role:      port.RoleAssistant,
		ToolCalls: []port.ToolCall{{ID: "t", Name: f.toolName, Arguments: `{"query":"again"}`}},
	}, nil
}

func (f *loopingChat) ModelName() string { return "looping" }

// fakeDetector returns a fixed answer.
type fakeDetector struct {
	code string
	ok   bool
}

func (f *fakeDetector) Detect(string) (string, bool) { return f.code, f.ok }
