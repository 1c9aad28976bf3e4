// Package routertest provides mock implementations of router interfaces for testing.
package routertest

import (
	"context"
	"sync"
	"time"

	"github.com/flemzord/linekit/internal/media"
	"github.com/flemzord/linekit/internal/router"
	"github.com/flemzord/linekit/pkg/message"
)

// SentReply is one recorded Reply call.
type SentReply struct {
	Token    string
	Messages []message.Reply
}

// MockPlatform records every platform call for test assertions.
type MockPlatform struct {
	ReplyFunc      func(ctx context.Context, token string, msgs []message.Reply) error
	ProfileFunc    func(ctx context.Context, userID string) (message.Profile, error)
	LeaveGroupFunc func(ctx context.Context, groupID string) error
	LeaveRoomFunc  func(ctx context.Context, roomID string) error

	mu      sync.Mutex
	replies []SentReply
	left    []string
	calls   int
}

// Reply records the call and optionally delegates to ReplyFunc.
func (m *MockPlatform) Reply(ctx context.Context, token string, msgs []message.Reply) error {
	m.mu.Lock()
	m.calls++
	m.replies = append(m.replies, SentReply{Token: token, Messages: msgs})
	m.mu.Unlock()
	if m.ReplyFunc != nil {
		return m.ReplyFunc(ctx, token, msgs)
	}
	return nil
}

// Profile delegates to ProfileFunc if set, otherwise returns a fixed profile.
func (m *MockPlatform) Profile(ctx context.Context, userID string) (message.Profile, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, userID)
	}
	return message.Profile{UserID: userID, DisplayName: "Test User", StatusMessage: "hi"}, nil
}

// LeaveGroup records the group id and optionally delegates to LeaveGroupFunc.
func (m *MockPlatform) LeaveGroup(ctx context.Context, groupID string) error {
	m.mu.Lock()
	m.calls++
	m.left = append(m.left, "group:"+groupID)
	m.mu.Unlock()
	if m.LeaveGroupFunc != nil {
		return m.LeaveGroupFunc(ctx, groupID)
	}
	return nil
}

// LeaveRoom records the room id and optionally delegates to LeaveRoomFunc.
func (m *MockPlatform) LeaveRoom(ctx context.Context, roomID string) error {
	m.mu.Lock()
	m.calls++
	m.left = append(m.left, "room:"+roomID)
	m.mu.Unlock()
	if m.LeaveRoomFunc != nil {
		return m.LeaveRoomFunc(ctx, roomID)
	}
	return nil
}

// Replies returns a copy of all recorded reply calls.
// Safe for concurrent use.
func (m *MockPlatform) Replies() []SentReply {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]SentReply, len(m.replies))
	copy(cp, m.replies)
	return cp
}

// Left returns the recorded leave calls as "group:<id>" or "room:<id>".
func (m *MockPlatform) Left() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]string, len(m.left))
	copy(cp, m.left)
	return cp
}

// CallCount returns the number of platform calls of any kind.
func (m *MockPlatform) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockMedia provides controllable media fetch behavior.
type MockMedia struct {
	ImageFunc func(ctx context.Context, id string) (media.Downloaded, error)
	VideoFunc func(ctx context.Context, id string) (media.Downloaded, error)
	AudioFunc func(ctx context.Context, id string) (media.Downloaded, error)
}

// Image delegates to ImageFunc if set.
func (m *MockMedia) Image(ctx context.Context, id string) (media.Downloaded, error) {
	if m.ImageFunc != nil {
		return m.ImageFunc(ctx, id)
	}
	return media.Downloaded{}, nil
}

// Video delegates to VideoFunc if set.
func (m *MockMedia) Video(ctx context.Context, id string) (media.Downloaded, error) {
	if m.VideoFunc != nil {
		return m.VideoFunc(ctx, id)
	}
	return media.Downloaded{}, nil
}

// Audio delegates to AudioFunc if set.
func (m *MockMedia) Audio(ctx context.Context, id string) (media.Downloaded, error) {
	if m.AudioFunc != nil {
		return m.AudioFunc(ctx, id)
	}
	return media.Downloaded{}, nil
}

// MockMetrics counts observations by outcome.
type MockMetrics struct {
	mu       sync.Mutex
	events   map[string]int
	messages int
	media    map[string]int
}

// RecordEvent implements router.Metrics.
func (m *MockMetrics) RecordEvent(kind, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.events == nil {
		m.events = make(map[string]int)
	}
	m.events[kind+"/"+outcome]++
}

// RecordReply implements router.Metrics.
func (m *MockMetrics) RecordReply(messages int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages += messages
}

// RecordMedia implements router.Metrics.
func (m *MockMetrics) RecordMedia(kind, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.media == nil {
		m.media = make(map[string]int)
	}
	m.media[kind+"/"+outcome]++
}

// Events returns the count recorded for kind and outcome.
func (m *MockMetrics) Events(kind, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[kind+"/"+outcome]
}

// Messages returns the total number of reply messages recorded.
func (m *MockMetrics) Messages() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.messages
}

// Media returns the count recorded for kind and outcome.
func (m *MockMetrics) Media(kind, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.media[kind+"/"+outcome]
}

// Interface guards.
var (
	_ router.Platform     = (*MockPlatform)(nil)
	_ router.MediaFetcher = (*MockMedia)(nil)
	_ router.Metrics      = (*MockMetrics)(nil)
)
