package logging

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	channels map[int64]int64
}

func (r *fakeResolver) GetChannelID(ctx context.Context, guildID int64, key string) int64 {
	return r.channels[guildID]
}

type fakeSender struct {
	mu       sync.Mutex
	messages map[int64][]string
}

func newFakeSender() *fakeSender {
	return &fakeSender{messages: make(map[int64][]string)}
}

func (s *fakeSender) SendLogMessage(channelID int64, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[channelID] = append(s.messages[channelID], content)
	return nil
}

func (s *fakeSender) forChannel(channelID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages[channelID]...)
}

func newTestLogger(hook *DiscordHook) *log.Logger {
	logger := log.New()
	logger.SetOutput(&strings.Builder{})
	logger.AddHook(hook)
	return logger
}

func TestDiscordHook_RoutesByGuild(t *testing.T) {
	resolver := &fakeResolver{channels: map[int64]int64{100: 777, 200: 888}}
	sender := newFakeSender()
	hook := NewDiscordHook(resolver, sender, "log_channel", 999)
	logger := newTestLogger(hook)

	logger.WithField("guild_id", int64(100)).Warn("first guild problem")
	logger.WithField("guild_id", int64(200)).Error("second guild problem")
	hook.Flush()

	require.Len(t, sender.forChannel(777), 1)
	require.Len(t, sender.forChannel(888), 1)
	assert.Contains(t, sender.forChannel(777)[0], "first guild problem")
	assert.Contains(t, sender.forChannel(777)[0], "WARNING")
	assert.Contains(t, sender.forChannel(888)[0], "second guild problem")
}

func TestDiscordHook_FallsBackToGlobalChannel(t *testing.T) {
	resolver := &fakeResolver{channels: map[int64]int64{}}
	sender := newFakeSender()
	hook := NewDiscordHook(resolver, sender, "log_channel", 999)
	logger := newTestLogger(hook)

	// Unconfigured guild and guild-less entry both land on the global channel
	logger.WithField("guild_id", int64(100)).Warn("no log channel set")
	logger.Error("startup failure")
	hook.Flush()

	messages := sender.forChannel(999)
	require.Len(t, messages, 2)
}

func TestDiscordHook_DropsWhenNoChannelAnywhere(t *testing.T) {
	resolver := &fakeResolver{channels: map[int64]int64{}}
	sender := newFakeSender()
	hook := NewDiscordHook(resolver, sender, "log_channel", 0)
	logger := newTestLogger(hook)

	logger.Warn("nowhere to go")
	hook.Flush()

	assert.Empty(t, sender.messages)
}

func TestDiscordHook_IgnoresInfoLevel(t *testing.T) {
	resolver := &fakeResolver{channels: map[int64]int64{}}
	sender := newFakeSender()
	hook := NewDiscordHook(resolver, sender, "log_channel", 999)
	logger := newTestLogger(hook)

	logger.Info("routine chatter")
	hook.Flush()

	assert.Empty(t, sender.messages)
}

func TestDiscordHook_IncludesFields(t *testing.T) {
	resolver := &fakeResolver{channels: map[int64]int64{100: 777}}
	sender := newFakeSender()
	hook := NewDiscordHook(resolver, sender, "log_channel", 0)
	logger := newTestLogger(hook)

	logger.WithFields(log.Fields{
		"guild_id": int64(100),
		"user_id":  int64(42),
	}).Warn("bet rejected")
	hook.Flush()

	messages := sender.forChannel(777)
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "user_id=42")
	// Routing metadata stays out of the rendered line
	assert.NotContains(t, messages[0], "guild_id")
}

func TestDiscordHook_StopDrainsBuffer(t *testing.T) {
	resolver := &fakeResolver{channels: map[int64]int64{100: 777}}
	sender := newFakeSender()
	hook := NewDiscordHook(resolver, sender, "log_channel", 0)
	hook.interval = time.Hour // the ticker never fires in this test
	logger := newTestLogger(hook)
	hook.Start()

	logger.WithField("guild_id", int64(100)).Warn("last words")
	hook.Stop()

	assert.Eventually(t, func() bool {
		return len(sender.forChannel(777)) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestChunkLines(t *testing.T) {
	// Short lines pack into one chunk
	chunks := chunkLines([]string{"a", "b", "c"}, 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a\nb\nc", chunks[0])

	// Lines split when the limit is reached
	chunks = chunkLines([]string{strings.Repeat("x", 60), strings.Repeat("y", 60)}, 100)
	require.Len(t, chunks, 2)

	// A single oversized line is hard-split
	chunks = chunkLines([]string{strings.Repeat("z", 250)}, 100)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 100)
	assert.Len(t, chunks[2], 50)
}
