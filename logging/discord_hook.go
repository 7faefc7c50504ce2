package logging

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// Discord caps messages at 2000 characters; leave room for the code fence
	maxChunkLen = 1900

	defaultFlushInterval = 5 * time.Second

	// Pause between chunk sends so a burst doesn't trip rate limits
	sendDelay = 250 * time.Millisecond
)

// ChannelResolver maps a guild to its log channel. Zero means the guild
// has no log channel and the entry falls back to the global channel.
type ChannelResolver interface {
	GetChannelID(ctx context.Context, guildID int64, key string) int64
}

// Sender posts a message to a Discord channel
type Sender interface {
	SendLogMessage(channelID int64, content string) error
}

// DiscordHook is a logrus hook that batches warning-and-above entries and
// forwards them into per-guild Discord log channels. Entries carry their
// guild in the "guild_id" field; entries without one go to the global
// channel only.
type DiscordHook struct {
	resolver        ChannelResolver
	sender          Sender
	channelKey      string
	globalChannelID int64
	interval        time.Duration

	mu      sync.Mutex
	pending []*bufferedEntry

	done chan struct{}
	once sync.Once
}

type bufferedEntry struct {
	guildID int64
	line    string
}

// NewDiscordHook creates the hook. Call Start to begin flushing and Stop
// during shutdown to drain the buffer.
func NewDiscordHook(resolver ChannelResolver, sender Sender, channelKey string, globalChannelID int64) *DiscordHook {
	return &DiscordHook{
		resolver:        resolver,
		sender:          sender,
		channelKey:      channelKey,
		globalChannelID: globalChannelID,
		interval:        defaultFlushInterval,
		done:            make(chan struct{}),
	}
}

// Levels implements logrus.Hook
func (h *DiscordHook) Levels() []log.Level {
	return []log.Level{
		log.PanicLevel,
		log.FatalLevel,
		log.ErrorLevel,
		log.WarnLevel,
	}
}

// Fire implements logrus.Hook. It only buffers; sending happens on the
// flush loop so logging never blocks on Discord.
func (h *DiscordHook) Fire(entry *log.Entry) error {
	var guildID int64
	if raw, ok := entry.Data["guild_id"]; ok {
		switch v := raw.(type) {
		case int64:
			guildID = v
		case int:
			guildID = int64(v)
		}
	}

	line := formatEntry(entry)

	h.mu.Lock()
	h.pending = append(h.pending, &bufferedEntry{guildID: guildID, line: line})
	h.mu.Unlock()

	return nil
}

func formatEntry(entry *log.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", entry.Time.UTC().Format("15:04:05"), strings.ToUpper(entry.Level.String()), entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k == "guild_id" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	return b.String()
}

// Start launches the flush loop
func (h *DiscordHook) Start() {
	go func() {
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				h.Flush()
			case <-h.done:
				h.Flush()
				return
			}
		}
	}()
}

// Stop drains the buffer and halts the flush loop
func (h *DiscordHook) Stop() {
	h.once.Do(func() {
		close(h.done)
	})
}

// Flush groups buffered entries by guild and posts them to the resolved
// log channels.
func (h *DiscordHook) Flush() {
	h.mu.Lock()
	pending := h.pending
	h.pending = nil
	h.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	byGuild := make(map[int64][]string)
	var order []int64
	for _, entry := range pending {
		if _, seen := byGuild[entry.guildID]; !seen {
			order = append(order, entry.guildID)
		}
		byGuild[entry.guildID] = append(byGuild[entry.guildID], entry.line)
	}

	for _, guildID := range order {
		channelID := h.globalChannelID
		if guildID != 0 {
			if resolved := h.resolver.GetChannelID(ctx, guildID, h.channelKey); resolved != 0 {
				channelID = resolved
			}
		}
		if channelID == 0 {
			continue
		}
		h.send(channelID, byGuild[guildID])
	}
}

func (h *DiscordHook) send(channelID int64, lines []string) {
	for _, chunk := range chunkLines(lines, maxChunkLen) {
		// Errors here can't be logged through logrus without recursing
		_ = h.sender.SendLogMessage(channelID, "```\n"+chunk+"\n```")
		time.Sleep(sendDelay)
	}
}

// chunkLines packs lines into blocks no longer than limit, splitting
// oversized single lines as needed.
func chunkLines(lines []string, limit int) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, line := range lines {
		for len(line) > limit {
			flush()
			chunks = append(chunks, line[:limit])
			line = line[limit:]
		}
		if current.Len()+len(line)+1 > limit {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}
	flush()

	return chunks
}
