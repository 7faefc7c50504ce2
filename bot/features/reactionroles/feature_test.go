package reactionroles

import (
	"context"
	"sort"
	"testing"

	"github.com/harrywsong/studiobot-sub000/service"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

type stubConfigs struct {
	service.GuildConfigService
	mappings map[string]map[string]int64
	settings map[string]any
}

func (s *stubConfigs) ReactionRoles(ctx context.Context, guildID int64) (map[string]map[string]int64, error) {
	return s.mappings, nil
}

func (s *stubConfigs) Setting(ctx context.Context, guildID int64, key string, def any) any {
	if v, ok := s.settings[key]; ok {
		return v
	}
	return def
}

type seededReaction struct {
	channelID string
	messageID string
	emoji     string
}

type fakeSeeder struct {
	seeded []seededReaction
}

func (f *fakeSeeder) MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error {
	f.seeded = append(f.seeded, seededReaction{channelID, messageID, emojiID})
	return nil
}

func TestResync_SeedsBoundReactions(t *testing.T) {
	configs := &stubConfigs{
		mappings: map[string]map[string]int64{
			"msg1": {"👍": 10, "👎": 11},
		},
		settings: map[string]any{reactionChannelKey("msg1"): "chan1"},
	}
	seeder := &fakeSeeder{}
	f := New(configs)

	f.Resync(context.Background(), seeder, 100)

	assert.Len(t, seeder.seeded, 2)
	emojis := []string{seeder.seeded[0].emoji, seeder.seeded[1].emoji}
	sort.Strings(emojis)
	assert.Equal(t, []string{"👍", "👎"}, emojis)
	for _, r := range seeder.seeded {
		assert.Equal(t, "chan1", r.channelID)
		assert.Equal(t, "msg1", r.messageID)
	}
}

func TestResync_SkipsMessagesWithoutRecordedChannel(t *testing.T) {
	configs := &stubConfigs{
		mappings: map[string]map[string]int64{
			"msg1": {"👍": 10},
		},
		settings: map[string]any{},
	}
	seeder := &fakeSeeder{}
	f := New(configs)

	f.Resync(context.Background(), seeder, 100)

	assert.Empty(t, seeder.seeded)
}
