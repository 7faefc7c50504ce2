package tickets

import (
	"context"
	"fmt"
	"testing"

	"github.com/harrywsong/studiobot-sub000/service"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

type stubConfigs struct {
	service.GuildConfigService
	channels map[string]int64
	settings map[string]any
}

func (s *stubConfigs) GetChannelID(ctx context.Context, guildID int64, key string) int64 {
	return s.channels[key]
}

func (s *stubConfigs) GetRoleID(ctx context.Context, guildID int64, key string) int64 {
	return 0
}

func (s *stubConfigs) Setting(ctx context.Context, guildID int64, key string, def any) any {
	if v, ok := s.settings[key]; ok {
		return v
	}
	return def
}

func (s *stubConfigs) SetSetting(ctx context.Context, guildID int64, key string, value any) error {
	s.settings[key] = value
	return nil
}

type fakePoster struct {
	messages map[string]bool
	posted   []string
}

func (p *fakePoster) ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if p.messages[messageID] {
		return &discordgo.Message{ID: messageID}, nil
	}
	return nil, fmt.Errorf("unknown message")
}

func (p *fakePoster) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	p.posted = append(p.posted, channelID)
	return &discordgo.Message{ID: "999"}, nil
}

func TestEnsurePanel_SkipsWhenPanelStillExists(t *testing.T) {
	configs := &stubConfigs{
		channels: map[string]int64{"ticket_channel": 555},
		settings: map[string]any{panelMessageSetting: "123"},
	}
	poster := &fakePoster{messages: map[string]bool{"123": true}}
	f := New(nil, configs)

	err := f.EnsurePanel(context.Background(), poster, 100)

	assert.NoError(t, err)
	assert.Empty(t, poster.posted)
}

func TestEnsurePanel_RepostsWhenPanelMissing(t *testing.T) {
	configs := &stubConfigs{
		channels: map[string]int64{"ticket_channel": 555},
		settings: map[string]any{panelMessageSetting: "123"},
	}
	poster := &fakePoster{messages: map[string]bool{}}
	f := New(nil, configs)

	err := f.EnsurePanel(context.Background(), poster, 100)

	assert.NoError(t, err)
	assert.Equal(t, []string{"555"}, poster.posted)
	assert.Equal(t, "999", configs.settings[panelMessageSetting])
}

func TestEnsurePanel_SkipsUnconfiguredGuild(t *testing.T) {
	configs := &stubConfigs{channels: map[string]int64{}, settings: map[string]any{}}
	poster := &fakePoster{messages: map[string]bool{}}
	f := New(nil, configs)

	err := f.EnsurePanel(context.Background(), poster, 100)

	assert.NoError(t, err)
	assert.Empty(t, poster.posted)
}
