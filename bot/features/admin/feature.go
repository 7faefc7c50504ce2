package admin

import (
	"fmt"
	"runtime"
	"time"

	"github.com/harrywsong/studiobot-sub000/bot/common"
	"github.com/harrywsong/studiobot-sub000/service"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	log "github.com/sirupsen/logrus"
)

// Feature bundles the moderation and operations commands
type Feature struct {
	moderation service.ModerationService
	startedAt  time.Time
}

// New creates the admin feature
func New(moderation service.ModerationService) *Feature {
	return &Feature{
		moderation: moderation,
		startedAt:  time.Now(),
	}
}

// HandleCommand routes the admin slash commands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "bot-status":
		f.handleStatus(s, i)
	case "warn":
		f.handleWarn(s, i)
	case "warnings":
		f.handleWarnings(s, i)
	case "clear-messages":
		f.handleClear(s, i)
	}
}

func (f *Feature) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.IsUserAdmin(i) {
		common.RespondWithError(s, i, "You need the Manage Server permission to do that.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "🤖 Bot Status",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Uptime", Value: common.FormatDuration(time.Since(f.startedAt)), Inline: true},
			{Name: "Latency", Value: fmt.Sprintf("%dms", s.HeartbeatLatency().Milliseconds()), Inline: true},
			{Name: "Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "Servers", Value: fmt.Sprintf("%d", len(s.State.Guilds)), Inline: true},
		},
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "CPU", Value: fmt.Sprintf("%.1f%%", percents[0]), Inline: true,
		})
	} else if err != nil {
		log.WithField("error", err).Warn("Failed to read CPU usage")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Memory",
			Value:  fmt.Sprintf("%.1f%% of %.1f GB", vm.UsedPercent, float64(vm.Total)/(1<<30)),
			Inline: true,
		})
	} else {
		log.WithField("error", err).Warn("Failed to read memory usage")
	}

	if info, err := host.Info(); err == nil {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%s %s, host up %s", info.Platform, info.PlatformVersion,
				common.FormatDuration(time.Duration(info.Uptime)*time.Second)),
		}
	}

	if err := common.RespondWithEmbed(s, i, embed, nil, true); err != nil {
		log.WithField("error", err).Error("Failed to send status response")
	}
}
