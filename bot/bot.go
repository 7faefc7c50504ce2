package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/harrywsong/studiobot-sub000/bot/common"
	"github.com/harrywsong/studiobot-sub000/bot/features/admin"
	"github.com/harrywsong/studiobot-sub000/bot/features/blackjack"
	"github.com/harrywsong/studiobot-sub000/bot/features/casino"
	"github.com/harrywsong/studiobot-sub000/bot/features/crash"
	"github.com/harrywsong/studiobot-sub000/bot/features/economy"
	"github.com/harrywsong/studiobot-sub000/bot/features/lottery"
	"github.com/harrywsong/studiobot-sub000/bot/features/minesweeper"
	"github.com/harrywsong/studiobot-sub000/bot/features/reactionroles"
	"github.com/harrywsong/studiobot-sub000/bot/features/scrims"
	"github.com/harrywsong/studiobot-sub000/bot/features/settings"
	"github.com/harrywsong/studiobot-sub000/bot/features/tickets"
	"github.com/harrywsong/studiobot-sub000/bot/features/voice"
	"github.com/harrywsong/studiobot-sub000/bot/features/welcome"
	"github.com/harrywsong/studiobot-sub000/bot/features/xp"
	"github.com/harrywsong/studiobot-sub000/cache"
	"github.com/harrywsong/studiobot-sub000/events"
	"github.com/harrywsong/studiobot-sub000/scheduler"
	"github.com/harrywsong/studiobot-sub000/scrimstore"
	"github.com/harrywsong/studiobot-sub000/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token string
}

// Services bundles the domain services the bot depends on
type Services struct {
	Configs    service.GuildConfigService
	Economy    service.EconomyService
	XP         service.XPService
	Tickets    service.TicketService
	Moderation service.ModerationService
}

// Bot owns the Discord session and routes gateway events to features
type Bot struct {
	session  *discordgo.Session
	services Services
	eventBus *events.Bus
	sched    *scheduler.Scheduler

	casino        *casino.Bets
	crash         *crash.Feature
	blackjack     *blackjack.Feature
	lottery       *lottery.Feature
	minesweeper   *minesweeper.Feature
	economy       *economy.Feature
	xp            *xp.Feature
	tickets       *tickets.Feature
	reactionRoles *reactionroles.Feature
	voice         *voice.Feature
	scrims        *scrims.Feature
	settings      *settings.Feature
	admin         *admin.Feature
	welcome       *welcome.Feature
}

// New builds the bot, opens the gateway connection, and registers commands
func New(config Config, services Services, eventBus *events.Bus, gameCache *cache.Cache, scrimStore *scrimstore.Store) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAllWithoutPrivileged |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent

	bets := casino.NewBets(services.Configs, services.Economy, gameCache)

	b := &Bot{
		session:       dg,
		services:      services,
		eventBus:      eventBus,
		sched:         scheduler.New(),
		casino:        bets,
		crash:         crash.New(bets),
		blackjack:     blackjack.New(bets),
		lottery:       lottery.New(bets),
		minesweeper:   minesweeper.New(bets),
		economy:       economy.New(services.Economy, gameCache),
		xp:            xp.New(services.XP, services.Configs, gameCache),
		tickets:       tickets.New(services.Tickets, services.Configs),
		reactionRoles: reactionroles.New(services.Configs),
		voice:         voice.New(services.Configs),
		scrims:        scrims.New(scrimStore, eventBus),
		settings:      settings.New(services.Configs),
		admin:         admin.New(services.Moderation),
		welcome:       welcome.New(services.Configs),
	}

	dg.AddHandler(b.handleReady)
	dg.AddHandler(b.handleInteraction)
	dg.AddHandler(b.handleMessageCreate)
	dg.AddHandler(b.handleGuildCreate)
	dg.AddHandler(b.welcome.HandleMemberAdd)
	dg.AddHandler(b.voice.HandleVoiceStateUpdate)
	dg.AddHandler(b.reactionRoles.HandleReactionAdd)
	dg.AddHandler(b.reactionRoles.HandleReactionRemove)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("failed to open discord connection: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("failed to register commands: %w", err)
	}

	b.subscribeEvents()
	b.scheduleJobs()
	b.sched.Start()

	return b, nil
}

// Close stops background jobs and the gateway connection
func (b *Bot) Close() error {
	b.sched.Stop()
	return b.session.Close()
}

// SendLogMessage posts a message to a channel. Satisfies the sender side
// of the log forwarding hook.
func (b *Bot) SendLogMessage(channelID int64, content string) error {
	_, err := b.session.ChannelMessageSend(common.FormatUserID(channelID), content)
	return err
}

func (b *Bot) subscribeEvents() {
	b.eventBus.Subscribe(events.EventTypeLevelUp, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.LevelUpEvent); ok {
			b.xp.AnnounceLevelUp(ctx, b.session, e)
		}
	})

	b.eventBus.Subscribe(events.EventTypeGuildConfigured, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.GuildConfiguredEvent); ok {
			log.WithFields(log.Fields{
				"guild_id":   e.GuildID,
				"guild_name": e.GuildName,
			}).Info("Guild configured")
		}
	})
}

func (b *Bot) scheduleJobs() {
	if err := b.sched.EveryMinute("voice-xp", b.voiceXPTick); err != nil {
		log.WithField("error", err).Error("Failed to schedule voice XP job")
	}
	if err := b.sched.EveryMinute("voice-sweep", func() { b.voice.Sweep(b.session) }); err != nil {
		log.WithField("error", err).Error("Failed to schedule voice sweep job")
	}
	if err := b.sched.EveryMinute("scrim-reminders", func() { b.scrims.RemindAndExpire(b.session) }); err != nil {
		log.WithField("error", err).Error("Failed to schedule scrim reminder job")
	}
}

// voiceXPTick awards a minute of voice XP to every member sitting in a
// voice channel.
func (b *Bot) voiceXPTick() {
	ctx := context.Background()
	for _, guild := range b.session.State.Guilds {
		guildID, err := common.ParseUserID(guild.ID)
		if err != nil {
			continue
		}
		for _, vs := range guild.VoiceStates {
			if vs.UserID == b.session.State.User.ID {
				continue
			}
			if vs.ChannelID == "" || vs.ChannelID == guild.AfkChannelID {
				continue
			}
			boosted := false
			if member, err := b.session.State.Member(guild.ID, vs.UserID); err == nil {
				if member.User != nil && member.User.Bot {
					continue
				}
				boosted = member.PremiumSince != nil
			}
			userID, err := common.ParseUserID(vs.UserID)
			if err != nil {
				continue
			}
			b.xp.AwardVoiceTick(ctx, guildID, userID, boosted)
		}
	}
}

// handleReady restores per-guild Discord state that doesn't survive a
// restart: ticket panels and the bot's reactions on bound messages.
func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	go b.resyncGuilds(s)
}

func (b *Bot) resyncGuilds(s *discordgo.Session) {
	ctx := context.Background()

	configs, err := b.services.Configs.AllConfigs(ctx)
	if err != nil {
		log.WithField("error", err).Error("Failed to load guild configs for resync")
		return
	}

	for _, cfg := range configs {
		if err := b.tickets.EnsurePanel(ctx, s, cfg.GuildID); err != nil {
			log.WithFields(log.Fields{"guild_id": cfg.GuildID, "error": err}).Error("Failed to restore ticket panel")
		}
		b.reactionRoles.Resync(ctx, s, cfg.GuildID)
	}
	log.WithField("guilds", len(configs)).Info("Guild state resynced")
}

// handleGuildCreate makes sure every guild the bot can see has a config row
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	guildID, err := common.ParseUserID(g.ID)
	if err != nil {
		return
	}
	if _, err := b.services.Configs.Configure(context.Background(), guildID, g.Name); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to configure guild")
	}
}

func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.xp.HandleMessage(s, m)
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i)
	case discordgo.InteractionModalSubmit:
		b.handleModal(s, i)
	}
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "crash":
		b.crash.HandleCommand(s, i)
	case "blackjack":
		b.blackjack.HandleCommand(s, i)
	case "lottery":
		b.lottery.HandleCommand(s, i)
	case "minesweeper":
		b.minesweeper.HandleCommand(s, i)
	case "balance", "daily", "pay", "coin-leaderboard", "coins-admin":
		b.economy.HandleCommand(s, i)
	case "rank", "xp-leaderboard":
		b.xp.HandleCommand(s, i)
	case "ticket-panel":
		b.tickets.HandleCommand(s, i)
	case "reaction-roles":
		b.reactionRoles.HandleCommand(s, i)
	case "scrim":
		b.scrims.HandleCommand(s, i)
	case "bot-setup":
		b.settings.HandleCommand(s, i)
	case "bot-status", "warn", "warnings", "clear-messages":
		b.admin.HandleCommand(s, i)
	}
}

func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	switch {
	case strings.HasPrefix(customID, "crash_"):
		b.crash.HandleComponent(s, i)
	case strings.HasPrefix(customID, "blackjack_"):
		b.blackjack.HandleComponent(s, i)
	case strings.HasPrefix(customID, "mines_"):
		b.minesweeper.HandleComponent(s, i)
	case strings.HasPrefix(customID, "ticket_"):
		b.tickets.HandleComponent(s, i)
	case strings.HasPrefix(customID, "scrim_"):
		b.scrims.HandleComponent(s, i)
	}
}

func (b *Bot) handleModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.ModalSubmitData().CustomID
	switch {
	case strings.HasPrefix(customID, "crash_"):
		b.crash.HandleComponent(s, i)
	case strings.HasPrefix(customID, "scrim_"):
		b.scrims.HandleModal(s, i)
	}
}
