package settings

import (
	"github.com/harrywsong/studiobot-sub000/bot/common"
	"github.com/harrywsong/studiobot-sub000/service"

	"github.com/bwmarrin/discordgo"
)

// Channel and role keys accepted by /bot-setup, mapped to their config keys.
// Kept as explicit allow lists so typos fail loudly at the command instead
// of writing unusable config.
var (
	channelKeys = []string{
		"log_channel",
		"welcome_channel",
		"announcement_channel",
		"level_up_channel",
		"ticket_channel",
		"ticket_category",
		"lobby_channel",
		"scrim_channel",
	}
	roleKeys = []string{
		"staff_role",
		"verified_role",
	}
	featureKeys = []string{
		"welcome_messages",
		"achievements",
		"ticket_system",
		"voice_channels",
		"casino_games",
		"message_history",
		"reaction_roles",
	}
)

// Feature handles guild configuration management via /bot-setup
type Feature struct {
	configs service.GuildConfigService
}

// New creates the settings feature
func New(configs service.GuildConfigService) *Feature {
	return &Feature{configs: configs}
}

// HandleCommand routes /bot-setup subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.IsUserAdmin(i) {
		common.RespondWithError(s, i, "You need the Manage Server permission to do that.")
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "channel":
		f.handleChannel(s, i, options[0].Options)
	case "role":
		f.handleRole(s, i, options[0].Options)
	case "feature":
		f.handleFeature(s, i, options[0].Options)
	case "setting":
		f.handleSetting(s, i, options[0].Options)
	case "show":
		f.handleShow(s, i)
	case "export":
		f.handleExport(s, i)
	case "import":
		f.handleImport(s, i, options[0].Options)
	}
}

func validKey(key string, allowed []string) bool {
	for _, k := range allowed {
		if k == key {
			return true
		}
	}
	return false
}
