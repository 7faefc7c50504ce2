package common

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// ParseUserID converts a Discord snowflake string to int64
func ParseUserID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// FormatUserID converts an int64 user ID back to a snowflake string
func FormatUserID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// GetDisplayName returns the server-specific display name for a user.
// Falls back to username if nickname is not set or if there's an error.
func GetDisplayName(s *discordgo.Session, guildID, userID string) string {
	member, err := s.GuildMember(guildID, userID)
	if err == nil && member != nil {
		if member.Nick != "" {
			return member.Nick
		}
		if member.User != nil {
			return member.User.Username
		}
	}

	user, err := s.User(userID)
	if err == nil && user != nil {
		return user.Username
	}

	return "Unknown"
}

// GetDisplayNameInt64 is a convenience wrapper that accepts int64 user IDs
func GetDisplayNameInt64(s *discordgo.Session, guildID string, userID int64) string {
	return GetDisplayName(s, guildID, strconv.FormatInt(userID, 10))
}

// IsUserAdmin reports whether the interaction member has administrator or
// manage-server permission.
func IsUserAdmin(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	perms := i.Member.Permissions
	return perms&discordgo.PermissionAdministrator != 0 ||
		perms&discordgo.PermissionManageGuild != 0
}

// MemberHasRole reports whether the interaction member carries the role
func MemberHasRole(i *discordgo.InteractionCreate, roleID int64) bool {
	if i.Member == nil || roleID == 0 {
		return false
	}
	want := strconv.FormatInt(roleID, 10)
	for _, role := range i.Member.Roles {
		if role == want {
			return true
		}
	}
	return false
}
