package scrims

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harrywsong/studiobot-sub000/bot/common"
	"github.com/harrywsong/studiobot-sub000/events"
	"github.com/harrywsong/studiobot-sub000/models"
	"github.com/harrywsong/studiobot-sub000/scrimstore"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
	str2duration "github.com/xhit/go-str2duration/v2"
)

const (
	reminderLead = 15 * time.Minute

	// Scrims linger this long past their start time before cleanup
	expiryGrace = 2 * time.Hour

	minTeamSize = 1
	maxTeamSize = 10
)

// Feature organizes scrims: create via modal, join and leave via buttons,
// an overflow queue with automatic promotion, and start-time reminders.
type Feature struct {
	store *scrimstore.Store
	bus   *events.Bus
}

// New creates the scrim feature
func New(store *scrimstore.Store, bus *events.Bus) *Feature {
	return &Feature{store: store, bus: bus}
}

// parseStartTime accepts a clock time like "21:30" (next occurrence) or a
// duration like "2h30m" from now.
func parseStartTime(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)

	if t, err := time.Parse("15:04", input); err == nil {
		start := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
		if !start.After(now) {
			start = start.Add(24 * time.Hour)
		}
		return start, nil
	}

	d, err := str2duration.ParseDuration(input)
	if err != nil {
		return time.Time{}, fmt.Errorf("use a clock time like 21:30 or a duration like 2h30m")
	}
	if d <= 0 {
		return time.Time{}, fmt.Errorf("start time must be in the future")
	}
	return now.Add(d), nil
}

// RemindAndExpire sends start reminders and removes stale scrims. Wired
// into the scheduler to run every minute.
func (f *Feature) RemindAndExpire(s *discordgo.Session) {
	scrims, err := f.store.All()
	if err != nil {
		log.WithField("error", err).Error("Failed to load scrims for reminder sweep")
		return
	}

	now := time.Now()
	for _, scrim := range scrims {
		if now.After(scrim.StartsAt.Add(expiryGrace)) {
			if err := f.store.Delete(scrim.ID); err != nil {
				log.WithFields(log.Fields{"scrim_id": scrim.ID, "error": err}).Warn("Failed to delete expired scrim")
			}
			continue
		}

		if scrim.Notified || now.Before(scrim.StartsAt.Add(-reminderLead)) {
			continue
		}
		f.remind(s, scrim)
	}
}

func (f *Feature) remind(s *discordgo.Session, scrim *models.Scrim) {
	updated, err := f.store.Mutate(scrim.ID, func(sc *models.Scrim) bool {
		if sc.Notified {
			return false
		}
		sc.Notified = true
		return true
	})
	if err != nil {
		log.WithFields(log.Fields{"scrim_id": scrim.ID, "error": err}).Error("Failed to mark scrim notified")
		return
	}
	if !updated.Notified {
		return
	}

	mentions := make([]string, 0, len(updated.Players))
	for _, userID := range updated.Players {
		mentions = append(mentions, fmt.Sprintf("<@%s>", common.FormatUserID(userID)))
	}
	if len(mentions) == 0 {
		return
	}

	content := fmt.Sprintf("⏰ **%s** starts %s! %s",
		updated.Title,
		common.FormatDiscordTimestamp(updated.StartsAt, "R"),
		strings.Join(mentions, " "),
	)
	if _, err := s.ChannelMessageSend(common.FormatUserID(updated.ChannelID), content); err != nil {
		log.WithFields(log.Fields{"scrim_id": updated.ID, "error": err}).Error("Failed to send scrim reminder")
	}
}

// join adds a user to the scrim, overflowing into the queue when full.
// Reports whether they were already in, and whether the scrim just filled.
func (f *Feature) join(scrimID string, userID int64) (scrim *models.Scrim, already, filled bool, err error) {
	scrim, err = f.store.Mutate(scrimID, func(sc *models.Scrim) bool {
		if sc.HasPlayer(userID) || sc.InQueue(userID) {
			already = true
			return false
		}
		if sc.IsFull() {
			sc.Queue = append(sc.Queue, userID)
			return true
		}
		sc.Players = append(sc.Players, userID)
		filled = sc.IsFull()
		return true
	})
	if err != nil {
		return nil, false, false, err
	}

	if filled {
		f.bus.Emit(context.Background(), events.ScrimFilledEvent{
			GuildID: scrim.GuildID,
			ScrimID: scrim.ID,
			Title:   scrim.Title,
		})
	}
	return scrim, already, filled, nil
}

// leave removes a user, promoting the first queued player into the freed
// slot. Returns the promoted user ID, or 0.
func (f *Feature) leave(scrimID string, userID int64) (scrim *models.Scrim, removed bool, promoted int64, err error) {
	scrim, err = f.store.Mutate(scrimID, func(sc *models.Scrim) bool {
		for idx, id := range sc.Players {
			if id != userID {
				continue
			}
			sc.Players = append(sc.Players[:idx], sc.Players[idx+1:]...)
			removed = true
			if len(sc.Queue) > 0 {
				promoted = sc.Queue[0]
				sc.Queue = sc.Queue[1:]
				sc.Players = append(sc.Players, promoted)
			}
			return true
		}
		for idx, id := range sc.Queue {
			if id != userID {
				continue
			}
			sc.Queue = append(sc.Queue[:idx], sc.Queue[idx+1:]...)
			removed = true
			return true
		}
		return false
	})
	return scrim, removed, promoted, err
}
