package scrims

import (
	"context"
	"testing"
	"time"

	"github.com/harrywsong/studiobot-sub000/events"
	"github.com/harrywsong/studiobot-sub000/models"
	"github.com/harrywsong/studiobot-sub000/scrimstore"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeature(t *testing.T) *Feature {
	t.Helper()
	return New(scrimstore.New(t.TempDir()), events.NewBus())
}

func seedScrim(t *testing.T, f *Feature, teamSize int, players ...int64) *models.Scrim {
	t.Helper()
	scrim := &models.Scrim{
		ID:        xid.New().String(),
		GuildID:   100,
		ChannelID: 200,
		Title:     "Practice",
		StartsAt:  time.Now().Add(time.Hour),
		TeamSize:  teamSize,
		Players:   players,
		CreatedBy: 1,
		CreatedAt: time.Now(),
	}
	require.NoError(t, f.store.Save(scrim))
	return scrim
}

func TestParseStartTime_ClockTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

	start, err := parseStartTime("21:30", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 21, 30, 0, 0, time.UTC), start)
}

func TestParseStartTime_ClockTimeRollsToTomorrow(t *testing.T) {
	now := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)

	start, err := parseStartTime("21:30", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 11, 21, 30, 0, 0, time.UTC), start)
}

func TestParseStartTime_Duration(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

	start, err := parseStartTime("2h30m", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(2*time.Hour+30*time.Minute), start)
}

func TestParseStartTime_Invalid(t *testing.T) {
	_, err := parseStartTime("whenever", time.Now())
	assert.Error(t, err)
}

func TestJoin_FillsPlayerSlots(t *testing.T) {
	f := newTestFeature(t)
	scrim := seedScrim(t, f, 1, 1)

	updated, already, filled, err := f.join(scrim.ID, 2)
	require.NoError(t, err)
	assert.False(t, already)
	assert.True(t, filled)
	assert.True(t, updated.HasPlayer(2))
	assert.True(t, updated.IsFull())
}

func TestJoin_OverflowsIntoQueue(t *testing.T) {
	f := newTestFeature(t)
	scrim := seedScrim(t, f, 1, 1, 2)

	updated, already, filled, err := f.join(scrim.ID, 3)
	require.NoError(t, err)
	assert.False(t, already)
	assert.False(t, filled)
	assert.False(t, updated.HasPlayer(3))
	assert.True(t, updated.InQueue(3))
}

func TestJoin_RejectsDuplicates(t *testing.T) {
	f := newTestFeature(t)
	scrim := seedScrim(t, f, 2, 1)

	_, already, _, err := f.join(scrim.ID, 1)
	require.NoError(t, err)
	assert.True(t, already)
}

func TestJoin_MissingScrim(t *testing.T) {
	f := newTestFeature(t)

	_, _, _, err := f.join("missing", 1)
	assert.Error(t, err)
}

func TestJoin_PublishesFilledEvent(t *testing.T) {
	f := newTestFeature(t)
	scrim := seedScrim(t, f, 1, 1)

	got := make(chan events.Event, 1)
	f.bus.Subscribe(events.EventTypeScrimFilled, func(_ context.Context, e events.Event) {
		got <- e
	})

	_, _, filled, err := f.join(scrim.ID, 2)
	require.NoError(t, err)
	require.True(t, filled)

	select {
	case e := <-got:
		event, ok := e.(events.ScrimFilledEvent)
		require.True(t, ok)
		assert.Equal(t, scrim.ID, event.ScrimID)
		assert.Equal(t, scrim.Title, event.Title)
	case <-time.After(time.Second):
		t.Fatal("expected a scrim filled event")
	}
}

func TestLeave_PromotesFromQueue(t *testing.T) {
	f := newTestFeature(t)
	scrim := seedScrim(t, f, 1, 1, 2)
	_, _, _, err := f.join(scrim.ID, 3)
	require.NoError(t, err)

	updated, removed, promoted, err := f.leave(scrim.ID, 1)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, int64(3), promoted)
	assert.True(t, updated.HasPlayer(3))
	assert.False(t, updated.InQueue(3))
	assert.False(t, updated.HasPlayer(1))
}

func TestLeave_FromQueue(t *testing.T) {
	f := newTestFeature(t)
	scrim := seedScrim(t, f, 1, 1, 2)
	_, _, _, err := f.join(scrim.ID, 3)
	require.NoError(t, err)

	updated, removed, promoted, err := f.leave(scrim.ID, 3)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Zero(t, promoted)
	assert.Empty(t, updated.Queue)
}

func TestLeave_NotInScrim(t *testing.T) {
	f := newTestFeature(t)
	scrim := seedScrim(t, f, 1, 1)

	_, removed, _, err := f.leave(scrim.ID, 9)
	require.NoError(t, err)
	assert.False(t, removed)
}
