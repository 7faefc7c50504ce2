package scrimstore

import (
	"testing"
	"time"

	"github.com/harrywsong/studiobot-sub000/models"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScrim(guildID int64, title string) *models.Scrim {
	return &models.Scrim{
		ID:        xid.New().String(),
		GuildID:   guildID,
		ChannelID: 555,
		Title:     title,
		StartsAt:  time.Now().Add(2 * time.Hour).UTC(),
		TeamSize:  5,
		CreatedBy: 42,
		CreatedAt: time.Now().UTC(),
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	store := New(t.TempDir())

	scrim := newTestScrim(100, "Evening practice")
	require.NoError(t, store.Save(scrim))

	loaded, err := store.Get(scrim.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, scrim.Title, loaded.Title)
	assert.Equal(t, scrim.GuildID, loaded.GuildID)
	assert.Equal(t, 10, loaded.Capacity())
}

func TestStore_Get_Missing(t *testing.T) {
	store := New(t.TempDir())

	loaded, err := store.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStore_Delete(t *testing.T) {
	store := New(t.TempDir())

	scrim := newTestScrim(100, "Evening practice")
	require.NoError(t, store.Save(scrim))
	require.NoError(t, store.Delete(scrim.ID))

	loaded, err := store.Get(scrim.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Double delete is fine
	assert.NoError(t, store.Delete(scrim.ID))
}

func TestStore_ByGuild(t *testing.T) {
	store := New(t.TempDir())

	require.NoError(t, store.Save(newTestScrim(100, "A")))
	require.NoError(t, store.Save(newTestScrim(100, "B")))
	require.NoError(t, store.Save(newTestScrim(200, "C")))

	scrims, err := store.ByGuild(100)
	require.NoError(t, err)
	assert.Len(t, scrims, 2)

	scrims, err = store.ByGuild(200)
	require.NoError(t, err)
	assert.Len(t, scrims, 1)
	assert.Equal(t, "C", scrims[0].Title)
}

func TestStore_Mutate(t *testing.T) {
	store := New(t.TempDir())

	scrim := newTestScrim(100, "Evening practice")
	require.NoError(t, store.Save(scrim))

	updated, err := store.Mutate(scrim.ID, func(s *models.Scrim) bool {
		s.Players = append(s.Players, 42)
		return true
	})
	require.NoError(t, err)
	assert.True(t, updated.HasPlayer(42))

	// The write stuck
	loaded, err := store.Get(scrim.ID)
	require.NoError(t, err)
	assert.True(t, loaded.HasPlayer(42))
}

func TestStore_Mutate_Aborted(t *testing.T) {
	store := New(t.TempDir())

	scrim := newTestScrim(100, "Evening practice")
	require.NoError(t, store.Save(scrim))

	_, err := store.Mutate(scrim.ID, func(s *models.Scrim) bool {
		s.Players = append(s.Players, 42)
		return false
	})
	require.NoError(t, err)

	loaded, err := store.Get(scrim.ID)
	require.NoError(t, err)
	assert.False(t, loaded.HasPlayer(42))
}

func TestStore_Mutate_Missing(t *testing.T) {
	store := New(t.TempDir())

	_, err := store.Mutate("nope", func(s *models.Scrim) bool { return true })
	assert.Error(t, err)
}
