package repository

import (
	"context"
	"os"
	"testing"

	"github.com/harrywsong/studiobot-sub000/models"
	"github.com/harrywsong/studiobot-sub000/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("ENVIRONMENT", "test")
	os.Exit(m.Run())
}

func TestGuildConfigRepository_GetByGuildID_Missing(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewGuildConfigRepository(testDB.DB)

	config, err := repo.GetByGuildID(ctx, 999999)
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestGuildConfigRepository_GetOrCreate(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewGuildConfigRepository(testDB.DB)

	created, err := repo.GetOrCreate(ctx, 1001, "Test Guild")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, int64(1001), created.GuildID)
	assert.Equal(t, "Test Guild", created.GuildName)
	assert.True(t, created.Features[models.FeatureCasinoGames])
	assert.True(t, created.Features[models.FeatureTicketSystem])
	assert.Equal(t, float64(200), created.Settings["starting_coins"])

	// Second call returns the stored row, not a fresh default
	again, err := repo.GetOrCreate(ctx, 1001, "Renamed Guild")
	require.NoError(t, err)
	assert.Equal(t, "Test Guild", again.GuildName)
}

func TestGuildConfigRepository_Update_RoundTrip(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewGuildConfigRepository(testDB.DB)

	config, err := repo.GetOrCreate(ctx, 1002, "Round Trip")
	require.NoError(t, err)

	config.Channels[models.ChannelLog] = models.ChannelRef{ID: 555, Name: "bot-logs"}
	config.Roles[models.RoleStaff] = models.RoleRef{ID: 777, Name: "Staff"}
	config.Features[models.FeatureCasinoGames] = false
	config.Settings["crash_max_bet"] = float64(500)
	config.ReactionRoles["123456"] = map[string]int64{"🎮": 888}

	require.NoError(t, repo.Update(ctx, config))

	loaded, err := repo.GetByGuildID(ctx, 1002)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, int64(555), loaded.Channels[models.ChannelLog].ID)
	assert.Equal(t, "bot-logs", loaded.Channels[models.ChannelLog].Name)
	assert.Equal(t, int64(777), loaded.Roles[models.RoleStaff].ID)
	assert.False(t, loaded.Features[models.FeatureCasinoGames])
	assert.Equal(t, float64(500), loaded.Settings["crash_max_bet"])
	assert.Equal(t, int64(888), loaded.ReactionRoles["123456"]["🎮"])
}

func TestGuildConfigRepository_Update_MissingGuild(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewGuildConfigRepository(testDB.DB)

	err := repo.Update(ctx, models.NewGuildConfig(424242, "ghost"))
	assert.Error(t, err)
}

func TestWalletRepository_DeductCoins_Insufficient(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewWalletRepository(testDB.DB)

	wallet, err := repo.Create(ctx, 2001, 42, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(200), wallet.Coins)
	assert.Equal(t, int64(200), wallet.TotalEarned)

	ok, err := repo.DeductCoins(ctx, 2001, 42, 500)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.DeductCoins(ctx, 2001, 42, 150)
	require.NoError(t, err)
	assert.True(t, ok)

	after, err := repo.GetByUser(ctx, 2001, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(50), after.Coins)
	assert.Equal(t, int64(150), after.TotalSpent)
}
