package service

import (
	"context"
	"testing"

	"github.com/harrywsong/studiobot-sub000/events"
	"github.com/harrywsong/studiobot-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGuildConfigService_UnknownGuildDefaults(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewGuildConfigService(m.factory)

	m.guildConfigRepo.On("GetByGuildID", ctx, int64(100)).Return(nil, nil)

	assert.Equal(t, int64(0), service.GetChannelID(ctx, 100, models.ChannelLog))
	assert.Equal(t, "Unknown", service.GetChannelName(ctx, 100, models.ChannelLog))
	assert.Equal(t, int64(0), service.GetRoleID(ctx, 100, models.RoleStaff))
	assert.Equal(t, "Unknown", service.GetRoleName(ctx, 100, models.RoleStaff))
	assert.False(t, service.IsFeatureEnabled(ctx, 100, models.FeatureCasinoGames))
	assert.False(t, service.IsConfigured(ctx, 100))
	assert.Equal(t, int64(200), service.IntSetting(ctx, 100, "starting_coins", 200))
}

func TestGuildConfigService_AccessorsFromStoredConfig(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewGuildConfigService(m.factory)

	config := models.NewGuildConfig(100, "Test Guild")
	config.Channels[models.ChannelLog] = models.ChannelRef{ID: 777, Name: "bot-logs"}
	config.Roles[models.RoleStaff] = models.RoleRef{ID: 888, Name: "Staff"}
	config.Settings["lottery_multiplier"] = float64(2)

	m.guildConfigRepo.On("GetByGuildID", ctx, int64(100)).Return(config, nil).Once()

	assert.Equal(t, int64(777), service.GetChannelID(ctx, 100, models.ChannelLog))
	assert.Equal(t, "bot-logs", service.GetChannelName(ctx, 100, models.ChannelLog))
	assert.Equal(t, int64(888), service.GetRoleID(ctx, 100, models.RoleStaff))
	assert.Equal(t, "Staff", service.GetRoleName(ctx, 100, models.RoleStaff))
	assert.True(t, service.IsFeatureEnabled(ctx, 100, models.FeatureCasinoGames))
	assert.Equal(t, float64(2), service.FloatSetting(ctx, 100, "lottery_multiplier", 1))
	assert.True(t, service.IsConfigured(ctx, 100))

	// Everything after the first read comes from the cache
	m.guildConfigRepo.AssertNumberOfCalls(t, "GetByGuildID", 1)
}

func TestGuildConfigService_Configure_AnnouncesFirstSetupOnly(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewGuildConfigService(m.factory)

	config := models.NewGuildConfig(100, "Test Guild")

	m.guildConfigRepo.On("GetByGuildID", ctx, int64(100)).Return(nil, nil).Once()
	m.guildConfigRepo.On("GetOrCreate", ctx, int64(100), "Test Guild").Return(config, nil)
	m.eventBus.On("Publish", mock.MatchedBy(func(e events.GuildConfiguredEvent) bool {
		return e.GuildID == 100 && e.GuildName == "Test Guild"
	})).Return().Once()

	created, err := service.Configure(ctx, 100, "Test Guild")
	assert.NoError(t, err)
	assert.Equal(t, "Test Guild", created.GuildName)

	// Second call finds the existing row and stays silent
	m.guildConfigRepo.On("GetByGuildID", ctx, int64(100)).Return(config, nil).Once()

	_, err = service.Configure(ctx, 100, "Test Guild")
	assert.NoError(t, err)

	m.eventBus.AssertNumberOfCalls(t, "Publish", 1)
}

func TestGuildConfigService_SetChannel_RefreshesCache(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewGuildConfigService(m.factory)

	config := models.NewGuildConfig(100, "Test Guild")

	m.guildConfigRepo.On("GetOrCreate", ctx, int64(100), "").Return(config, nil)
	m.guildConfigRepo.On("Update", ctx, mock.MatchedBy(func(c *models.GuildConfig) bool {
		ref, ok := c.Channels[models.ChannelWelcome]
		return ok && ref.ID == 123 && ref.Name == "welcome"
	})).Return(nil)

	err := service.SetChannel(ctx, 100, models.ChannelWelcome, 123, "welcome")

	assert.NoError(t, err)
	// The write warmed the cache; no further repository reads
	assert.Equal(t, int64(123), service.GetChannelID(ctx, 100, models.ChannelWelcome))
	m.guildConfigRepo.AssertNotCalled(t, "GetByGuildID", mock.Anything, mock.Anything)
}

func TestGuildConfigService_SetReactionRoles_EmptyMappingDeletes(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewGuildConfigService(m.factory)

	config := models.NewGuildConfig(100, "Test Guild")
	config.ReactionRoles["12345"] = map[string]int64{"🎮": 999}

	m.guildConfigRepo.On("GetOrCreate", ctx, int64(100), "").Return(config, nil)
	m.guildConfigRepo.On("Update", ctx, mock.MatchedBy(func(c *models.GuildConfig) bool {
		_, exists := c.ReactionRoles["12345"]
		return !exists
	})).Return(nil)

	err := service.SetReactionRoles(ctx, 100, "12345", nil)

	assert.NoError(t, err)
	m.guildConfigRepo.AssertExpectations(t)
}

func TestGuildConfigService_SnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewGuildConfigService(m.factory)

	source := models.NewGuildConfig(100, "Test Guild")
	source.Channels[models.ChannelLog] = models.ChannelRef{ID: 777, Name: "bot-logs"}
	source.Features[models.FeatureCasinoGames] = false
	source.Settings["starting_coins"] = float64(350)

	m.guildConfigRepo.On("GetByGuildID", ctx, int64(100)).Return(source, nil).Once()

	data, err := service.ExportSnapshot(ctx, 100)
	assert.NoError(t, err)

	// Import the snapshot into a second guild
	m2 := newTestUnitOfWork(ctx, 200)
	service2 := NewGuildConfigService(m2.factory)

	target := models.NewGuildConfig(200, "Other Guild")
	m2.guildConfigRepo.On("GetOrCreate", ctx, int64(200), "").Return(target, nil)
	m2.guildConfigRepo.On("Update", ctx, mock.MatchedBy(func(c *models.GuildConfig) bool {
		return c.GuildID == 200 &&
			c.Channels[models.ChannelLog].ID == 777 &&
			c.Features[models.FeatureCasinoGames] == false &&
			c.Settings["starting_coins"] == float64(350)
	})).Return(nil)

	err = service2.ImportSnapshot(ctx, 200, data)
	assert.NoError(t, err)

	assert.Equal(t, int64(777), service2.GetChannelID(ctx, 200, models.ChannelLog))
	assert.Equal(t, int64(350), service2.IntSetting(ctx, 200, "starting_coins", 200))
	m2.guildConfigRepo.AssertExpectations(t)
}

func TestGuildConfigService_ExportSnapshot_Unconfigured(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewGuildConfigService(m.factory)

	m.guildConfigRepo.On("GetByGuildID", ctx, int64(100)).Return(nil, nil)

	_, err := service.ExportSnapshot(ctx, 100)

	assert.Error(t, err)
}
