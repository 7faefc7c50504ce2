package xp

import (
	"context"
	"testing"

	"github.com/harrywsong/studiobot-sub000/service"

	"github.com/stretchr/testify/assert"
)

type recordingXP struct {
	service.XPService
	voiceAwards []int64
}

func (r *recordingXP) AwardVoiceXP(ctx context.Context, guildID, userID, amount int64) (*service.XPGrant, error) {
	r.voiceAwards = append(r.voiceAwards, amount)
	return &service.XPGrant{}, nil
}

func TestAwardVoiceTick_BaseRate(t *testing.T) {
	xpSvc := &recordingXP{}
	f := New(xpSvc, nil, nil)

	f.AwardVoiceTick(context.Background(), 100, 200, false)

	assert.Equal(t, []int64{1}, xpSvc.voiceAwards)
}

func TestAwardVoiceTick_BoostedRate(t *testing.T) {
	xpSvc := &recordingXP{}
	f := New(xpSvc, nil, nil)

	f.AwardVoiceTick(context.Background(), 100, 200, true)

	assert.Equal(t, []int64{2}, xpSvc.voiceAwards)
}
