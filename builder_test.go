package igniter_test

import (
	"testing"

	igniter "github.com/igniter-hq/igniter-go"
	"github.com/stretchr/testify/assert"
)

func TestBuilderIsImmutableAcrossStages(t *testing.T) {
	base := igniter.New()
	withController := base.Controller("items", igniter.NewController("items", "/items"))

	baseApp := base.Create()
	withApp := withController.Create()

	_, _, ok := baseApp.Router().MatchStream("/items")
	assert.False(t, ok)

	action, _, ok := withApp.Router().MatchStream("/items/watch")
	assert.False(t, ok)
	assert.Nil(t, action)
}

func TestBuilderCreateInstallsNoopDefaults(t *testing.T) {
	app := igniter.New().Create()
	assert.NotNil(t, app.Store())
	assert.NotNil(t, app.Logger())
	assert.NotNil(t, app.Jobs())
	assert.NotNil(t, app.Telemetry())
	assert.NotNil(t, app.Bus())
}

func TestApplyConfigDefaultsFillsZeroFields(t *testing.T) {
	cfg := igniter.ApplyConfigDefaults(igniter.Config{})
	assert.Equal(t, "/", cfg.BasePath)
	assert.Equal(t, 30000, cfg.TimeoutMs)
	assert.Equal(t, int64(1_048_576), cfg.BodyLimitBytes)
	assert.Equal(t, 15000, cfg.Realtime.HeartbeatMs)
	assert.Equal(t, 1024, cfg.Realtime.QueueSize)
}

func TestApplyConfigDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := igniter.ApplyConfigDefaults(igniter.Config{BasePath: "/api", TimeoutMs: 5000})
	assert.Equal(t, "/api", cfg.BasePath)
	assert.Equal(t, 5000, cfg.TimeoutMs)
}
