package featureflags

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvManager_Defaults(t *testing.T) {
	manager := NewEnvManager("", nil)
	ctx := context.Background()

	for _, flag := range All {
		assert.Equal(t, Defaults[flag], manager.IsEnabled(ctx, flag), string(flag))
	}
}

func TestEnvManager_EnvironmentOverridesDefault(t *testing.T) {
	t.Setenv("FEATURE_INLINE_IMAGES", "false")
	t.Setenv("FEATURE_SUMMARIZE_ENABLED", "off")
	t.Setenv("FEATURE_RATE_LIMIT_ENABLED", "garbage")

	manager := NewEnvManager("", nil)
	ctx := context.Background()

	assert.False(t, manager.IsEnabled(ctx, InlineImages))
	assert.False(t, manager.IsEnabled(ctx, SummarizeEnabled))
	assert.True(t, manager.IsEnabled(ctx, RateLimitEnabled), "unparseable values keep the default")
}

func TestEnvManager_CustomPrefixAndDefaults(t *testing.T) {
	t.Setenv("CLIP_REMOTE_TABS", "1")

	manager := NewEnvManager("CLIP_", map[FeatureFlag]bool{})
	ctx := context.Background()

	assert.True(t, manager.IsEnabled(ctx, RemoteTabs))
	assert.False(t, manager.IsEnabled(ctx, InlineImages))
}

func TestEnvManager_SetEnabledWins(t *testing.T) {
	t.Setenv("FEATURE_INLINE_IMAGES", "true")
	manager := NewEnvManager("", nil)

	manager.SetEnabled(InlineImages, false)

	assert.False(t, manager.IsEnabled(context.Background(), InlineImages))
	assert.False(t, manager.GetAllFlags()[InlineImages])
	assert.Len(t, manager.GetAllFlags(), len(All))
}

func TestStaticManager(t *testing.T) {
	initial := map[FeatureFlag]bool{InlineImages: true}
	manager := NewStaticManager(initial)
	ctx := context.Background()

	assert.True(t, manager.IsEnabled(ctx, InlineImages))
	assert.False(t, manager.IsEnabled(ctx, RemoteTabs))

	manager.SetEnabled(RemoteTabs, true)
	assert.True(t, manager.IsEnabled(ctx, RemoteTabs))
	assert.NotContains(t, initial, RemoteTabs, "the caller's map is not modified")

	all := manager.GetAllFlags()
	all[InlineImages] = false
	assert.True(t, manager.IsEnabled(ctx, InlineImages))
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.False(t, IsEnabled(ctx, InlineImages), "no manager disables everything")

	ctx = WithManager(ctx, NewStaticManager(map[FeatureFlag]bool{InlineImages: true}))
	assert.True(t, IsEnabled(ctx, InlineImages))
	assert.False(t, IsEnabled(ctx, SummarizeEnabled))
}
