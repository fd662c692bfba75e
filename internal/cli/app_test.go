package cli

import (
	"context"
	"encoding/json"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jfields/renewlens/internal/config"
)

func TestLoadConfigLayersFileOverEnv(t *testing.T) {
	root := t.TempDir()
	seed := config.DefaultConfigWithRoot(root)
	seed.MaxRefineRounds = 3

	mgr, err := config.NewManager(
		config.WithConfigDir(root),
		config.WithInitialConfig(seed),
	)
	require.NoError(t, err)

	// The seed is persisted on first run and read back afterwards.
	_, err = os.Stat(mgr.Path())
	require.NoError(t, err)
	require.Equal(t, 3, mgr.Get().MaxRefineRounds)
}

func TestConfigReloadSwapsPipeline(t *testing.T) {
	root := t.TempDir()
	seed := config.DefaultConfigWithRoot(root)
	seed.CacheEnabled = false

	mgr, err := config.NewManager(
		config.WithConfigDir(root),
		config.WithInitialConfig(seed),
		config.WithDebounce(20*time.Millisecond),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := mgr.Get()
	app, err := NewApp(ctx, &cfg)
	require.NoError(t, err)

	var current atomic.Pointer[App]
	current.Store(app)
	defer func() { current.Load().Close() }()

	require.NoError(t, watchConfig(ctx, mgr, &current, false))

	next := cfg
	next.MaxRefineRounds = 1
	data, err := json.Marshal(&next)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(mgr.Path(), data, 0o644))

	require.Eventually(t, func() bool {
		return current.Load().Cfg.MaxRefineRounds == 1
	}, 5*time.Second, 50*time.Millisecond, "pipeline was not rebuilt after config edit")
}
