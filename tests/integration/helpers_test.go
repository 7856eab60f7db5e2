//go:build integration
// +build integration

package integration

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/bakery_ledger/internal/config"
)

// loadConfig reads the environment, pointing MIGRATIONS_DIR at the repo
// root unless it is set explicitly
func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	if os.Getenv("MIGRATIONS_DIR") == "" {
		t.Setenv("MIGRATIONS_DIR", "../../migrations")
	}

	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}
