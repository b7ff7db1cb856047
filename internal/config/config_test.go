package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GRADEHUB_JWT_SECRET", "secret")
	t.Setenv("GRADEHUB_GITLAB_TOKEN", "glpat-test")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "GradeHub API", cfg.AppName)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, 30*time.Second, cfg.OrgListTimeout)
	require.Equal(t, 5*time.Minute, cfg.AssignmentCacheTTL)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("GRADEHUB_JWT_SECRET", "")
	t.Setenv("GRADEHUB_GITLAB_TOKEN", "glpat-test")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRequiresProviderToken(t *testing.T) {
	t.Setenv("GRADEHUB_JWT_SECRET", "secret")
	t.Setenv("GRADEHUB_GITHUB_TOKEN", "")
	t.Setenv("GRADEHUB_GITLAB_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
}

func TestHTTPAddressKeepsExplicitColon(t *testing.T) {
	t.Setenv("GRADEHUB_JWT_SECRET", "secret")
	t.Setenv("GRADEHUB_GITHUB_TOKEN", "ghp-test")
	t.Setenv("GRADEHUB_APP_PORT", ":9000")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTPAddress())
}
