package scm

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubSCM struct{ SCM }

func (stubSCM) ListDirectories(context.Context) ([]*Directory, error) { return nil, nil }

func TestManagerRequiresAProvider(t *testing.T) {
	_, err := NewManager(Config{}, zerolog.Nop())
	require.Error(t, err)
}

func TestManagerClientLookup(t *testing.T) {
	m := NewManagerWithClients(map[string]SCM{
		ProviderGitLab: stubSCM{},
		ProviderGitHub: stubSCM{},
	})

	client, err := m.Client(ProviderGitLab)
	require.NoError(t, err)
	require.NotNil(t, client)

	_, err = m.Client("bitbucket")
	require.ErrorIs(t, err, ErrUnknownProvider)

	require.Equal(t, []string{ProviderGitHub, ProviderGitLab}, m.Providers())
}

func TestManagerBuildsConfiguredClients(t *testing.T) {
	m, err := NewManager(Config{GitHubToken: "ghp-test"}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, []string{ProviderGitHub}, m.Providers())

	_, err = m.Client(ProviderGitLab)
	require.ErrorIs(t, err, ErrUnknownProvider)
}
