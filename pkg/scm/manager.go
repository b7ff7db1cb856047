package scm

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// Provider names accepted in course records and client requests.
const (
	ProviderGitHub = "github"
	ProviderGitLab = "gitlab"
)

// Config carries the provider credentials resolved from configuration.
type Config struct {
	GitHubToken  string
	GitLabToken  string
	GitLabAPIURL string
}

// Manager holds one SCM client per configured provider. It is built once at
// startup and passed explicitly to the services that need it.
type Manager struct {
	clients map[string]SCM
}

// NewManager constructs clients for every provider with a configured token.
// At least one provider must be configured.
func NewManager(cfg Config, logger zerolog.Logger) (*Manager, error) {
	clients := make(map[string]SCM)

	if cfg.GitHubToken != "" {
		client, err := NewGitHub(cfg.GitHubToken, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create github client: %w", err)
		}
		clients[ProviderGitHub] = client
	}

	if cfg.GitLabToken != "" {
		client, err := NewGitLab(cfg.GitLabToken, cfg.GitLabAPIURL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gitlab client: %w", err)
		}
		clients[ProviderGitLab] = client
	}

	if len(clients) == 0 {
		return nil, fmt.Errorf("no scm providers configured")
	}

	return &Manager{clients: clients}, nil
}

// NewManagerWithClients wraps prebuilt clients. Used where clients are
// constructed elsewhere, such as tests with in-memory providers.
func NewManagerWithClients(clients map[string]SCM) *Manager {
	return &Manager{clients: clients}
}

// Client returns the client for the given provider.
func (m *Manager) Client(provider string) (SCM, error) {
	client, ok := m.clients[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	return client, nil
}

// Providers lists the configured provider names in stable order.
func (m *Manager) Providers() []string {
	providers := make([]string, 0, len(m.clients))
	for name := range m.clients {
		providers = append(providers, name)
	}
	sort.Strings(providers)
	return providers
}
