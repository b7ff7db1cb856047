package scm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v45/github"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// GitHub implements the SCM interface on top of the GitHub API. Directories
// map to organizations. GitHub has no public API for creating or deleting
// organizations, so those operations report ErrNotSupported and callers must
// provision courses against an existing organization.
type GitHub struct {
	client *github.Client
	token  string
	logger zerolog.Logger
}

// NewGitHub constructs a GitHub client from an OAuth access token.
func NewGitHub(token string, logger zerolog.Logger) (*GitHub, error) {
	if token == "" {
		return nil, fmt.Errorf("github token must be provided")
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), src)

	return &GitHub{
		client: github.NewClient(httpClient),
		token:  token,
		logger: logger.With().Str("component", "scm_github").Logger(),
	}, nil
}

// Token returns the access token used for API and clone authentication.
func (s *GitHub) Token() string {
	return s.token
}

// ListDirectories lists the organizations of the authenticated user.
func (s *GitHub) ListDirectories(ctx context.Context) ([]*Directory, error) {
	orgs, resp, err := s.client.Organizations.List(ctx, "", nil)
	if err != nil {
		return nil, classifyGithub(resp, err)
	}

	directories := make([]*Directory, 0, len(orgs))
	for _, org := range orgs {
		directories = append(directories, &Directory{
			ID:     uint64(org.GetID()),
			Path:   org.GetLogin(),
			Avatar: org.GetAvatarURL(),
		})
	}
	return directories, nil
}

// CreateDirectory is not supported: GitHub organizations cannot be created
// through the API.
func (s *GitHub) CreateDirectory(ctx context.Context, opt *CreateDirectoryOptions) (*Directory, error) {
	return nil, fmt.Errorf("%w: organization creation", ErrNotSupported)
}

// GetDirectory fetches an organization by its numeric ID.
func (s *GitHub) GetDirectory(ctx context.Context, id uint64) (*Directory, error) {
	org, resp, err := s.client.Organizations.GetByID(ctx, int64(id))
	if err != nil {
		return nil, classifyGithub(resp, err)
	}

	return &Directory{
		ID:     uint64(org.GetID()),
		Path:   org.GetLogin(),
		Avatar: org.GetAvatarURL(),
	}, nil
}

// DeleteDirectory is not supported: GitHub organizations cannot be deleted
// through the API.
func (s *GitHub) DeleteDirectory(ctx context.Context, id uint64) error {
	return fmt.Errorf("%w: organization deletion", ErrNotSupported)
}

// CreateRepository creates a repository under the given organization.
func (s *GitHub) CreateRepository(ctx context.Context, opt *CreateRepositoryOptions) (*Repository, error) {
	if opt.Directory == nil {
		return nil, ErrDirectoryRequired
	}

	owner, err := s.directoryLogin(ctx, opt.Directory)
	if err != nil {
		return nil, err
	}

	repo, resp, err := s.client.Repositories.Create(ctx, owner, &github.Repository{
		Name:    github.String(opt.Path),
		Private: github.Bool(opt.Private),
	})
	if err != nil {
		return nil, classifyGithub(resp, err)
	}

	return &Repository{
		ID:          uint64(repo.GetID()),
		Path:        repo.GetName(),
		WebURL:      repo.GetHTMLURL(),
		SSHURL:      repo.GetSSHURL(),
		HTTPURL:     repo.GetCloneURL(),
		DirectoryID: opt.Directory.ID,
	}, nil
}

// GetRepositories lists the repositories of the given organization.
func (s *GitHub) GetRepositories(ctx context.Context, directory *Directory) ([]*Repository, error) {
	if directory == nil {
		return nil, ErrDirectoryRequired
	}

	owner, err := s.directoryLogin(ctx, directory)
	if err != nil {
		return nil, err
	}

	repos, resp, err := s.client.Repositories.ListByOrg(ctx, owner, nil)
	if err != nil {
		return nil, classifyGithub(resp, err)
	}

	repositories := make([]*Repository, 0, len(repos))
	for _, repo := range repos {
		repositories = append(repositories, &Repository{
			ID:          uint64(repo.GetID()),
			Path:        repo.GetName(),
			WebURL:      repo.GetHTMLURL(),
			SSHURL:      repo.GetSSHURL(),
			HTTPURL:     repo.GetCloneURL(),
			DirectoryID: directory.ID,
		})
	}
	return repositories, nil
}

// GetFileContent returns the decoded content of a file on the default branch.
func (s *GitHub) GetFileContent(ctx context.Context, opt *FileOptions) (string, error) {
	fileContent, _, resp, err := s.client.Repositories.GetContents(ctx, opt.Owner, opt.Repository, opt.Path, nil)
	if err != nil {
		return "", classifyGithub(resp, err)
	}
	if fileContent == nil {
		return "", fmt.Errorf("%w: %s is not a file", ErrNotFound, opt.Path)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", opt.Path, err)
	}
	return content, nil
}

// directoryLogin resolves the organization login, fetching it by ID when the
// caller only supplied the numeric reference.
func (s *GitHub) directoryLogin(ctx context.Context, directory *Directory) (string, error) {
	if directory.Path != "" {
		return directory.Path, nil
	}
	resolved, err := s.GetDirectory(ctx, directory.ID)
	if err != nil {
		return "", err
	}
	return resolved.Path, nil
}

func classifyGithub(resp *github.Response, err error) error {
	if err == nil {
		return nil
	}
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case http.StatusConflict, http.StatusUnprocessableEntity:
			return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
		}
	}
	return err
}
