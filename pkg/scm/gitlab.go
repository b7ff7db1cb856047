package scm

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	gitlab "github.com/xanzy/go-gitlab"
)

// GitLab implements the SCM interface on top of the GitLab API. Directories
// map to GitLab groups and repositories to projects.
type GitLab struct {
	client *gitlab.Client
	token  string
	logger zerolog.Logger
}

// NewGitLab constructs a GitLab client from an OAuth access token. An empty
// baseURL targets gitlab.com.
func NewGitLab(token, baseURL string, logger zerolog.Logger) (*GitLab, error) {
	if token == "" {
		return nil, fmt.Errorf("gitlab token must be provided")
	}

	var opts []gitlab.ClientOptionFunc
	if baseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(baseURL))
	}

	client, err := gitlab.NewOAuthClient(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gitlab client: %w", err)
	}

	return &GitLab{
		client: client,
		token:  token,
		logger: logger.With().Str("component", "scm_gitlab").Logger(),
	}, nil
}

// Token returns the access token used for API and clone authentication.
func (s *GitLab) Token() string {
	return s.token
}

// ListDirectories lists all groups visible to the authenticated user.
func (s *GitLab) ListDirectories(ctx context.Context) ([]*Directory, error) {
	groups, resp, err := s.client.Groups.ListGroups(&gitlab.ListGroupsOptions{}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, classifyGitlab(resp, err)
	}

	directories := make([]*Directory, 0, len(groups))
	for _, group := range groups {
		directories = append(directories, &Directory{
			ID:     uint64(group.ID),
			Path:   group.Path,
			Avatar: group.AvatarURL,
		})
	}
	return directories, nil
}

// CreateDirectory creates a new public group.
func (s *GitLab) CreateDirectory(ctx context.Context, opt *CreateDirectoryOptions) (*Directory, error) {
	group, resp, err := s.client.Groups.CreateGroup(&gitlab.CreateGroupOptions{
		Name:       gitlab.String(opt.Name),
		Path:       gitlab.String(opt.Path),
		Visibility: gitlab.Visibility(gitlab.PublicVisibility),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, classifyGitlab(resp, err)
	}

	s.logger.Info().Str("path", group.Path).Int("group_id", group.ID).Msg("group created")

	return &Directory{
		ID:     uint64(group.ID),
		Path:   group.Path,
		Avatar: group.AvatarURL,
	}, nil
}

// GetDirectory fetches a group by ID.
func (s *GitLab) GetDirectory(ctx context.Context, id uint64) (*Directory, error) {
	group, resp, err := s.client.Groups.GetGroup(strconv.FormatUint(id, 10), &gitlab.GetGroupOptions{}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, classifyGitlab(resp, err)
	}

	return &Directory{
		ID:     uint64(group.ID),
		Path:   group.Path,
		Avatar: group.AvatarURL,
	}, nil
}

// DeleteDirectory removes a group, including all of its projects.
func (s *GitLab) DeleteDirectory(ctx context.Context, id uint64) error {
	resp, err := s.client.Groups.DeleteGroup(strconv.FormatUint(id, 10), gitlab.WithContext(ctx))
	if err != nil {
		return classifyGitlab(resp, err)
	}

	s.logger.Info().Uint64("directory_id", id).Msg("group deleted")
	return nil
}

// CreateRepository creates a project nested under the given group.
func (s *GitLab) CreateRepository(ctx context.Context, opt *CreateRepositoryOptions) (*Repository, error) {
	if opt.Directory == nil {
		return nil, ErrDirectoryRequired
	}

	visibility := gitlab.PublicVisibility
	if opt.Private {
		visibility = gitlab.PrivateVisibility
	}

	namespaceID := int(opt.Directory.ID)
	repo, resp, err := s.client.Projects.CreateProject(&gitlab.CreateProjectOptions{
		Path:        gitlab.String(opt.Path),
		NamespaceID: gitlab.Int(namespaceID),
		Visibility:  gitlab.Visibility(visibility),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, classifyGitlab(resp, err)
	}

	return &Repository{
		ID:          uint64(repo.ID),
		Path:        repo.Path,
		WebURL:      repo.WebURL,
		SSHURL:      repo.SSHURLToRepo,
		HTTPURL:     repo.HTTPURLToRepo,
		DirectoryID: opt.Directory.ID,
	}, nil
}

// GetRepositories lists the projects under the given group.
func (s *GitLab) GetRepositories(ctx context.Context, directory *Directory) ([]*Repository, error) {
	if directory == nil {
		return nil, ErrDirectoryRequired
	}

	repos, resp, err := s.client.Groups.ListGroupProjects(int(directory.ID), &gitlab.ListGroupProjectsOptions{}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, classifyGitlab(resp, err)
	}

	repositories := make([]*Repository, 0, len(repos))
	for _, repo := range repos {
		repositories = append(repositories, &Repository{
			ID:          uint64(repo.ID),
			Path:        repo.Path,
			WebURL:      repo.WebURL,
			SSHURL:      repo.SSHURLToRepo,
			HTTPURL:     repo.HTTPURLToRepo,
			DirectoryID: directory.ID,
		})
	}
	return repositories, nil
}

// GetFileContent returns the raw content of a file on the default branch.
func (s *GitLab) GetFileContent(ctx context.Context, opt *FileOptions) (string, error) {
	pid := fmt.Sprintf("%s/%s", opt.Owner, opt.Repository)
	raw, resp, err := s.client.RepositoryFiles.GetRawFile(pid, opt.Path, &gitlab.GetRawFileOptions{}, gitlab.WithContext(ctx))
	if err != nil {
		return "", classifyGitlab(resp, err)
	}
	return string(raw), nil
}

// classifyGitlab maps provider responses onto the shared sentinel errors.
// GitLab reports some uniqueness violations as 400 with a "has already been
// taken" message rather than 409.
func classifyGitlab(resp *gitlab.Response, err error) error {
	if err == nil {
		return nil
	}
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case http.StatusConflict:
			return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
		}
	}
	if strings.Contains(err.Error(), "has already been taken") {
		return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
	}
	return err
}
