package scm

import "context"

// Directory is a remote grouping entity: a GitHub organization or a GitLab
// group. It is owned by the provider and only mirrored locally by reference.
type Directory struct {
	ID     uint64 `json:"id"`
	Path   string `json:"path"`
	Avatar string `json:"avatar"`
}

// Repository is a remote repository nested under a directory.
type Repository struct {
	ID          uint64 `json:"id"`
	Path        string `json:"path"`
	WebURL      string `json:"web_url"`
	SSHURL      string `json:"ssh_url"`
	HTTPURL     string `json:"http_url"`
	DirectoryID uint64 `json:"directory_id"`
}

// CreateDirectoryOptions holds the fields required to create a directory.
type CreateDirectoryOptions struct {
	Name string
	Path string
}

// CreateRepositoryOptions holds the fields required to create a repository.
// Directory must reference an existing remote directory.
type CreateRepositoryOptions struct {
	Directory *Directory
	Path      string
	Private   bool
}

// FileOptions identifies a single file inside a remote repository.
type FileOptions struct {
	Path       string
	Owner      string
	Repository string
}

// SCM is the capability set every provider client must implement. Business
// logic depends only on this interface and never on a concrete provider.
// All calls honor the caller's context for cancellation and deadlines.
type SCM interface {
	// ListDirectories lists all directories visible to the authenticated
	// principal. Callers must not rely on ordering.
	ListDirectories(ctx context.Context) ([]*Directory, error)
	// CreateDirectory creates a new directory with public visibility.
	CreateDirectory(ctx context.Context, opt *CreateDirectoryOptions) (*Directory, error)
	// GetDirectory fetches a directory by its remote numeric ID.
	GetDirectory(ctx context.Context, id uint64) (*Directory, error)
	// DeleteDirectory removes a directory; used to compensate a failed
	// provisioning sequence.
	DeleteDirectory(ctx context.Context, id uint64) error
	// CreateRepository creates a repository nested under an existing
	// directory.
	CreateRepository(ctx context.Context, opt *CreateRepositoryOptions) (*Repository, error)
	// GetRepositories lists the repositories under the given directory;
	// an empty directory yields an empty slice, not an error.
	GetRepositories(ctx context.Context, directory *Directory) ([]*Repository, error)
	// GetFileContent returns the decoded text content of a single file.
	GetFileContent(ctx context.Context, opt *FileOptions) (string, error)
	// Token returns the access token the client authenticates with, so
	// callers can clone private repositories over HTTPS.
	Token() string
}
