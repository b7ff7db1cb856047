package assignments

import (
	"context"
	"fmt"
	"os"

	git "github.com/go-git/go-git/v5"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/gradehub/gradehub-api/internal/models"
	"github.com/gradehub/gradehub-api/pkg/scm"
)

// TestsRepo is the repository holding assignment descriptors and grading
// criteria for a course.
const TestsRepo = "tests"

// Fetch clones the course tests repository into a temporary directory,
// parses the descriptor tree, and cleans up the checkout. The clone honors
// the caller's context.
func Fetch(ctx context.Context, sc scm.SCM, course models.Course) ([]models.Assignment, error) {
	directory := &scm.Directory{ID: course.DirectoryID, Path: course.DirectoryPath}
	repos, err := sc.GetRepositories(ctx, directory)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories for %s: %w", course.DirectoryPath, err)
	}

	var cloneURL string
	for _, repo := range repos {
		if repo.Path == TestsRepo {
			cloneURL = repo.HTTPURL
			break
		}
	}
	if cloneURL == "" {
		return nil, fmt.Errorf("%w: %s repository for course %s", scm.ErrNotFound, TestsRepo, course.Code)
	}

	dir, err := os.MkdirTemp("", "gradehub-tests-")
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout directory: %w", err)
	}
	defer os.RemoveAll(dir)

	opts := &git.CloneOptions{URL: cloneURL, Depth: 1}
	if auth := cloneAuth(sc.Token()); auth != nil {
		opts.Auth = auth
	}
	if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
		return nil, fmt.Errorf("failed to clone %s: %w", cloneURL, err)
	}

	return Parse(os.DirFS(dir), course.ID)
}

// cloneAuth authenticates the clone with the provider access token so a
// private tests repository can still be fetched. Both GitHub and GitLab
// accept an OAuth token as the basic-auth password.
func cloneAuth(token string) *githttp.BasicAuth {
	if token == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: "oauth2", Password: token}
}
