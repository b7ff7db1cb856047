package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gradehub/gradehub-api/internal/models"
	"github.com/gradehub/gradehub-api/pkg/scm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Enrollment{},
		&models.Course{},
		&models.Repository{},
		&models.Assignment{},
		&models.GradingBenchmark{},
		&models.GradingCriterion{},
		&models.Submission{},
		&models.Review{},
		&models.Group{},
	))
	return db
}

func testValidator() *validator.Validate {
	return validator.New()
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// fakeSCM is an in-memory provider used in place of a remote GitHub or
// GitLab instance. Failure injection fields let tests break specific calls.
type fakeSCM struct {
	mu          sync.Mutex
	nextID      uint64
	directories map[uint64]*scm.Directory
	repos       map[uint64][]*scm.Repository
	// files is keyed "owner/repo/path"
	files map[string]string

	deletedDirectories []uint64

	// createRepoFailures fails the next N CreateRepository calls
	createRepoFailures int
	// listDelay stalls ListDirectories until the context expires or the
	// delay passes
	listDelay time.Duration
}

func newFakeSCM() *fakeSCM {
	return &fakeSCM{
		nextID:      1000,
		directories: make(map[uint64]*scm.Directory),
		repos:       make(map[uint64][]*scm.Repository),
		files:       make(map[string]string),
	}
}

func (f *fakeSCM) addDirectory(path string) *scm.Directory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	dir := &scm.Directory{ID: f.nextID, Path: path}
	f.directories[dir.ID] = dir
	return dir
}

func (f *fakeSCM) addFile(owner, repo, path, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[owner+"/"+repo+"/"+path] = content
}

func (f *fakeSCM) Token() string {
	return "fake-token"
}

func (f *fakeSCM) ListDirectories(ctx context.Context) ([]*scm.Directory, error) {
	if f.listDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.listDelay):
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	dirs := make([]*scm.Directory, 0, len(f.directories))
	for _, dir := range f.directories {
		dirs = append(dirs, dir)
	}
	return dirs, nil
}

func (f *fakeSCM) CreateDirectory(ctx context.Context, opt *scm.CreateDirectoryOptions) (*scm.Directory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, dir := range f.directories {
		if dir.Path == opt.Path {
			return nil, scm.ErrAlreadyExists
		}
	}
	f.nextID++
	dir := &scm.Directory{ID: f.nextID, Path: opt.Path}
	f.directories[dir.ID] = dir
	return dir, nil
}

func (f *fakeSCM) GetDirectory(ctx context.Context, id uint64) (*scm.Directory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dir, ok := f.directories[id]
	if !ok {
		return nil, scm.ErrNotFound
	}
	return dir, nil
}

func (f *fakeSCM) DeleteDirectory(ctx context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.directories[id]; !ok {
		return scm.ErrNotFound
	}
	delete(f.directories, id)
	delete(f.repos, id)
	f.deletedDirectories = append(f.deletedDirectories, id)
	return nil
}

func (f *fakeSCM) CreateRepository(ctx context.Context, opt *scm.CreateRepositoryOptions) (*scm.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createRepoFailures > 0 {
		f.createRepoFailures--
		return nil, fmt.Errorf("provider unavailable")
	}
	if _, ok := f.directories[opt.Directory.ID]; !ok {
		return nil, scm.ErrNotFound
	}
	for _, repo := range f.repos[opt.Directory.ID] {
		if repo.Path == opt.Path {
			return nil, scm.ErrAlreadyExists
		}
	}
	f.nextID++
	repo := &scm.Repository{
		ID:          f.nextID,
		Path:        opt.Path,
		WebURL:      fmt.Sprintf("https://fake.example/%s/%s", opt.Directory.Path, opt.Path),
		HTTPURL:     fmt.Sprintf("https://fake.example/%s/%s.git", opt.Directory.Path, opt.Path),
		DirectoryID: opt.Directory.ID,
	}
	f.repos[opt.Directory.ID] = append(f.repos[opt.Directory.ID], repo)
	return repo, nil
}

func (f *fakeSCM) GetRepositories(ctx context.Context, directory *scm.Directory) ([]*scm.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.directories[directory.ID]; !ok {
		return nil, scm.ErrNotFound
	}
	return append([]*scm.Repository(nil), f.repos[directory.ID]...), nil
}

func (f *fakeSCM) GetFileContent(ctx context.Context, opt *scm.FileOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.files[opt.Owner+"/"+opt.Repository+"/"+opt.Path]
	if !ok {
		return "", scm.ErrNotFound
	}
	return content, nil
}

func managerWith(provider string, sc scm.SCM) *scm.Manager {
	return scm.NewManagerWithClients(map[string]scm.SCM{provider: sc})
}
