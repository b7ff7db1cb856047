package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gradehub/gradehub-api/internal/dto"
	"github.com/gradehub/gradehub-api/internal/models"
	"github.com/gradehub/gradehub-api/internal/repository"
	"github.com/gradehub/gradehub-api/pkg/scm"
)

func newCourseService(t *testing.T, sc *fakeSCM) (CourseService, repository.CourseRepository, repository.UserRepository) {
	t.Helper()
	db := setupTestDB(t)
	courses := repository.NewCourseRepository(db)
	users := repository.NewUserRepository(db)
	svc := NewCourseService(courses, users, managerWith(scm.ProviderGitLab, sc), testValidator(), time.Second, testLogger())
	return svc, courses, users
}

func TestCourseServiceCreateProvisionsDirectoryAndRepositories(t *testing.T) {
	sc := newFakeSCM()
	svc, courses, users := newCourseService(t, sc)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CourseCreateRequest{
		Name:          "Distributed Systems",
		Code:          "DAT520",
		Year:          2026,
		Provider:      scm.ProviderGitLab,
		DirectoryPath: "dat520-2026",
	}, Actor{ID: 1})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, "dat520-2026", created.DirectoryPath)

	// all four base repositories exist remotely and are mirrored locally
	remote := sc.repos[created.DirectoryID]
	require.Len(t, remote, 4)
	for _, repoType := range []string{models.RepoTests, models.RepoInfo, models.RepoAssignments, models.RepoSolutions} {
		mirror, err := courses.GetRepository(ctx, created.ID, repoType)
		require.NoError(t, err, "missing %s mirror", repoType)
		require.Equal(t, created.DirectoryID, mirror.DirectoryID)
	}

	// the creator teaches the new course
	enrollment, err := users.GetEnrollment(ctx, 1, created.ID)
	require.NoError(t, err)
	require.True(t, enrollment.IsTeacher())
}

func TestCourseServiceCreateRollsBackCreatedDirectory(t *testing.T) {
	sc := newFakeSCM()
	svc, _, _ := newCourseService(t, sc)

	origLen := len(sc.directories)

	// directory creation succeeds, repository provisioning does not
	sc.mu.Lock()
	sc.createRepoFailures = 1
	sc.mu.Unlock()

	_, err := svc.Create(context.Background(), dto.CourseCreateRequest{
		Name:          "Operating Systems",
		Code:          "DAT320",
		Year:          2026,
		Provider:      scm.ProviderGitLab,
		DirectoryPath: "dat320-2026",
	}, Actor{ID: 1})
	require.Error(t, err)

	// the directory created for this course was deleted again
	require.Len(t, sc.deletedDirectories, 1)
	require.Len(t, sc.directories, origLen)
}

func TestCourseServiceCreateKeepsPreexistingDirectoryOnFailure(t *testing.T) {
	sc := newFakeSCM()
	dir := sc.addDirectory("algdat-2026")
	svc, _, _ := newCourseService(t, sc)

	sc.mu.Lock()
	sc.createRepoFailures = 1
	sc.mu.Unlock()

	_, err := svc.Create(context.Background(), dto.CourseCreateRequest{
		Name:        "Algorithms",
		Code:        "DAT600",
		Year:        2026,
		Provider:    scm.ProviderGitLab,
		DirectoryID: dir.ID,
	}, Actor{ID: 1})
	require.Error(t, err)

	// a directory this call did not create is never deleted
	require.Empty(t, sc.deletedDirectories)
	_, ok := sc.directories[dir.ID]
	require.True(t, ok)
}

func TestCourseServiceCreateRejectsBoundDirectory(t *testing.T) {
	sc := newFakeSCM()
	dir := sc.addDirectory("inf142-2026")
	svc, _, _ := newCourseService(t, sc)
	ctx := context.Background()

	payload := dto.CourseCreateRequest{
		Name:        "Networks",
		Code:        "INF142",
		Year:        2026,
		Provider:    scm.ProviderGitLab,
		DirectoryID: dir.ID,
	}
	_, err := svc.Create(ctx, payload, Actor{ID: 1})
	require.NoError(t, err)

	_, err = svc.Create(ctx, payload, Actor{ID: 1})
	require.ErrorIs(t, err, ErrCourseAlreadyExists)
}

func TestCourseServiceListOrganizationsFiltersBoundDirectories(t *testing.T) {
	sc := newFakeSCM()
	bound := sc.addDirectory("bound-course")
	free := sc.addDirectory("free-org")
	svc, _, _ := newCourseService(t, sc)
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.CourseCreateRequest{
		Name:        "Bound",
		Code:        "B100",
		Year:        2026,
		Provider:    scm.ProviderGitLab,
		DirectoryID: bound.ID,
	}, Actor{ID: 1})
	require.NoError(t, err)

	orgs, err := svc.ListOrganizations(ctx, scm.ProviderGitLab)
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	require.Equal(t, free.ID, orgs[0].ID)
}

func TestCourseServiceListOrganizationsTimesOut(t *testing.T) {
	sc := newFakeSCM()
	sc.listDelay = 2 * time.Second

	db := setupTestDB(t)
	svc := NewCourseService(
		repository.NewCourseRepository(db),
		repository.NewUserRepository(db),
		managerWith(scm.ProviderGitLab, sc),
		testValidator(),
		20*time.Millisecond,
		testLogger(),
	)

	start := time.Now()
	_, err := svc.ListOrganizations(context.Background(), scm.ProviderGitLab)
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), time.Second)
}

func TestCourseServiceUpdateRequiresTeacher(t *testing.T) {
	sc := newFakeSCM()
	svc, _, users := newCourseService(t, sc)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CourseCreateRequest{
		Name:          "Compilers",
		Code:          "DAT400",
		Year:          2026,
		Provider:      scm.ProviderGitLab,
		DirectoryPath: "dat400-2026",
	}, Actor{ID: 1})
	require.NoError(t, err)

	student := models.Enrollment{UserID: 2, CourseID: created.ID, Status: models.EnrollmentStudent}
	require.NoError(t, users.CreateEnrollment(ctx, &student))

	name := "Compiler Construction"
	_, err = svc.Update(ctx, created.ID, dto.CourseUpdateRequest{Name: &name}, Actor{ID: 2})
	require.ErrorIs(t, err, ErrPermissionDenied)

	updated, err := svc.Update(ctx, created.ID, dto.CourseUpdateRequest{Name: &name}, Actor{ID: 1})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)
}

func TestCourseServiceGetRepositoryVisibility(t *testing.T) {
	sc := newFakeSCM()
	svc, _, _ := newCourseService(t, sc)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CourseCreateRequest{
		Name:          "Algorithms",
		Code:          "DAT600",
		Year:          2026,
		Provider:      scm.ProviderGitLab,
		DirectoryPath: "dat600-2026",
	}, Actor{ID: 1})
	require.NoError(t, err)

	require.NoError(t, svc.CreateEnrollment(ctx, dto.EnrollmentCreateRequest{UserID: 7, CourseID: created.ID}))
	require.NoError(t, svc.UpdateEnrollment(ctx, dto.EnrollmentUpdateRequest{
		UserID: 7, CourseID: created.ID, Status: models.EnrollmentStudent,
	}, Actor{ID: 1}))

	// students reach the assignments repository but not the grading material
	repo, err := svc.GetRepository(ctx, created.ID, models.RepoAssignments, Actor{ID: 7})
	require.NoError(t, err)
	require.Equal(t, models.RepoAssignments, repo.Type)
	require.Equal(t, created.ID, repo.CourseID)

	_, err = svc.GetRepository(ctx, created.ID, models.RepoTests, Actor{ID: 7})
	require.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.GetRepository(ctx, created.ID, models.RepoSolutions, Actor{ID: 7})
	require.ErrorIs(t, err, ErrPermissionDenied)

	// the teacher sees everything
	repo, err = svc.GetRepository(ctx, created.ID, models.RepoTests, Actor{ID: 1})
	require.NoError(t, err)
	require.Equal(t, models.RepoTests, repo.Type)

	// outsiders see nothing at all
	_, err = svc.GetRepository(ctx, created.ID, models.RepoAssignments, Actor{ID: 99})
	require.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.GetRepository(ctx, created.ID, "bogus", Actor{ID: 1})
	require.ErrorIs(t, err, ErrRepositoryNotFound)

	_, err = svc.GetRepository(ctx, 9999, models.RepoAssignments, Actor{ID: 1})
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseServiceEnrollmentLifecycle(t *testing.T) {
	sc := newFakeSCM()
	svc, _, users := newCourseService(t, sc)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CourseCreateRequest{
		Name:          "Databases",
		Code:          "DAT220",
		Year:          2026,
		Provider:      scm.ProviderGitLab,
		DirectoryPath: "dat220-2026",
	}, Actor{ID: 1})
	require.NoError(t, err)

	require.NoError(t, svc.CreateEnrollment(ctx, dto.EnrollmentCreateRequest{UserID: 7, CourseID: created.ID}))

	enrollment, err := users.GetEnrollment(ctx, 7, created.ID)
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentPending, enrollment.Status)
	require.False(t, enrollment.IsMember())

	// only a teacher may accept
	err = svc.UpdateEnrollment(ctx, dto.EnrollmentUpdateRequest{
		UserID: 7, CourseID: created.ID, Status: models.EnrollmentStudent,
	}, Actor{ID: 7})
	require.ErrorIs(t, err, ErrPermissionDenied)

	err = svc.UpdateEnrollment(ctx, dto.EnrollmentUpdateRequest{
		UserID: 7, CourseID: created.ID, Status: models.EnrollmentStudent,
	}, Actor{ID: 1})
	require.NoError(t, err)

	enrollment, err = users.GetEnrollment(ctx, 7, created.ID)
	require.NoError(t, err)
	require.True(t, enrollment.IsMember())
}
