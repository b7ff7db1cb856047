package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gradehub/gradehub-api/internal/dto"
	"github.com/gradehub/gradehub-api/internal/models"
	"github.com/gradehub/gradehub-api/internal/repository"
	"github.com/gradehub/gradehub-api/pkg/scm"
)

type groupFixture struct {
	svc    GroupService
	db     *gorm.DB
	scm    *fakeSCM
	course models.Course
}

// newGroupFixture seeds a course with a teacher (user 1) and two enrolled
// students (users 2 and 3).
func newGroupFixture(t *testing.T) *groupFixture {
	t.Helper()
	db := setupTestDB(t)
	sc := newFakeSCM()
	dir := sc.addDirectory("dat520-2026")

	svc := NewGroupService(
		repository.NewGroupRepository(db),
		repository.NewCourseRepository(db),
		repository.NewUserRepository(db),
		managerWith(scm.ProviderGitLab, sc),
		testValidator(),
		testLogger(),
	)

	course := models.Course{
		Name:          "Distributed Systems",
		Code:          "DAT520",
		Year:          2026,
		Provider:      scm.ProviderGitLab,
		DirectoryID:   dir.ID,
		DirectoryPath: dir.Path,
	}
	require.NoError(t, db.Create(&course).Error)

	for id, status := range map[uint]string{
		1: models.EnrollmentTeacher,
		2: models.EnrollmentStudent,
		3: models.EnrollmentStudent,
	} {
		require.NoError(t, db.Create(&models.User{
			ID:    id,
			Login: map[uint]string{1: "teacher", 2: "alice", 3: "bob"}[id],
		}).Error)
		require.NoError(t, db.Create(&models.Enrollment{
			UserID: id, CourseID: course.ID, Status: status,
		}).Error)
	}

	return &groupFixture{svc: svc, db: db, scm: sc, course: course}
}

func TestGroupServiceCreatePendingGroup(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	group, err := f.svc.Create(ctx, dto.GroupCreateRequest{
		Name:     "Team Raft",
		CourseID: f.course.ID,
		UserIDs:  []uint{2, 3},
	}, Actor{ID: 2})
	require.NoError(t, err)
	require.Equal(t, models.GroupPending, group.Status)
	require.Len(t, group.Users, 2)
}

func TestGroupServiceCreateRejectsNonMembers(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	// user 9 has no enrollment at all
	_, err := f.svc.Create(ctx, dto.GroupCreateRequest{
		Name:     "Team Ghost",
		CourseID: f.course.ID,
		UserIDs:  []uint{2, 9},
	}, Actor{ID: 2})
	require.ErrorIs(t, err, ErrUserNotEnrolled)

	// a pending enrollment is not membership
	require.NoError(t, f.db.Create(&models.User{ID: 4, Login: "carol"}).Error)
	require.NoError(t, f.db.Create(&models.Enrollment{
		UserID: 4, CourseID: f.course.ID, Status: models.EnrollmentPending,
	}).Error)
	_, err = f.svc.Create(ctx, dto.GroupCreateRequest{
		Name:     "Team Pending",
		CourseID: f.course.ID,
		UserIDs:  []uint{2, 4},
	}, Actor{ID: 2})
	require.ErrorIs(t, err, ErrUserNotEnrolled)
}

func TestGroupServiceCreateRejectsDoubleMembership(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, dto.GroupCreateRequest{
		Name:     "Team One",
		CourseID: f.course.ID,
		UserIDs:  []uint{2},
	}, Actor{ID: 2})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, dto.GroupCreateRequest{
		Name:     "Team Two",
		CourseID: f.course.ID,
		UserIDs:  []uint{2, 3},
	}, Actor{ID: 3})
	require.ErrorIs(t, err, ErrUserAlreadyGrouped)
}

func TestGroupServiceCreateRejectsOutsider(t *testing.T) {
	f := newGroupFixture(t)

	// a student cannot form a group they are not part of
	_, err := f.svc.Create(context.Background(), dto.GroupCreateRequest{
		Name:     "Team Other",
		CourseID: f.course.ID,
		UserIDs:  []uint{3},
	}, Actor{ID: 2})
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestGroupServiceApproveProvisionsRepository(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	group, err := f.svc.Create(ctx, dto.GroupCreateRequest{
		Name:     "Team Raft",
		CourseID: f.course.ID,
		UserIDs:  []uint{2, 3},
	}, Actor{ID: 2})
	require.NoError(t, err)

	// students cannot approve their own group
	_, err = f.svc.Approve(ctx, group.ID, Actor{ID: 2})
	require.ErrorIs(t, err, ErrPermissionDenied)

	approved, err := f.svc.Approve(ctx, group.ID, Actor{ID: 1})
	require.NoError(t, err)
	require.Equal(t, models.GroupApproved, approved.Status)

	// the remote repository exists and its mirror references the group
	remote := f.scm.repos[f.course.DirectoryID]
	require.Len(t, remote, 1)
	require.Equal(t, "team-raft", remote[0].Path)

	var mirror models.Repository
	require.NoError(t, f.db.Where("group_id = ?", group.ID).First(&mirror).Error)
	require.Equal(t, models.RepoGroup, mirror.Type)
	require.Equal(t, remote[0].ID, mirror.RemoteID)

	_, err = f.svc.Approve(ctx, group.ID, Actor{ID: 1})
	require.ErrorIs(t, err, ErrGroupAlreadyApproved)
}

func TestGroupServiceApproveFailureKeepsGroupPending(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	group, err := f.svc.Create(ctx, dto.GroupCreateRequest{
		Name:     "Team Paxos",
		CourseID: f.course.ID,
		UserIDs:  []uint{2},
	}, Actor{ID: 2})
	require.NoError(t, err)

	f.scm.mu.Lock()
	f.scm.createRepoFailures = 1
	f.scm.mu.Unlock()

	_, err = f.svc.Approve(ctx, group.ID, Actor{ID: 1})
	require.Error(t, err)

	current, err := f.svc.Get(ctx, group.ID)
	require.NoError(t, err)
	require.Equal(t, models.GroupPending, current.Status)

	// approval succeeds once the provider recovers
	approved, err := f.svc.Approve(ctx, group.ID, Actor{ID: 1})
	require.NoError(t, err)
	require.Equal(t, models.GroupApproved, approved.Status)
}

func TestGroupServiceUpdateMembership(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	group, err := f.svc.Create(ctx, dto.GroupCreateRequest{
		Name:     "Team Raft",
		CourseID: f.course.ID,
		UserIDs:  []uint{2, 3},
	}, Actor{ID: 2})
	require.NoError(t, err)

	name := "Team Consensus"
	_, err = f.svc.Update(ctx, group.ID, dto.GroupUpdateRequest{Name: &name}, Actor{ID: 2})
	require.ErrorIs(t, err, ErrPermissionDenied)

	updated, err := f.svc.Update(ctx, group.ID, dto.GroupUpdateRequest{
		Name:    &name,
		UserIDs: []uint{2},
	}, Actor{ID: 1})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)
	require.Len(t, updated.Users, 1)
}

func TestGroupServiceDelete(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	group, err := f.svc.Create(ctx, dto.GroupCreateRequest{
		Name:     "Team Raft",
		CourseID: f.course.ID,
		UserIDs:  []uint{2},
	}, Actor{ID: 2})
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.Delete(ctx, group.ID, Actor{ID: 2}), ErrPermissionDenied)
	require.NoError(t, f.svc.Delete(ctx, group.ID, Actor{ID: 1}))

	_, err = f.svc.Get(ctx, group.ID)
	require.ErrorIs(t, err, ErrGroupNotFound)

	require.ErrorIs(t, f.svc.Delete(ctx, 9999, Actor{ID: 1}), ErrGroupNotFound)
}
