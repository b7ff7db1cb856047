package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gradehub/gradehub-api/internal/models"
	"github.com/gradehub/gradehub-api/internal/repository"
)

type submissionFixture struct {
	svc        SubmissionService
	db         *gorm.DB
	course     models.Course
	assignment models.Assignment
	groupLab   models.Assignment
}

// newSubmissionFixture seeds a course with a teacher (user 1), two students
// (users 2 and 3), a solo assignment, and a group lab.
func newSubmissionFixture(t *testing.T) *submissionFixture {
	t.Helper()
	db := setupTestDB(t)

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssignmentRepository(db),
		repository.NewGroupRepository(db),
		repository.NewUserRepository(db),
		testLogger(),
	)

	course := models.Course{Name: "Distributed Systems", Code: "DAT520", Year: 2026, Provider: "gitlab", DirectoryID: 42}
	require.NoError(t, db.Create(&course).Error)

	for id, status := range map[uint]string{
		1: models.EnrollmentTeacher,
		2: models.EnrollmentStudent,
		3: models.EnrollmentStudent,
	} {
		require.NoError(t, db.Create(&models.Enrollment{UserID: id, CourseID: course.ID, Status: status}).Error)
	}

	assignment := models.Assignment{CourseID: course.ID, Name: "lab1", Language: "go", Order: 1, Deadline: "2026-09-14T12:00:00Z"}
	require.NoError(t, db.Create(&assignment).Error)
	groupLab := models.Assignment{CourseID: course.ID, Name: "lab2", Language: "go", Order: 2, Deadline: "2026-10-01T12:00:00Z", IsGroupLab: true}
	require.NoError(t, db.Create(&groupLab).Error)

	return &submissionFixture{svc: svc, db: db, course: course, assignment: assignment, groupLab: groupLab}
}

func TestSubmissionServiceListScopesToOwner(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	for _, userID := range []uint{2, 3} {
		require.NoError(t, f.db.Create(&models.Submission{
			AssignmentID: f.assignment.ID, UserID: userID, Score: 70,
		}).Error)
	}

	// a student sees only their own submission
	mine, err := f.svc.ListForAssignment(ctx, f.course.ID, f.assignment.ID, Actor{ID: 2})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.EqualValues(t, 2, mine[0].UserID)

	// the teacher sees both
	all, err := f.svc.ListForAssignment(ctx, f.course.ID, f.assignment.ID, Actor{ID: 1})
	require.NoError(t, err)
	require.Len(t, all, 2)

	// an outsider sees nothing
	_, err = f.svc.ListForAssignment(ctx, f.course.ID, f.assignment.ID, Actor{ID: 9})
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestSubmissionServiceListGroupLab(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	group := models.Group{Name: "Team Raft", CourseID: f.course.ID, Status: models.GroupApproved,
		Users: []models.User{{ID: 2, Login: "alice"}, {ID: 3, Login: "bob"}}}
	require.NoError(t, f.db.Create(&group).Error)

	groupID := group.ID
	require.NoError(t, f.db.Create(&models.Submission{
		AssignmentID: f.groupLab.ID, GroupID: &groupID, Score: 95,
	}).Error)

	listed, err := f.svc.ListForAssignment(ctx, f.course.ID, f.groupLab.ID, Actor{ID: 3})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	// an enrolled student without a group gets an empty list, not an error
	require.NoError(t, f.db.Create(&models.Enrollment{UserID: 4, CourseID: f.course.ID, Status: models.EnrollmentStudent}).Error)
	listed, err = f.svc.ListForAssignment(ctx, f.course.ID, f.groupLab.ID, Actor{ID: 4})
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestSubmissionServiceGetAuthorization(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	submission := models.Submission{AssignmentID: f.assignment.ID, UserID: 2, Score: 70}
	require.NoError(t, f.db.Create(&submission).Error)

	_, err := f.svc.Get(ctx, submission.ID, Actor{ID: 2})
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, submission.ID, Actor{ID: 1})
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, submission.ID, Actor{ID: 3})
	require.ErrorIs(t, err, ErrPermissionDenied)

	_, err = f.svc.Get(ctx, 9999, Actor{ID: 1})
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestSubmissionServiceApprove(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	submission := models.Submission{AssignmentID: f.assignment.ID, UserID: 2, Score: 90}
	require.NoError(t, f.db.Create(&submission).Error)

	_, err := f.svc.Approve(ctx, submission.ID, Actor{ID: 2})
	require.ErrorIs(t, err, ErrPermissionDenied)

	approved, err := f.svc.Approve(ctx, submission.ID, Actor{ID: 1})
	require.NoError(t, err)
	require.True(t, approved.Approved)

	var stored models.Submission
	require.NoError(t, f.db.First(&stored, submission.ID).Error)
	require.True(t, stored.Approved)
}
