package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gradehub/gradehub-api/internal/models"
)

func TestRubricRepositoryReplaceSwapsFullRubric(t *testing.T) {
	db := setupTestDB(t, assignmentEntities()...)
	rubrics := NewRubricRepository(db)
	ctx := context.Background()

	assignment := models.Assignment{CourseID: 1, Name: "Lab 1", Language: "go", Deadline: "2024-09-01T23:59:00Z", Order: 1}
	require.NoError(t, db.Create(&assignment).Error)

	old := models.GradingBenchmark{AssignmentID: assignment.ID, Heading: "Old section"}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&models.GradingCriterion{BenchmarkID: old.ID, Description: "old criterion", Points: 10}).Error)

	submission := models.Submission{AssignmentID: assignment.ID, UserID: 5}
	require.NoError(t, db.Create(&submission).Error)
	require.NoError(t, db.Create(&models.Review{SubmissionID: submission.ID, ReviewerID: 2, Score: 7}).Error)

	incoming := []models.GradingBenchmark{
		{Heading: "Correctness", Criteria: []models.GradingCriterion{
			{Description: "passes all tests", Points: 60},
			{Description: "handles edge cases", Points: 20},
		}},
		{Heading: "Style", Criteria: []models.GradingCriterion{
			{Description: "idiomatic code", Points: 20},
		}},
	}

	require.NoError(t, rubrics.Replace(ctx, assignment.ID, incoming))

	var benchmarks []models.GradingBenchmark
	require.NoError(t, db.Where("assignment_id = ?", assignment.ID).Find(&benchmarks).Error)
	require.Len(t, benchmarks, 2, "exactly the new benchmark count must be persisted")

	var criteriaCount int64
	require.NoError(t, db.Model(&models.GradingCriterion{}).Count(&criteriaCount).Error)
	require.Equal(t, int64(3), criteriaCount, "zero leftover criteria from the old rubric")

	var reviewCount int64
	require.NoError(t, db.Model(&models.Review{}).Where("submission_id = ?", submission.ID).Count(&reviewCount).Error)
	require.Equal(t, int64(0), reviewCount, "reviews scored against the old rubric must be removed")

	for _, bm := range incoming {
		require.NotZero(t, bm.ID)
		for _, c := range bm.Criteria {
			require.Equal(t, bm.ID, c.BenchmarkID, "criteria must reference their generated benchmark ID")
		}
	}
}

func TestRubricRepositoryReplaceOnEmptyRubricInsertsOnly(t *testing.T) {
	db := setupTestDB(t, assignmentEntities()...)
	rubrics := NewRubricRepository(db)
	ctx := context.Background()

	assignment := models.Assignment{CourseID: 1, Name: "Lab 1", Language: "go", Deadline: "2024-09-01T23:59:00Z", Order: 1}
	require.NoError(t, db.Create(&assignment).Error)

	// a manual review created before any rubric import exists
	submission := models.Submission{AssignmentID: assignment.ID, UserID: 5}
	require.NoError(t, db.Create(&submission).Error)
	require.NoError(t, db.Create(&models.Review{SubmissionID: submission.ID, ReviewerID: 2, Score: 7}).Error)

	require.NoError(t, rubrics.Replace(ctx, assignment.ID, []models.GradingBenchmark{
		{Heading: "Correctness", Criteria: []models.GradingCriterion{{Description: "works", Points: 100}}},
	}))

	var benchmarks []models.GradingBenchmark
	require.NoError(t, db.Where("assignment_id = ?", assignment.ID).Find(&benchmarks).Error)
	require.Len(t, benchmarks, 1)

	var reviewCount int64
	require.NoError(t, db.Model(&models.Review{}).Where("submission_id = ?", submission.ID).Count(&reviewCount).Error)
	require.Equal(t, int64(1), reviewCount, "a first import must not destroy existing reviews")
}

func TestRubricRepositoryDeleteBenchmarkCascadesCriteria(t *testing.T) {
	db := setupTestDB(t, assignmentEntities()...)
	rubrics := NewRubricRepository(db)
	ctx := context.Background()

	bm := models.GradingBenchmark{AssignmentID: 1, Heading: "Section"}
	require.NoError(t, rubrics.CreateBenchmark(ctx, &bm))
	require.NoError(t, rubrics.CreateCriterion(ctx, &models.GradingCriterion{BenchmarkID: bm.ID, Description: "a"}))

	require.NoError(t, rubrics.DeleteBenchmark(ctx, bm.ID))

	var count int64
	require.NoError(t, db.Model(&models.GradingCriterion{}).Where("benchmark_id = ?", bm.ID).Count(&count).Error)
	require.Equal(t, int64(0), count)
}
