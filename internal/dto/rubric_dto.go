package dto

import "github.com/gradehub/gradehub-api/internal/models"

// BenchmarkImport mirrors one entry of the criteria.json file in the tests
// repository.
type BenchmarkImport struct {
	Heading  string            `json:"heading"`
	Comment  string            `json:"comment"`
	Criteria []CriterionImport `json:"criteria"`
}

// CriterionImport mirrors one criterion entry of the criteria.json file.
type CriterionImport struct {
	Description string `json:"description"`
	Points      uint   `json:"points"`
}

// ToModel converts an imported benchmark into its storage shape.
func (b BenchmarkImport) ToModel() models.GradingBenchmark {
	criteria := make([]models.GradingCriterion, 0, len(b.Criteria))
	for _, c := range b.Criteria {
		criteria = append(criteria, models.GradingCriterion{
			Description: c.Description,
			Points:      c.Points,
		})
	}
	return models.GradingBenchmark{
		Heading:  b.Heading,
		Comment:  b.Comment,
		Criteria: criteria,
	}
}

// BenchmarkCreateRequest creates a single rubric section by hand.
type BenchmarkCreateRequest struct {
	AssignmentID uint   `json:"assignment_id" validate:"required"`
	Heading      string `json:"heading" validate:"required"`
	Comment      string `json:"comment"`
}

// BenchmarkUpdateRequest carries the mutable benchmark fields.
type BenchmarkUpdateRequest struct {
	Heading string `json:"heading" validate:"required"`
	Comment string `json:"comment"`
}

// CriterionCreateRequest creates a single criterion by hand.
type CriterionCreateRequest struct {
	BenchmarkID uint   `json:"benchmark_id" validate:"required"`
	Description string `json:"description" validate:"required"`
	Points      uint   `json:"points"`
}

// CriterionUpdateRequest carries the mutable criterion fields.
type CriterionUpdateRequest struct {
	Description string `json:"description" validate:"required"`
	Points      uint   `json:"points"`
	Comment     string `json:"comment"`
}

// BenchmarkResponse is the externally visible benchmark representation.
type BenchmarkResponse struct {
	ID           uint                `json:"id"`
	AssignmentID uint                `json:"assignment_id"`
	Heading      string              `json:"heading"`
	Comment      string              `json:"comment,omitempty"`
	Criteria     []CriterionResponse `json:"criteria,omitempty"`
}

// CriterionResponse is the externally visible criterion representation.
type CriterionResponse struct {
	ID          uint   `json:"id"`
	BenchmarkID uint   `json:"benchmark_id"`
	Description string `json:"description"`
	Points      uint   `json:"points"`
	Comment     string `json:"comment,omitempty"`
}

// NewBenchmarkResponse maps a benchmark model to its response shape.
func NewBenchmarkResponse(benchmark models.GradingBenchmark) BenchmarkResponse {
	criteria := make([]CriterionResponse, 0, len(benchmark.Criteria))
	for _, c := range benchmark.Criteria {
		criteria = append(criteria, CriterionResponse{
			ID:          c.ID,
			BenchmarkID: c.BenchmarkID,
			Description: c.Description,
			Points:      c.Points,
			Comment:     c.Comment,
		})
	}
	return BenchmarkResponse{
		ID:           benchmark.ID,
		AssignmentID: benchmark.AssignmentID,
		Heading:      benchmark.Heading,
		Comment:      benchmark.Comment,
		Criteria:     criteria,
	}
}

// NewBenchmarkResponseSlice maps a list of benchmarks.
func NewBenchmarkResponseSlice(benchmarks []models.GradingBenchmark) []BenchmarkResponse {
	responses := make([]BenchmarkResponse, 0, len(benchmarks))
	for _, benchmark := range benchmarks {
		responses = append(responses, NewBenchmarkResponse(benchmark))
	}
	return responses
}

// ReviewCreateRequest creates a manual review for a submission.
type ReviewCreateRequest struct {
	SubmissionID uint   `json:"submission_id" validate:"required"`
	Feedback     string `json:"feedback"`
	Score        uint   `json:"score"`
}

// ReviewUpdateRequest carries the mutable review fields.
type ReviewUpdateRequest struct {
	ID       uint   `json:"id" validate:"required"`
	Feedback string `json:"feedback"`
	Score    uint   `json:"score"`
	Ready    bool   `json:"ready"`
}
