package models

// GradingBenchmark is one section of an assignment's grading rubric,
// imported from the criteria.json file in the tests repository.
type GradingBenchmark struct {
	ID           uint               `gorm:"primaryKey" json:"id"`
	AssignmentID uint               `gorm:"not null;index" json:"assignment_id"`
	Heading      string             `gorm:"size:255;not null" json:"heading"`
	Comment      string             `gorm:"type:text" json:"comment"`
	Criteria     []GradingCriterion `gorm:"foreignKey:BenchmarkID" json:"criteria,omitempty"`
}

// GradingCriterion is a single checkable item under a benchmark.
type GradingCriterion struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	BenchmarkID uint   `gorm:"not null;index" json:"benchmark_id"`
	Description string `gorm:"type:text;not null" json:"description"`
	Points      uint   `json:"points"`
	Comment     string `gorm:"type:text" json:"comment"`
}
