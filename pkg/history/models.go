package history

import "time"

// Run is one recorded ingestion run.
type Run struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Commit    string    `gorm:"not null" json:"commit"`
	Branch    string    `gorm:"not null" json:"branch"`
	Files     int       `json:"files"`
	Skipped   int       `json:"skipped"`
	Records   int       `json:"records"`
	Lines     int       `json:"lines"`
	CreatedAt time.Time `json:"created_at"`
}

// Benchmark is one normalized benchmark record belonging to a run.
type Benchmark struct {
	ID    uint `gorm:"primaryKey" json:"id"`
	RunID uint `gorm:"index;not null" json:"run_id"`

	TestName   string `gorm:"not null" json:"test_name"`
	ClassName  string `gorm:"not null" json:"class_name"`
	MethodName string `gorm:"not null" json:"method_name"`

	MinTimeNs    int64 `json:"min_time_ns"`
	MedianTimeNs int64 `json:"median_time_ns"`
	MaxTimeNs    int64 `json:"max_time_ns"`

	MinAllocationCount    int64 `json:"min_allocation_count"`
	MedianAllocationCount int64 `json:"median_allocation_count"`
	MaxAllocationCount    int64 `json:"max_allocation_count"`

	Iterations int64 `json:"iterations"`

	Device string `json:"device"`
	Brand  string `json:"brand"`
}
