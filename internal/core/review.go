package core

import "time"

// ReviewRun is the persisted summary of one completed review run.
type ReviewRun struct {
	ID             int64
	RepoFullName   string
	PRNumber       int
	HeadSHA        string
	ChangeType     string
	Complexity     string
	RiskScore      int
	FilesReviewed  int
	IssueCount     int
	CriticalCount  int
	HighCount      int
	DurationMillis int64
	Status         string
	CreatedAt      time.Time
}

// Run statuses stored with each ReviewRun record.
const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)
