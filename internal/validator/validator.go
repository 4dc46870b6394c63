package validator

import "coverscan/internal/appform"

// IssueType identifies one consistency condition.
type IssueType string

const (
	IssueOrphanedDeductible     IssueType = "orphaned_deductible"
	IssueOrphanedLienholder     IssueType = "orphaned_lienholder"
	IssueOrphanedAccidentDriver IssueType = "orphaned_accident_driver"
	IssueOrphanedTicketDriver   IssueType = "orphaned_ticket_driver"
	IssueMissingDeductible      IssueType = "missing_deductible"
)

// Issue is one audit finding, shaped for display.
type Issue struct {
	Type       IssueType `json:"type"`
	ItemID     string    `json:"item_id"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion"`
}

// Checker is the interface for a single built-in consistency rule. Checkers
// read the snapshot and never modify it.
type Checker interface {
	Key() string
	Check(state *appform.Collections) []Issue
}
