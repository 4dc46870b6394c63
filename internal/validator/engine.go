package validator

import "coverscan/internal/appform"

// Engine runs every registered checker over a state snapshot. Checking is
// read-only and independent of synchronization, so callers can audit a
// record without mutating it.
type Engine struct {
	registry *Registry
}

// NewEngine creates an engine over the given registry.
func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// Check audits the snapshot and returns the findings in checker order. The
// result is never nil.
func (e *Engine) Check(state *appform.Collections) []Issue {
	issues := make([]Issue, 0, 4)
	for _, c := range e.registry.All() {
		issues = append(issues, c.Check(state)...)
	}
	return issues
}

// Summary aggregates findings for list views.
type Summary struct {
	Total  int               `json:"total"`
	ByType map[IssueType]int `json:"by_type"`
}

// Summarize counts issues per type.
func Summarize(issues []Issue) Summary {
	s := Summary{Total: len(issues), ByType: make(map[IssueType]int)}
	for _, issue := range issues {
		s.ByType[issue.Type]++
	}
	return s
}
