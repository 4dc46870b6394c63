package validator

import (
	"fmt"
	"strings"

	"coverscan/internal/appform"
)

// checker is the built-in rule shape: a key plus a check closure.
type checker struct {
	key   string
	check func(state *appform.Collections) []Issue
}

func (c *checker) Key() string { return c.key }

func (c *checker) Check(state *appform.Collections) []Issue { return c.check(state) }

// BuiltinCheckers returns the consistency rules in audit order.
func BuiltinCheckers() []Checker {
	return []Checker{
		&checker{key: string(IssueOrphanedDeductible), check: checkOrphanedDeductibles},
		&checker{key: string(IssueOrphanedLienholder), check: checkOrphanedLienholders},
		&checker{key: string(IssueOrphanedAccidentDriver), check: checkOrphanedAccidentDrivers},
		&checker{key: string(IssueOrphanedTicketDriver), check: checkOrphanedTicketDrivers},
		&checker{key: string(IssueMissingDeductible), check: checkMissingDeductibles},
	}
}

func checkOrphanedDeductibles(state *appform.Collections) []Issue {
	var issues []Issue
	for i := range state.Deductibles {
		d := &state.Deductibles[i]
		ref := d.VehicleRef.Value
		if ref == nil || state.FindVehicle(*ref) != nil {
			continue
		}
		issues = append(issues, Issue{
			Type:       IssueOrphanedDeductible,
			ItemID:     d.ID,
			Message:    fmt.Sprintf("Deductible references vehicle %q, which is not on the application", *ref),
			Suggestion: "Relink the deductible to an existing vehicle or remove it",
		})
	}
	return issues
}

func checkOrphanedLienholders(state *appform.Collections) []Issue {
	var issues []Issue
	for i := range state.Lienholders {
		l := &state.Lienholders[i]
		ref := l.VehicleRef.Value
		if ref == nil || state.FindVehicle(*ref) != nil {
			continue
		}
		issues = append(issues, Issue{
			Type:       IssueOrphanedLienholder,
			ItemID:     l.ID,
			Message:    fmt.Sprintf("Lienholder %s references vehicle %q, which is not on the application", l.Name.ValueOr("(unnamed)"), *ref),
			Suggestion: "Relink the lienholder to an existing vehicle or remove it",
		})
	}
	return issues
}

func checkOrphanedAccidentDrivers(state *appform.Collections) []Issue {
	var issues []Issue
	for i := range state.Accidents {
		a := &state.Accidents[i]
		t := appform.ParseRef(a.DriverRef.Value)
		if !t.IsEntity() || state.FindDriver(t.ID) != nil {
			continue
		}
		issues = append(issues, Issue{
			Type:       IssueOrphanedAccidentDriver,
			ItemID:     a.ID,
			Message:    fmt.Sprintf("Accident on %s references driver %q, who is not listed", a.Date.ValueOr("unknown date"), t.ID),
			Suggestion: "Relink the accident to a listed driver or clear the reference",
		})
	}
	return issues
}

func checkOrphanedTicketDrivers(state *appform.Collections) []Issue {
	var issues []Issue
	for i := range state.Tickets {
		tk := &state.Tickets[i]
		t := appform.ParseRef(tk.DriverRef.Value)
		if !t.IsEntity() || state.FindDriver(t.ID) != nil {
			continue
		}
		issues = append(issues, Issue{
			Type:       IssueOrphanedTicketDriver,
			ItemID:     tk.ID,
			Message:    fmt.Sprintf("Ticket on %s references driver %q, who is not listed", tk.Date.ValueOr("unknown date"), t.ID),
			Suggestion: "Relink the ticket to a listed driver or clear the reference",
		})
	}
	return issues
}

func checkMissingDeductibles(state *appform.Collections) []Issue {
	covered := make(map[string]bool, len(state.Deductibles))
	for i := range state.Deductibles {
		if v := state.Deductibles[i].VehicleRef.Value; v != nil {
			covered[*v] = true
		}
	}

	var issues []Issue
	for i := range state.Vehicles {
		v := &state.Vehicles[i]
		if covered[v.ID] {
			continue
		}
		issues = append(issues, Issue{
			Type:       IssueMissingDeductible,
			ItemID:     v.ID,
			Message:    fmt.Sprintf("%s has no deductible entry", vehicleLabel(v)),
			Suggestion: "Add a deductible for this vehicle or rerun synchronization with auto-create enabled",
		})
	}
	return issues
}

func vehicleLabel(v *appform.Vehicle) string {
	parts := make([]string, 0, 3)
	for _, f := range []appform.Field{v.Year, v.Make, v.Model} {
		if f.Value != nil && *f.Value != "" {
			parts = append(parts, *f.Value)
		}
	}
	if len(parts) == 0 {
		return "Vehicle"
	}
	return "Vehicle " + strings.Join(parts, " ")
}
