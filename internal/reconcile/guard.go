package reconcile

import (
	"fmt"

	"coverscan/internal/appform"
)

// Warning explains why a removal was refused.
type Warning struct {
	ReferencedID   string               `json:"referenced_id"`
	ReferencedType string               `json:"referenced_type"`
	Dependencies   []appform.Dependency `json:"dependencies"`
	Message        string               `json:"message"`
}

// Check is the outcome of a deletion guard. The guard never removes
// anything; when CanDelete is false the caller chooses to cascade,
// reassign, or abort.
type Check struct {
	CanDelete bool     `json:"can_delete"`
	Warning   *Warning `json:"warning,omitempty"`
}

// CanDeleteVehicle reports whether removing the vehicle would leave
// orphaned deductibles or lienholders behind.
func CanDeleteVehicle(id string, deductibles []appform.Deductible, lienholders []appform.Lienholder) Check {
	deps := appform.VehicleDependencies(id, deductibles, lienholders)
	if len(deps) == 0 {
		return Check{CanDelete: true}
	}
	return Check{Warning: &Warning{
		ReferencedID:   id,
		ReferencedType: "vehicle",
		Dependencies:   deps,
		Message:        fmt.Sprintf("%d item(s) still reference this vehicle; removing it will leave them orphaned", len(deps)),
	}}
}

// CanDeleteDriver reports whether removing the driver would leave accidents
// or tickets with dangling references.
func CanDeleteDriver(id string, accidents []appform.Accident, tickets []appform.Ticket) Check {
	deps := appform.DriverDependencies(id, accidents, tickets)
	if len(deps) == 0 {
		return Check{CanDelete: true}
	}
	return Check{Warning: &Warning{
		ReferencedID:   id,
		ReferencedType: "driver",
		Dependencies:   deps,
		Message:        fmt.Sprintf("%d item(s) still reference this driver; removing it will leave them orphaned", len(deps)),
	}}
}
