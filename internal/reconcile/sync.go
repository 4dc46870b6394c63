// Package reconcile keeps a record's collections consistent as entities are
// added, duplicated, and removed. Every operation takes a snapshot and
// returns a new one together with a change report; input state is never
// mutated.
package reconcile

import (
	"fmt"

	"coverscan/internal/appform"
)

// Options toggles the individual reconciliation steps.
type Options struct {
	AutoCreateDeductibles     bool `json:"auto_create_deductibles"`
	RemoveOrphanedDeductibles bool `json:"remove_orphaned_deductibles"`
	RemoveOrphanedLienholders bool `json:"remove_orphaned_lienholders"`
	ClearOrphanedDriverRefs   bool `json:"clear_orphaned_driver_refs"`
}

// DefaultOptions is the posture the editing surface runs with: dependents
// are created eagerly, orphans are kept but reported, dangling driver
// references are cleared.
func DefaultOptions() Options {
	return Options{
		AutoCreateDeductibles:   true,
		ClearOrphanedDriverRefs: true,
	}
}

// Changes records what a Synchronize pass did.
type Changes struct {
	AddedDeductibles   []string `json:"added_deductibles,omitempty"`
	RemovedDeductibles []string `json:"removed_deductibles,omitempty"`
	RemovedLienholders []string `json:"removed_lienholders,omitempty"`
	ClearedDriverRefs  []string `json:"cleared_driver_refs,omitempty"`
}

// Empty reports whether the pass changed nothing.
func (c Changes) Empty() bool {
	return len(c.AddedDeductibles) == 0 &&
		len(c.RemovedDeductibles) == 0 &&
		len(c.RemovedLienholders) == 0 &&
		len(c.ClearedDriverRefs) == 0
}

// Result is the outcome of one Synchronize pass.
type Result struct {
	State    appform.Collections `json:"state"`
	Changes  Changes             `json:"changes"`
	Warnings []string            `json:"warnings"`
}

// Synchronize reconciles the collections after a mutation. The steps run in
// a fixed order: auto-create missing deductibles, remove orphaned
// deductibles and lienholders, clear dangling driver references, then count
// the orphans that remain into warnings. Running the result through
// Synchronize again with the same options yields empty changes and the same
// warnings. Collections a step does not touch are carried through by
// reference; touched ones are rebuilt, so the input is never written.
func Synchronize(state appform.Collections, opts Options) Result {
	out := state
	var ch Changes

	vehicleIDs := make(map[string]bool, len(out.Vehicles))
	for i := range out.Vehicles {
		vehicleIDs[out.Vehicles[i].ID] = true
	}

	if opts.AutoCreateDeductibles {
		out.Deductibles, ch.AddedDeductibles = autoCreateDeductibles(out.Vehicles, out.Deductibles)
	}

	if opts.RemoveOrphanedDeductibles {
		out.Deductibles, ch.RemovedDeductibles = dropOrphanedDeductibles(out.Deductibles, vehicleIDs)
	}
	if opts.RemoveOrphanedLienholders {
		out.Lienholders, ch.RemovedLienholders = dropOrphanedLienholders(out.Lienholders, vehicleIDs)
	}

	if opts.ClearOrphanedDriverRefs {
		driverIDs := make(map[string]bool, len(out.Drivers))
		for i := range out.Drivers {
			driverIDs[out.Drivers[i].ID] = true
		}
		var clearedAccidents, clearedTickets []string
		out.Accidents, clearedAccidents = clearAccidentRefs(out.Accidents, driverIDs)
		out.Tickets, clearedTickets = clearTicketRefs(out.Tickets, driverIDs)
		ch.ClearedDriverRefs = append(clearedAccidents, clearedTickets...)
	}

	var warnings []string
	if n := countOrphanedDeductibles(out.Deductibles, vehicleIDs); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d deductible(s) reference non-existent vehicles", n))
	}
	if n := countOrphanedLienholders(out.Lienholders, vehicleIDs); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d lienholder(s) reference non-existent vehicles", n))
	}

	return Result{State: out, Changes: ch, Warnings: warnings}
}

// autoCreateDeductibles synthesizes a default deductible for every vehicle
// that none references yet. Added items go on a fresh backing array so the
// input slice is untouched.
func autoCreateDeductibles(vehicles []appform.Vehicle, deductibles []appform.Deductible) ([]appform.Deductible, []string) {
	covered := make(map[string]bool, len(deductibles))
	for i := range deductibles {
		if v := deductibles[i].VehicleRef.Value; v != nil {
			covered[*v] = true
		}
	}

	var created []appform.Deductible
	var ids []string
	for i := range vehicles {
		if covered[vehicles[i].ID] {
			continue
		}
		d := appform.NewDeductibleForVehicle(vehicles[i].ID)
		created = append(created, d)
		ids = append(ids, d.ID)
	}
	if len(created) == 0 {
		return deductibles, nil
	}

	out := make([]appform.Deductible, 0, len(deductibles)+len(created))
	out = append(out, deductibles...)
	return append(out, created...), ids
}

func dropOrphanedDeductibles(deductibles []appform.Deductible, vehicleIDs map[string]bool) ([]appform.Deductible, []string) {
	var removed []string
	kept := make([]appform.Deductible, 0, len(deductibles))
	for i := range deductibles {
		if orphanedVehicleRef(deductibles[i].VehicleRef, vehicleIDs) {
			removed = append(removed, deductibles[i].ID)
			continue
		}
		kept = append(kept, deductibles[i])
	}
	if len(removed) == 0 {
		return deductibles, nil
	}
	return kept, removed
}

func dropOrphanedLienholders(lienholders []appform.Lienholder, vehicleIDs map[string]bool) ([]appform.Lienholder, []string) {
	var removed []string
	kept := make([]appform.Lienholder, 0, len(lienholders))
	for i := range lienholders {
		if orphanedVehicleRef(lienholders[i].VehicleRef, vehicleIDs) {
			removed = append(removed, lienholders[i].ID)
			continue
		}
		kept = append(kept, lienholders[i])
	}
	if len(removed) == 0 {
		return lienholders, nil
	}
	return kept, removed
}

// clearAccidentRefs nulls and flags driver references that point at a
// driver id no longer present. The accident records themselves stay.
func clearAccidentRefs(accidents []appform.Accident, driverIDs map[string]bool) ([]appform.Accident, []string) {
	var cleared []string
	out := make([]appform.Accident, len(accidents))
	copy(out, accidents)
	for i := range out {
		if !danglingDriverRef(out[i].DriverRef, driverIDs) {
			continue
		}
		out[i].DriverRef = out[i].DriverRef.Cleared()
		cleared = append(cleared, out[i].ID)
	}
	if len(cleared) == 0 {
		return accidents, nil
	}
	return out, cleared
}

func clearTicketRefs(tickets []appform.Ticket, driverIDs map[string]bool) ([]appform.Ticket, []string) {
	var cleared []string
	out := make([]appform.Ticket, len(tickets))
	copy(out, tickets)
	for i := range out {
		if !danglingDriverRef(out[i].DriverRef, driverIDs) {
			continue
		}
		out[i].DriverRef = out[i].DriverRef.Cleared()
		cleared = append(cleared, out[i].ID)
	}
	if len(cleared) == 0 {
		return tickets, nil
	}
	return out, cleared
}

// orphanedVehicleRef reports a non-null reference to an unknown vehicle.
// Vehicle references have no sentinels.
func orphanedVehicleRef(ref appform.Field, vehicleIDs map[string]bool) bool {
	return ref.Value != nil && !vehicleIDs[*ref.Value]
}

// danglingDriverRef reports a non-null, non-sentinel reference to an
// unknown driver.
func danglingDriverRef(ref appform.Field, driverIDs map[string]bool) bool {
	t := appform.ParseRef(ref.Value)
	return t.IsEntity() && !driverIDs[t.ID]
}

func countOrphanedDeductibles(deductibles []appform.Deductible, vehicleIDs map[string]bool) int {
	n := 0
	for i := range deductibles {
		if orphanedVehicleRef(deductibles[i].VehicleRef, vehicleIDs) {
			n++
		}
	}
	return n
}

func countOrphanedLienholders(lienholders []appform.Lienholder, vehicleIDs map[string]bool) int {
	n := 0
	for i := range lienholders {
		if orphanedVehicleRef(lienholders[i].VehicleRef, vehicleIDs) {
			n++
		}
	}
	return n
}
