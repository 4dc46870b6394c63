package reconcile

import "coverscan/internal/appform"

// ReassignVehicleReferences rewrites every deductible and lienholder
// reference from one vehicle id to another, returning rebuilt slices and
// the number of references updated. Used when duplicating a vehicle so the
// copy takes over the original's dependents. Only the reference value
// changes; confidence, flag, and raw text stay.
func ReassignVehicleReferences(fromID, toID string, deductibles []appform.Deductible, lienholders []appform.Lienholder) ([]appform.Deductible, []appform.Lienholder, int) {
	count := 0

	ds := make([]appform.Deductible, len(deductibles))
	copy(ds, deductibles)
	for i := range ds {
		if ds[i].VehicleRef.ValueOr("") != fromID {
			continue
		}
		ds[i].VehicleRef = retarget(ds[i].VehicleRef, toID)
		count++
	}

	ls := make([]appform.Lienholder, len(lienholders))
	copy(ls, lienholders)
	for i := range ls {
		if ls[i].VehicleRef.ValueOr("") != fromID {
			continue
		}
		ls[i].VehicleRef = retarget(ls[i].VehicleRef, toID)
		count++
	}

	return ds, ls, count
}

// ReassignDriverReferences rewrites accident and ticket driver references
// from one driver id to another. Sentinel references never match an entity
// id and are left alone.
func ReassignDriverReferences(fromID, toID string, accidents []appform.Accident, tickets []appform.Ticket) ([]appform.Accident, []appform.Ticket, int) {
	count := 0

	as := make([]appform.Accident, len(accidents))
	copy(as, accidents)
	for i := range as {
		if !entityRefEquals(as[i].DriverRef, fromID) {
			continue
		}
		as[i].DriverRef = retarget(as[i].DriverRef, toID)
		count++
	}

	ts := make([]appform.Ticket, len(tickets))
	copy(ts, tickets)
	for i := range ts {
		if !entityRefEquals(ts[i].DriverRef, fromID) {
			continue
		}
		ts[i].DriverRef = retarget(ts[i].DriverRef, toID)
		count++
	}

	return as, ts, count
}

func entityRefEquals(ref appform.Field, id string) bool {
	t := appform.ParseRef(ref.Value)
	return t.IsEntity() && t.ID == id
}

func retarget(ref appform.Field, toID string) appform.Field {
	ref.Value = &toID
	return ref
}
