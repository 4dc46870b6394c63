package merge

import "coverscan/internal/appform"

// Merge folds per-page partial records, in page order, into one canonical
// record starting from the all-empty default. Page order matters: scalar
// ties keep the value from the earlier page. Nil partials are skipped.
func Merge(partials []*appform.Record) *appform.Record {
	out := appform.NewRecord()
	for _, p := range partials {
		if p == nil {
			continue
		}
		mergeSections(out, p)
		mergeCollections(&out.Collections, &p.Collections)
	}
	return out
}

func mergeSections(dst, src *appform.Record) {
	ds, ss := dst.Sections(), src.Sections()
	for i := range ds {
		df, sf := ds[i].Fields(), ss[i].Fields()
		for j := range df {
			*df[j] = mergeField(*df[j], *sf[j])
		}
		db, sb := ds[i].BoolFields(), ss[i].BoolFields()
		for j := range db {
			*db[j] = mergeBoolField(*db[j], *sb[j])
		}
	}
}

// mergeField applies the scalar replacement rule: a null incoming value
// never participates; a flagged or null existing field always yields;
// otherwise strictly higher confidence wins and a tie keeps the existing
// value.
func mergeField(existing, incoming appform.Field) appform.Field {
	if incoming.Value == nil {
		return existing
	}
	if shouldReplace(existing.Flagged, existing.Value == nil, existing.Confidence, incoming.Confidence) {
		return incoming
	}
	return existing
}

// mergeBoolField applies the same rule to the boolean field variant.
func mergeBoolField(existing, incoming appform.BoolField) appform.BoolField {
	if incoming.Value == nil {
		return existing
	}
	if shouldReplace(existing.Flagged, existing.Value == nil, existing.Confidence, incoming.Confidence) {
		return incoming
	}
	return existing
}

func shouldReplace(existingFlagged, existingNull bool, existing, incoming appform.Confidence) bool {
	if existingFlagged || existingNull {
		return true
	}
	return incoming.Rank() > existing.Rank()
}

// mergeCollections appends incoming items unless an already-kept item has
// the same identity key. A matching item is dropped whole; duplicate items
// are never merged field by field.
func mergeCollections(dst, src *appform.Collections) {
	dst.Vehicles = mergeVehicles(dst.Vehicles, src.Vehicles)
	dst.Drivers = mergeDrivers(dst.Drivers, src.Drivers)
	dst.Deductibles = mergeDeductibles(dst.Deductibles, src.Deductibles)
	dst.Lienholders = mergeLienholders(dst.Lienholders, src.Lienholders)
	dst.Accidents = mergeAccidents(dst.Accidents, src.Accidents)
	dst.Tickets = mergeTickets(dst.Tickets, src.Tickets)
	dst.Claims = append(dst.Claims, src.Claims...)
	dst.ScheduledItems = append(dst.ScheduledItems, src.ScheduledItems...)
}

// mergeVehicles keys vehicles by VIN; a vehicle without a VIN is never a
// duplicate.
func mergeVehicles(existing, incoming []appform.Vehicle) []appform.Vehicle {
	for _, in := range incoming {
		if in.Vin.Value != nil && vinSeen(existing, *in.Vin.Value) {
			continue
		}
		existing = append(existing, in)
	}
	return existing
}

func vinSeen(vs []appform.Vehicle, vin string) bool {
	for i := range vs {
		if vs[i].Vin.Value != nil && *vs[i].Vin.Value == vin {
			return true
		}
	}
	return false
}

// mergeDrivers keys drivers by license number.
func mergeDrivers(existing, incoming []appform.Driver) []appform.Driver {
	for _, in := range incoming {
		if in.LicenseNumber.Value != nil && licenseSeen(existing, *in.LicenseNumber.Value) {
			continue
		}
		existing = append(existing, in)
	}
	return existing
}

func licenseSeen(ds []appform.Driver, license string) bool {
	for i := range ds {
		if ds[i].LicenseNumber.Value != nil && *ds[i].LicenseNumber.Value == license {
			return true
		}
	}
	return false
}

// mergeDeductibles keys deductibles by the vehicle they reference.
func mergeDeductibles(existing, incoming []appform.Deductible) []appform.Deductible {
	for _, in := range incoming {
		if in.VehicleRef.Value != nil && deductibleRefSeen(existing, *in.VehicleRef.Value) {
			continue
		}
		existing = append(existing, in)
	}
	return existing
}

func deductibleRefSeen(ds []appform.Deductible, ref string) bool {
	for i := range ds {
		if ds[i].VehicleRef.Value != nil && *ds[i].VehicleRef.Value == ref {
			return true
		}
	}
	return false
}

// mergeLienholders keys lienholders by the vehicle they reference.
func mergeLienholders(existing, incoming []appform.Lienholder) []appform.Lienholder {
	for _, in := range incoming {
		if in.VehicleRef.Value != nil && lienholderRefSeen(existing, *in.VehicleRef.Value) {
			continue
		}
		existing = append(existing, in)
	}
	return existing
}

func lienholderRefSeen(ls []appform.Lienholder, ref string) bool {
	for i := range ls {
		if ls[i].VehicleRef.Value != nil && *ls[i].VehicleRef.Value == ref {
			return true
		}
	}
	return false
}

// mergeAccidents keys accidents by the (date, driver name) pair. An
// accident without a date is never a duplicate.
func mergeAccidents(existing, incoming []appform.Accident) []appform.Accident {
	for _, in := range incoming {
		if in.Date.Value != nil && accidentSeen(existing, *in.Date.Value, in.DriverName.Value) {
			continue
		}
		existing = append(existing, in)
	}
	return existing
}

func accidentSeen(as []appform.Accident, date string, driverName *string) bool {
	for i := range as {
		if as[i].Date.Value != nil && *as[i].Date.Value == date && strPtrEq(as[i].DriverName.Value, driverName) {
			return true
		}
	}
	return false
}

// mergeTickets keys tickets by the (date, driver name) pair, like
// accidents.
func mergeTickets(existing, incoming []appform.Ticket) []appform.Ticket {
	for _, in := range incoming {
		if in.Date.Value != nil && ticketSeen(existing, *in.Date.Value, in.DriverName.Value) {
			continue
		}
		existing = append(existing, in)
	}
	return existing
}

func ticketSeen(ts []appform.Ticket, date string, driverName *string) bool {
	for i := range ts {
		if ts[i].Date.Value != nil && *ts[i].Date.Value == date && strPtrEq(ts[i].DriverName.Value, driverName) {
			return true
		}
	}
	return false
}

func strPtrEq(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
