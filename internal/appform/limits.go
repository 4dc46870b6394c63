package appform

// Limits bounds one collection's size. Minimums are satisfied by padding at
// the container level; synchronization itself never grows or shrinks a
// collection to meet cardinality.
type Limits struct {
	Min int
	Max int
}

// CollectionLimits declares the caller-chosen cardinality per collection.
type CollectionLimits map[CollectionName]Limits

// DefaultLimits returns the cardinalities the intake forms are printed
// with.
func DefaultLimits() CollectionLimits {
	return CollectionLimits{
		ColVehicles:       {Min: 1, Max: 6},
		ColDrivers:        {Min: 0, Max: 8},
		ColDeductibles:    {Min: 0, Max: 6},
		ColLienholders:    {Min: 0, Max: 6},
		ColAccidents:      {Min: 0, Max: 20},
		ColTickets:        {Min: 0, Max: 20},
		ColClaims:         {Min: 0, Max: 10},
		ColScheduledItems: {Min: 0, Max: 15},
	}
}

// PadToMin appends default entities until every collection reaches its
// declared minimum and returns the ids it added.
func PadToMin(c *Collections, limits CollectionLimits) []string {
	var added []string
	for _, name := range AllCollections {
		min := limits[name].Min
		for c.Len(name) < min {
			added = append(added, c.Append(name))
		}
	}
	return added
}
