package appform

import "github.com/google/uuid"

// NewRecord returns the all-empty canonical default that a merge starts
// from: every field null at low confidence, every collection empty.
func NewRecord() *Record {
	r := &Record{}
	for _, s := range r.Sections() {
		for _, f := range s.Fields() {
			*f = NewField()
		}
		for _, f := range s.BoolFields() {
			*f = NewBoolField()
		}
	}
	return r
}

// NewVehicle returns a default empty vehicle with a fresh id.
func NewVehicle() Vehicle {
	v := Vehicle{ID: uuid.NewString()}
	initFields(v.FieldMap())
	return v
}

// NewDriver returns a default empty driver with a fresh id.
func NewDriver() Driver {
	d := Driver{ID: uuid.NewString()}
	initFields(d.FieldMap())
	return d
}

// NewDeductible returns a default empty deductible with a fresh id.
func NewDeductible() Deductible {
	d := Deductible{ID: uuid.NewString()}
	initFields(d.FieldMap())
	return d
}

// NewDeductibleForVehicle returns a default deductible already referencing
// the given vehicle. The reference is high confidence: the caller knows
// exactly which vehicle it created the deductible for.
func NewDeductibleForVehicle(vehicleID string) Deductible {
	d := NewDeductible()
	d.VehicleRef = NewFieldWith(vehicleID, ConfidenceHigh)
	return d
}

// NewLienholder returns a default empty lienholder with a fresh id.
func NewLienholder() Lienholder {
	l := Lienholder{ID: uuid.NewString()}
	initFields(l.FieldMap())
	return l
}

// NewAccident returns a default empty accident with a fresh id.
func NewAccident() Accident {
	a := Accident{ID: uuid.NewString()}
	initFields(a.FieldMap())
	return a
}

// NewTicket returns a default empty ticket with a fresh id.
func NewTicket() Ticket {
	t := Ticket{ID: uuid.NewString()}
	initFields(t.FieldMap())
	return t
}

// NewClaim returns a default empty claim with a fresh id.
func NewClaim() Claim {
	c := Claim{ID: uuid.NewString()}
	initFields(c.FieldMap())
	return c
}

// NewScheduledItem returns a default empty scheduled item with a fresh id.
func NewScheduledItem() ScheduledItem {
	s := ScheduledItem{ID: uuid.NewString()}
	initFields(s.FieldMap())
	return s
}

func initFields(fields map[string]*Field) {
	for _, f := range fields {
		*f = NewField()
	}
}

// Append adds a default entity to the named collection and returns its id.
func (c *Collections) Append(name CollectionName) string {
	switch name {
	case ColVehicles:
		v := NewVehicle()
		c.Vehicles = append(c.Vehicles, v)
		return v.ID
	case ColDrivers:
		d := NewDriver()
		c.Drivers = append(c.Drivers, d)
		return d.ID
	case ColDeductibles:
		d := NewDeductible()
		c.Deductibles = append(c.Deductibles, d)
		return d.ID
	case ColLienholders:
		l := NewLienholder()
		c.Lienholders = append(c.Lienholders, l)
		return l.ID
	case ColAccidents:
		a := NewAccident()
		c.Accidents = append(c.Accidents, a)
		return a.ID
	case ColTickets:
		t := NewTicket()
		c.Tickets = append(c.Tickets, t)
		return t.ID
	case ColClaims:
		cl := NewClaim()
		c.Claims = append(c.Claims, cl)
		return cl.ID
	case ColScheduledItems:
		s := NewScheduledItem()
		c.ScheduledItems = append(c.ScheduledItems, s)
		return s.ID
	}
	return ""
}

// Remove drops the entity with the given id from the named collection and
// reports whether it was present. Dependents are untouched; callers decide
// what happens to them.
func (c *Collections) Remove(name CollectionName, id string) bool {
	switch name {
	case ColVehicles:
		for i := range c.Vehicles {
			if c.Vehicles[i].ID == id {
				c.Vehicles = append(c.Vehicles[:i:i], c.Vehicles[i+1:]...)
				return true
			}
		}
	case ColDrivers:
		for i := range c.Drivers {
			if c.Drivers[i].ID == id {
				c.Drivers = append(c.Drivers[:i:i], c.Drivers[i+1:]...)
				return true
			}
		}
	case ColDeductibles:
		for i := range c.Deductibles {
			if c.Deductibles[i].ID == id {
				c.Deductibles = append(c.Deductibles[:i:i], c.Deductibles[i+1:]...)
				return true
			}
		}
	case ColLienholders:
		for i := range c.Lienholders {
			if c.Lienholders[i].ID == id {
				c.Lienholders = append(c.Lienholders[:i:i], c.Lienholders[i+1:]...)
				return true
			}
		}
	case ColAccidents:
		for i := range c.Accidents {
			if c.Accidents[i].ID == id {
				c.Accidents = append(c.Accidents[:i:i], c.Accidents[i+1:]...)
				return true
			}
		}
	case ColTickets:
		for i := range c.Tickets {
			if c.Tickets[i].ID == id {
				c.Tickets = append(c.Tickets[:i:i], c.Tickets[i+1:]...)
				return true
			}
		}
	case ColClaims:
		for i := range c.Claims {
			if c.Claims[i].ID == id {
				c.Claims = append(c.Claims[:i:i], c.Claims[i+1:]...)
				return true
			}
		}
	case ColScheduledItems:
		for i := range c.ScheduledItems {
			if c.ScheduledItems[i].ID == id {
				c.ScheduledItems = append(c.ScheduledItems[:i:i], c.ScheduledItems[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Duplicate appends a copy of the entity with the given id under a fresh id
// and returns the new id. Fields are value objects and are never written
// through their pointers, so the shallow copy is safe.
func (c *Collections) Duplicate(name CollectionName, id string) (string, bool) {
	switch name {
	case ColVehicles:
		for i := range c.Vehicles {
			if c.Vehicles[i].ID == id {
				clone := c.Vehicles[i]
				clone.ID = uuid.NewString()
				c.Vehicles = append(c.Vehicles, clone)
				return clone.ID, true
			}
		}
	case ColDrivers:
		for i := range c.Drivers {
			if c.Drivers[i].ID == id {
				clone := c.Drivers[i]
				clone.ID = uuid.NewString()
				c.Drivers = append(c.Drivers, clone)
				return clone.ID, true
			}
		}
	case ColDeductibles:
		for i := range c.Deductibles {
			if c.Deductibles[i].ID == id {
				clone := c.Deductibles[i]
				clone.ID = uuid.NewString()
				c.Deductibles = append(c.Deductibles, clone)
				return clone.ID, true
			}
		}
	case ColLienholders:
		for i := range c.Lienholders {
			if c.Lienholders[i].ID == id {
				clone := c.Lienholders[i]
				clone.ID = uuid.NewString()
				c.Lienholders = append(c.Lienholders, clone)
				return clone.ID, true
			}
		}
	case ColAccidents:
		for i := range c.Accidents {
			if c.Accidents[i].ID == id {
				clone := c.Accidents[i]
				clone.ID = uuid.NewString()
				c.Accidents = append(c.Accidents, clone)
				return clone.ID, true
			}
		}
	case ColTickets:
		for i := range c.Tickets {
			if c.Tickets[i].ID == id {
				clone := c.Tickets[i]
				clone.ID = uuid.NewString()
				c.Tickets = append(c.Tickets, clone)
				return clone.ID, true
			}
		}
	case ColClaims:
		for i := range c.Claims {
			if c.Claims[i].ID == id {
				clone := c.Claims[i]
				clone.ID = uuid.NewString()
				c.Claims = append(c.Claims, clone)
				return clone.ID, true
			}
		}
	case ColScheduledItems:
		for i := range c.ScheduledItems {
			if c.ScheduledItems[i].ID == id {
				clone := c.ScheduledItems[i]
				clone.ID = uuid.NewString()
				c.ScheduledItems = append(c.ScheduledItems, clone)
				return clone.ID, true
			}
		}
	}
	return "", false
}

// EnsureIDs fills any empty entity id with a fresh uuid. Recognition
// providers return items without ids; ids are assigned here, never by the
// provider.
func EnsureIDs(r *Record) {
	c := &r.Collections
	for i := range c.Vehicles {
		if c.Vehicles[i].ID == "" {
			c.Vehicles[i].ID = uuid.NewString()
		}
	}
	for i := range c.Drivers {
		if c.Drivers[i].ID == "" {
			c.Drivers[i].ID = uuid.NewString()
		}
	}
	for i := range c.Deductibles {
		if c.Deductibles[i].ID == "" {
			c.Deductibles[i].ID = uuid.NewString()
		}
	}
	for i := range c.Lienholders {
		if c.Lienholders[i].ID == "" {
			c.Lienholders[i].ID = uuid.NewString()
		}
	}
	for i := range c.Accidents {
		if c.Accidents[i].ID == "" {
			c.Accidents[i].ID = uuid.NewString()
		}
	}
	for i := range c.Tickets {
		if c.Tickets[i].ID == "" {
			c.Tickets[i].ID = uuid.NewString()
		}
	}
	for i := range c.Claims {
		if c.Claims[i].ID == "" {
			c.Claims[i].ID = uuid.NewString()
		}
	}
	for i := range c.ScheduledItems {
		if c.ScheduledItems[i].ID == "" {
			c.ScheduledItems[i].ID = uuid.NewString()
		}
	}
}
