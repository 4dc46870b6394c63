package appform

import "fmt"

// Dependency describes one item that references an entity under
// consideration for removal.
type Dependency struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Label string `json:"label"`
}

// FindVehicle returns the vehicle with the given id, or nil.
func (c *Collections) FindVehicle(id string) *Vehicle {
	for i := range c.Vehicles {
		if c.Vehicles[i].ID == id {
			return &c.Vehicles[i]
		}
	}
	return nil
}

// FindDriver returns the driver with the given id, or nil.
func (c *Collections) FindDriver(id string) *Driver {
	for i := range c.Drivers {
		if c.Drivers[i].ID == id {
			return &c.Drivers[i]
		}
	}
	return nil
}

// VehicleDependencies lists every deductible and lienholder referencing the
// vehicle id, with display labels for the removal warning.
func VehicleDependencies(vehicleID string, deductibles []Deductible, lienholders []Lienholder) []Dependency {
	var deps []Dependency
	for i := range deductibles {
		d := &deductibles[i]
		if d.VehicleRef.ValueOr("") != vehicleID {
			continue
		}
		deps = append(deps, Dependency{
			Type: "deductible",
			ID:   d.ID,
			Label: fmt.Sprintf("Deductible (comprehensive %s, collision %s)",
				d.Comprehensive.ValueOr("none"), d.Collision.ValueOr("none")),
		})
	}
	for i := range lienholders {
		l := &lienholders[i]
		if l.VehicleRef.ValueOr("") != vehicleID {
			continue
		}
		deps = append(deps, Dependency{
			Type:  "lienholder",
			ID:    l.ID,
			Label: l.Name.ValueOr("Unnamed lienholder"),
		})
	}
	return deps
}

// DriverDependencies lists every accident and ticket referencing the driver
// id. Sentinel references never match an entity id.
func DriverDependencies(driverID string, accidents []Accident, tickets []Ticket) []Dependency {
	var deps []Dependency
	for i := range accidents {
		a := &accidents[i]
		if !refMatches(a.DriverRef, driverID) {
			continue
		}
		deps = append(deps, Dependency{
			Type:  "accident",
			ID:    a.ID,
			Label: fmt.Sprintf("Accident on %s", a.Date.ValueOr("unknown date")),
		})
	}
	for i := range tickets {
		t := &tickets[i]
		if !refMatches(t.DriverRef, driverID) {
			continue
		}
		deps = append(deps, Dependency{
			Type:  "ticket",
			ID:    t.ID,
			Label: fmt.Sprintf("Ticket on %s (%s)", t.Date.ValueOr("unknown date"), t.Violation.ValueOr("violation not recorded")),
		})
	}
	return deps
}

func refMatches(ref Field, entityID string) bool {
	t := ParseRef(ref.Value)
	return t.IsEntity() && t.ID == entityID
}

// EntityFieldMap locates an entity by collection and id and returns its
// named field accessors, for field-level edits. The second return is false
// when no such entity exists.
func (c *Collections) EntityFieldMap(name CollectionName, id string) (map[string]*Field, bool) {
	switch name {
	case ColVehicles:
		if v := c.FindVehicle(id); v != nil {
			return v.FieldMap(), true
		}
	case ColDrivers:
		if d := c.FindDriver(id); d != nil {
			return d.FieldMap(), true
		}
	case ColDeductibles:
		for i := range c.Deductibles {
			if c.Deductibles[i].ID == id {
				return c.Deductibles[i].FieldMap(), true
			}
		}
	case ColLienholders:
		for i := range c.Lienholders {
			if c.Lienholders[i].ID == id {
				return c.Lienholders[i].FieldMap(), true
			}
		}
	case ColAccidents:
		for i := range c.Accidents {
			if c.Accidents[i].ID == id {
				return c.Accidents[i].FieldMap(), true
			}
		}
	case ColTickets:
		for i := range c.Tickets {
			if c.Tickets[i].ID == id {
				return c.Tickets[i].FieldMap(), true
			}
		}
	case ColClaims:
		for i := range c.Claims {
			if c.Claims[i].ID == id {
				return c.Claims[i].FieldMap(), true
			}
		}
	case ColScheduledItems:
		for i := range c.ScheduledItems {
			if c.ScheduledItems[i].ID == id {
				return c.ScheduledItems[i].FieldMap(), true
			}
		}
	}
	return nil, false
}
