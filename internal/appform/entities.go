package appform

// CollectionName identifies one of the record's entity collections.
type CollectionName string

const (
	ColVehicles       CollectionName = "vehicles"
	ColDrivers        CollectionName = "drivers"
	ColDeductibles    CollectionName = "deductibles"
	ColLienholders    CollectionName = "lienholders"
	ColAccidents      CollectionName = "accidents"
	ColTickets        CollectionName = "tickets"
	ColClaims         CollectionName = "claims"
	ColScheduledItems CollectionName = "scheduled_items"
)

// AllCollections lists the collection names in canonical order.
var AllCollections = []CollectionName{
	ColVehicles, ColDrivers, ColDeductibles, ColLienholders,
	ColAccidents, ColTickets, ColClaims, ColScheduledItems,
}

// Valid reports whether n names a known collection.
func (n CollectionName) Valid() bool {
	for _, c := range AllCollections {
		if c == n {
			return true
		}
	}
	return false
}

// Collections holds the record's dynamic entity arrays.
type Collections struct {
	Vehicles       []Vehicle       `json:"vehicles"`
	Drivers        []Driver        `json:"drivers"`
	Deductibles    []Deductible    `json:"deductibles"`
	Lienholders    []Lienholder    `json:"lienholders"`
	Accidents      []Accident      `json:"accidents"`
	Tickets        []Ticket        `json:"tickets"`
	Claims         []Claim         `json:"claims"`
	ScheduledItems []ScheduledItem `json:"scheduled_items"`
}

// Len returns the size of the named collection.
func (c *Collections) Len(name CollectionName) int {
	switch name {
	case ColVehicles:
		return len(c.Vehicles)
	case ColDrivers:
		return len(c.Drivers)
	case ColDeductibles:
		return len(c.Deductibles)
	case ColLienholders:
		return len(c.Lienholders)
	case ColAccidents:
		return len(c.Accidents)
	case ColTickets:
		return len(c.Tickets)
	case ColClaims:
		return len(c.Claims)
	case ColScheduledItems:
		return len(c.ScheduledItems)
	}
	return 0
}

// Vehicle is one insured vehicle on an auto form.
type Vehicle struct {
	ID            string `json:"id"`
	Year          Field  `json:"year"`
	Make          Field  `json:"make"`
	Model         Field  `json:"model"`
	Vin           Field  `json:"vin"`
	Usage         Field  `json:"usage"`
	AnnualMileage Field  `json:"annual_mileage"`
}

// FieldMap names the vehicle's fields for field-level edits.
func (v *Vehicle) FieldMap() map[string]*Field {
	return map[string]*Field{
		"year":           &v.Year,
		"make":           &v.Make,
		"model":          &v.Model,
		"vin":            &v.Vin,
		"usage":          &v.Usage,
		"annual_mileage": &v.AnnualMileage,
	}
}

// Driver is one additional listed driver. The applicant and spouse are
// implicit and never appear here; see the reference sentinels.
type Driver struct {
	ID            string `json:"id"`
	FirstName     Field  `json:"first_name"`
	LastName      Field  `json:"last_name"`
	DateOfBirth   Field  `json:"date_of_birth"`
	LicenseNumber Field  `json:"license_number"`
	Relationship  Field  `json:"relationship"`
}

func (d *Driver) FieldMap() map[string]*Field {
	return map[string]*Field{
		"first_name":     &d.FirstName,
		"last_name":      &d.LastName,
		"date_of_birth":  &d.DateOfBirth,
		"license_number": &d.LicenseNumber,
		"relationship":   &d.Relationship,
	}
}

// Deductible carries per-vehicle comprehensive and collision deductibles.
// VehicleRef is null or the id of a vehicle in the same record.
type Deductible struct {
	ID            string `json:"id"`
	VehicleRef    Field  `json:"vehicle_ref"`
	Comprehensive Field  `json:"comprehensive"`
	Collision     Field  `json:"collision"`
}

func (d *Deductible) FieldMap() map[string]*Field {
	return map[string]*Field{
		"vehicle_ref":   &d.VehicleRef,
		"comprehensive": &d.Comprehensive,
		"collision":     &d.Collision,
	}
}

// Lienholder is a lender with an interest in one vehicle.
type Lienholder struct {
	ID         string `json:"id"`
	VehicleRef Field  `json:"vehicle_ref"`
	Name       Field  `json:"name"`
	Address    Field  `json:"address"`
}

func (l *Lienholder) FieldMap() map[string]*Field {
	return map[string]*Field{
		"vehicle_ref": &l.VehicleRef,
		"name":        &l.Name,
		"address":     &l.Address,
	}
}

// Accident is one prior accident. DriverRef is null, a Driver id, or a
// sentinel for the applicant or spouse.
type Accident struct {
	ID          string `json:"id"`
	DriverRef   Field  `json:"driver_ref"`
	DriverName  Field  `json:"driver_name"`
	Date        Field  `json:"date"`
	Description Field  `json:"description"`
	Amount      Field  `json:"amount"`
}

func (a *Accident) FieldMap() map[string]*Field {
	return map[string]*Field{
		"driver_ref":  &a.DriverRef,
		"driver_name": &a.DriverName,
		"date":        &a.Date,
		"description": &a.Description,
		"amount":      &a.Amount,
	}
}

// Ticket is one prior moving violation, referenced like Accident.
type Ticket struct {
	ID         string `json:"id"`
	DriverRef  Field  `json:"driver_ref"`
	DriverName Field  `json:"driver_name"`
	Date       Field  `json:"date"`
	Violation  Field  `json:"violation"`
}

func (t *Ticket) FieldMap() map[string]*Field {
	return map[string]*Field{
		"driver_ref":  &t.DriverRef,
		"driver_name": &t.DriverName,
		"date":        &t.Date,
		"violation":   &t.Violation,
	}
}

// Claim is one prior property claim. No outward references.
type Claim struct {
	ID          string `json:"id"`
	Date        Field  `json:"date"`
	ClaimType   Field  `json:"claim_type"`
	Amount      Field  `json:"amount"`
	Description Field  `json:"description"`
}

func (c *Claim) FieldMap() map[string]*Field {
	return map[string]*Field{
		"date":        &c.Date,
		"claim_type":  &c.ClaimType,
		"amount":      &c.Amount,
		"description": &c.Description,
	}
}

// ScheduledItem is one scheduled personal property item. No outward
// references.
type ScheduledItem struct {
	ID          string `json:"id"`
	Category    Field  `json:"category"`
	Description Field  `json:"description"`
	Value       Field  `json:"value"`
}

func (s *ScheduledItem) FieldMap() map[string]*Field {
	return map[string]*Field{
		"category":    &s.Category,
		"description": &s.Description,
		"value":       &s.Value,
	}
}
