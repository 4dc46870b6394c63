package appform

// Record is the canonical confidence-annotated form record. A partial record
// produced from a single page has the same shape with absent values null and
// collections empty.
type Record struct {
	Applicant   Applicant   `json:"applicant"`
	CoApplicant CoApplicant `json:"co_applicant"`
	Residence   Residence   `json:"residence"`
	Policy      Policy      `json:"policy"`
	Collections Collections `json:"collections"`
}

// Section is a flat group of fields. Sections expose explicit accessor lists
// so per-field iteration is schema-driven and the compiler pins the shape;
// a reflection test asserts every Field member appears in its list.
type Section interface {
	Fields() []*Field
	BoolFields() []*BoolField
}

// Sections lists the record's flat sections in a stable order.
func (r *Record) Sections() []Section {
	return []Section{&r.Applicant, &r.CoApplicant, &r.Residence, &r.Policy}
}

// Applicant is the primary insured person on either form type.
type Applicant struct {
	FirstName     Field `json:"first_name"`
	LastName      Field `json:"last_name"`
	DateOfBirth   Field `json:"date_of_birth"`
	MaritalStatus Field `json:"marital_status"`
	Phone         Field `json:"phone"`
	Email         Field `json:"email"`
	Street        Field `json:"street"`
	City          Field `json:"city"`
	State         Field `json:"state"`
	Zip           Field `json:"zip"`
}

func (a *Applicant) Fields() []*Field {
	return []*Field{
		&a.FirstName, &a.LastName, &a.DateOfBirth, &a.MaritalStatus,
		&a.Phone, &a.Email, &a.Street, &a.City, &a.State, &a.Zip,
	}
}

func (a *Applicant) BoolFields() []*BoolField { return nil }

// CoApplicant is the applicant's spouse or partner.
type CoApplicant struct {
	FirstName   Field `json:"first_name"`
	LastName    Field `json:"last_name"`
	DateOfBirth Field `json:"date_of_birth"`
}

func (c *CoApplicant) Fields() []*Field {
	return []*Field{&c.FirstName, &c.LastName, &c.DateOfBirth}
}

func (c *CoApplicant) BoolFields() []*BoolField { return nil }

// Residence describes the insured dwelling on home forms.
type Residence struct {
	YearBuilt         Field     `json:"year_built"`
	ConstructionType  Field     `json:"construction_type"`
	RoofType          Field     `json:"roof_type"`
	SquareFeet        Field     `json:"square_feet"`
	DistanceToHydrant Field     `json:"distance_to_hydrant"`
	SecuritySystem    BoolField `json:"security_system"`
	SwimmingPool      BoolField `json:"swimming_pool"`
}

func (r *Residence) Fields() []*Field {
	return []*Field{
		&r.YearBuilt, &r.ConstructionType, &r.RoofType,
		&r.SquareFeet, &r.DistanceToHydrant,
	}
}

func (r *Residence) BoolFields() []*BoolField {
	return []*BoolField{&r.SecuritySystem, &r.SwimmingPool}
}

// Policy holds the requested coverage terms and prior-carrier history.
type Policy struct {
	EffectiveDate         Field `json:"effective_date"`
	PriorCarrier          Field `json:"prior_carrier"`
	PriorPolicyNumber     Field `json:"prior_policy_number"`
	YearsWithPriorCarrier Field `json:"years_with_prior_carrier"`
}

func (p *Policy) Fields() []*Field {
	return []*Field{
		&p.EffectiveDate, &p.PriorCarrier, &p.PriorPolicyNumber,
		&p.YearsWithPriorCarrier,
	}
}

func (p *Policy) BoolFields() []*BoolField { return nil }
