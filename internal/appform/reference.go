package appform

// Reserved driver reference identifiers. The form's primary applicant and
// spouse can be named on accidents and tickets but never appear in the
// additional-driver collection, so their references use these sentinels
// instead of entity ids.
const (
	SentinelOwner  = "__owner__"
	SentinelSpouse = "__spouse__"
)

// RefKind enumerates the closed set of reference target kinds.
type RefKind int

const (
	RefNone RefKind = iota
	RefOwner
	RefSpouse
	RefEntity
)

// RefTarget is a classified reference value. Every function that validates
// references goes through ParseRef rather than comparing sentinel strings
// inline.
type RefTarget struct {
	Kind RefKind
	ID   string
}

// ParseRef classifies a raw reference value.
func ParseRef(v *string) RefTarget {
	if v == nil {
		return RefTarget{Kind: RefNone}
	}
	switch *v {
	case SentinelOwner:
		return RefTarget{Kind: RefOwner}
	case SentinelSpouse:
		return RefTarget{Kind: RefSpouse}
	}
	return RefTarget{Kind: RefEntity, ID: *v}
}

// IsSentinel reports whether the target is one of the reserved implicit
// people.
func (t RefTarget) IsSentinel() bool {
	return t.Kind == RefOwner || t.Kind == RefSpouse
}

// IsEntity reports whether the target names a collection entity by id.
func (t RefTarget) IsEntity() bool {
	return t.Kind == RefEntity
}
