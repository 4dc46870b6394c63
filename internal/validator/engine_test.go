package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coverscan/internal/appform"
	"coverscan/internal/validator"
)

func newEngine() *validator.Engine {
	return validator.NewEngine(validator.DefaultRegistry())
}

func TestEngine_CleanStateHasNoIssues(t *testing.T) {
	var state appform.Collections
	v := appform.NewVehicle()
	state.Vehicles = []appform.Vehicle{v}
	state.Deductibles = []appform.Deductible{appform.NewDeductibleForVehicle(v.ID)}

	issues := newEngine().Check(&state)

	assert.NotNil(t, issues)
	assert.Empty(t, issues)
}

func TestEngine_VehicleWithoutDeductible(t *testing.T) {
	var state appform.Collections
	v := appform.NewVehicle()
	v.Year = appform.NewFieldWith("2019", appform.ConfidenceHigh)
	v.Make = appform.NewFieldWith("Honda", appform.ConfidenceHigh)
	v.Model = appform.NewFieldWith("Civic", appform.ConfidenceMedium)
	state.Vehicles = []appform.Vehicle{v}

	issues := newEngine().Check(&state)

	require.Len(t, issues, 1)
	assert.Equal(t, validator.IssueMissingDeductible, issues[0].Type)
	assert.Equal(t, v.ID, issues[0].ItemID)
	assert.Equal(t, "Vehicle 2019 Honda Civic has no deductible entry", issues[0].Message)
}

func TestEngine_NullDeductibleRefDoesNotCoverVehicle(t *testing.T) {
	var state appform.Collections
	state.Vehicles = []appform.Vehicle{appform.NewVehicle()}
	state.Deductibles = []appform.Deductible{appform.NewDeductible()}

	issues := newEngine().Check(&state)

	// A null reference is neither orphaned nor coverage
	require.Len(t, issues, 1)
	assert.Equal(t, validator.IssueMissingDeductible, issues[0].Type)
}

func TestEngine_SentinelDriverRefsAreNotOrphans(t *testing.T) {
	var state appform.Collections
	acc := appform.NewAccident()
	acc.DriverRef = appform.NewFieldWith(appform.SentinelOwner, appform.ConfidenceHigh)
	tick := appform.NewTicket()
	tick.DriverRef = appform.NewFieldWith(appform.SentinelSpouse, appform.ConfidenceHigh)
	state.Accidents = []appform.Accident{acc}
	state.Tickets = []appform.Ticket{tick}

	issues := newEngine().Check(&state)

	assert.Empty(t, issues)
}

func TestEngine_AllIssueTypesInAuditOrder(t *testing.T) {
	var state appform.Collections

	uncovered := appform.NewVehicle()
	state.Vehicles = []appform.Vehicle{uncovered}

	state.Deductibles = []appform.Deductible{appform.NewDeductibleForVehicle("gone-vehicle")}

	lien := appform.NewLienholder()
	lien.VehicleRef = appform.NewFieldWith("gone-vehicle", appform.ConfidenceLow)
	lien.Name = appform.NewFieldWith("First National", appform.ConfidenceHigh)
	state.Lienholders = []appform.Lienholder{lien}

	acc := appform.NewAccident()
	acc.DriverRef = appform.NewFieldWith("gone-driver", appform.ConfidenceMedium)
	acc.Date = appform.NewFieldWith("2022-11-05", appform.ConfidenceHigh)
	state.Accidents = []appform.Accident{acc}

	tick := appform.NewTicket()
	tick.DriverRef = appform.NewFieldWith("gone-driver", appform.ConfidenceMedium)
	state.Tickets = []appform.Ticket{tick}

	issues := newEngine().Check(&state)

	require.Len(t, issues, 5)
	assert.Equal(t, validator.IssueOrphanedDeductible, issues[0].Type)
	assert.Equal(t, validator.IssueOrphanedLienholder, issues[1].Type)
	assert.Equal(t, validator.IssueOrphanedAccidentDriver, issues[2].Type)
	assert.Equal(t, validator.IssueOrphanedTicketDriver, issues[3].Type)
	assert.Equal(t, validator.IssueMissingDeductible, issues[4].Type)

	assert.Equal(t, `Deductible references vehicle "gone-vehicle", which is not on the application`, issues[0].Message)
	assert.Equal(t, `Lienholder First National references vehicle "gone-vehicle", which is not on the application`, issues[1].Message)
	assert.Equal(t, `Accident on 2022-11-05 references driver "gone-driver", who is not listed`, issues[2].Message)
	assert.Equal(t, `Ticket on unknown date references driver "gone-driver", who is not listed`, issues[3].Message)

	for _, issue := range issues {
		assert.NotEmpty(t, issue.ItemID)
		assert.NotEmpty(t, issue.Suggestion)
	}
}

func TestEngine_ChecksNeverMutateState(t *testing.T) {
	var state appform.Collections
	state.Vehicles = []appform.Vehicle{appform.NewVehicle()}
	ded := appform.NewDeductibleForVehicle("gone")
	state.Deductibles = []appform.Deductible{ded}

	newEngine().Check(&state)

	require.Len(t, state.Deductibles, 1)
	assert.Equal(t, "gone", *state.Deductibles[0].VehicleRef.Value)
}

func TestSummarize(t *testing.T) {
	issues := []validator.Issue{
		{Type: validator.IssueMissingDeductible},
		{Type: validator.IssueMissingDeductible},
		{Type: validator.IssueOrphanedDeductible},
	}

	sum := validator.Summarize(issues)

	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 2, sum.ByType[validator.IssueMissingDeductible])
	assert.Equal(t, 1, sum.ByType[validator.IssueOrphanedDeductible])
}

func TestRegistry_OrderAndReplacement(t *testing.T) {
	reg := validator.DefaultRegistry()

	keys := make([]string, 0, 5)
	for _, c := range reg.All() {
		keys = append(keys, c.Key())
	}
	assert.Equal(t, []string{
		string(validator.IssueOrphanedDeductible),
		string(validator.IssueOrphanedLienholder),
		string(validator.IssueOrphanedAccidentDriver),
		string(validator.IssueOrphanedTicketDriver),
		string(validator.IssueMissingDeductible),
	}, keys)

	stub := stubChecker{key: string(validator.IssueMissingDeductible)}
	reg.Register(stub)

	// Re-registration replaces in place instead of appending
	all := reg.All()
	require.Len(t, all, 5)
	assert.Equal(t, stub, all[4])

	assert.Equal(t, stub, reg.Get(string(validator.IssueMissingDeductible)))
	assert.Nil(t, reg.Get("no_such_rule"))
}

type stubChecker struct {
	key string
}

func (s stubChecker) Key() string { return s.key }

func (s stubChecker) Check(*appform.Collections) []validator.Issue { return nil }
