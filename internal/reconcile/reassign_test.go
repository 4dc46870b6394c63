package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coverscan/internal/appform"
	"coverscan/internal/reconcile"
)

func TestReassignVehicleReferences(t *testing.T) {
	dedFrom := appform.NewDeductibleForVehicle("v-old")
	dedFrom.VehicleRef.RawText = "2019 Honda"
	dedOther := appform.NewDeductibleForVehicle("v-other")
	lienFrom := appform.NewLienholder()
	lienFrom.VehicleRef = appform.NewFieldWith("v-old", appform.ConfidenceMedium)

	deds, liens, n := reconcile.ReassignVehicleReferences(
		"v-old", "v-new",
		[]appform.Deductible{dedFrom, dedOther},
		[]appform.Lienholder{lienFrom},
	)

	assert.Equal(t, 2, n)
	assert.Equal(t, "v-new", *deds[0].VehicleRef.Value)
	assert.Equal(t, "v-other", *deds[1].VehicleRef.Value)
	assert.Equal(t, "v-new", *liens[0].VehicleRef.Value)

	// Provenance travels with the reference
	assert.Equal(t, "2019 Honda", deds[0].VehicleRef.RawText)
	assert.Equal(t, appform.ConfidenceMedium, liens[0].VehicleRef.Confidence)

	// Inputs untouched
	assert.Equal(t, "v-old", *dedFrom.VehicleRef.Value)
	assert.Equal(t, "v-old", *lienFrom.VehicleRef.Value)
}

func TestReassignDriverReferences(t *testing.T) {
	accFrom := appform.NewAccident()
	accFrom.DriverRef = appform.NewFieldWith("d-old", appform.ConfidenceHigh)
	accOwner := appform.NewAccident()
	accOwner.DriverRef = appform.NewFieldWith(appform.SentinelOwner, appform.ConfidenceHigh)
	accNull := appform.NewAccident()
	tickFrom := appform.NewTicket()
	tickFrom.DriverRef = appform.NewFieldWith("d-old", appform.ConfidenceLow)

	accs, ticks, n := reconcile.ReassignDriverReferences(
		"d-old", "d-new",
		[]appform.Accident{accFrom, accOwner, accNull},
		[]appform.Ticket{tickFrom},
	)

	require.Equal(t, 2, n)
	assert.Equal(t, "d-new", *accs[0].DriverRef.Value)
	assert.Equal(t, appform.SentinelOwner, *accs[1].DriverRef.Value)
	assert.Nil(t, accs[2].DriverRef.Value)
	assert.Equal(t, "d-new", *ticks[0].DriverRef.Value)

	// Inputs untouched
	assert.Equal(t, "d-old", *accFrom.DriverRef.Value)
	assert.Equal(t, "d-old", *tickFrom.DriverRef.Value)
}

func TestReassignDriverReferences_NoMatches(t *testing.T) {
	acc := appform.NewAccident()
	acc.DriverRef = appform.NewFieldWith("someone", appform.ConfidenceHigh)

	accs, ticks, n := reconcile.ReassignDriverReferences("d-old", "d-new", []appform.Accident{acc}, nil)

	assert.Zero(t, n)
	require.Len(t, accs, 1)
	assert.Equal(t, "someone", *accs[0].DriverRef.Value)
	assert.Empty(t, ticks)
}
