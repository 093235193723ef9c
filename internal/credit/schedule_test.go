package credit

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var scheduleStart = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func TestGenerateScheduleFixedAnnuity(t *testing.T) {
	plan, err := GenerateSchedule(decimal.NewFromInt(1_000_000), decimal.NewFromInt(12), 12, scheduleStart)
	require.NoError(t, err)

	// 1,000,000 at 12%/year over 12 months gives a payment near 88,848.79.
	require.Equal(t, "88848.79", plan.Mensualite.StringFixed(2))
	require.Len(t, plan.Echeances, 12)

	first := plan.Echeances[0]
	require.Equal(t, "10000.00", first.PartInterets.StringFixed(2))
	require.Equal(t, "78848.79", first.PartCapital.StringFixed(2))
	require.Equal(t, scheduleStart.AddDate(0, 1, 0), first.DateEcheance)
	require.Equal(t, EcheanceAPayer, first.Statut)
}

func TestGenerateScheduleCapitalSumsToPrincipal(t *testing.T) {
	principal := decimal.NewFromInt(1_000_000)
	plan, err := GenerateSchedule(principal, decimal.NewFromInt(12), 12, scheduleStart)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, e := range plan.Echeances {
		sum = sum.Add(e.PartCapital)
	}
	require.True(t, sum.Equal(principal), "capital sum %s != principal %s", sum, principal)

	last := plan.Echeances[len(plan.Echeances)-1]
	require.True(t, last.CapitalRestant.IsZero())
}

func TestGenerateScheduleZeroRate(t *testing.T) {
	plan, err := GenerateSchedule(decimal.NewFromInt(1200), decimal.Zero, 12, scheduleStart)
	require.NoError(t, err)

	require.Equal(t, "100.00", plan.Mensualite.StringFixed(2))
	require.True(t, plan.TotalInterets.IsZero())
	for _, e := range plan.Echeances {
		require.True(t, e.PartInterets.IsZero())
	}
}

func TestGenerateScheduleDecliningInterest(t *testing.T) {
	plan, err := GenerateSchedule(decimal.NewFromInt(500_000), decimal.NewFromFloat(8.5), 24, scheduleStart)
	require.NoError(t, err)

	for i := 1; i < len(plan.Echeances); i++ {
		require.True(t, plan.Echeances[i].PartInterets.LessThan(plan.Echeances[i-1].PartInterets),
			"interest should decline at rang %d", i+1)
	}
}

func TestGenerateScheduleInvalidTerms(t *testing.T) {
	cases := []struct {
		name      string
		principal decimal.Decimal
		rate      decimal.Decimal
		term      int
	}{
		{"zero principal", decimal.Zero, decimal.NewFromInt(12), 12},
		{"negative principal", decimal.NewFromInt(-100), decimal.NewFromInt(12), 12},
		{"negative rate", decimal.NewFromInt(1000), decimal.NewFromInt(-1), 12},
		{"zero term", decimal.NewFromInt(1000), decimal.NewFromInt(12), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := GenerateSchedule(tc.principal, tc.rate, tc.term, scheduleStart)
			require.ErrorIs(t, err, ErrInvalidTerms)
		})
	}
}

func TestGenerateScheduleSingleInstallment(t *testing.T) {
	plan, err := GenerateSchedule(decimal.NewFromInt(10_000), decimal.NewFromInt(12), 1, scheduleStart)
	require.NoError(t, err)

	require.Len(t, plan.Echeances, 1)
	e := plan.Echeances[0]
	require.True(t, e.PartCapital.Equal(decimal.NewFromInt(10_000)))
	require.Equal(t, "100.00", e.PartInterets.StringFixed(2))
	require.Equal(t, "10100.00", e.MontantTotal.StringFixed(2))
}
