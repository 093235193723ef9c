package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPreviousMonth(t *testing.T) {
	annee, mois := PreviousMonth(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	require.Equal(t, 2024, annee)
	require.Equal(t, 2, mois)
}

func TestPreviousMonthAcrossYearBoundary(t *testing.T) {
	annee, mois := PreviousMonth(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	require.Equal(t, 2023, annee)
	require.Equal(t, 12, mois)
}

func TestPreviousMonthAtMonthEnd(t *testing.T) {
	cases := []struct {
		now   time.Time
		annee int
		mois  int
	}{
		{time.Date(2026, 3, 31, 1, 30, 0, 0, time.UTC), 2026, 2},
		{time.Date(2026, 3, 30, 1, 30, 0, 0, time.UTC), 2026, 2},
		{time.Date(2024, 3, 29, 1, 30, 0, 0, time.UTC), 2024, 2},
		{time.Date(2026, 5, 31, 1, 30, 0, 0, time.UTC), 2026, 4},
		{time.Date(2025, 12, 31, 1, 30, 0, 0, time.UTC), 2025, 11},
	}
	for _, tc := range cases {
		annee, mois := PreviousMonth(tc.now)
		require.Equal(t, tc.annee, annee, "year for %s", tc.now)
		require.Equal(t, tc.mois, mois, "month for %s", tc.now)
	}
}

func TestNewTaxesRecomputeTask(t *testing.T) {
	task, err := NewTaxesRecomputeTask(TaxesRecomputePayload{Annee: 2024, Mois: 2})
	require.NoError(t, err)
	require.Equal(t, TaskTaxesRecompute, task.Type())
	require.JSONEq(t, `{"annee":2024,"mois":2}`, string(task.Payload()))
}
