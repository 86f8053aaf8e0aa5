package workflow

import (
	"testing"
	"time"

	"gatepass-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(ref string, created, updated time.Time) models.Status {
	return models.Status{
		ReferenceNumber: ref,
		CreatedAt:       created,
		UpdatedAt:       updated,
	}
}

func TestCollapseLatest(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   []models.Status
		want map[string]time.Time // ref -> expected effective time of survivor
	}{
		{
			name: "keeps newest updatedAt per reference",
			in: []models.Status{
				row("GP-A", base, base.Add(1*time.Hour)),
				row("GP-A", base, base.Add(3*time.Hour)),
				row("GP-A", base, base.Add(2*time.Hour)),
				row("GP-B", base, base.Add(30*time.Minute)),
			},
			want: map[string]time.Time{
				"GP-A": base.Add(3 * time.Hour),
				"GP-B": base.Add(30 * time.Minute),
			},
		},
		{
			name: "falls back to createdAt when updatedAt is unset",
			in: []models.Status{
				row("GP-C", base.Add(2*time.Hour), time.Time{}),
				row("GP-C", base.Add(5*time.Hour), time.Time{}),
			},
			want: map[string]time.Time{
				"GP-C": base.Add(5 * time.Hour),
			},
		},
		{
			name: "exact ties keep the first-seen row",
			in: []models.Status{
				{ReferenceNumber: "GP-D", BeforeStatus: 1, CreatedAt: base, UpdatedAt: base},
				{ReferenceNumber: "GP-D", BeforeStatus: 2, CreatedAt: base, UpdatedAt: base},
			},
			want: map[string]time.Time{
				"GP-D": base,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CollapseLatest(tc.in)
			require.Len(t, got, len(tc.want))
			for _, st := range got {
				want, ok := tc.want[st.ReferenceNumber]
				require.True(t, ok, "unexpected reference %s", st.ReferenceNumber)
				assert.True(t, st.EffectiveTime().Equal(want),
					"ref %s: got %v want %v", st.ReferenceNumber, st.EffectiveTime(), want)
			}
		})
	}
}

func TestCollapseLatestTieIsDeterministic(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	in := []models.Status{
		{ReferenceNumber: "GP-T", BeforeStatus: 1, CreatedAt: base, UpdatedAt: base},
		{ReferenceNumber: "GP-T", BeforeStatus: 2, CreatedAt: base, UpdatedAt: base},
	}

	first := CollapseLatest(in)
	for i := 0; i < 50; i++ {
		again := CollapseLatest(in)
		require.Len(t, again, 1)
		assert.Equal(t, first[0].BeforeStatus, again[0].BeforeStatus)
	}
}

func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := []models.Status{
		row("GP-1", base, base.Add(1*time.Hour)),
		row("GP-2", base, base.Add(4*time.Hour)),
		row("GP-3", base.Add(2*time.Hour), time.Time{}), // effective = createdAt
		row("GP-4", base, base.Add(3*time.Hour)),
	}

	SortNewestFirst(rows)

	got := []string{}
	for _, st := range rows {
		got = append(got, st.ReferenceNumber)
	}
	assert.Equal(t, []string{"GP-2", "GP-4", "GP-3", "GP-1"}, got)

	for i := 1; i < len(rows); i++ {
		assert.False(t, rows[i].EffectiveTime().After(rows[i-1].EffectiveTime()),
			"rows out of order at index %d", i)
	}
}
