package workflow

import (
	"sort"

	"gatepass-api-server/internal/models"
)

// Duplicate ledger rows for one reference number are expected during normal
// flow (the dispatch stage appends rather than mutates), so every list
// operation must collapse to the latest row per reference and sort
// newest-first. A bug here either hides legitimate pending work or
// resurrects stale rows.

// CollapseLatest groups rows by reference number and keeps, per group, the
// row with the maximum updatedAt (falling back to createdAt when updatedAt
// is unset). On an exact tie the first-seen row wins, which keeps the result
// deterministic for a given input order.
func CollapseLatest(rows []models.Status) []models.Status {
	latest := make(map[string]models.Status)
	order := []string{}

	for _, row := range rows {
		current, seen := latest[row.ReferenceNumber]
		if !seen {
			latest[row.ReferenceNumber] = row
			order = append(order, row.ReferenceNumber)
			continue
		}
		if row.EffectiveTime().After(current.EffectiveTime()) {
			latest[row.ReferenceNumber] = row
		}
	}

	out := make([]models.Status, 0, len(order))
	for _, ref := range order {
		out = append(out, latest[ref])
	}
	return out
}

// SortNewestFirst orders rows by effective timestamp descending. Ties keep
// their relative order.
func SortNewestFirst(rows []models.Status) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].EffectiveTime().After(rows[j].EffectiveTime())
	})
}
