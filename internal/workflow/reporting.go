package workflow

import (
	"context"
	"log"
	"sort"
	"time"

	"gatepass-api-server/internal/models"
)

// ReportRow is one exploded stage-row of the admin/oversight view: a ledger
// row contributes one entry per pipeline stage it has reached.
type ReportRow struct {
	ReferenceNumber string          `json:"referenceNumber"`
	Stage           string          `json:"stage"`
	StatusCode      int             `json:"statusCode"`
	StatusLabel     string          `json:"statusLabel"`
	ActorServiceNo  string          `json:"actorServiceNo"`
	Timestamp       time.Time       `json:"timestamp"`
	Request         *models.Request `json:"request,omitempty"`
}

// Report builds the cross-stage read model. The stage/state filter is
// applied twice: once at the ledger-row level (in the store query, to keep
// the page small) and again per exploded stage-row, because a row can match
// the coarse filter while containing stage entries that don't.
func (e *Engine) Report(ctx context.Context, f ReportFilter) ([]ReportRow, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page < 0 {
		f.Page = 0
	}

	rows, err := e.Store.ListStatusPage(ctx, f)
	if err != nil {
		log.Printf("Report page query failed: %v", err)
		return nil, ErrInternal
	}

	out := []ReportRow{}
	for _, row := range rows {
		for _, stage := range models.Stages() {
			rec, ok := row.StageRecordFor(stage)
			if !ok {
				continue
			}
			if f.Stage != "" && stage != f.Stage {
				continue
			}
			if f.State != 0 && rec.State != f.State {
				continue
			}
			ts := row.EffectiveTime()
			if rec.ActedAt != nil {
				ts = *rec.ActedAt
			}
			out = append(out, ReportRow{
				ReferenceNumber: row.ReferenceNumber,
				Stage:           stage.ReportLabel(),
				StatusCode:      int(rec.State),
				StatusLabel:     rec.State.Label(),
				ActorServiceNo:  rec.ServiceNo,
				Timestamp:       ts,
				Request:         row.Request,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}
