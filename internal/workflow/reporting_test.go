package workflow

import (
	"context"
	"testing"

	"gatepass-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportExplodesStages(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store, pipelineDirectory(), &fakeMailer{})
	ctx := context.Background()

	req, err := engine.Submit(ctx, sltPayload(), requester)
	require.NoError(t, err)
	_, err = engine.ExecutiveApprove(ctx, req.ReferenceNumber, "", executive)
	require.NoError(t, err)

	rows, err := engine.Report(ctx, ReportFilter{})
	require.NoError(t, err)

	// One ledger row, two stages reached: executive approved, verify pending.
	require.Len(t, rows, 2)
	byStage := map[string]ReportRow{}
	for _, r := range rows {
		byStage[r.Stage] = r
	}

	exec, ok := byStage["Executive"]
	require.True(t, ok)
	assert.Equal(t, "Approved", exec.StatusLabel)
	assert.Equal(t, "SV111", exec.ActorServiceNo)
	require.NotNil(t, exec.Request)
	assert.Equal(t, req.ReferenceNumber, exec.ReferenceNumber)

	ver, ok := byStage["Verify"]
	require.True(t, ok)
	assert.Equal(t, "Pending", ver.StatusLabel)
	assert.Equal(t, "SV222", ver.ActorServiceNo)
}

func TestReportStageAndStateFilter(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store, pipelineDirectory(), &fakeMailer{})
	ctx := context.Background()

	req, err := engine.Submit(ctx, sltPayload(), requester)
	require.NoError(t, err)
	_, err = engine.ExecutiveApprove(ctx, req.ReferenceNumber, "", executive)
	require.NoError(t, err)

	rows, err := engine.Report(ctx, ReportFilter{Stage: models.StageVerify, State: models.StagePending})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Verify", rows[0].Stage)
	assert.Equal(t, int(models.StagePending), rows[0].StatusCode)

	// A state the row's verify entry is not in yields nothing, even though
	// the row itself matched the coarse stage filter.
	rows, err = engine.Report(ctx, ReportFilter{Stage: models.StageVerify, State: models.StageRejected})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReportPetrolLeaderLabel(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store, pipelineDirectory(), &fakeMailer{})
	ctx := context.Background()

	req := driveToDispatch(t, engine, sltPayload())

	rows, err := engine.Report(ctx, ReportFilter{Stage: models.StageDispatch})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Petrol Leader", rows[0].Stage)
	assert.Equal(t, req.ReferenceNumber, rows[0].ReferenceNumber)
}
