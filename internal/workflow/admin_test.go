package workflow

import (
	"context"
	"testing"

	"gatepass-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminHide(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store, pipelineDirectory(), &fakeMailer{})
	ctx := context.Background()
	admin := Actor{ServiceNo: "SA00000", Role: models.RoleSuperAdmin}

	req, err := engine.Submit(ctx, sltPayload(), requester)
	require.NoError(t, err)

	err = engine.AdminHide(ctx, req.ReferenceNumber, requester)
	assert.True(t, IsValidation(err), "non-SuperAdmin cannot hide")

	require.NoError(t, engine.AdminHide(ctx, req.ReferenceNumber, admin))

	saved, _ := store.FindRequestByReference(ctx, req.ReferenceNumber)
	assert.False(t, saved.Show)

	rows, err := engine.ListByStage(ctx, models.StageExecutive, models.StagePending, admin, "")
	require.NoError(t, err)
	assert.Empty(t, rows, "hidden requests drop out of stage queues")

	assert.ErrorIs(t, engine.AdminHide(ctx, "GP-MISSING", admin), ErrNotFound)
}

func TestAdminDelete(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store, pipelineDirectory(), &fakeMailer{})
	ctx := context.Background()
	admin := Actor{ServiceNo: "SA00000", Role: models.RoleSuperAdmin}

	req, err := engine.Submit(ctx, sltPayload(), requester)
	require.NoError(t, err)

	err = engine.AdminDelete(ctx, req.ReferenceNumber, requester)
	assert.True(t, IsValidation(err), "non-SuperAdmin cannot delete")

	require.NoError(t, engine.AdminDelete(ctx, req.ReferenceNumber, admin))

	_, err = engine.GetByReference(ctx, req.ReferenceNumber)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, store.statusRowsFor(req.ReferenceNumber))

	assert.ErrorIs(t, engine.AdminDelete(ctx, req.ReferenceNumber, admin), ErrNotFound)
}
