package workflow

import (
	"context"
	"testing"

	"gatepass-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	requester  = Actor{ServiceNo: "SV000", Role: models.RoleUser, Branches: []string{"Colombo"}}
	executive  = Actor{ServiceNo: "SV111", Role: models.RoleExecutive, Branches: []string{"Colombo"}}
	verifier   = Actor{ServiceNo: "SV222", Role: models.RoleVerifier, Branches: []string{"Colombo"}}
	dispatcher = Actor{ServiceNo: "SV333", Role: models.RolePleader, Branches: []string{"Kandy"}}
	receiver   = Actor{ServiceNo: "SV44444", Role: models.RoleReceiver, Branches: []string{"Kandy"}}
)

func pipelineDirectory() *fakeDirectory {
	return &fakeDirectory{users: []models.User{
		{ServiceNo: "SV000", Email: "requester@slt.lk", Role: models.RoleUser, Branches: []string{"Colombo"}},
		{ServiceNo: "SV111", Email: "executive@slt.lk", Role: models.RoleExecutive, Branches: []string{"Colombo"}},
		{ServiceNo: "SV222", Email: "verifier@slt.lk", Role: models.RoleVerifier, Branches: []string{"Colombo"}},
		{ServiceNo: "SV333", Email: "pleader@slt.lk", Role: models.RolePleader, Branches: []string{"Kandy"}},
		{ServiceNo: "SV44444", Email: "receiver@slt.lk", Role: models.RoleReceiver, Branches: []string{"Kandy"}},
	}}
}

func sltPayload() SubmitPayload {
	return SubmitPayload{
		OutLocation:               "Colombo",
		InLocation:                "Kandy",
		ExecutiveOfficerServiceNo: "SV111",
		ReceiverAvailable:         true,
		ReceiverServiceNo:         "SV44444",
		Items: []models.Item{
			{Name: "Fiber spool", Quantity: 2, Returnable: true},
			{Name: "Cable ties", Quantity: 100},
		},
	}
}

func nonSltPayload() SubmitPayload {
	p := sltPayload()
	p.InLocation = ""
	p.IsNonSltPlace = true
	p.CompanyName = "Lanka Hardware (Pvt) Ltd"
	p.ReceiverAvailable = false
	p.ReceiverServiceNo = ""
	return p
}

func TestSubmitOpensExecutiveStage(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store, pipelineDirectory(), &fakeMailer{})
	ctx := context.Background()

	req, err := engine.Submit(ctx, sltPayload(), requester)
	require.NoError(t, err)
	assert.Equal(t, models.LifecycleExecutivePending, req.Status)
	assert.True(t, req.Show)
	assert.NotEmpty(t, req.ReferenceNumber)

	// returnable items are derived from the returnable subset
	require.Len(t, req.ReturnableItems, 1)
	assert.Equal(t, "Fiber spool", req.ReturnableItems[0].Name)

	st, err := engine.GetByReference(ctx, req.ReferenceNumber)
	require.NoError(t, err)
	rec, ok := st.StageRecordFor(models.StageExecutive)
	require.True(t, ok)
	assert.Equal(t, models.StagePending, rec.State)
	assert.Equal(t, "SV111", rec.ServiceNo)
}

func TestSubmitValidation(t *testing.T) {
	engine := newTestEngine(newFakeStore(), pipelineDirectory(), &fakeMailer{})
	ctx := context.Background()

	p := sltPayload()
	p.InLocation = ""
	_, err := engine.Submit(ctx, p, requester)
	assert.True(t, IsValidation(err), "SLT destination without inLocation must fail")

	p = nonSltPayload()
	p.CompanyName = ""
	_, err = engine.Submit(ctx, p, requester)
	assert.True(t, IsValidation(err), "Non-SLT destination without companyName must fail")

	p = sltPayload()
	p.Items = nil
	_, err = engine.Submit(ctx, p, requester)
	assert.True(t, IsValidation(err), "empty item list must fail")
}

func TestExecutiveApproveHandsOffToVerifier(t *testing.T) {
	for _, nonSlt := range []bool{false, true} {
		name := "slt"
		if nonSlt {
			name = "non-slt"
		}
		t.Run(name, func(t *testing.T) {
			store := newFakeStore()
			mailer := &fakeMailer{}
			engine := newTestEngine(store, pipelineDirectory(), mailer)
			ctx := context.Background()

			payload := sltPayload()
			if nonSlt {
				payload = nonSltPayload()
			}
			req, err := engine.Submit(ctx, payload, requester)
			require.NoError(t, err)

			st, err := engine.ExecutiveApprove(ctx, req.ReferenceNumber, "ok to move", executive)
			require.NoError(t, err)

			// The verifier hand-off happens whether or not the destination
			// is Non-SLT.
			rec, ok := st.StageRecordFor(models.StageVerify)
			require.True(t, ok)
			assert.Equal(t, models.StagePending, rec.State)
			assert.Equal(t, "SV222", rec.ServiceNo)

			execRec, _ := st.StageRecordFor(models.StageExecutive)
			assert.Equal(t, models.StageApproved, execRec.State)
			assert.Equal(t, "SV111", execRec.ServiceNo)

			saved, err := store.FindRequestByReference(ctx, req.ReferenceNumber)
			require.NoError(t, err)
			assert.Equal(t, models.LifecycleVerifyPending, saved.Status)

			assert.Contains(t, mailer.sent, "verifier@slt.lk")
		})
	}
}

func TestExecutiveApproveWithoutVerifierStaysApproved(t *testing.T) {
	store := newFakeStore()
	// Directory with no verifier for Colombo.
	dir := &fakeDirectory{users: []models.User{
		{ServiceNo: "SV111", Email: "executive@slt.lk", Role: models.RoleExecutive, Branches: []string{"Colombo"}},
	}}
	engine := newTestEngine(store, dir, &fakeMailer{})
	ctx := context.Background()

	req, err := engine.Submit(ctx, sltPayload(), requester)
	require.NoError(t, err)

	st, err := engine.ExecutiveApprove(ctx, req.ReferenceNumber, "", executive)
	require.NoError(t, err)

	_, ok := st.StageRecordFor(models.StageVerify)
	assert.False(t, ok, "no verify record without a resolvable verifier")

	saved, _ := store.FindRequestByReference(ctx, req.ReferenceNumber)
	assert.Equal(t, models.LifecycleExecutiveApproved, saved.Status)
}

func TestVerifierApproveOpensDispatchQueue(t *testing.T) {
	store := newFakeStore()
	mailer := &fakeMailer{}
	engine := newTestEngine(store, pipelineDirectory(), mailer)
	ctx := context.Background()

	req, err := engine.Submit(ctx, sltPayload(), requester)
	require.NoError(t, err)
	_, err = engine.ExecutiveApprove(ctx, req.ReferenceNumber, "", executive)
	require.NoError(t, err)

	st, err := engine.VerifierApprove(ctx, req.ReferenceNumber, "serials match", verifier)
	require.NoError(t, err)

	// There is no separate dispatch-pending lifecycle code: verify-approved
	// is the state in which the request sits in the dispatch queue.
	saved, _ := store.FindRequestByReference(ctx, req.ReferenceNumber)
	assert.Equal(t, models.LifecycleVerifyApproved, saved.Status)

	rec, ok := st.StageRecordFor(models.StageDispatch)
	require.True(t, ok)
	assert.Equal(t, models.StagePending, rec.State)
	assert.Empty(t, rec.ServiceNo, "dispatch queue is an open pool")

	// Dispatch-branch leaders hear about the new queue item.
	assert.Contains(t, mailer.sent, "pleader@slt.lk")
}

func TestRejectRequiresComment(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store, pipelineDirectory(), &fakeMailer{})
	ctx := context.Background()

	req, err := engine.Submit(ctx, sltPayload(), requester)
	require.NoError(t, err)

	for _, comment := range []string{"", "   ", "\t\n"} {
		_, err := engine.ExecutiveReject(ctx, req.ReferenceNumber, comment, executive)
		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.Equal(t, "Rejection comment is required.", err.Error())
	}

	// The ledger row must be untouched.
	st, err := engine.GetByReference(ctx, req.ReferenceNumber)
	require.NoError(t, err)
	rec, _ := st.StageRecordFor(models.StageExecutive)
	assert.Equal(t, models.StagePending, rec.State)
	assert.Nil(t, st.Rejection)

	saved, _ := store.FindRequestByReference(ctx, req.ReferenceNumber)
	assert.Equal(t, models.LifecycleExecutivePending, saved.Status)
}

func TestRejectRecordsProvenance(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store, pipelineDirectory(), &fakeMailer{})
	ctx := context.Background()

	req, err := engine.Submit(ctx, sltPayload(), requester)
	require.NoError(t, err)
	_, err = engine.ExecutiveApprove(ctx, req.ReferenceNumber, "", executive)
	require.NoError(t, err)

	st, err := engine.VerifierReject(ctx, req.ReferenceNumber, "serials do not match", verifier)
	require.NoError(t, err)

	require.NotNil(t, st.Rejection)
	assert.Equal(t, models.RoleVerifier, st.Rejection.By)
	assert.Equal(t, "SV222", st.Rejection.ServiceNo)
	assert.Equal(t, "Colombo", st.Rejection.Branch)
	assert.Equal(t, 2, st.Rejection.Level)

	rec, _ := st.StageRecordFor(models.StageVerify)
	assert.Equal(t, models.StageRejected, rec.State)
	assert.Equal(t, "serials do not match", rec.Comment)

	saved, _ := store.FindRequestByReference(ctx, req.ReferenceNumber)
	assert.Equal(t, models.LifecycleVerifyRejected, saved.Status)
}

func TestRejectBranchFallsBackToDirectory(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store, pipelineDirectory(), &fakeMailer{})
	ctx := context.Background()

	req, err := engine.Submit(ctx, sltPayload(), requester)
	require.NoError(t, err)

	// Actor token without branches: provenance branch comes from the
	// directory record.
	bare := Actor{ServiceNo: "SV111", Role: models.RoleExecutive}
	st, err := engine.ExecutiveReject(ctx, req.ReferenceNumber, "not justified", bare)
	require.NoError(t, err)
	require.NotNil(t, st.Rejection)
	assert.Equal(t, "Colombo", st.Rejection.Branch)
}

func TestStageMustBePendingToAct(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store, pipelineDirectory(), &fakeMailer{})
	ctx := context.Background()

	req, err := engine.Submit(ctx, sltPayload(), requester)
	require.NoError(t, err)

	// Receiver stage has not been reached yet.
	_, err = engine.ReceiverReject(ctx, req.ReferenceNumber, "too early", receiver)
	assert.ErrorIs(t, err, ErrStageNotPending)

	// Double approval of the same stage.
	_, err = engine.ExecutiveApprove(ctx, req.ReferenceNumber, "", executive)
	require.NoError(t, err)
	_, err = engine.ExecutiveApprove(ctx, req.ReferenceNumber, "", executive)
	assert.ErrorIs(t, err, ErrStageNotPending)
}

func TestApproveUnknownReference(t *testing.T) {
	engine := newTestEngine(newFakeStore(), pipelineDirectory(), &fakeMailer{})
	_, err := engine.ExecutiveApprove(context.Background(), "GP-MISSING", "", executive)
	assert.ErrorIs(t, err, ErrNotFound)
}
