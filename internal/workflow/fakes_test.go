package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"gatepass-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory doubles for the engine's collaborators. The store mirrors the
// mongo store's semantics: version compare-and-set, latest-row selection,
// request population on reads.

type fakeStore struct {
	mu          sync.Mutex
	requests    map[primitive.ObjectID]*models.Request
	statuses    map[primitive.ObjectID]*models.Status
	seq         map[primitive.ObjectID]int
	nextSeq     int
	transitions []models.StageTransition
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests: make(map[primitive.ObjectID]*models.Request),
		statuses: make(map[primitive.ObjectID]*models.Status),
		seq:      make(map[primitive.ObjectID]int),
	}
}

func copyRequest(req *models.Request) *models.Request {
	if req == nil {
		return nil
	}
	clone := *req
	return &clone
}

func copyStatus(st *models.Status, req *models.Request) models.Status {
	clone := *st
	clone.Stages = make(map[models.Stage]models.StageRecord, len(st.Stages))
	for stage, rec := range st.Stages {
		clone.Stages[stage] = rec
	}
	clone.Request = copyRequest(req)
	return clone
}

func (s *fakeStore) CreateRequest(ctx context.Context, req *models.Request, st *models.Status, tr *models.StageTransition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req.ID = primitive.NewObjectID()
	st.ID = primitive.NewObjectID()
	st.RequestID = req.ID
	s.requests[req.ID] = copyRequest(req)
	stored := copyStatus(st, nil)
	stored.Request = nil
	s.statuses[st.ID] = &stored
	s.nextSeq++
	s.seq[st.ID] = s.nextSeq
	s.transitions = append(s.transitions, *tr)
	return nil
}

func (s *fakeStore) FindRequestByReference(ctx context.Context, ref string) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.requests {
		if req.ReferenceNumber == ref {
			return copyRequest(req), nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ListRequestsByEmployee(ctx context.Context, serviceNo string) ([]models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Request{}
	for _, req := range s.requests {
		if req.EmployeeServiceNo == serviceNo {
			out = append(out, *copyRequest(req))
		}
	}
	return out, nil
}

func (s *fakeStore) LatestStatusByReference(ctx context.Context, ref string) (*models.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.Status
	for _, st := range s.statuses {
		if st.ReferenceNumber != ref {
			continue
		}
		if latest == nil || st.EffectiveTime().After(latest.EffectiveTime()) ||
			(st.EffectiveTime().Equal(latest.EffectiveTime()) && s.seq[st.ID] > s.seq[latest.ID]) {
			latest = st
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := copyStatus(latest, s.requests[latest.RequestID])
	return &out, nil
}

func (s *fakeStore) ListStatuses(ctx context.Context, f ListFilter) ([]models.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Status{}
	for _, st := range s.statuses {
		rec, ok := st.Stages[f.Stage]
		if !ok || rec.State != f.State {
			continue
		}
		out = append(out, copyStatus(st, s.requests[st.RequestID]))
	}
	return out, nil
}

func (s *fakeStore) ListStatusPage(ctx context.Context, f ReportFilter) ([]models.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Status{}
	for _, st := range s.statuses {
		if f.Stage != "" {
			rec, ok := st.Stages[f.Stage]
			if !ok {
				continue
			}
			if f.State != 0 && rec.State != f.State {
				continue
			}
		}
		out = append(out, copyStatus(st, s.requests[st.RequestID]))
	}
	return out, nil
}

func (s *fakeStore) SaveStageResult(ctx context.Context, st *models.Status, req *models.Request, tr *models.StageTransition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.statuses[st.ID]
	if !ok || stored.Version != st.Version {
		return ErrConflict
	}
	if err := s.casRequestLocked(req); err != nil {
		return err
	}
	st.Version++
	st.UpdatedAt = tr.At
	updated := copyStatus(st, nil)
	updated.Request = nil
	s.statuses[st.ID] = &updated
	s.transitions = append(s.transitions, *tr)
	return nil
}

func (s *fakeStore) AppendStageRow(ctx context.Context, st *models.Status, req *models.Request, tr *models.StageTransition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.casRequestLocked(req); err != nil {
		return err
	}
	st.ID = primitive.NewObjectID()
	st.Version = 1
	stored := copyStatus(st, nil)
	stored.Request = nil
	s.statuses[st.ID] = &stored
	s.nextSeq++
	s.seq[st.ID] = s.nextSeq
	s.transitions = append(s.transitions, *tr)
	return nil
}

func (s *fakeStore) SetRequestShow(ctx context.Context, ref string, show bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.requests {
		if req.ReferenceNumber == ref {
			req.Show = show
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) DeleteRequest(ctx context.Context, ref string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := false
	for id, req := range s.requests {
		if req.ReferenceNumber == ref {
			delete(s.requests, id)
			matched = true
		}
	}
	for id, st := range s.statuses {
		if st.ReferenceNumber == ref {
			delete(s.statuses, id)
			delete(s.seq, id)
		}
	}
	return matched, nil
}

func (s *fakeStore) casRequestLocked(req *models.Request) error {
	stored, ok := s.requests[req.ID]
	if !ok || stored.Version != req.Version {
		return ErrConflict
	}
	req.Version++
	s.requests[req.ID] = copyRequest(req)
	return nil
}

// seed inserts a request and one ledger row directly, bypassing the engine.
func (s *fakeStore) seed(ref string, req *models.Request, stages map[models.Stage]models.StageRecord, created, updated time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req.ID = primitive.NewObjectID()
	req.ReferenceNumber = ref
	if req.Version == 0 {
		req.Version = 1
	}
	s.requests[req.ID] = req
	st := &models.Status{
		ID:              primitive.NewObjectID(),
		ReferenceNumber: ref,
		RequestID:       req.ID,
		Stages:          stages,
		Version:         1,
		CreatedAt:       created,
		UpdatedAt:       updated,
	}
	s.statuses[st.ID] = st
	s.nextSeq++
	s.seq[st.ID] = s.nextSeq
}

func (s *fakeStore) statusRowsFor(ref string) []models.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Status{}
	for _, st := range s.statuses {
		if st.ReferenceNumber == ref {
			out = append(out, copyStatus(st, s.requests[st.RequestID]))
		}
	}
	return out
}

type fakeDirectory struct {
	users []models.User
}

func (d *fakeDirectory) FindByServiceNo(ctx context.Context, serviceNo string) (*models.User, error) {
	for i := range d.users {
		if d.users[i].ServiceNo == serviceNo {
			return &d.users[i], nil
		}
	}
	return nil, nil
}

func (d *fakeDirectory) FindByRole(ctx context.Context, role string) ([]models.User, error) {
	out := []models.User{}
	for _, u := range d.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (d *fakeDirectory) FindByRoleAndBranch(ctx context.Context, role, branch string) ([]models.User, error) {
	out := []models.User{}
	for _, u := range d.users {
		if u.Role != role {
			continue
		}
		for _, b := range u.Branches {
			if strings.EqualFold(b, branch) {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []string // recipient emails, in attempt order
	failFor map[string]bool
}

func (m *fakeMailer) Send(toEmail, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, toEmail)
	if m.failFor[toEmail] {
		return errors.New("smtp unavailable")
	}
	return nil
}

type busEvent struct {
	Name    string
	Targets []string
}

type fakeBus struct {
	mu     sync.Mutex
	events []busEvent
}

func (b *fakeBus) Publish(name string, payload interface{}, targets []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, busEvent{Name: name, Targets: targets})
}
