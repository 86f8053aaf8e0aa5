// server/internal/ledger/store.go
package ledger

import (
	"context"
	"fmt"
	"time"

	"gatepass-api-server/internal/models"
	"gatepass-api-server/internal/workflow"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	requestsCollection    = "requests"
	statusesCollection    = "statuses"
	transitionsCollection = "stage_transitions"
)

// Store is the MongoDB-backed Request store, Status ledger and transition
// log. Stage writes are committed as one unit of work inside a session
// transaction, compare-and-set on the version fields.
type Store struct {
	DB *mongo.Database
}

func NewStore(db *mongo.Database) *Store {
	return &Store{DB: db}
}

// EnsureIndexes creates the unique reference index on requests and the
// lookup indexes the stage queries rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.DB.Collection(requestsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "referenceNumber", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = s.DB.Collection(statusesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "referenceNumber", Value: 1}, {Key: "updatedAt", Value: -1}},
	})
	return err
}

// withTxn runs fn inside a mongo session transaction. Deployments without
// replica sets cannot open transactions; in that case fn runs directly,
// without atomicity across the three collections.
func (s *Store) withTxn(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.DB.Client().StartSession()
	if err != nil {
		return fn(ctx)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// CreateRequest inserts the request, its first ledger row and the opening
// transition entry.
func (s *Store) CreateRequest(ctx context.Context, req *models.Request, st *models.Status, tr *models.StageTransition) error {
	return s.withTxn(ctx, func(ctx context.Context) error {
		result, err := s.DB.Collection(requestsCollection).InsertOne(ctx, req)
		if err != nil {
			return err
		}
		req.ID = result.InsertedID.(primitive.ObjectID)

		st.RequestID = req.ID
		stResult, err := s.DB.Collection(statusesCollection).InsertOne(ctx, st)
		if err != nil {
			return err
		}
		st.ID = stResult.InsertedID.(primitive.ObjectID)

		_, err = s.DB.Collection(transitionsCollection).InsertOne(ctx, tr)
		return err
	})
}

// FindRequestByReference returns one request, or nil when absent.
func (s *Store) FindRequestByReference(ctx context.Context, ref string) (*models.Request, error) {
	var req models.Request
	err := s.DB.Collection(requestsCollection).FindOne(ctx, bson.M{"referenceNumber": ref}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListRequestsByEmployee returns the requester's own requests, newest first.
func (s *Store) ListRequestsByEmployee(ctx context.Context, serviceNo string) ([]models.Request, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.DB.Collection(requestsCollection).Find(ctx, bson.M{"employeeServiceNo": serviceNo}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.Request
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []models.Request{}
	}
	return requests, nil
}

// LatestStatusByReference returns the newest ledger row for the reference
// (updatedAt desc, createdAt as tiebreak), request populated, or nil when no
// row exists.
func (s *Store) LatestStatusByReference(ctx context.Context, ref string) (*models.Status, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "createdAt", Value: -1}})
	var st models.Status
	err := s.DB.Collection(statusesCollection).FindOne(ctx, bson.M{"referenceNumber": ref}, opts).Decode(&st)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.populate(ctx, []models.Status{st}); err != nil {
		return nil, err
	}
	return &st, nil
}

// ListStatuses returns the raw ledger rows whose stage matches the given
// tri-state, requests populated. Dedup, visibility and sorting are the
// engine's job.
func (s *Store) ListStatuses(ctx context.Context, f workflow.ListFilter) ([]models.Status, error) {
	filter := bson.M{fmt.Sprintf("stages.%s.state", f.Stage): f.State}
	cursor, err := s.DB.Collection(statusesCollection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []models.Status
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.Status{}
	}
	if err := s.populate(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListStatusPage returns one page of ledger rows for the report view,
// pre-filtered at row level, newest first.
func (s *Store) ListStatusPage(ctx context.Context, f workflow.ReportFilter) ([]models.Status, error) {
	filter := bson.M{}
	if f.Stage != "" {
		key := fmt.Sprintf("stages.%s.state", f.Stage)
		if f.State != 0 {
			filter[key] = f.State
		} else {
			filter[key] = bson.M{"$exists": true}
		}
	}
	if f.From != nil || f.To != nil {
		span := bson.M{}
		if f.From != nil {
			span["$gte"] = *f.From
		}
		if f.To != nil {
			span["$lte"] = *f.To
		}
		filter["updatedAt"] = span
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "createdAt", Value: -1}}).
		SetSkip(f.Page * f.Limit).
		SetLimit(f.Limit)

	cursor, err := s.DB.Collection(statusesCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []models.Status
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.Status{}
	}
	if err := s.populate(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// populate attaches the referenced Request to each ledger row with one $in
// query over the request ids.
func (s *Store) populate(ctx context.Context, rows []models.Status) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.RequestID)
	}

	cursor, err := s.DB.Collection(requestsCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var requests []models.Request
	if err = cursor.All(ctx, &requests); err != nil {
		return err
	}

	byID := make(map[primitive.ObjectID]*models.Request, len(requests))
	for i := range requests {
		byID[requests[i].ID] = &requests[i]
	}
	for i := range rows {
		rows[i].Request = byID[rows[i].RequestID]
	}
	return nil
}

// SaveStageResult commits one stage mutation: compare-and-set on both the
// ledger row and the request, plus the transition entry, in one unit of
// work. A lost version race surfaces as workflow.ErrConflict.
func (s *Store) SaveStageResult(ctx context.Context, st *models.Status, req *models.Request, tr *models.StageTransition) error {
	return s.withTxn(ctx, func(ctx context.Context) error {
		if err := s.casStatus(ctx, st); err != nil {
			return err
		}
		if err := s.casRequest(ctx, req); err != nil {
			return err
		}
		_, err := s.DB.Collection(transitionsCollection).InsertOne(ctx, tr)
		return err
	})
}

// AppendStageRow inserts a new ledger row (the dispatch stage's append
// semantics), compare-and-sets the request and logs the transition.
func (s *Store) AppendStageRow(ctx context.Context, st *models.Status, req *models.Request, tr *models.StageTransition) error {
	return s.withTxn(ctx, func(ctx context.Context) error {
		st.Version = 1
		result, err := s.DB.Collection(statusesCollection).InsertOne(ctx, st)
		if err != nil {
			return err
		}
		st.ID = result.InsertedID.(primitive.ObjectID)

		if err := s.casRequest(ctx, req); err != nil {
			return err
		}
		_, err = s.DB.Collection(transitionsCollection).InsertOne(ctx, tr)
		return err
	})
}

// SetRequestShow flips the soft-delete flag on a request. Returns whether a
// request with the reference existed.
func (s *Store) SetRequestShow(ctx context.Context, ref string, show bool) (bool, error) {
	result, err := s.DB.Collection(requestsCollection).UpdateOne(ctx,
		bson.M{"referenceNumber": ref},
		bson.M{"$set": bson.M{"show": show, "updatedAt": time.Now()}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// DeleteRequest hard-deletes a request with its ledger rows and transition
// entries, in one unit of work.
func (s *Store) DeleteRequest(ctx context.Context, ref string) (bool, error) {
	var matched bool
	err := s.withTxn(ctx, func(ctx context.Context) error {
		result, err := s.DB.Collection(requestsCollection).DeleteOne(ctx, bson.M{"referenceNumber": ref})
		if err != nil {
			return err
		}
		matched = result.DeletedCount > 0
		if _, err := s.DB.Collection(statusesCollection).DeleteMany(ctx, bson.M{"referenceNumber": ref}); err != nil {
			return err
		}
		_, err = s.DB.Collection(transitionsCollection).DeleteMany(ctx, bson.M{"referenceNumber": ref})
		return err
	})
	return matched, err
}

func (s *Store) casStatus(ctx context.Context, st *models.Status) error {
	st.UpdatedAt = time.Now()
	result, err := s.DB.Collection(statusesCollection).UpdateOne(ctx,
		bson.M{"_id": st.ID, "version": st.Version},
		bson.M{"$set": bson.M{
			"stages":       st.Stages,
			"rejection":    st.Rejection,
			"beforeStatus": st.BeforeStatus,
			"afterStatus":  st.AfterStatus,
			"updatedAt":    st.UpdatedAt,
		}, "$inc": bson.M{"version": 1}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return workflow.ErrConflict
	}
	st.Version++
	return nil
}

func (s *Store) casRequest(ctx context.Context, req *models.Request) error {
	req.UpdatedAt = time.Now()
	result, err := s.DB.Collection(requestsCollection).UpdateOne(ctx,
		bson.M{"_id": req.ID, "version": req.Version},
		bson.M{"$set": bson.M{
			"status":          req.Status,
			"show":            req.Show,
			"returnableItems": req.ReturnableItems,
			"loading":         req.Loading,
			"unLoading":       req.UnLoading,
			"updatedAt":       req.UpdatedAt,
		}, "$inc": bson.M{"version": 1}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return workflow.ErrConflict
	}
	req.Version++
	return nil
}
