package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StageRecord is the state of one pipeline stage on a ledger row.
type StageRecord struct {
	State     StageState `bson:"state" json:"state"`
	ServiceNo string     `bson:"serviceNo,omitempty" json:"serviceNo"`
	Comment   string     `bson:"comment,omitempty" json:"comment"`
	ActedAt   *time.Time `bson:"actedAt,omitempty" json:"actedAt,omitempty"`
}

// Rejection is provenance recorded once when any stage rejects.
type Rejection struct {
	By        string    `bson:"by" json:"by"` // role label of the rejecting stage
	ServiceNo string    `bson:"serviceNo" json:"serviceNo"`
	Branch    string    `bson:"branch,omitempty" json:"branch"`
	At        time.Time `bson:"at" json:"at"`
	Level     int       `bson:"level" json:"level"` // stage ordinal 1..4
}

// Status is one ledger row for a reference number. Multiple rows may exist
// per reference over its lifetime (the dispatch stage appends rather than
// mutating in place); callers must always select the latest deterministically.
type Status struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReferenceNumber string             `bson:"referenceNumber" json:"referenceNumber"`
	RequestID       primitive.ObjectID `bson:"requestID" json:"requestID"`

	// Stages maps stage name -> its tri-state record. A stage absent from
	// the map has not been reached yet.
	Stages map[Stage]StageRecord `bson:"stages" json:"stages"`

	Rejection *Rejection `bson:"rejection,omitempty" json:"rejection,omitempty"`

	// Coarse lifecycle codes before/after the most recent transition on this
	// row, kept for traceability alongside the stage_transitions log.
	BeforeStatus int `bson:"beforeStatus,omitempty" json:"beforeStatus"`
	AfterStatus  int `bson:"afterStatus,omitempty" json:"afterStatus"`

	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`

	// Request is populated by the store on reads; never persisted here.
	Request *Request `bson:"-" json:"request,omitempty"`
}

// StageRecordFor returns the record for a stage, and whether the stage has
// been reached on this row.
func (s *Status) StageRecordFor(stage Stage) (StageRecord, bool) {
	rec, ok := s.Stages[stage]
	return rec, ok
}

// SetStage replaces one stage's record, allocating the map if needed.
func (s *Status) SetStage(stage Stage, rec StageRecord) {
	if s.Stages == nil {
		s.Stages = make(map[Stage]StageRecord)
	}
	s.Stages[stage] = rec
}

// EffectiveTime is the timestamp used for latest-row selection and sorting:
// updatedAt when set, otherwise createdAt.
func (s *Status) EffectiveTime() time.Time {
	if !s.UpdatedAt.IsZero() {
		return s.UpdatedAt
	}
	return s.CreatedAt
}

// StageTransition is one entry of the append-only audit log. A new entry is
// written for every approve, reject, hand-off and cancel.
type StageTransition struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReferenceNumber string             `bson:"referenceNumber" json:"referenceNumber"`
	Stage           Stage              `bson:"stage" json:"stage"`
	FromState       StageState         `bson:"fromState,omitempty" json:"fromState"`
	ToState         StageState         `bson:"toState" json:"toState"`
	ActorServiceNo  string             `bson:"actorServiceNo" json:"actorServiceNo"`
	BeforeStatus    int                `bson:"beforeStatus" json:"beforeStatus"`
	AfterStatus     int                `bson:"afterStatus" json:"afterStatus"`
	Comment         string             `bson:"comment,omitempty" json:"comment"`
	At              time.Time          `bson:"at" json:"at"`
}
