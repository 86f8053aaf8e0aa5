package workflow

import (
	"context"
	"log"
)

// AdminHide soft-deletes a request: it stays on record but drops out of
// every list and stage queue. SuperAdmin only.
func (e *Engine) AdminHide(ctx context.Context, referenceNumber string, actor Actor) error {
	if !actor.IsSuperAdmin() {
		return validationErr("only a SuperAdmin can hide a request")
	}
	matched, err := e.Store.SetRequestShow(ctx, referenceNumber, false)
	if err != nil {
		log.Printf("Hide request %s failed: %v", referenceNumber, err)
		return ErrInternal
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}

// AdminDelete removes a request together with its ledger rows and transition
// log entries. SuperAdmin only; there is no undo.
func (e *Engine) AdminDelete(ctx context.Context, referenceNumber string, actor Actor) error {
	if !actor.IsSuperAdmin() {
		return validationErr("only a SuperAdmin can delete a request")
	}
	matched, err := e.Store.DeleteRequest(ctx, referenceNumber)
	if err != nil {
		log.Printf("Delete request %s failed: %v", referenceNumber, err)
		return ErrInternal
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}
