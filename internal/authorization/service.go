// Package authorization guards owner-scoped operations. Revenue
// reports and parking mutations are visible to the facility owner
// only; a non-owner is told "not found" rather than "forbidden" by the
// transport layer so facility existence never leaks.
package authorization

import (
	"context"
	"errors"
)

type Service interface {
	// Authorize checks that actor may perform action on object within
	// the given parking. Actor is "system" or "user:<id>".
	Authorize(ctx context.Context, actor string, parkingID string, object string, action string) error
}

var (
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidActor   = errors.New("invalid_actor")
	ErrInvalidParking = errors.New("invalid_parking")
	ErrInvalidObject  = errors.New("invalid_object")
	ErrInvalidAction  = errors.New("invalid_action")
)
