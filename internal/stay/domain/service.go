package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/parkline/internal/billing"
)

type Service interface {
	// Enter opens a stay for a pending reservation.
	Enter(ctx context.Context, reservationCode string) (*Stationnement, error)
	// Exit closes the stay referenced by the reservation code, billing
	// the elapsed time and any overstay penalty in one atomic write.
	Exit(ctx context.Context, reservationCode string) (*Stationnement, billing.Charge, error)
	Get(ctx context.Context, id snowflake.ID) (*Stationnement, error)
	// Revenue aggregates closed stays for a parking between from
	// (inclusive) and to (exclusive).
	Revenue(ctx context.Context, parkingID snowflake.ID, from, to time.Time) (*RevenueReport, error)
}

var (
	ErrNotFound           = errors.New("stationnement_not_found")
	ErrReservationEntered = errors.New("reservation_already_entered")
	ErrReservationClosed  = errors.New("reservation_not_enterable")
	ErrAlreadyClosed      = errors.New("stationnement_already_closed")
	ErrNoActiveStay       = errors.New("no_active_stationnement")
	ErrInvalidRevenueSpan = errors.New("invalid_revenue_span")
)
