// Package dataservice defines the boundary to the remote data service
// that owns all student and payment records. The portal never holds local
// authority over a row: it reads, mutates through these interfaces, and
// re-fetches when told that something changed.
package dataservice

import (
	"context"

	"fee-portal/models"
)

// Service is the row-level read/write surface of the data service. Every
// failure - network, auth, constraint violation - surfaces as a single
// Service-kind error; callers present a generic retry affordance.
type Service interface {
	// ListStudents returns all students ordered by name ascending.
	ListStudents(ctx context.Context) ([]models.Student, error)

	// CreateStudent inserts a student; id and timestamps are assigned by
	// the service.
	CreateStudent(ctx context.Context, in models.NewStudent) (*models.Student, error)

	// UpdateStudent applies a partial update to the student with the
	// given id.
	UpdateStudent(ctx context.Context, id string, in models.StudentUpdate) (*models.Student, error)

	// CreatePayment appends a payment record. Payments are immutable
	// apart from the reconciliation status marker.
	CreatePayment(ctx context.Context, in models.NewPayment) (*models.Payment, error)

	// MarkPaymentUnconfirmed flags a recorded payment whose follow-up
	// student update failed, so reconciliation can find it.
	MarkPaymentUnconfirmed(ctx context.Context, paymentID string) error
}

// ChangeFeed delivers change notifications for the students collection.
// Events carry no payload; subscribers must re-fetch. The returned handle
// releases the subscription and must be called on teardown, or the
// underlying connection leaks.
type ChangeFeed interface {
	Subscribe(onChange func()) (unsubscribe func(), err error)
}

// Auth is the data service's authentication subsystem: sign-in yields a
// session token that the portal persists client-side and presents on
// subsequent requests.
type Auth interface {
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context, token string) error
	Account(ctx context.Context, token string) (*models.Account, error)
}
