package services

import (
	"context"
	"math"
	"strings"
	"time"

	"fee-portal/dataservice"
	errs "fee-portal/errors"
	"fee-portal/logger"
	"fee-portal/models"
	"fee-portal/utils"
)

// State identifies the phase a payment attempt is in.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateConfirming
	StateSettled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateConfirming:
		return "confirming"
	case StateSettled:
		return "settled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PaymentRequest carries the raw form fields of one payment submission.
// StudentID is the navigation context handed over from the profile view;
// submissions without it fail terminally.
type PaymentRequest struct {
	StudentID      string
	Amount         float64
	PaymentMethod  string
	CardNumber     string
	CardholderName string
	ExpiryDate     string
	CVV            string
}

// PaymentResult reports where an attempt ended up. Payment is set as soon
// as the record exists, even when the attempt later fails; Student is set
// only once the fee flag was confirmed.
type PaymentResult struct {
	State   State
	Payment *models.Payment
	Student *models.Student
}

// PaymentService runs the payment attempt state machine:
//
//	Idle -> Validating -> Submitting -> Confirming -> Settled
//	                  \-> Failed (from any submission state)
//
// Recording the payment and flipping the student's fee flag are two
// independent writes. The flag update is retried with backoff and, when it
// still fails, the recorded payment is marked unconfirmed for
// reconciliation - the roster shows the student unpaid until then.
type PaymentService struct {
	svc      dataservice.Service
	roster   *RosterService
	events   *Publisher
	receipts *ReceiptService
	log      *logger.Logger

	confirmAttempts int
	confirmBackoff  time.Duration
}

// NewPaymentService builds the payment service. events and receipts may be
// nil; both are best-effort side channels.
func NewPaymentService(svc dataservice.Service, roster *RosterService, events *Publisher, receipts *ReceiptService, log *logger.Logger) *PaymentService {
	return &PaymentService{
		svc:             svc,
		roster:          roster,
		events:          events,
		receipts:        receipts,
		log:             log,
		confirmAttempts: 3,
		confirmBackoff:  500 * time.Millisecond,
	}
}

// Submit runs one payment attempt to a terminal state. A failed attempt
// is terminal for that submission; the caller may resubmit, which starts a
// fresh cycle and - there being no idempotency key - may record a
// duplicate payment.
func (s *PaymentService) Submit(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	result := &PaymentResult{State: StateIdle}

	// The student id travels with the navigation from the profile view;
	// without it there is no retry, only going back.
	if strings.TrimSpace(req.StudentID) == "" {
		result.State = StateFailed
		return result, errs.E(errs.Session, "invalid payment session, return to your profile and try again")
	}

	result.State = StateValidating
	cardNumber := utils.MaskCardNumber(req.CardNumber)
	expiry := utils.MaskExpiry(req.ExpiryDate)
	cvv := utils.MaskCVV(req.CVV)

	if err := validatePaymentFields(req, cardNumber, expiry, cvv); err != nil {
		result.State = StateFailed
		return result, err
	}

	result.State = StateSubmitting
	payment, err := s.svc.CreatePayment(ctx, models.NewPayment{
		StudentID:       req.StudentID,
		Amount:          req.Amount,
		PaymentMethod:   req.PaymentMethod,
		CardLast4:       utils.CardLast4(cardNumber),
		CardFingerprint: utils.CardFingerprint(cardNumber),
		CardholderName:  req.CardholderName,
		ExpiryDate:      expiry,
		Status:          utils.PaymentRecorded,
	})
	if err != nil {
		result.State = StateFailed
		s.log.Error("Payment creation failed for student %s: %v", req.StudentID, err)
		return result, err
	}
	result.Payment = payment
	s.publishEvent("payment.recorded", payment)

	// The payment record exists from here on. The fee flag is a second,
	// uncoupled write.
	result.State = StateConfirming
	student, err := s.confirmFeesPaid(ctx, req.StudentID)
	if err != nil {
		s.compensate(ctx, result.Payment)
		result.State = StateFailed
		return result, err
	}
	result.Student = student

	s.roster.Invalidate()
	result.State = StateSettled
	s.publishEvent("payment.settled", payment)
	s.log.Info("Payment settled - Student: %s, Payment: %s, Amount: %.2f", student.ID, payment.ID, payment.Amount)

	if s.receipts != nil {
		go s.receipts.Issue(payment, student)
	}

	return result, nil
}

// validatePaymentFields enforces presence only; card semantics (checksum,
// expiry validity, CVV format) are not checked beyond the input masks.
func validatePaymentFields(req PaymentRequest, cardNumber, expiry, cvv string) error {
	if req.Amount <= 0 {
		return errs.E(errs.Invalid, "amount is required")
	}
	required := []struct{ field, value string }{
		{"payment method", req.PaymentMethod},
		{"card number", cardNumber},
		{"cardholder name", req.CardholderName},
		{"expiry date", expiry},
		{"cvv", cvv},
	}
	for _, f := range required {
		if err := utils.Required(f.field, f.value); err != nil {
			return errs.E(errs.Invalid, err.Error())
		}
	}
	return nil
}

// confirmFeesPaid flips fees_paid with retries and exponential backoff.
func (s *PaymentService) confirmFeesPaid(ctx context.Context, studentID string) (*models.Student, error) {
	paid := true
	var lastErr error

	for attempt := 0; attempt < s.confirmAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * s.confirmBackoff
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, errs.E(errs.Service, "payment confirmation cancelled", ctx.Err())
			}
		}

		student, err := s.svc.UpdateStudent(ctx, studentID, models.StudentUpdate{FeesPaid: &paid})
		if err == nil {
			return student, nil
		}
		lastErr = err
		s.log.Warn("Fee confirmation attempt %d failed for student %s: %v", attempt+1, studentID, err)
	}

	return nil, lastErr
}

// compensate marks the orphaned payment for reconciliation. Best-effort:
// when even the marker write fails, the inconsistency stands until
// reconciliation discovers it.
func (s *PaymentService) compensate(ctx context.Context, payment *models.Payment) {
	if payment == nil {
		return
	}
	if err := s.svc.MarkPaymentUnconfirmed(ctx, payment.ID); err != nil {
		s.log.Error("Failed to mark payment %s unconfirmed: %v", payment.ID, err)
		return
	}
	payment.Status = utils.PaymentUnconfirmed
	s.log.Warn("Payment %s recorded but fee flag not confirmed; marked unconfirmed", payment.ID)
	s.publishEvent("payment.unconfirmed", payment)
}

// publishEvent emits a payment lifecycle event, best-effort.
func (s *PaymentService) publishEvent(event string, payment *models.Payment) {
	if s.events == nil {
		return
	}

	evt := map[string]interface{}{
		"event":      event,
		"payment_id": payment.ID,
		"student_id": payment.StudentID,
		"amount":     payment.Amount,
		"method":     payment.PaymentMethod,
		"status":     payment.Status,
		"ts":         time.Now().UTC().Format(time.RFC3339),
	}

	go func() {
		if err := s.events.Publish(context.Background(), "student-"+payment.StudentID, evt); err != nil {
			s.log.Warn("Failed to publish %s event: %v", event, err)
		}
	}()
}
