package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	errs "fee-portal/errors"
	"fee-portal/logger"
	"fee-portal/models"
)

func testLogger() *logger.Logger {
	return logger.New(io.Discard, logger.FATAL)
}

// fakeService is an in-memory data service standing in for the remote
// backend.
type fakeService struct {
	mu       sync.Mutex
	students []models.Student
	payments []models.Payment

	listErr          error
	createStudentErr error
	createPaymentErr error
	updateErr        error
	markErr          error
	// updateFailures fails this many UpdateStudent calls before letting
	// them through.
	updateFailures int

	listCalls   int
	updateCalls int
	nextID      int
}

func (f *fakeService) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeService) ListStudents(ctx context.Context) ([]models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Student, len(f.students))
	copy(out, f.students)
	return out, nil
}

func (f *fakeService) CreateStudent(ctx context.Context, in models.NewStudent) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createStudentErr != nil {
		return nil, f.createStudentErr
	}
	now := time.Now()
	st := models.Student{
		ID:        f.id("stu"),
		UserID:    in.UserID,
		Name:      in.Name,
		Email:     in.Email,
		FeesPaid:  in.FeesPaid,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.students = append(f.students, st)
	return &st, nil
}

func (f *fakeService) UpdateStudent(ctx context.Context, id string, in models.StudentUpdate) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateFailures > 0 {
		f.updateFailures--
		return nil, errs.E(errs.Service, "update temporarily failing")
	}
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.students {
		if f.students[i].ID != id {
			continue
		}
		if in.Name != nil {
			f.students[i].Name = *in.Name
		}
		if in.Email != nil {
			f.students[i].Email = *in.Email
		}
		if in.FeesPaid != nil {
			f.students[i].FeesPaid = *in.FeesPaid
		}
		f.students[i].UpdatedAt = time.Now()
		st := f.students[i]
		return &st, nil
	}
	return nil, errs.E(errs.Service, "student not found")
}

func (f *fakeService) CreatePayment(ctx context.Context, in models.NewPayment) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createPaymentErr != nil {
		return nil, f.createPaymentErr
	}
	p := models.Payment{
		ID:              f.id("pay"),
		StudentID:       in.StudentID,
		Amount:          in.Amount,
		PaymentMethod:   in.PaymentMethod,
		CardLast4:       in.CardLast4,
		CardFingerprint: in.CardFingerprint,
		CardholderName:  in.CardholderName,
		ExpiryDate:      in.ExpiryDate,
		Status:          in.Status,
		CreatedAt:       time.Now(),
	}
	f.payments = append(f.payments, p)
	return &p, nil
}

func (f *fakeService) MarkPaymentUnconfirmed(ctx context.Context, paymentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	for i := range f.payments {
		if f.payments[i].ID == paymentID {
			f.payments[i].Status = "UNCONFIRMED"
			return nil
		}
	}
	return errs.E(errs.Service, "payment not found")
}

func (f *fakeService) studentByID(id string) (models.Student, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, st := range f.students {
		if st.ID == id {
			return st, true
		}
	}
	return models.Student{}, false
}

func (f *fakeService) paymentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payments)
}

func (f *fakeService) paymentAt(i int) models.Payment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payments[i]
}

// fakeFeed is a manually-triggered change feed.
type fakeFeed struct {
	mu     sync.Mutex
	subs   map[int]func()
	nextID int
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{subs: make(map[int]func())}
}

func (f *fakeFeed) Subscribe(onChange func()) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.subs[id] = onChange
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}, nil
}

func (f *fakeFeed) emit() {
	f.mu.Lock()
	callbacks := make([]func(), 0, len(f.subs))
	for _, cb := range f.subs {
		callbacks = append(callbacks, cb)
	}
	f.mu.Unlock()
	for _, cb := range callbacks {
		cb()
	}
}

func (f *fakeFeed) subscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
