package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	errs "fee-portal/errors"
	"fee-portal/http/middleware"
	"fee-portal/http/response"
	"fee-portal/logger"
	"fee-portal/models"
	"fee-portal/services"
)

func testLogger() *logger.Logger {
	return logger.New(io.Discard, logger.FATAL)
}

// fakeStore is an in-memory data service for handler tests.
type fakeStore struct {
	students []models.Student
	payments []models.Payment
	nextID   int
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeStore) ListStudents(ctx context.Context) ([]models.Student, error) {
	out := make([]models.Student, len(f.students))
	copy(out, f.students)
	return out, nil
}

func (f *fakeStore) CreateStudent(ctx context.Context, in models.NewStudent) (*models.Student, error) {
	st := models.Student{
		ID:        f.id("stu"),
		UserID:    in.UserID,
		Name:      in.Name,
		Email:     in.Email,
		FeesPaid:  in.FeesPaid,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.students = append(f.students, st)
	return &st, nil
}

func (f *fakeStore) UpdateStudent(ctx context.Context, id string, in models.StudentUpdate) (*models.Student, error) {
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
		st := f.students[i]
		return &st, nil
	}
	return nil, errs.E(errs.NotFound, "student not found")
}

func (f *fakeStore) CreatePayment(ctx context.Context, in models.NewPayment) (*models.Payment, error) {
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

func (f *fakeStore) MarkPaymentUnconfirmed(ctx context.Context, paymentID string) error {
	for i := range f.payments {
		if f.payments[i].ID == paymentID {
			f.payments[i].Status = "UNCONFIRMED"
			return nil
		}
	}
	return errs.E(errs.NotFound, "payment not found")
}

// fakeAuth is an in-memory auth boundary with one known credential.
type fakeAuth struct {
	email    string
	password string
	account  models.Account
	sessions map[string]models.Account
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		email:    "demo@feeportal.local",
		password: "demo1234",
		account:  models.Account{ID: "acc-1", Email: "demo@feeportal.local", Name: "Demo Account"},
		sessions: map[string]models.Account{},
	}
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	if email != f.email || password != f.password {
		return nil, errs.E(errs.Unauthorized, "invalid email or password")
	}
	token := fmt.Sprintf("tok-%d", len(f.sessions)+1)
	f.sessions[token] = f.account
	return &models.Session{Account: f.account, Token: token}, nil
}

func (f *fakeAuth) SignOut(ctx context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeAuth) Account(ctx context.Context, token string) (*models.Account, error) {
	account, ok := f.sessions[token]
	if !ok {
		return nil, errs.E(errs.Unauthorized, "session expired or invalid")
	}
	return &account, nil
}

func newRoster(t *testing.T, store *fakeStore) *services.RosterService {
	t.Helper()
	roster, err := services.NewRosterService(store, nil, testLogger())
	if err != nil {
		t.Fatalf("NewRosterService() error = %v", err)
	}
	return roster
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.StandardResponse {
	t.Helper()
	var body response.StandardResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return body
}

func TestStudentListEmptyState(t *testing.T) {
	store := &fakeStore{}
	h := NewStudentHandler(newRoster(t, store), testLogger())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/students", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (empty roster is not an error)", rec.Code)
	}
	body := decodeResponse(t, rec)
	if body.Message != "No students registered yet" {
		t.Errorf("message = %q, want empty-state message", body.Message)
	}
	students, ok := body.Data.([]interface{})
	if !ok || len(students) != 0 {
		t.Errorf("data = %v, want empty list", body.Data)
	}
}

func TestStudentListReturnsRoster(t *testing.T) {
	store := &fakeStore{students: []models.Student{
		{ID: "stu-1", Name: "Asha", Email: "asha@x.com", FeesPaid: true},
		{ID: "stu-2", Name: "Meera", Email: "meera@x.com"},
	}}
	h := NewStudentHandler(newRoster(t, store), testLogger())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/students", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeResponse(t, rec)
	students, ok := body.Data.([]interface{})
	if !ok || len(students) != 2 {
		t.Fatalf("data = %v, want 2 students", body.Data)
	}
}

func TestStudentExportHeaders(t *testing.T) {
	store := &fakeStore{students: []models.Student{{ID: "stu-1", Name: "Asha"}}}
	h := NewStudentHandler(newRoster(t, store), testLogger())

	rec := httptest.NewRecorder()
	h.Export(rec, httptest.NewRequest(http.MethodGet, "/students/export", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type = %q, want xlsx", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "students.xlsx") {
		t.Errorf("content disposition = %q, want attachment filename", cd)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty workbook body")
	}
}

func TestSignInSetsSessionCookie(t *testing.T) {
	h := NewAuthHandler(newFakeAuth(), testLogger())

	body := strings.NewReader(`{"email":"demo@feeportal.local","password":"demo1234"}`)
	rec := httptest.NewRecorder()
	h.SignIn(rec, httptest.NewRequest(http.MethodPost, "/auth/sign-in", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("session cookie not set")
	}
	if cookie.Value == "" {
		t.Error("session cookie has no token")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	h := NewAuthHandler(newFakeAuth(), testLogger())

	body := strings.NewReader(`{"email":"demo@feeportal.local","password":"wrong"}`)
	rec := httptest.NewRecorder()
	h.SignIn(rec, httptest.NewRequest(http.MethodPost, "/auth/sign-in", body))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			t.Error("session cookie set on failed sign-in")
		}
	}
}

func TestSignOutClearsCookie(t *testing.T) {
	auth := newFakeAuth()
	session, err := auth.SignIn(context.Background(), auth.email, auth.password)
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	h := NewAuthHandler(auth, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/auth/sign-out", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: session.Token})
	rec := httptest.NewRecorder()
	h.SignOut(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("session cookie not cleared")
	}
	if len(auth.sessions) != 0 {
		t.Error("session still registered after sign-out")
	}
}

func TestProfileGetPrefillsForNewAccount(t *testing.T) {
	store := &fakeStore{}
	roster := newRoster(t, store)
	profiles := services.NewProfileService(store, roster, testLogger())
	h := NewProfileHandler(profiles, testLogger())

	account := models.Account{ID: "acc-1", Name: "Demo Account", Email: "demo@feeportal.local"}
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req = req.WithContext(middleware.WithAccount(req.Context(), account))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeResponse(t, rec)
	data, ok := body.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data = %v, want resolution object", body.Data)
	}
	if data["exists"] != false {
		t.Error("exists = true for an account with no record")
	}
	if data["email"] != "demo@feeportal.local" {
		t.Errorf("email prefill = %v, want account email", data["email"])
	}
}

func TestProfileSaveCreatesThenUpdates(t *testing.T) {
	store := &fakeStore{}
	roster := newRoster(t, store)
	profiles := services.NewProfileService(store, roster, testLogger())
	h := NewProfileHandler(profiles, testLogger())

	account := models.Account{ID: "acc-1"}
	submit := func(payload string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(payload))
		req = req.WithContext(middleware.WithAccount(req.Context(), account))
		rec := httptest.NewRecorder()
		h.Handle(rec, req)
		return rec
	}

	rec := submit(`{"name":"Asha","email":"asha@x.com"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first save status = %d, want 201, body: %s", rec.Code, rec.Body.String())
	}

	rec = submit(`{"name":"Asha Rao","email":"asha@x.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("second save status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}
	if len(store.students) != 1 {
		t.Errorf("student count = %d, want 1", len(store.students))
	}
	if store.students[0].Name != "Asha Rao" {
		t.Errorf("name = %q, want updated name", store.students[0].Name)
	}
}

func TestProfileRequiresAccount(t *testing.T) {
	store := &fakeStore{}
	roster := newRoster(t, store)
	profiles := services.NewProfileService(store, roster, testLogger())
	h := NewProfileHandler(profiles, testLogger())

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without account context", rec.Code)
	}
}

func newPaymentHandler(t *testing.T, store *fakeStore) *PaymentHandler {
	t.Helper()
	roster := newRoster(t, store)
	payments := services.NewPaymentService(store, roster, nil, nil, testLogger())
	return NewPaymentHandler(payments, testLogger())
}

func TestPaymentSubmitSettles(t *testing.T) {
	store := &fakeStore{students: []models.Student{{ID: "stu-1", Name: "Asha"}}}
	h := newPaymentHandler(t, store)

	payload := `{
		"student_id": "stu-1",
		"amount": 5000,
		"payment_method": "credit-card",
		"card_number": "4111 1111 1111 1111",
		"cardholder_name": "Asha Rao",
		"expiry_date": "12/26",
		"cvv": "123"
	}`
	rec := httptest.NewRecorder()
	h.Submit(rec, httptest.NewRequest(http.MethodPost, "/payment", strings.NewReader(payload)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", rec.Code, rec.Body.String())
	}
	body := decodeResponse(t, rec)
	if !strings.Contains(body.Message, "processed successfully") {
		t.Errorf("message = %q, want success confirmation", body.Message)
	}
	if !store.students[0].FeesPaid {
		t.Error("fees_paid = false after settled payment")
	}

	// The raw card number must not appear anywhere in the response.
	if strings.Contains(rec.Body.String(), "4111111111111111") ||
		strings.Contains(rec.Body.String(), "4111 1111 1111 1111") {
		t.Error("response leaks the full card number")
	}
	if strings.Contains(rec.Body.String(), `"cvv"`) {
		t.Error("response carries a cvv field")
	}
}

func TestPaymentSubmitWithoutStudentID(t *testing.T) {
	store := &fakeStore{}
	h := newPaymentHandler(t, store)

	payload := `{
		"amount": 5000,
		"payment_method": "credit-card",
		"card_number": "4111111111111111",
		"cardholder_name": "Asha Rao",
		"expiry_date": "12/26",
		"cvv": "123"
	}`
	rec := httptest.NewRecorder()
	h.Submit(rec, httptest.NewRequest(http.MethodPost, "/payment", strings.NewReader(payload)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeResponse(t, rec)
	if !strings.Contains(body.Error, "invalid payment session") {
		t.Errorf("error = %q, want session-invalid message", body.Error)
	}
	if len(store.payments) != 0 {
		t.Errorf("payment count = %d, want 0", len(store.payments))
	}
}

func TestPaymentSubmitValidationError(t *testing.T) {
	store := &fakeStore{students: []models.Student{{ID: "stu-1", Name: "Asha"}}}
	h := newPaymentHandler(t, store)

	payload := `{"student_id": "stu-1", "amount": 0}`
	rec := httptest.NewRecorder()
	h.Submit(rec, httptest.NewRequest(http.MethodPost, "/payment", strings.NewReader(payload)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(store.payments) != 0 {
		t.Errorf("payment count = %d, want 0", len(store.payments))
	}
}

func TestHandlersRejectWrongMethod(t *testing.T) {
	store := &fakeStore{}
	roster := newRoster(t, store)
	profiles := services.NewProfileService(store, roster, testLogger())

	tests := []struct {
		name    string
		handler http.HandlerFunc
		method  string
	}{
		{"students list", NewStudentHandler(roster, testLogger()).List, http.MethodPost},
		{"payment submit", newPaymentHandler(t, store).Submit, http.MethodGet},
		{"sign-in", NewAuthHandler(newFakeAuth(), testLogger()).SignIn, http.MethodGet},
		{"profile", NewProfileHandler(profiles, testLogger()).Handle, http.MethodDelete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(tt.method, "/", nil))
			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want 405", rec.Code)
			}
		})
	}
}
