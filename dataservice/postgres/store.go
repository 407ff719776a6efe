// Package postgres implements the data service boundary directly against a
// Postgres database, for self-hosted deployments. Row changes on the
// students table fan out through pg_notify so the portal's cache
// invalidation works the same way as against the hosted backend.
package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	errs "fee-portal/errors"
	"fee-portal/logger"
	"fee-portal/models"
	"fee-portal/utils"
)

// NotifyChannel is the pg_notify channel fired on any write to students.
const NotifyChannel = "students_changed"

// Store is a Postgres-backed data service.
type Store struct {
	db      *sql.DB
	connStr string
	log     *logger.Logger
}

// Open connects, creates the schema and seeds the demo account.
func Open(connStr string, log *logger.Logger) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, errs.E(errs.Service, "error opening database", err)
	}

	if err := db.Ping(); err != nil {
		return nil, errs.E(errs.Service, "error connecting to database", err)
	}

	s := &Store{db: db, connStr: connStr, log: log}
	if err := s.createTables(); err != nil {
		return nil, errs.E(errs.Service, "error creating tables", err)
	}
	if err := s.seedDemoAccount(); err != nil {
		log.Warn("Error seeding demo account: %v", err)
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	accountTable := `
	CREATE TABLE IF NOT EXISTS accounts (
		id UUID PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL
	);`

	sessionTable := `
	CREATE TABLE IF NOT EXISTS sessions (
		token UUID PRIMARY KEY,
		account_id UUID NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	);`

	studentTable := `
	CREATE TABLE IF NOT EXISTS students (
		id UUID PRIMARY KEY,
		user_id UUID UNIQUE,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		fees_paid BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	paymentTable := `
	CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY,
		student_id UUID NOT NULL REFERENCES students(id),
		amount DOUBLE PRECISION NOT NULL,
		payment_method TEXT NOT NULL,
		card_last4 TEXT NOT NULL DEFAULT '',
		card_fingerprint TEXT NOT NULL DEFAULT '',
		cardholder_name TEXT NOT NULL DEFAULT '',
		expiry_date TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	// Any write to students pings the notify channel; listeners re-fetch.
	changeTrigger := `
	CREATE OR REPLACE FUNCTION notify_students_changed() RETURNS trigger AS $$
	BEGIN
		PERFORM pg_notify('` + NotifyChannel + `', '');
		RETURN NULL;
	END;
	$$ LANGUAGE plpgsql;

	DROP TRIGGER IF EXISTS students_changed ON students;
	CREATE TRIGGER students_changed
		AFTER INSERT OR UPDATE OR DELETE ON students
		FOR EACH STATEMENT EXECUTE FUNCTION notify_students_changed();`

	for _, stmt := range []string{accountTable, sessionTable, studentTable, paymentTable, changeTrigger} {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// seedDemoAccount inserts a sign-in account for local development if none
// exists yet.
func (s *Store) seedDemoAccount() error {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)`, "demo@feeportal.local").Scan(&exists)
	if err != nil || exists {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO accounts (id, email, name, password_hash) VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), "demo@feeportal.local", "Demo Student", string(hash))
	if err == nil {
		s.log.Info("Seeded demo account demo@feeportal.local")
	}
	return err
}

const studentColumns = "id, user_id, name, email, fees_paid, created_at, updated_at"

func scanStudent(row interface{ Scan(...interface{}) error }) (*models.Student, error) {
	var st models.Student
	if err := row.Scan(&st.ID, &st.UserID, &st.Name, &st.Email, &st.FeesPaid, &st.CreatedAt, &st.UpdatedAt); err != nil {
		return nil, err
	}
	return &st, nil
}

// ListStudents returns all students ordered by name ascending.
func (s *Store) ListStudents(ctx context.Context) ([]models.Student, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+studentColumns+` FROM students ORDER BY name ASC`)
	if err != nil {
		return nil, errs.E(errs.Service, "error listing students", err)
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, errs.E(errs.Service, "error scanning student", err)
		}
		students = append(students, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.E(errs.Service, "error reading students", err)
	}
	return students, nil
}

// CreateStudent inserts a student row.
func (s *Store) CreateStudent(ctx context.Context, in models.NewStudent) (*models.Student, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO students (id, user_id, name, email, fees_paid) VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+studentColumns,
		uuid.NewString(), in.UserID, in.Name, in.Email, in.FeesPaid)

	st, err := scanStudent(row)
	if err != nil {
		return nil, errs.E(errs.Service, "error creating student", err)
	}
	return st, nil
}

// UpdateStudent applies a partial update; nil fields keep current values.
func (s *Store) UpdateStudent(ctx context.Context, id string, in models.StudentUpdate) (*models.Student, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE students SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			fees_paid = COALESCE($4, fees_paid),
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1
		 RETURNING `+studentColumns,
		id, in.Name, in.Email, in.FeesPaid)

	st, err := scanStudent(row)
	if err == sql.ErrNoRows {
		return nil, errs.E(errs.Service, "student not found")
	}
	if err != nil {
		return nil, errs.E(errs.Service, "error updating student", err)
	}
	return st, nil
}

// CreatePayment appends a payment row.
func (s *Store) CreatePayment(ctx context.Context, in models.NewPayment) (*models.Payment, error) {
	var p models.Payment
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO payments (id, student_id, amount, payment_method, card_last4, card_fingerprint, cardholder_name, expiry_date, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, student_id, amount, payment_method, card_last4, card_fingerprint, cardholder_name, expiry_date, status, created_at`,
		uuid.NewString(), in.StudentID, in.Amount, in.PaymentMethod, in.CardLast4, in.CardFingerprint, in.CardholderName, in.ExpiryDate, in.Status)

	err := row.Scan(&p.ID, &p.StudentID, &p.Amount, &p.PaymentMethod, &p.CardLast4, &p.CardFingerprint, &p.CardholderName, &p.ExpiryDate, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, errs.E(errs.Service, "error creating payment", err)
	}
	return &p, nil
}

// MarkPaymentUnconfirmed flags a payment for reconciliation.
func (s *Store) MarkPaymentUnconfirmed(ctx context.Context, paymentID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE payments SET status = $1 WHERE id = $2`, utils.PaymentUnconfirmed, paymentID)
	if err != nil {
		return errs.E(errs.Service, "error marking payment unconfirmed", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return errs.E(errs.Service, "payment not found")
	}
	return nil
}

// SignIn verifies credentials and issues a session token.
func (s *Store) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	var acct models.Account
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash FROM accounts WHERE email = $1`, email).
		Scan(&acct.ID, &acct.Email, &acct.Name, &hash)
	if err == sql.ErrNoRows {
		return nil, errs.E(errs.Unauthorized, "invalid email or password")
	}
	if err != nil {
		return nil, errs.E(errs.Service, "error looking up account", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, errs.E(errs.Unauthorized, "invalid email or password")
	}

	token := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, `INSERT INTO sessions (token, account_id) VALUES ($1, $2)`, token, acct.ID); err != nil {
		return nil, errs.E(errs.Service, "error creating session", err)
	}

	return &models.Session{Account: acct, Token: token}, nil
}

// SignOut invalidates a session token.
func (s *Store) SignOut(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return errs.E(errs.Service, "error deleting session", err)
	}
	return nil
}

// Account resolves the account behind a session token.
func (s *Store) Account(ctx context.Context, token string) (*models.Account, error) {
	var acct models.Account
	err := s.db.QueryRowContext(ctx,
		`SELECT a.id, a.email, a.name FROM sessions s JOIN accounts a ON a.id = s.account_id WHERE s.token = $1`, token).
		Scan(&acct.ID, &acct.Email, &acct.Name)
	if err == sql.ErrNoRows {
		return nil, errs.E(errs.Unauthorized, "session not found")
	}
	if err != nil {
		return nil, errs.E(errs.Service, "error resolving session", err)
	}
	return &acct, nil
}
