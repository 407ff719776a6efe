package models

import "time"

// Payment is an append-only record of a fee payment submission. Card data
// is tokenized before it reaches the data service: only the last four
// digits and a SHA-256 fingerprint of the number are kept, and the CVV is
// never stored.
type Payment struct {
	ID              string    `json:"id"`
	StudentID       string    `json:"student_id"`
	Amount          float64   `json:"amount"`
	PaymentMethod   string    `json:"payment_method"`
	CardLast4       string    `json:"card_last4"`
	CardFingerprint string    `json:"card_fingerprint"`
	CardholderName  string    `json:"cardholder_name"`
	ExpiryDate      string    `json:"expiry_date"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewPayment carries an already-tokenized payment to record.
type NewPayment struct {
	StudentID       string  `json:"student_id"`
	Amount          float64 `json:"amount"`
	PaymentMethod   string  `json:"payment_method"`
	CardLast4       string  `json:"card_last4"`
	CardFingerprint string  `json:"card_fingerprint"`
	CardholderName  string  `json:"cardholder_name"`
	ExpiryDate      string  `json:"expiry_date"`
	Status          string  `json:"status"`
}
