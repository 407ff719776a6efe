package utils

// Payment Method Constants
const (
	MethodCreditCard = "credit-card"
	MethodDebitCard  = "debit-card"
	MethodNetBanking = "net-banking"
)

// Payment Status Constants
const (
	PaymentRecorded    = "RECORDED"
	PaymentUnconfirmed = "UNCONFIRMED"
)
