package models

// Account identifies an authenticated user of the portal. Accounts are
// owned by the data service's auth subsystem.
type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session is an authenticated account plus its opaque session token.
type Session struct {
	Account Account `json:"account"`
	Token   string  `json:"token"`
}
