package http

import (
	"net/http"

	"fee-portal/dataservice"
	"fee-portal/http/handlers"
	"fee-portal/http/middleware"
	"fee-portal/logger"
	"fee-portal/services"
)

// Deps carries everything the router needs. All collaborators are
// injected; there are no package-level singletons.
type Deps struct {
	Auth     dataservice.Auth
	Roster   *services.RosterService
	Profiles *services.ProfileService
	Payments *services.PaymentService
	Log      *logger.Logger
}

// NewRouter wires all portal routes behind CORS and session middleware.
func NewRouter(deps Deps) *http.ServeMux {
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Log)
	studentHandler := handlers.NewStudentHandler(deps.Roster, deps.Log)
	profileHandler := handlers.NewProfileHandler(deps.Profiles, deps.Log)
	paymentHandler := handlers.NewPaymentHandler(deps.Payments, deps.Log)

	requireSession := middleware.RequireSession(deps.Auth, deps.Log)

	mux := http.NewServeMux()

	// Auth boundary
	mux.HandleFunc("/auth/sign-in", middleware.EnableCORS(authHandler.SignIn))
	mux.HandleFunc("/auth/sign-out", middleware.EnableCORS(authHandler.SignOut))

	// Roster: visible to any viewer; export needs a session.
	mux.HandleFunc("/students", middleware.EnableCORS(studentHandler.List))
	mux.HandleFunc("/students/export", middleware.EnableCORS(requireSession(studentHandler.Export)))

	// Profile & payment
	mux.HandleFunc("/profile", middleware.EnableCORS(requireSession(profileHandler.Handle)))
	mux.HandleFunc("/payment", middleware.EnableCORS(requireSession(paymentHandler.Submit)))

	return mux
}
