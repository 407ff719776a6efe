package handlers

import (
	"encoding/json"
	"net/http"

	"fee-portal/dataservice"
	"fee-portal/http/middleware"
	"fee-portal/http/response"
	"fee-portal/logger"
)

// AuthHandler exposes the data service's auth boundary: sign-in producing
// a persisted session token, and sign-out invalidating it.
type AuthHandler struct {
	auth dataservice.Auth
	log  *logger.Logger
}

func NewAuthHandler(auth dataservice.Auth, log *logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// SignIn handles POST /auth/sign-in.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.ErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.Email == "" || req.Password == "" {
		response.ErrorResponse(w, http.StatusBadRequest, "email and password are required")
		return
	}

	session, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.log.Warn("Sign-in failed for %s: %v", req.Email, err)
		response.FromError(w, err)
		return
	}

	// Persist the token so the client is restored without re-prompting.
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	response.SuccessResponse(w, http.StatusOK, "Signed in", session)
}

// SignOut handles POST /auth/sign-out.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.ErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if token := middleware.Token(r); token != "" {
		if err := h.auth.SignOut(r.Context(), token); err != nil {
			h.log.Warn("Sign-out failed: %v", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	response.SuccessResponse(w, http.StatusOK, "Signed out", nil)
}
