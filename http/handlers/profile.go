package handlers

import (
	"encoding/json"
	"net/http"

	"fee-portal/http/middleware"
	"fee-portal/http/response"
	"fee-portal/logger"
	"fee-portal/services"
)

// ProfileHandler serves the authenticated account's student profile.
type ProfileHandler struct {
	profiles *services.ProfileService
	log      *logger.Logger
}

func NewProfileHandler(profiles *services.ProfileService, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, log: log}
}

// Handle dispatches GET (resolve) and PUT (save) on /profile.
func (h *ProfileHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut, http.MethodPost:
		h.save(w, r)
	default:
		response.ErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFrom(r.Context())
	if !ok {
		response.ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	resolution, err := h.profiles.Resolve(r.Context(), account)
	if err != nil {
		h.log.Error("Error resolving profile for account %s: %v", account.ID, err)
		response.FromError(w, err)
		return
	}

	response.SuccessResponse(w, http.StatusOK, "", resolution)
}

func (h *ProfileHandler) save(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFrom(r.Context())
	if !ok {
		response.ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	student, created, err := h.profiles.Save(r.Context(), account, req.Name, req.Email)
	if err != nil {
		h.log.Error("Error saving profile for account %s: %v", account.ID, err)
		response.FromError(w, err)
		return
	}

	if created {
		response.SuccessResponse(w, http.StatusCreated, "Your student profile has been created successfully.", student)
		return
	}
	response.SuccessResponse(w, http.StatusOK, "Your profile has been updated successfully.", student)
}
