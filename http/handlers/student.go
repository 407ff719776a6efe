package handlers

import (
	"net/http"

	"fee-portal/http/response"
	"fee-portal/logger"
	"fee-portal/models"
	"fee-portal/services"
)

// StudentHandler serves the roster views.
type StudentHandler struct {
	roster *services.RosterService
	log    *logger.Logger
}

func NewStudentHandler(roster *services.RosterService, log *logger.Logger) *StudentHandler {
	return &StudentHandler{roster: roster, log: log}
}

// List handles GET /students: the full roster, name ascending, with fee
// status. An empty roster is a success with an empty-state message, not an
// error.
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.ErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	students, err := h.roster.Students(r.Context())
	if err != nil {
		h.log.Error("Error listing students: %v", err)
		response.FromError(w, err)
		return
	}

	if students == nil {
		students = []models.Student{}
	}
	message := ""
	if len(students) == 0 {
		message = "No students registered yet"
	}
	response.SuccessResponse(w, http.StatusOK, message, students)
}

// Export handles GET /students/export: the roster as an xlsx download.
func (h *StudentHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.ErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	workbook, err := h.roster.Export(r.Context())
	if err != nil {
		h.log.Error("Error exporting roster: %v", err)
		response.FromError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="students.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(workbook); err != nil {
		h.log.Error("Error writing roster export: %v", err)
	}
}
