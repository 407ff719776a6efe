package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"fee-portal/http/response"
	"fee-portal/logger"
	"fee-portal/services"
)

// PaymentHandler runs the payment form submission through the payment
// state machine.
type PaymentHandler struct {
	payments *services.PaymentService
	log      *logger.Logger
}

func NewPaymentHandler(payments *services.PaymentService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, log: log}
}

// paymentResponse is the settled-attempt payload: the recorded payment,
// the confirmed student and the terminal state.
type paymentResponse struct {
	State   string      `json:"state"`
	Payment interface{} `json:"payment"`
	Student interface{} `json:"student"`
}

// Submit handles POST /payment. The student_id field is the navigation
// context from the profile view; submissions without it fail with a
// session-invalid message and no payment is recorded.
func (h *PaymentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.ErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		StudentID      string  `json:"student_id"`
		Amount         float64 `json:"amount"`
		PaymentMethod  string  `json:"payment_method"`
		CardNumber     string  `json:"card_number"`
		CardholderName string  `json:"cardholder_name"`
		ExpiryDate     string  `json:"expiry_date"`
		CVV            string  `json:"cvv"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	result, err := h.payments.Submit(r.Context(), services.PaymentRequest{
		StudentID:      req.StudentID,
		Amount:         req.Amount,
		PaymentMethod:  req.PaymentMethod,
		CardNumber:     req.CardNumber,
		CardholderName: req.CardholderName,
		ExpiryDate:     req.ExpiryDate,
		CVV:            req.CVV,
	})
	if err != nil {
		h.log.Error("Payment attempt failed in state %s: %v", result.State, err)
		response.FromError(w, err)
		return
	}

	message := fmt.Sprintf("Your fee payment of ₹%.2f has been processed successfully.", result.Payment.Amount)
	response.SuccessResponse(w, http.StatusCreated, message, paymentResponse{
		State:   result.State.String(),
		Payment: result.Payment,
		Student: result.Student,
	})
}
