package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/andesbank/backend/internal/services"
)

type QRHandler struct {
	service   *services.QRService
	validator *services.ValidationHelper
}

func NewQRHandler(service *services.QRService) *QRHandler {
	return &QRHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

// GenerateQR renders receive details for an account as a QR code
// @Summary Generate account QR code
// @Description Generate a scannable code carrying the account number and holder name
// @Tags QR
// @Produce json
// @Security BearerAuth
// @Param accountId path int true "Account ID"
// @Success 200 {object} object{qrCode=string,qrImage=string}
// @Failure 404 {object} services.ErrorResponse
// @Router /accounts/{accountId}/qr [get]
func (h *QRHandler) GenerateQR(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.Atoi(chi.URLParam(r, "accountId"))
	if err != nil {
		services.SendErrorResponse(w, "Invalid account id", http.StatusBadRequest, nil)
		return
	}

	qrCode, qrImage, err := h.service.GenerateAccountQR(r.Context(), accountID)
	if err != nil {
		if err == services.ErrAccountNotFound {
			services.SendErrorResponse(w, "Account not found", http.StatusNotFound, nil)
			return
		}
		services.SendErrorResponse(w, "Failed to generate QR code", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"qrCode":  qrCode,
		"qrImage": qrImage,
	})
}

// ResolveQR validates a scanned code
// @Summary Resolve QR code
// @Description Validate a scanned account QR code and return its receive details
// @Tags QR
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{qrCode=string} true "Scanned code"
// @Success 200 {object} map[string]any
// @Failure 400 {object} services.ErrorResponse
// @Router /qr/resolve [post]
func (h *QRHandler) ResolveQR(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QRCode string `json:"qrCode" validate:"required"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	payload, err := h.service.ResolveQR(r.Context(), req.QRCode)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}
