package httputils

import (
	"encoding/json"
	"net/http"

	"github.com/IgorGrieder/shortlink/internal/constants"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const CorrelationIDHeader = "X-Correlation-Id"

// SuccessResponse is the envelope for successful API calls.
type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorResponse carries a human-readable message and a machine-readable code.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// GetCorrelationID extracts the correlation ID from the request header
// If not present, generates a new UUID v4
func GetCorrelationID(r *http.Request) string {
	correlationID := r.Header.Get(CorrelationIDHeader)
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	return correlationID
}

// WriteAPIError writes an error response using a predefined APIError
func WriteAPIError(w http.ResponseWriter, r *http.Request, apiErr constants.APIError) {
	w.Header().Set(CorrelationIDHeader, GetCorrelationID(r))
	writeJSON(w, apiErr.Status, ErrorResponse{
		Error: apiErr.Message,
		Code:  apiErr.Code,
	})
}

// WriteAPISuccess writes a success envelope using a predefined APISuccess
func WriteAPISuccess(w http.ResponseWriter, r *http.Request, apiSuccess constants.APISuccess, data any) {
	w.Header().Set(CorrelationIDHeader, GetCorrelationID(r))
	writeJSON(w, apiSuccess.Status, SuccessResponse{
		Success: true,
		Data:    data,
	})
}

func RespondJSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, data)
}

// WriteInternalError writes the plain-text 500 used outside the JSON API.
func WriteInternalError(w http.ResponseWriter) {
	http.Error(w, constants.MsgInternalError, http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode json response", zap.Error(err))
	}
}
