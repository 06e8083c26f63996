package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"

	"savewise/internal/domain/prediction"
	"savewise/internal/domain/profile"
	"savewise/internal/metrics"
	"savewise/pkg/errors"
	"savewise/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Predictor validates, encodes and scores a raw profile
type Predictor interface {
	Predict(ctx context.Context, raw map[string]interface{}) (prediction.Result, error)
	FeatureCount() int
}

// HistoryReader reads stored predictions newest first
type HistoryReader interface {
	ReadAll(ctx context.Context) prediction.History
}

// Advisor answers chat messages
type Advisor interface {
	Chat(ctx context.Context, message string) (string, error)
}

// Limiter decides whether a caller key may proceed
type Limiter interface {
	Allow(key string) bool
}

// Handlers serves the /api endpoints
type Handlers struct {
	predictor  Predictor
	history    HistoryReader
	advisor    Advisor
	limiter    Limiter
	modelCount int
	log        *logger.Logger
}

// NewHandlers wires the API handlers. limiter may be nil to disable chat rate limiting.
func NewHandlers(predictor Predictor, history HistoryReader, advisor Advisor, limiter Limiter, modelCount int, log *logger.Logger) *Handlers {
	return &Handlers{
		predictor:  predictor,
		history:    history,
		advisor:    advisor,
		limiter:    limiter,
		modelCount: modelCount,
		log:        log.Component("api"),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type recordView struct {
	Timestamp prediction.Timestamp `json:"timestamp"`
	Input     profile.Profile      `json:"input"`
	Output    prediction.Result    `json:"output"`
}

type historyResponse struct {
	TotalPredictions int          `json:"total_predictions"`
	Predictions      []recordView `json:"predictions"`
}

// Predict handles POST /api/predict
func (h *Handlers) Predict(w http.ResponseWriter, r *http.Request) {
	raw, status, msg := decodeObject(w, r)
	if status != 0 {
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}

	result, err := h.predictor.Predict(r.Context(), raw)
	if err != nil {
		status, msg := predictError(err)
		if status >= http.StatusInternalServerError {
			h.log.Errorw("Prediction request failed", err)
		}
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// decodeObject reads a JSON object body. A non-zero status means the body
// was rejected with msg.
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]interface{}, int, string) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Sprintf("Invalid data: %v", err)
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, http.StatusBadRequest, "No JSON data provided"
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, http.StatusBadRequest, fmt.Sprintf("Invalid data: %v", err)
	}
	if len(raw) == 0 {
		return nil, http.StatusBadRequest, "No JSON data provided"
	}
	return raw, 0, ""
}

func predictError(err error) (int, string) {
	var verr *errors.ValidationError
	if errors.As(err, &verr) {
		if errors.Is(err, errors.ErrMissingField) {
			return http.StatusBadRequest, fmt.Sprintf("Missing field: '%s'", verr.Field)
		}
		return http.StatusBadRequest, fmt.Sprintf("Invalid data: %s: %s", verr.Field, verr.Message)
	}
	return http.StatusInternalServerError, fmt.Sprintf("Prediction failed: %v", err)
}

// Data handles GET /api/data. It never fails: total storage failure yields
// an empty list.
func (h *Handlers) Data(w http.ResponseWriter, r *http.Request) {
	hist := h.history.ReadAll(r.Context())

	resp := historyResponse{
		TotalPredictions: len(hist.Records),
		Predictions:      make([]recordView, 0, len(hist.Records)),
	}
	for _, rec := range hist.Records {
		resp.Predictions = append(resp.Predictions, recordView{
			Timestamp: rec.Timestamp,
			Input:     rec.Input,
			Output:    rec.Output,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// Info handles GET /api/
func (h *Handlers) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Savings Prediction API",
		"features": h.predictor.FeatureCount(),
		"status":   "running",
	})
}

// Health handles GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"models":   h.modelCount,
		"features": h.predictor.FeatureCount(),
	})
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Chat handles POST /api/chat
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow(clientKey(r)) {
		metrics.ChatRequests.WithLabelValues("rate_limited").Inc()
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "Too many requests, please slow down"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil && err != io.EOF {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No message provided"})
		return
	}

	reply, err := h.advisor.Chat(r.Context(), req.Message)
	switch {
	case errors.Is(err, errors.ErrMissingField):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No message provided"})
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "An internal server error occurred. Please try again later."})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: reply})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
