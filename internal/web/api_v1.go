package web

import (
	"encoding/json"
	"net/http"

	"github.com/rook-computer/bongocat/internal/input"
	"github.com/rook-computer/bongocat/internal/state"
)

// StatusSource is anything that can hand out a display snapshot.
type StatusSource interface {
	Snapshot() state.State
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type statusResponse struct {
	Count             string `json:"count"`
	Frame             string `json:"frame"`
	Persisted         string `json:"persisted,omitempty"`
	Saving            bool   `json:"saving"`
	SessionKeystrokes uint64 `json:"sessionKeystrokes"`
	Devices           int    `json:"devices"`
}

type devicesResponse struct {
	Devices []input.DeviceInfo `json:"devices"`
}

func apiV1Router(status StatusSource) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) { handleStatus(w, r, status) })
	mux.HandleFunc("/devices", func(w http.ResponseWriter, r *http.Request) { handleDevices(w, r, status) })
	return mux
}

func handleStatus(w http.ResponseWriter, r *http.Request, status StatusSource) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	snap := status.Snapshot()
	writeJSON(w, http.StatusOK, statusResponse{
		Count:             snap.CounterText,
		Frame:             string(snap.Frame),
		Persisted:         snap.Persisted,
		Saving:            !snap.WriterDown,
		SessionKeystrokes: snap.SessionKeystrokes,
		Devices:           len(snap.Devices),
	})
}

func handleDevices(w http.ResponseWriter, r *http.Request, status StatusSource) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	devices := status.Snapshot().Devices
	if devices == nil {
		devices = []input.DeviceInfo{}
	}
	writeJSON(w, http.StatusOK, devicesResponse{Devices: devices})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}

// WriteJSON is exported for handlers registered next to the API.
func WriteJSON(w http.ResponseWriter, status int, v any) { writeJSON(w, status, v) }

// WriteAPIError writes the API's error envelope.
func WriteAPIError(w http.ResponseWriter, status int, code, message string) {
	writeAPIError(w, status, code, message)
}
