package web

import "net/http"

// RegisterAPIV1 registers the status routes under /api/v1/.
func RegisterAPIV1(mux *http.ServeMux, status StatusSource) {
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", apiV1Router(status)))
}

// NewDefaultMux builds the mux shared by the overlay and the simulator.
// extra, when set, registers additional routes such as the simulator's /sim/.
func NewDefaultMux(status StatusSource, extra func(mux *http.ServeMux)) *http.ServeMux {
	mux := http.NewServeMux()
	RegisterAPIV1(mux, status)
	if extra != nil {
		extra(mux)
	}
	return mux
}
