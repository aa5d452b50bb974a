package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rook-computer/bongocat/internal/animation"
	"github.com/rook-computer/bongocat/internal/input"
	"github.com/rook-computer/bongocat/internal/state"
)

func testStore() *state.Store {
	store := state.NewStore("41")
	store.SetCounterText("42")
	store.Show(animation.FrameHitLeft)
	store.SetPersisted("42")
	store.SetDevices([]input.DeviceInfo{{Path: "/dev/input/event3", Name: "AT Translated Set 2 keyboard"}})
	return store
}

func TestStatusEndpoint(t *testing.T) {
	mux := NewDefaultMux(testStore(), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, statusResponse{
		Count:             "42",
		Frame:             "hit_left",
		Persisted:         "42",
		Saving:            true,
		SessionKeystrokes: 1,
		Devices:           1,
	}, body)
}

func TestDevicesEndpoint(t *testing.T) {
	mux := NewDefaultMux(testStore(), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body devicesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, []input.DeviceInfo{{Path: "/dev/input/event3", Name: "AT Translated Set 2 keyboard"}}, body.Devices)

	rec = httptest.NewRecorder()
	NewDefaultMux(state.NewStore("0"), nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil))
	require.JSONEq(t, `{"devices":[]}`, rec.Body.String())
}

func TestStatusRejectsPost(t *testing.T) {
	rec := httptest.NewRecorder()
	NewDefaultMux(testStore(), nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/status", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Contains(t, rec.Body.String(), "method_not_allowed")
}

func TestExtraRoutes(t *testing.T) {
	mux := NewDefaultMux(testStore(), func(mux *http.ServeMux) {
		mux.HandleFunc("/sim/ping", func(w http.ResponseWriter, r *http.Request) { WriteJSON(w, http.StatusOK, map[string]bool{"ok": true}) })
	})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sim/ping", nil))
	require.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestDevCORS(t *testing.T) {
	handler := WithDevCORS(NewDefaultMux(testStore(), nil))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/status", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServerConfigFromEnv(t *testing.T) {
	t.Setenv(EnvListenAddr, "127.0.0.1:9999")
	t.Setenv(EnvDevMode, "true")
	cfg, err := ServerConfigFromEnv(ServerConfig{ListenAddr: ":8080"})
	require.NoError(t, err)
	require.Equal(t, ServerConfig{ListenAddr: "127.0.0.1:9999", DevMode: true}, cfg)

	t.Setenv(EnvDevMode, "sometimes")
	_, err = ServerConfigFromEnv(ServerConfig{})
	require.Error(t, err)
}

func TestHTTPServerServesAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := NewHTTPServer(ServerConfig{ListenAddr: "127.0.0.1:0"}, testStore(), nil)
	require.NoError(t, srv.Start(ctx))
	addr := srv.ListenAddr()
	require.NotEmpty(t, addr)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/api/v1/status")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Stop())
	require.Error(t, srv.Start(ctx))
}
