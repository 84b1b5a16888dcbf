package chatbot

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/hospital-chatbot/pkg/logging"
)

func newTestServer(t *testing.T) (*engineFixture, *httptest.Server) {
	t.Helper()
	f := newEngineFixture(t)
	h := NewHandler(f.engine, f.transcripts, logging.New("error"))

	r := chi.NewRouter()
	r.Post("/api/chatbot/start", h.StartSession)
	r.Post("/api/chatbot/message", h.Message)
	r.Get("/api/chatbot/history/{sessionID}", h.History)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return f, srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func TestStartSessionEndpoint(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/chatbot/start", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out StartSessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out.SessionID)
}

func TestMessageEndpoint(t *testing.T) {
	_, srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/chatbot/start", nil)
	var started StartSessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&started))
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/chatbot/message", MessageRequest{SessionID: started.SessionID, Message: ""})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reply Reply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	assert.Contains(t, reply.Message, "Welcome to Hospital Booking System")
	assert.Equal(t, StateAwaitingDateOfBirth, reply.State)
	assert.False(t, reply.Completed)
}

func TestMessageEndpointValidation(t *testing.T) {
	_, srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/chatbot/message", MessageRequest{Message: "hi"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	raw, err := http.Post(srv.URL+"/api/chatbot/message", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestMessageEndpointOptionWireShape(t *testing.T) {
	f, srv := newTestServer(t)
	id := f.start(t)
	f.send(id, "")
	// Wei Chen has no registered clinic, so the next reply lists
	// clinics as options.
	resp := postJSON(t, srv.URL+"/api/chatbot/message", MessageRequest{SessionID: id, Message: "03-01-1975"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var raw struct {
		Options []map[string]string `json:"options"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	require.NotEmpty(t, raw.Options)
	for _, opt := range raw.Options {
		assert.NotEmpty(t, opt["id"])
		assert.NotEmpty(t, opt["display"])
		assert.Equal(t, opt["id"], opt["value"])
	}
}

func TestHistoryEndpoint(t *testing.T) {
	f, srv := newTestServer(t)
	id := f.start(t)
	f.send(id, "")
	f.send(id, "15-06-1990")

	resp, err := http.Get(srv.URL + "/api/chatbot/history/" + id)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out HistoryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, id, out.SessionID)
	require.Len(t, out.Entries, 2)
	assert.Contains(t, out.Entries[0].BotReply, "Welcome to Hospital Booking System")

	bad, err := http.Get(srv.URL + "/api/chatbot/history/" + id + "?limit=zero")
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}
