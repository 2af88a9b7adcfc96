package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *ApiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &ApiClient{httpClient: srv.Client(), BaseURL: srv.URL, Token: "secret-token"}
}

func TestApiClient_Conversation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"abc"}`))
	})
	mux.HandleFunc("/api/v1/sessions/abc/messages", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "two crunchy tacos", body["message"])
		w.Write([]byte(`{"intent":"add_item","reply":"2 Crunchy Tacos have been added to your order.",
			"order":{"lines":[{"key":"Crunchy Taco","quantity":2,"item":{"name":"Crunchy Taco","price":"1.69"}}],
			"summary":"2 x Crunchy Taco","total":"3.38"}}`))
	})

	client := newTestClient(t, mux)

	id, err := client.CreateSession()
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	reply, err := client.SendMessage(id, "two crunchy tacos")
	require.NoError(t, err)
	assert.Equal(t, "add_item", reply.Intent)
	assert.Equal(t, "3.38", reply.Order.Total)

	rows := orderRows(reply.Order)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"2", "Crunchy Taco", "$1.69"}, []string(rows[0]))
}

func TestApiClient_ErrorBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Session not found"}`))
	}))

	_, err := client.SendMessage("gone", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Session not found")

	err = client.EndSession("gone")
	assert.Error(t, err)
}
