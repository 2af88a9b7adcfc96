package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cantina/internal/assistant"
	"cantina/internal/config"
	"cantina/internal/database"
	"cantina/internal/generation"
	"cantina/internal/interpreter"
	"cantina/internal/models"
	"cantina/internal/monitoring"
	"cantina/internal/session"
)

type outcomeResponse struct {
	Intent string `json:"intent"`
	Reply  string `json:"reply"`
	Order  struct {
		Summary string `json:"summary"`
		Total   string `json:"total"`
	} `json:"order"`
}

type brokenCatalog struct{}

func (brokenCatalog) ListItems(context.Context) ([]models.MenuItem, error) {
	return nil, errors.New("connection refused")
}

func testCatalog() assistant.StaticCatalog {
	return assistant.StaticCatalog{
		{Name: "Crunchy Taco", Price: decimal.RequireFromString("1.69"), Description: "Beef, lettuce and cheese in a corn shell.",
			Ingredients: models.StringSlice{"lettuce", "cheese", "beef"}, Tags: models.StringSlice{"taco", "dairy"}},
		{Name: "Horchata", Price: decimal.RequireFromString("2.29"), Description: "Sweet rice milk.",
			Ingredients: models.StringSlice{"rice", "milk"}, Tags: models.StringSlice{"drink", "dairy"}},
	}
}

func newTestServer(t *testing.T, catalog assistant.Catalog, opts ...Option) (*Server, *session.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	metrics := monitoring.NewMetricsCollector()
	store := session.NewStore(0, nil, metrics)
	a := assistant.New(interpreter.Default(), catalog, generation.Echo{}, assistant.WithMetrics(metrics))
	opts = append([]Option{WithMetrics(metrics)}, opts...)
	return NewServer(a, store, catalog, opts...), store
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

// newDatabaseServer serves the built-in menu from an in-memory sqlite
// catalog and archives orders to the same database.
func newDatabaseServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite3", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db))
	_, err = database.Seed(context.Background(), db, database.DefaultMenu())
	require.NoError(t, err)

	catalog := database.NewMenuRepository(db)
	orders := database.NewOrderRepository(db)
	a := assistant.New(interpreter.Default(), catalog, generation.Echo{}, assistant.WithArchive(orders))
	return NewServer(a, session.NewStore(0, nil, nil), catalog, WithOrderHistory(orders))
}

func createSession(t *testing.T, s *Server) string {
	t.Helper()
	w := do(t, s, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, testCatalog())

	w := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestGetMenu(t *testing.T) {
	s, _ := newTestServer(t, testCatalog())

	w := do(t, s, http.MethodGet, "/api/v1/menu", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "Crunchy Taco", items[0]["name"])
	assert.Equal(t, "1.69", items[0]["price"])
}

func TestGetMenu_CatalogUnavailable(t *testing.T) {
	s, _ := newTestServer(t, brokenCatalog{})

	w := do(t, s, http.MethodGet, "/api/v1/menu", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetMenuItem(t *testing.T) {
	s, _ := newTestServer(t, testCatalog())

	w := do(t, s, http.MethodGet, "/api/v1/menu/horchata", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var item map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	assert.Equal(t, "Horchata", item["name"])
	assert.Equal(t, "2.29", item["price"])

	w = do(t, s, http.MethodGet, "/api/v1/menu/pizza", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	broken, _ := newTestServer(t, brokenCatalog{})
	w = do(t, broken, http.MethodGet, "/api/v1/menu/horchata", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetMenuItem_Database(t *testing.T) {
	s := newDatabaseServer(t)

	w := do(t, s, http.MethodGet, "/api/v1/menu/CRUNCHY%20TACO", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var item map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	assert.Equal(t, "Crunchy Taco", item["name"])
	assert.Equal(t, "1.69", item["price"])

	w = do(t, s, http.MethodGet, "/api/v1/menu/pizza", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderHistory(t *testing.T) {
	s := newDatabaseServer(t)
	id := createSession(t, s)

	w := do(t, s, http.MethodGet, "/api/v1/sessions/"+id+"/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, s, http.MethodPost, "/api/v1/sessions/"+id+"/messages", MessageRequest{Message: "I want two crunchy tacos"})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, s, http.MethodPost, "/api/v1/sessions/"+id+"/messages", MessageRequest{Message: "I'm done"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/api/v1/sessions/"+id+"/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var orders []OrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, id, orders[0].SessionID)
	assert.Equal(t, string(models.OrderStatusCompleted), orders[0].Status)
	assert.Equal(t, "3.38", orders[0].Total)
	require.Len(t, orders[0].Lines, 1)
	assert.Equal(t, OrderLineResponse{Key: "Crunchy Taco", ItemName: "Crunchy Taco", Quantity: 2, UnitPrice: "1.69"}, orders[0].Lines[0])

	w = do(t, s, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", orders[0].ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var order OrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, orders[0].ID, order.ID)
	assert.Equal(t, "3.38", order.Total)

	w = do(t, s, http.MethodGet, "/api/v1/orders/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, s, http.MethodGet, "/api/v1/orders/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHistory_NotConfigured(t *testing.T) {
	s, _ := newTestServer(t, testCatalog())

	w := do(t, s, http.MethodGet, "/api/v1/orders/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConversation(t *testing.T) {
	s, _ := newTestServer(t, testCatalog())
	id := createSession(t, s)

	w := do(t, s, http.MethodPost, "/api/v1/sessions/"+id+"/messages", MessageRequest{Message: "I want two crunchy tacos"})
	require.Equal(t, http.StatusOK, w.Code)

	var out outcomeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "add_item", out.Intent)
	assert.Equal(t, "2 Crunchy Tacos have been added to your order.", out.Reply)
	assert.Equal(t, "2 x Crunchy Taco", out.Order.Summary)
	assert.Equal(t, "3.38", out.Order.Total)

	w = do(t, s, http.MethodGet, "/api/v1/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, id, snap.ID)
	assert.Equal(t, "3.38", snap.Total)
	require.Len(t, snap.History, 1)
	assert.Equal(t, "I want two crunchy tacos", snap.History[0].Utterance)

	w = do(t, s, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"last_intent":"add_item"`)
}

func TestPostMessage_Errors(t *testing.T) {
	s, _ := newTestServer(t, testCatalog())
	id := createSession(t, s)

	w := do(t, s, http.MethodPost, "/api/v1/sessions/"+id+"/messages", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/api/v1/sessions/missing/messages", MessageRequest{Message: "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	broken, store := newTestServer(t, brokenCatalog{})
	sess := store.Create()
	w = do(t, broken, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/messages", MessageRequest{Message: "hi"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDeleteSession(t *testing.T) {
	s, store := newTestServer(t, testCatalog())
	id := createSession(t, s)

	w := do(t, s, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, store.Len())

	w = do(t, s, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodGet, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	const secret = "test-secret"
	s, _ := newTestServer(t, testCatalog(), WithJWTSecret(secret))

	w := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/api/v1/menu", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	forged, err := IssueToken("other-secret", "kiosk-1")
	require.NoError(t, err)
	valid, err := IssueToken(secret, "kiosk-1")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"bearer token", "Bearer " + valid, http.StatusOK},
		{"raw token", valid, http.StatusOK},
		{"wrong secret", "Bearer " + forged, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/api/v1/menu", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()
			s.Router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/menu?token="+valid, nil)
	w = httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebSocketChat(t *testing.T) {
	s, store := newTestServer(t, testCatalog())
	sess := store.Create()

	srv := httptest.NewServer(s.Router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?session_id=" + sess.ID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, conn.WriteJSON(MessageRequest{Message: "can I get a large horchata"}))
	var out outcomeResponse
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "add_item", out.Intent)
	assert.Equal(t, "1 x Large Horchata", out.Order.Summary)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	var errResp map[string]string
	require.NoError(t, conn.ReadJSON(&errResp))
	assert.NotEmpty(t, errResp["error"])

	require.NoError(t, conn.WriteJSON(MessageRequest{Message: "view my order"}))
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "view_order", out.Intent)
	assert.Contains(t, out.Reply, "1 x Large Horchata")
}

func TestWebSocket_UnknownSession(t *testing.T) {
	s, _ := newTestServer(t, testCatalog())

	srv := httptest.NewServer(s.Router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?session_id=missing"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
