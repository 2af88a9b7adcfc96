package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cantina/internal/database"
	"cantina/internal/models"
	"cantina/internal/session"
)

// MessageRequest is one customer utterance
type MessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// SessionResponse is returned when a session is created
type SessionResponse struct {
	ID string `json:"id"`
}

func (s *Server) GetMenu(c *gin.Context) {
	items, err := s.catalog.ListItems(c.Request.Context())
	if err != nil {
		s.log.Error("Failed to list menu", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Menu unavailable"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) GetMenuItem(c *gin.Context) {
	item, err := s.findItem(c, c.Param("name"))
	if errors.Is(err, database.ErrItemNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	if err != nil {
		s.log.Error("Failed to look up menu item", zap.String("name", c.Param("name")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Menu unavailable"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) findItem(c *gin.Context, name string) (*models.MenuItem, error) {
	if finder, ok := s.catalog.(ItemFinder); ok {
		return finder.FindByName(c.Request.Context(), name)
	}
	items, err := s.catalog.ListItems(c.Request.Context())
	if err != nil {
		return nil, err
	}
	for i := range items {
		if strings.EqualFold(items[i].Name, strings.TrimSpace(name)) {
			return &items[i], nil
		}
	}
	return nil, database.ErrItemNotFound
}

func (s *Server) GetStats(c *gin.Context) {
	if s.metrics == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, s.metrics.Monitor().GetMetrics())
}

// Session handlers

func (s *Server) CreateSession(c *gin.Context) {
	sess := s.sessions.Create()
	c.JSON(http.StatusCreated, SessionResponse{ID: sess.ID})
}

func (s *Server) GetSession(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Server) DeleteSession(c *gin.Context) {
	if err := s.sessions.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) PostMessage(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}

	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := s.assistant.HandleMessage(c.Request.Context(), sess, req.Message)
	if err != nil {
		s.log.Error("Failed to handle message", zap.String("session_id", sess.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) lookupSession(c *gin.Context) (*session.Session, bool) {
	sess, err := s.sessions.Get(c.Param("id"))
	if errors.Is(err, session.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return sess, true
}

// Order history handlers

// OrderLineResponse is one line of an archived order
type OrderLineResponse struct {
	Key           string `json:"key"`
	ItemName      string `json:"item_name"`
	Size          string `json:"size,omitempty"`
	Modifications string `json:"modifications,omitempty"`
	Quantity      int    `json:"quantity"`
	UnitPrice     string `json:"unit_price"`
}

// OrderResponse is an archived order
type OrderResponse struct {
	ID            uint                `json:"id"`
	SessionID     string              `json:"session_id"`
	Status        string              `json:"status"`
	Total         string              `json:"total"`
	TimeCompleted time.Time           `json:"time_completed"`
	Lines         []OrderLineResponse `json:"lines"`
}

func newOrderResponse(order *models.Order) OrderResponse {
	resp := OrderResponse{
		ID:            order.ID,
		SessionID:     order.SessionID,
		Status:        order.Status,
		Total:         order.Total.StringFixed(2),
		TimeCompleted: order.TimeCompleted,
		Lines:         make([]OrderLineResponse, len(order.Lines)),
	}
	for i, line := range order.Lines {
		resp.Lines[i] = OrderLineResponse{
			Key:           line.Key,
			ItemName:      line.ItemName,
			Size:          line.Size,
			Modifications: line.Modifications,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice.StringFixed(2),
		}
	}
	return resp
}

// ListSessionOrders returns the archived orders of a session. Orders outlive
// their session, so the session need not be live.
func (s *Server) ListSessionOrders(c *gin.Context) {
	orders, err := s.orders.ListBySession(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.log.Error("Failed to list orders", zap.String("session_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Order history unavailable"})
		return
	}

	resp := make([]OrderResponse, len(orders))
	for i := range orders {
		resp[i] = newOrderResponse(&orders[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := s.orders.GetOrder(c.Request.Context(), uint(id))
	if errors.Is(err, database.ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if err != nil {
		s.log.Error("Failed to get order", zap.Uint64("order_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Order history unavailable"})
		return
	}
	c.JSON(http.StatusOK, newOrderResponse(order))
}
