package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZentaChain/lbms-node/pkg/codec"
	"github.com/ZentaChain/lbms-node/pkg/storage"
)

const defaultPageSize = 50

// SendRequest is the body of POST /api/v1/messages
type SendRequest struct {
	Text        string `json:"text" binding:"required"`
	Encode      bool   `json:"encode"`
	Encrypt     bool   `json:"encrypt"`
	Ack         bool   `json:"ack"`
	Rebroadcast bool   `json:"rebroadcast"`
}

// DecodeRequest is the body of POST /api/v1/decode
type DecodeRequest struct {
	Raw string `json:"raw" binding:"required"`
}

// MessageView is a stored message as returned by the history endpoint
type MessageView struct {
	ID string `json:"id"`
	*codec.DisplayMessage
}

// HistoryResponse is returned by GET /api/v1/messages
type HistoryResponse struct {
	Success  bool           `json:"success"`
	Messages []*MessageView `json:"messages"`
	Total    int            `json:"total"`
	Limit    int            `json:"limit"`
	Offset   int            `json:"offset"`
}

// handleSend handles POST /api/v1/messages
func (s *Server) handleSend(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
			Code:    "invalid_request",
		})
		return
	}

	msg, err := s.node.Send(c.Request.Context(), req.Text, codec.Options{
		Encode:      req.Encode,
		Encrypt:     req.Encrypt,
		Ack:         req.Ack,
		Rebroadcast: req.Rebroadcast,
	})
	if err != nil {
		respondError(c, "Send failed", err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    msg,
	})
}

// handleHistory handles GET /api/v1/messages?limit=&offset=
func (s *Server) handleHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "History unavailable",
			Code:  "storage_not_loaded",
		})
		return
	}

	limit, ok := s.queryInt(c, "limit", defaultPageSize)
	if !ok {
		return
	}
	if limit > s.config.MaxPageSize && s.config.MaxPageSize > 0 {
		limit = s.config.MaxPageSize
	}
	offset, ok := s.queryInt(c, "offset", 0)
	if !ok {
		return
	}

	stored, err := s.history.RecentMessages(limit, offset)
	if err != nil {
		respondError(c, "History query failed", err)
		return
	}
	total, err := s.history.CountMessages()
	if err != nil {
		respondError(c, "History query failed", err)
		return
	}

	views := make([]*MessageView, 0, len(stored))
	for _, m := range stored {
		views = append(views, newMessageView(m))
	}

	c.JSON(http.StatusOK, HistoryResponse{
		Success:  true,
		Messages: views,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	})
}

func newMessageView(m *storage.StoredMessage) *MessageView {
	return &MessageView{ID: m.MessageID, DisplayMessage: m.Display()}
}

// queryInt parses a non-negative integer query parameter. On failure it
// writes a 400 response and returns false.
func (s *Server) queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid " + name,
			Message: name + " must be a non-negative number",
			Code:    "invalid_request",
		})
		return 0, false
	}
	return v, true
}

// handleDecode handles POST /api/v1/decode. The frame is decoded with the
// node's dictionaries and pad but is neither stored nor answered.
func (s *Server) handleDecode(c *gin.Context) {
	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
			Code:    "invalid_request",
		})
		return
	}

	msg := s.node.Decode(req.Raw)
	msg.Time = time.Now().UTC()

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    msg,
	})
}
