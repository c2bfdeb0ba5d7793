package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZentaChain/lbms-node/pkg/node"
	"github.com/ZentaChain/lbms-node/pkg/radio"
	"github.com/ZentaChain/lbms-node/pkg/storage"
)

// StatusResponse reports node status
type StatusResponse struct {
	Success      bool        `json:"success"`
	Node         node.Status `json:"node"`
	HistoryReady bool        `json:"historyReady"`
	Messages     int         `json:"messages"`
	CheckedAt    time.Time   `json:"checkedAt"`
}

// StationView is a station as returned by the stations endpoint
type StationView struct {
	TxID      uint16    `json:"txId"`
	FirstSeen time.Time `json:"firstSeen"`
	LastSeen  time.Time `json:"lastSeen"`
	LastRSSI  int       `json:"lastRssi"`
	LastSNR   int       `json:"lastSnr"`
	Messages  int       `json:"messages"`
}

// handleStatus handles GET /api/v1/status
func (s *Server) handleStatus(c *gin.Context) {
	resp := StatusResponse{
		Success:   true,
		Node:      s.node.Status(),
		CheckedAt: time.Now().UTC(),
	}

	if s.history != nil {
		count, err := s.history.CountMessages()
		if err != nil {
			log.WithError(err).Warn("Failed to count messages")
		} else {
			resp.HistoryReady = true
			resp.Messages = count
		}
	}

	c.JSON(http.StatusOK, resp)
}

// handleStations handles GET /api/v1/stations
func (s *Server) handleStations(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "History unavailable",
			Code:  "storage_not_loaded",
		})
		return
	}

	stations, err := s.history.Stations()
	if err != nil {
		respondError(c, "Station query failed", err)
		return
	}

	views := make([]StationView, 0, len(stations))
	for _, st := range stations {
		views = append(views, stationView(st))
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    views,
	})
}

func stationView(st *storage.Station) StationView {
	return StationView{
		TxID:      uint16(st.TxID),
		FirstSeen: time.UnixMilli(st.FirstSeen).UTC(),
		LastSeen:  time.UnixMilli(st.LastSeen).UTC(),
		LastRSSI:  st.LastRSSI,
		LastSNR:   st.LastSNR,
		Messages:  st.Messages,
	}
}

// handleRadioConfig handles GET /api/v1/radio/config
func (s *Server) handleRadioConfig(c *gin.Context) {
	cfg, err := s.node.RadioConfig(c.Request.Context())
	if err != nil {
		respondError(c, "Radio config unavailable", err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    cfg,
	})
}

// handleUpdateRadioConfig handles PUT /api/v1/radio/config
func (s *Server) handleUpdateRadioConfig(c *gin.Context) {
	var cfg radio.TransceiverConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid radio config",
			Message: err.Error(),
			Code:    "invalid_request",
		})
		return
	}

	result, err := s.node.UpdateRadioConfig(c.Request.Context(), &cfg)
	if err != nil {
		respondError(c, "Radio config update failed", err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: result,
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}
