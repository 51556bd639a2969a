package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/okhrimenko/kasabot/internal/common"
	"github.com/okhrimenko/kasabot/internal/model"
)

// webhookRequest is the POST /webhook payload.
type webhookRequest struct {
	Text string `json:"text"`
}

// routerRequest is the POST /router payload.
type routerRequest struct {
	Type      string `json:"type"` // TEXT or AUDIO
	Content   string `json:"content,omitempty"`
	FilePath  string `json:"filePath,omitempty"`
	UserID    string `json:"userId"`
	MessageID string `json:"messageId"`
	Timestamp int64  `json:"timestamp"`
}

// analysisResponse is the result shape shared by webhook, router and the
// analysis API.
type analysisResponse struct {
	ResultID     string   `json:"resultId,omitempty"`
	Date         string   `json:"date"`
	Amount       *float64 `json:"amount"`
	Category     string   `json:"category"`
	OriginalText string   `json:"originalText"`
	Error        string   `json:"error,omitempty"`
}

func toResponse(r model.Result) analysisResponse {
	return analysisResponse{
		ResultID:     r.ID,
		Date:         r.Date,
		Amount:       r.Amount,
		Category:     string(r.Category),
		OriginalText: r.OriginalText,
		Error:        r.Error,
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWebhook(c echo.Context) error {
	var req webhookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "text is required"})
	}

	result := s.pipeline.AnalyzeText(c.Request().Context(), "", req.Text)

	resp := toResponse(result)
	resp.ResultID = "" // webhook results are not stored
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleRouter(c echo.Context) error {
	var req routerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ctx := c.Request().Context()

	var result model.Result
	switch req.Type {
	case "TEXT":
		if strings.TrimSpace(req.Content) == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "content is required for TEXT"})
		}
		result = s.pipeline.AnalyzeText(ctx, req.UserID, req.Content)
	case "AUDIO":
		if req.FilePath == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "filePath is required for AUDIO"})
		}
		var err error
		result, err = s.pipeline.AnalyzeAudio(ctx, req.UserID, req.FilePath)
		if err != nil {
			s.logger.Error("audio analysis failed", "error", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "audio analysis failed"})
		}
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "type must be TEXT or AUDIO"})
	}

	if err := s.pipeline.Store(ctx, result); err != nil {
		s.logger.Error("failed to store result", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to store result"})
	}

	return c.JSON(http.StatusOK, toResponse(result))
}

func (s *Server) handleGetResult(c echo.Context) error {
	id := c.Param("resultId")

	result, err := s.pipeline.GetResult(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "result not found"})
		}
		s.logger.Error("failed to load result", "result_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load result"})
	}

	return c.JSON(http.StatusOK, toResponse(*result))
}

func (s *Server) handleUserResults(c echo.Context) error {
	userID := c.Param("userId")

	results, err := s.pipeline.GetUserResults(c.Request().Context(), userID)
	if err != nil {
		s.logger.Error("failed to load user results", "user_id", userID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load results"})
	}

	resp := make([]analysisResponse, 0, len(results))
	for _, r := range results {
		resp = append(resp, toResponse(r))
	}

	return c.JSON(http.StatusOK, resp)
}
