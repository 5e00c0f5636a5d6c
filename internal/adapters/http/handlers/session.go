package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-engine/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-engine/internal/adapters/wire"
	"github.com/jsamuelsen/quote-engine/internal/app"
	"github.com/jsamuelsen/quote-engine/internal/platform/logging"
	"github.com/jsamuelsen/quote-engine/internal/review"
)

// SessionHandler exposes editing sessions to the UI layer.
type SessionHandler struct {
	sessions *app.SessionService
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(sessions *app.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func toSessionResponse(st *app.State) dto.SessionResponse {
	resp := dto.SessionResponse{
		SessionID:          st.SessionID,
		Quotation:          wire.FromDomain(st.Quotation),
		CanUndo:            st.CanUndo,
		CanRedo:            st.CanRedo,
		Pending:            st.Pending,
		AssistantAvailable: st.AssistantAvailable,
	}

	for _, e := range st.History {
		resp.History = append(resp.History, dto.HistoryEntryResponse{Action: e.Action, RecordedAt: e.RecordedAt})
	}

	return resp
}

func toReviewResponse(r *review.Result) dto.ReviewResponse {
	resp := dto.ReviewResponse{
		Ready:       r.Ready,
		Issues:      make([]dto.ReviewIssueResponse, 0, len(r.Issues)),
		Suggestions: r.Suggestions,
		Enhanced:    wire.FromDomain(r.Enhanced),
	}

	if resp.Suggestions == nil {
		resp.Suggestions = []string{}
	}

	for _, is := range r.Issues {
		resp.Issues = append(resp.Issues, dto.ReviewIssueResponse{
			Type:     string(is.Type),
			Severity: string(is.Severity),
			Message:  is.Message,
			Field:    is.Field,
		})
	}

	return resp
}

// Open handles POST /api/v1/sessions. The body is optional.
func (h *SessionHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if err := dto.BindAndValidate(c, &req); err != nil && !errors.Is(err, io.EOF) {
		dto.HandleBindError(c, err)
		return
	}

	st, err := h.sessions.Open(c.Request.Context(), req.QuotationID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toSessionResponse(st))
}

// Get handles GET /api/v1/sessions/:id.
func (h *SessionHandler) Get(c *gin.Context) {
	st, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(st))
}

// SubmitMessage handles POST /api/v1/sessions/:id/messages. With ?wait=true
// the response is held until the assistant reply settles or the request
// deadline passes; on deadline the instant result is returned with the turn
// still pending.
func (h *SessionHandler) SubmitMessage(c *gin.Context) {
	var query dto.SubmitMessageQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	var req dto.SubmitMessageRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	ctx := c.Request.Context()

	sub, err := h.sessions.Submit(ctx, c.Param("id"), req.Text)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	resp := dto.MessageResponse{
		SessionResponse: toSessionResponse(&sub.State),
		Applied:         sub.Applied,
		Outcome:         sub.Outcome.String(),
		Command:         sub.Command.Kind().String(),
	}

	if query.Wait && sub.Settled != nil {
		select {
		case st := <-sub.Settled:
			resp.Settlement = st.Result
			resp.AssistantResponse = st.ResponseText
			resp.Reverted = st.Reverted
			if st.Err != nil {
				resp.AssistantError = st.Err.Error()
			}

			if latest, err := h.sessions.Get(ctx, sub.SessionID); err == nil {
				resp.SessionResponse = toSessionResponse(latest)
			}
		case <-ctx.Done():
		}
	}

	c.JSON(http.StatusOK, resp)
}

// Undo handles POST /api/v1/sessions/:id/undo.
func (h *SessionHandler) Undo(c *gin.Context) {
	h.respondState(c, h.sessions.Undo)
}

// Redo handles POST /api/v1/sessions/:id/redo.
func (h *SessionHandler) Redo(c *gin.Context) {
	h.respondState(c, h.sessions.Redo)
}

// Reset handles POST /api/v1/sessions/:id/reset.
func (h *SessionHandler) Reset(c *gin.Context) {
	h.respondState(c, h.sessions.Reset)
}

// ClearHistory handles DELETE /api/v1/sessions/:id/history.
func (h *SessionHandler) ClearHistory(c *gin.Context) {
	h.respondState(c, h.sessions.ClearHistory)
}

// Review handles GET /api/v1/sessions/:id/review.
func (h *SessionHandler) Review(c *gin.Context) {
	result, err := h.sessions.Review(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toReviewResponse(result))
}

// Close handles DELETE /api/v1/sessions/:id.
func (h *SessionHandler) Close(c *gin.Context) {
	if err := h.sessions.Close(c.Request.Context(), c.Param("id")); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) respondState(c *gin.Context, op func(ctx context.Context, id string) (*app.State, error)) {
	st, err := op(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(st))
}

// RegisterSessionRoutes registers the session routes under rg.
func (h *SessionHandler) RegisterSessionRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/sessions", tagSession)
	sessions.POST("", h.Open)
	sessions.GET("/:id", h.Get)
	sessions.DELETE("/:id", h.Close)
	sessions.POST("/:id/messages", h.SubmitMessage)
	sessions.POST("/:id/undo", h.Undo)
	sessions.POST("/:id/redo", h.Redo)
	sessions.POST("/:id/reset", h.Reset)
	sessions.DELETE("/:id/history", h.ClearHistory)
	sessions.GET("/:id/review", h.Review)
}

// tagSession adds the :id path parameter to the request logger.
func tagSession(c *gin.Context) {
	if id := c.Param("id"); id != "" {
		c.Request = c.Request.WithContext(logging.WithSessionID(c.Request.Context(), id))
	}

	c.Next()
}
