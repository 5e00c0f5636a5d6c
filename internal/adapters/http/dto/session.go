package dto

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jsamuelsen/quote-engine/internal/adapters/wire"
	"github.com/jsamuelsen/quote-engine/internal/domain"
)

// MaxMessageLength bounds one chat line in runes.
const MaxMessageLength = 2000

// OpenSessionRequest is the body of POST /sessions. The body is optional.
type OpenSessionRequest struct {
	QuotationID string `json:"quotation_id" validate:"omitempty,max=128,quotationid"`
}

// SubmitMessageRequest is the body of POST /sessions/:id/messages.
type SubmitMessageRequest struct {
	Text string `json:"text" validate:"required,notempty"`
}

// Validate counts runes so multi-byte text is not cut short.
func (r *SubmitMessageRequest) Validate() error {
	if utf8.RuneCountInString(strings.TrimSpace(r.Text)) > MaxMessageLength {
		return domain.NewValidationError("text", "must be at most 2000 characters")
	}

	return nil
}

// SubmitMessageQuery holds the query parameters of POST /sessions/:id/messages.
type SubmitMessageQuery struct {
	// Wait blocks the response until the assistant reply settles.
	Wait bool `form:"wait"`
}

// HistoryEntryResponse is one recorded snapshot.
type HistoryEntryResponse struct {
	Action     string    `json:"action"`
	RecordedAt time.Time `json:"recorded_at"`
}

// SessionResponse is the state view of a session.
type SessionResponse struct {
	SessionID          string                 `json:"session_id"`
	Quotation          *wire.QuotationDoc     `json:"quotation"`
	CanUndo            bool                   `json:"can_undo"`
	CanRedo            bool                   `json:"can_redo"`
	Pending            int                    `json:"pending"`
	AssistantAvailable bool                   `json:"assistant_available"`
	History            []HistoryEntryResponse `json:"history,omitempty"`
}

// MessageResponse is the result of submitting a message. The assistant
// fields are only set when the request waited for settlement.
type MessageResponse struct {
	SessionResponse

	Applied bool   `json:"applied"`
	Outcome string `json:"outcome"`
	Command string `json:"command"`

	// Settlement is merged, adopted, unchanged or reverted.
	Settlement        string `json:"settlement,omitempty"`
	AssistantResponse string `json:"assistant_response,omitempty"`
	Reverted          bool   `json:"reverted,omitempty"`
	AssistantError    string `json:"assistant_error,omitempty"`
}

// ReviewIssueResponse is one review finding.
type ReviewIssueResponse struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// ReviewResponse is the body of GET /sessions/:id/review.
type ReviewResponse struct {
	Ready       bool                  `json:"ready"`
	Issues      []ReviewIssueResponse `json:"issues"`
	Suggestions []string              `json:"suggestions"`
	Enhanced    *wire.QuotationDoc    `json:"enhanced_quotation"`
}
