package bids

import (
	"errors"
	"time"
)

// Status tracks one invited provider's progress from invitation to a
// terminal outcome. Transitions are triggered by external events (the
// counterparty submits forms, a party accepts or withdraws); this
// engine records them and derives what they enable.
type Status string

const (
	StatusInvited               Status = "invited"
	StatusIntakePending         Status = "intake_pending"
	StatusIntakeComplete        Status = "intake_complete"
	StatusQuestionnairePending  Status = "questionnaire_pending"
	StatusQuestionnaireComplete Status = "questionnaire_complete"
	StatusNegotiationReady      Status = "negotiation_ready"
	StatusNegotiating           Status = "negotiating"
	StatusAccepted              Status = "accepted"
	StatusRejected              Status = "rejected"
	StatusWithdrawn             Status = "withdrawn"
)

// validStatuses guards the mutation boundary.
var validStatuses = map[Status]bool{
	StatusInvited: true, StatusIntakePending: true, StatusIntakeComplete: true,
	StatusQuestionnairePending: true, StatusQuestionnaireComplete: true,
	StatusNegotiationReady: true, StatusNegotiating: true,
	StatusAccepted: true, StatusRejected: true, StatusWithdrawn: true,
}

var (
	ErrBidNotFound = errors.New("bids: bid not found")
	// ErrTerminal is returned when an update targets a bid that has
	// already reached accepted, rejected or withdrawn.
	ErrTerminal      = errors.New("bids: bid is in a terminal state")
	ErrUnknownStatus = errors.New("bids: unknown status")
)

// Bid is one invited provider's progress within a session.
type Bid struct {
	ID                    string    `json:"id"`
	SessionID             string    `json:"session_id"`
	ProviderID            string    `json:"provider_id"`
	Status                Status    `json:"status"`
	IntakeComplete        bool      `json:"intake_complete"`
	QuestionnaireComplete bool      `json:"questionnaire_complete"`
	InvitedAt             time.Time `json:"invited_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// IsTerminal reports whether the status ends the bid's lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusWithdrawn
}

// CanNegotiate is the single gate that enables the negotiate action
// and, with it, the creation of negotiation items for this
// counterparty: the questionnaire is in and the bid is still live.
func CanNegotiate(b Bid) bool {
	return b.QuestionnaireComplete && !b.Status.IsTerminal()
}

// DisplayStatus derives the dashboard label. This is a priority
// cascade, not an exhaustive switch: terminal outcomes win over
// activity, activity over completeness flags, and the order below is
// load-bearing.
func DisplayStatus(b Bid) string {
	switch {
	case b.Status == StatusRejected || b.Status == StatusWithdrawn:
		return "Closed"
	case b.Status == StatusAccepted:
		return "Accepted"
	case b.Status == StatusNegotiating || b.Status == StatusNegotiationReady:
		return "Negotiating"
	case b.QuestionnaireComplete:
		return "Ready"
	case b.IntakeComplete:
		return "Questionnaire Pending"
	default:
		return "Awaiting Response"
	}
}
