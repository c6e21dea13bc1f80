package models

import "time"

// Event types carried on the matching workflow topic.
const (
	EventIntroRequested  = "intro.requested"
	EventFounderApproved = "founder.approved"
	EventSendEmail       = "email.send"
)

// WorkflowEvent is the envelope published to Kafka by the API and consumed
// by the notification worker.
type WorkflowEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`

	// intro.requested / founder.approved
	InvestorID string `json:"investor_id,omitempty"`
	FounderID  string `json:"founder_id,omitempty"`

	// email.send
	Email EmailPayload `json:"email,omitempty"`
}

// EmailPayload describes one outbound notification email.
type EmailPayload struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}
