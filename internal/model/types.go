package model

import (
	"errors"
	"fmt"
)

// InteractionType is the kind of encounter being logged.
type InteractionType string

const (
	TypeMeeting      InteractionType = "Meeting"
	TypeCall         InteractionType = "Call"
	TypeEmail        InteractionType = "Email"
	TypePresentation InteractionType = "Presentation"
)

// Valid reports whether t is one of the known interaction types.
func (t InteractionType) Valid() bool {
	switch t {
	case TypeMeeting, TypeCall, TypeEmail, TypePresentation:
		return true
	}
	return false
}

// Sentiment is the observed or inferred HCP sentiment.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

// Valid reports whether s is one of the known sentiments.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// Sender identifies who produced a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// HCP is a healthcare provider record as returned by the record store.
type HCP struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty,omitempty"`
	Contact   string `json:"contact_info,omitempty"`
}

// NewHCP is the body of an HCP creation request.
type NewHCP struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Contact   string `json:"contact_info"`
}

// Interaction is a stored interaction. Date and Time are kept as the raw
// wire strings; the draft reconciler normalises them.
type Interaction struct {
	ID                 int             `json:"id,omitempty"`
	HCPID              int             `json:"hcp_id"`
	HCPName            string          `json:"hcp_name,omitempty"`
	Type               InteractionType `json:"interaction_type,omitempty"`
	Date               string          `json:"interaction_date,omitempty"`
	Time               string          `json:"interaction_time,omitempty"`
	Attendees          string          `json:"attendees,omitempty"`
	TopicsDiscussed    string          `json:"topics_discussed,omitempty"`
	MaterialsShared    string          `json:"materials_shared,omitempty"`
	SamplesDistributed string          `json:"samples_distributed,omitempty"`
	Sentiment          Sentiment       `json:"hcp_sentiment,omitempty"`
	Outcomes           string          `json:"outcomes,omitempty"`
	FollowUpActions    string          `json:"follow_up_actions,omitempty"`
	Summary            string          `json:"summary,omitempty"`
	RawTextInput       string          `json:"raw_text_input,omitempty"`
}

// InteractionInput is the body of POST /interactions/.
type InteractionInput struct {
	HCPID              int             `json:"hcp_id"`
	Type               InteractionType `json:"interaction_type"`
	Date               string          `json:"interaction_date"`
	Time               string          `json:"interaction_time"`
	Attendees          string          `json:"attendees"`
	TopicsDiscussed    string          `json:"topics_discussed"`
	MaterialsShared    string          `json:"materials_shared"`
	SamplesDistributed string          `json:"samples_distributed"`
	Sentiment          Sentiment       `json:"hcp_sentiment"`
	Outcomes           string          `json:"outcomes"`
	FollowUpActions    string          `json:"follow_up_actions"`
}

// ChatInput is the body of POST /interactions/chat.
type ChatInput struct {
	RawText            string `json:"raw_text_input"`
	HCPName            string `json:"hcp_name"`
	TopicsDiscussed    string `json:"topics_discussed,omitempty"`
	Attendees          string `json:"attendees,omitempty"`
	MaterialsShared    string `json:"materials_shared,omitempty"`
	SamplesDistributed string `json:"samples_distributed,omitempty"`
	Outcomes           string `json:"outcomes,omitempty"`
	FollowUpActions    string `json:"follow_up_actions,omitempty"`
}

// ChatReply is the response of POST /interactions/chat.
type ChatReply struct {
	Response    string       `json:"response"`
	Interaction *Interaction `json:"interaction_object,omitempty"`
}

// ChatMessage is one turn of the chat transcript.
type ChatMessage struct {
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

// ErrNoHCPSelected is wrapped by validation errors raised when an operation
// needs an HCP and none is selected.
var ErrNoHCPSelected = errors.New("no HCP selected")

// ValidationError reports a missing or invalid local field. It never
// reaches the network.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }
