// Package bridge defines the postMessage contract between the article
// page and the survey page embedding it in an iframe. The server never
// posts these messages itself; handlers return them as the "emit" field
// of a response and the front-end forwards them to the parent window.
package bridge

import (
	"encoding/json"
	"fmt"
)

// MessageType identifies a cross-window message
type MessageType string

const (
	TypeRequestQualtricsData MessageType = "REQUEST_QUALTRICS_DATA"
	TypeQualtricsData        MessageType = "QUALTRICS_DATA"
	TypeArticleButtonClick   MessageType = "ARTICLE_BUTTON_CLICK"
	TypeArticleInteraction   MessageType = "ARTICLE_INTERACTION"
)

// Message is one cross-window payload. Only the fields relevant to the
// message type are populated.
type Message struct {
	Type            MessageType     `json:"type"`
	Payload         json.RawMessage `json:"payload,omitempty"`
	ButtonType      string          `json:"buttonType,omitempty"`
	InteractionType string          `json:"interactionType,omitempty"`
}

// RequestQualtricsData asks the embedding page for its survey context
func RequestQualtricsData() Message {
	return Message{Type: TypeRequestQualtricsData}
}

// QualtricsData wraps survey context handed back by the embedding page
func QualtricsData(payload interface{}) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal qualtrics payload: %w", err)
	}
	return Message{Type: TypeQualtricsData, Payload: data}, nil
}

// ButtonClick notifies the embedding page of an article button press
func ButtonClick(buttonType string) Message {
	return Message{Type: TypeArticleButtonClick, ButtonType: buttonType}
}

// Interaction notifies the embedding page of a comment-section interaction
// (comment, reply, vote)
func Interaction(interactionType string) Message {
	return Message{Type: TypeArticleInteraction, InteractionType: interactionType}
}

// Inbound is a message received from the embedding page. Older survey
// templates send a bare {"qualtricsResponseId": "..."} envelope with no
// type field; ParseInbound accepts both shapes.
type Inbound struct {
	Message
	QualtricsResponseID string `json:"qualtricsResponseId,omitempty"`
}

// ParseInbound decodes a message posted by the embedding page
func ParseInbound(data []byte) (*Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("malformed bridge message: %w", err)
	}
	if in.Type == "" && in.QualtricsResponseID == "" {
		return nil, fmt.Errorf("bridge message has neither type nor qualtricsResponseId")
	}
	return &in, nil
}
