package hermes

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default subjects.
const (
	SubjectChatMessage        = "swarm.chat.message"
	SubjectActivationRecorded = "aktivasi.activation.recorded"
	SubjectActivationDeduped  = "aktivasi.activation.deduped"
)

// ChatMessage is one inbound chat message relayed by the chat gateway.
type ChatMessage struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	ChannelID string `json:"channel_id"`
	ThreadTS  string `json:"thread_ts,omitempty"`
	Text      string `json:"text"`
}

// DecodeChatMessage parses a chat message payload. Messages without a user
// or a channel cannot be answered and are rejected.
func DecodeChatMessage(data []byte) (ChatMessage, error) {
	var msg ChatMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ChatMessage{}, fmt.Errorf("decode chat message: %w", err)
	}
	msg.UserID = strings.TrimSpace(msg.UserID)
	msg.ChannelID = strings.TrimSpace(msg.ChannelID)
	if msg.UserID == "" || msg.ChannelID == "" {
		return ChatMessage{}, fmt.Errorf("decode chat message: missing user_id or channel_id")
	}
	return msg, nil
}

// ActivationRecorded is published after a record is appended.
type ActivationRecorded struct {
	EventID    string    `json:"event_id"`
	Serial     string    `json:"sn_ont"`
	Nik        string    `json:"nik_ont"`
	Owner      string    `json:"owner"`
	Workzone   string    `json:"workzone"`
	Technician string    `json:"technician"`
	Dialect    string    `json:"dialect"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ActivationDeduped is published after a bulk dedup rewrite.
type ActivationDeduped struct {
	EventID   string    `json:"event_id"`
	Table     string    `json:"table"`
	Dropped   int       `json:"dropped"`
	Remaining int       `json:"remaining"`
	By        string    `json:"by"`
	DedupedAt time.Time `json:"deduped_at"`
}

// NewEventID returns a fresh event id.
func NewEventID() string {
	return uuid.New().String()
}
