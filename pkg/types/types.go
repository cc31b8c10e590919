// Package types defines the wire types shared with the platform backend.
package types

import "time"

// Channel identifies the medium of a conversation.
type Channel string

const (
	ChannelChat  Channel = "chat"
	ChannelEmail Channel = "email"
	ChannelVoice Channel = "voice"
)

// Message is a single message inside a conversation. Messages are immutable
// once created; the backend only ever appends to a conversation.
type Message struct {
	ID              string         `json:"id"`
	Content         string         `json:"content"`
	SenderType      string         `json:"sender_type"` // user, agent, system
	SenderID        string         `json:"sender_id"`
	AgentID         string         `json:"agent_id,omitempty"`
	ConfidenceScore float64        `json:"confidence_score,omitempty"`
	ResponseTimeMS  int64          `json:"response_time_ms,omitempty"`
	Escalated       bool           `json:"escalated"`
	CreatedAt       time.Time      `json:"created_at"`
	ConversationID  string         `json:"conversation_id"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// Conversation is a logical exchange on one channel. The backend assigns the
// ID on the first message of a session; all later messages must reuse it.
type Conversation struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	Channel        Channel        `json:"channel"`
	Status         string         `json:"status"` // active, resolved, escalated
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	MessageCount   int            `json:"message_count"`
	LastActivity   time.Time      `json:"last_activity"`
	ResolutionRate float64        `json:"resolution_rate"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Agent describes one automated responder on the platform.
type Agent struct {
	ID                     string  `json:"id"`
	Name                   string  `json:"name"`
	Status                 string  `json:"status"` // idle, busy, offline, error
	Specialization         string  `json:"specialization"`
	CurrentLoad            int     `json:"current_load"`
	MaxLoad                int     `json:"max_load"`
	TotalProcessed         int     `json:"total_processed"`
	Errors                 int     `json:"errors"`
	CurrentTask            string  `json:"current_task,omitempty"`
	SuccessRate            float64 `json:"success_rate"`
	AverageResponseTimeMS  float64 `json:"average_response_time_ms"`
	AverageConfidenceScore float64 `json:"average_confidence_score"`
}

// ChatMessage is the request body for a chat send.
// ConversationID is empty on the first send of a session and mandatory after.
type ChatMessage struct {
	Content        string         `json:"content"`
	ConversationID string         `json:"conversation_id,omitempty"`
	UserID         string         `json:"user_id"`
	Channel        Channel        `json:"channel"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// EmailMessage is the request body for an email send.
type EmailMessage struct {
	Subject        string         `json:"subject"`
	Content        string         `json:"content"`
	FromEmail      string         `json:"from_email"`
	ToEmail        string         `json:"to_email"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// MessageResponse is the backend's reply to a chat or email send.
type MessageResponse struct {
	ID              string  `json:"id"`
	Content         string  `json:"content"`
	ResponseTimeMS  int64   `json:"response_time_ms"`
	ConfidenceScore float64 `json:"confidence_score"`
	AgentID         string  `json:"agent_id"`
	Escalated       bool    `json:"escalated"`
	ConversationID  string  `json:"conversation_id"`
}

// DashboardStats is the aggregate statistics snapshot. It is replaced
// wholesale on every poll; there are no partial updates.
type DashboardStats struct {
	TotalAgents            int            `json:"total_agents"`
	AgentStatus            map[string]int `json:"agent_status"`
	TotalMessagesProcessed int            `json:"total_messages_processed"`
	TotalEscalations       int            `json:"total_escalations"`
	ResolutionRate         float64        `json:"resolution_rate"`
	AverageResponseTimeMS  float64        `json:"average_response_time_ms"`
	PendingMessages        int            `json:"pending_messages"`
	UptimeSeconds          int64          `json:"uptime_seconds"`
	MessagesPerMinute      float64        `json:"messages_per_minute"`
}

// ScaleRequest asks the backend to scale the agent pool.
type ScaleRequest struct {
	TargetCount int `json:"target_count"`
}

// ScaleResponse acknowledges a scale request.
type ScaleResponse struct {
	Message string `json:"message"`
}

// HealthStatus is the /health payload.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Uptime  int64  `json:"uptime,omitempty"`
}
