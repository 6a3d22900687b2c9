package message

import "time"

// Role represents the role of the message sender
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Route is the handling strategy selected for one user turn. It is a closed
// enumeration: a classifier must produce exactly one of these values.
type Route string

const (
	// RouteResearch gathers fresh evidence before answering.
	RouteResearch Route = "research"
	// RouteWeather resolves the turn through the weather provider.
	RouteWeather Route = "weather"
	// RouteResponse answers directly from general knowledge.
	RouteResponse Route = "response"
)

// Valid reports whether r is a member of the closed route set.
func (r Route) Valid() bool {
	switch r {
	case RouteResearch, RouteWeather, RouteResponse:
		return true
	}
	return false
}

// Message represents a single immutable turn in a conversation.
//
// Assistant turns carry an explicit Route tag and Grounded flag recording how
// the turn was produced, so downstream components never have to infer
// "research happened" by scanning serialized history text.
type Message struct {
	ID        string         `json:"id"`
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Route     Route          `json:"route,omitempty"`    // route that produced an assistant turn
	Grounded  bool           `json:"grounded,omitempty"` // true when the turn restates an evidence extraction
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewMessage creates a new message with the given role and content
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
		Metadata:  make(map[string]any),
	}
}

// NewAssistantMessage creates an assistant turn tagged with the route that
// produced it.
func NewAssistantMessage(content string, route Route, grounded bool) *Message {
	msg := NewMessage(RoleAssistant, content)
	msg.Route = route
	msg.Grounded = grounded
	return msg
}

// Clone creates a deep copy of the message.
func Clone(msg *Message) *Message {
	if msg == nil {
		return nil
	}
	cloned := *msg
	if msg.Metadata != nil {
		cloned.Metadata = make(map[string]any, len(msg.Metadata))
		for k, v := range msg.Metadata {
			cloned.Metadata[k] = v
		}
	}
	return &cloned
}

// CloneMessages copies a slice of messages.
func CloneMessages(msgs []*Message) []*Message {
	if len(msgs) == 0 {
		return nil
	}
	clones := make([]*Message, 0, len(msgs))
	for _, msg := range msgs {
		clones = append(clones, Clone(msg))
	}
	return clones
}

// generateID generates a unique message ID
func generateID() string {
	// Simple implementation using timestamp
	// In production, consider using UUID
	return time.Now().Format("20060102150405.000000")
}
