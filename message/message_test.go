package message

import (
	"testing"
)

func TestNewMessage(t *testing.T) {
	msg := NewMessage(RoleUser, "Namaskar!")

	if msg.Role != RoleUser {
		t.Errorf("Expected role %s, got %s", RoleUser, msg.Role)
	}

	if msg.Content != "Namaskar!" {
		t.Errorf("Expected content 'Namaskar!', got '%s'", msg.Content)
	}

	if msg.ID == "" {
		t.Error("Expected non-empty ID")
	}

	if msg.CreatedAt.IsZero() {
		t.Error("Expected non-zero created time")
	}
}

func TestNewAssistantMessage(t *testing.T) {
	msg := NewAssistantMessage("answer", RouteResearch, true)

	if msg.Role != RoleAssistant {
		t.Errorf("Expected role %s, got %s", RoleAssistant, msg.Role)
	}
	if msg.Route != RouteResearch {
		t.Errorf("Expected route %s, got %s", RouteResearch, msg.Route)
	}
	if !msg.Grounded {
		t.Error("Expected grounded flag to be set")
	}
}

func TestRouteValid(t *testing.T) {
	for _, r := range []Route{RouteResearch, RouteWeather, RouteResponse} {
		if !r.Valid() {
			t.Errorf("Expected route %s to be valid", r)
		}
	}
	if Route("chitchat").Valid() {
		t.Error("Expected unknown route to be invalid")
	}
	if Route("").Valid() {
		t.Error("Expected empty route to be invalid")
	}
}

func TestCloneIndependence(t *testing.T) {
	msg := NewMessage(RoleUser, "original")
	msg.Metadata["lang"] = "or"

	cloned := Clone(msg)
	cloned.Metadata["lang"] = "en"
	cloned.Content = "changed"

	if msg.Content != "original" {
		t.Errorf("Clone mutated original content: %s", msg.Content)
	}
	if msg.Metadata["lang"] != "or" {
		t.Errorf("Clone mutated original metadata: %v", msg.Metadata["lang"])
	}
}

func TestCloneMessagesEmpty(t *testing.T) {
	if CloneMessages(nil) != nil {
		t.Error("Expected nil for empty input")
	}
}
