package compose

import (
	"testing"

	"github.com/sweetpotato0/odialingua/message"
)

func TestSanitizeAppendsTerminalMark(t *testing.T) {
	got := sanitize("ମୁଁ ଭଲ ଅଛି")
	want := "ମୁଁ ଭଲ ଅଛି।"
	if got != want {
		t.Errorf("sanitize = %q, want %q", got, want)
	}
}

func TestSanitizeKeepsExistingPunctuation(t *testing.T) {
	for _, s := range []string{"Fine.", "ଠିକ୍ ଅଛି।", "Really?"} {
		if got := sanitize(s); got != s {
			t.Errorf("sanitize(%q) = %q", s, got)
		}
	}
}

func TestSanitizeStripsOdiaNarration(t *testing.T) {
	got := sanitize("ସର୍ଚ୍ଚ ରିଜଲ୍ଟ ଅନୁଯାୟୀ ମୁଖ୍ୟମନ୍ତ୍ରୀ ମୋହନ ଚରଣ ମାଝୀ।")
	if got != "ମୁଖ୍ୟମନ୍ତ୍ରୀ ମୋହନ ଚରଣ ମାଝୀ।" {
		t.Errorf("sanitize = %q", got)
	}
}

func TestWindowHistoryKeepsNewest(t *testing.T) {
	history := []*message.Message{
		message.NewMessage(message.RoleUser, "first question about many things"),
		message.NewMessage(message.RoleAssistant, "a long answer with plenty of words in it"),
		message.NewMessage(message.RoleUser, "short"),
	}

	got := windowHistory(history, 3)
	if len(got) == 0 {
		t.Fatal("newest message must always survive")
	}
	if got[len(got)-1].Content != "short" {
		t.Errorf("newest message lost, got %q", got[len(got)-1].Content)
	}
	if len(got) == len(history) {
		t.Error("tiny budget should have trimmed old turns")
	}
}

func TestWindowHistoryEmpty(t *testing.T) {
	if got := windowHistory(nil, 100); got != nil {
		t.Errorf("windowHistory(nil) = %v", got)
	}
}
