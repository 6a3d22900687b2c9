package sarvam

import (
	"bytes"
	"context"
	"testing"
)

func TestIsSupportedAudioFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"recording.wav", true},
		{"RECORDING.WAV", true},
		{"voice.webm", true},
		{"clip.m4a", true},
		{"notes.txt", false},
		{"wav", false},
	}
	for _, tt := range tests {
		if got := IsSupportedAudioFormat(tt.filename); got != tt.want {
			t.Errorf("IsSupportedAudioFormat(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestTranscribeRejectsUnsupportedFormat(t *testing.T) {
	c := New("key")
	_, err := c.Transcribe(context.Background(), "notes.txt", bytes.NewReader(nil), "")
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestSpeakRequiresAPIKey(t *testing.T) {
	c := New("")
	if _, err := c.Speak(context.Background(), "ନମସ୍କାର"); err == nil {
		t.Fatal("expected error without API key")
	}
}
