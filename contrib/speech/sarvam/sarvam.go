// Package sarvam is a client for the Sarvam AI speech APIs: Bulbul
// text-to-speech and Saarika speech-to-text.
package sarvam

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

const (
	ttsURL = "https://api.sarvam.ai/text-to-speech"
	sttURL = "https://api.sarvam.ai/speech-to-text"

	ttsModel = "bulbul:v2"
	sttModel = "saarika:v2.5"

	// od-IN is the Sarvam code for Odia.
	odiaLanguageCode = "od-IN"
)

var supportedAudioSuffixes = []string{
	".wav", ".mp3", ".m4a", ".ogg", ".webm", ".aac", ".aiff", ".flac", ".mp4", ".amr",
}

// Client talks to the Sarvam AI REST API.
type Client struct {
	apiKey string
	http   *http.Client
}

// New creates a Sarvam client.
func New(apiKey string) *Client {
	return &Client{apiKey: apiKey, http: &http.Client{}}
}

// Transcript is the result of a speech-to-text request.
type Transcript struct {
	Text             string `json:"transcript"`
	DetectedLanguage string `json:"language_code"`
	RequestID        string `json:"request_id"`
}

type ttsRequest struct {
	Model               string `json:"model"`
	Text                string `json:"text"`
	TargetLanguageCode  string `json:"target_language_code"`
	EnablePreprocessing bool   `json:"enable_preprocessing"`
	SpeechSampleRate    int    `json:"speech_sample_rate"`
}

type ttsResponse struct {
	Audios []string `json:"audios"`
}

// Speak synthesises Odia speech for the given text and returns WAV bytes.
func (c *Client) Speak(ctx context.Context, text string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("Sarvam API key not configured")
	}
	if text == "" {
		return nil, fmt.Errorf("text is empty")
	}

	payload, err := json.Marshal(ttsRequest{
		Model:               ttsModel,
		Text:                text,
		TargetLanguageCode:  odiaLanguageCode,
		EnablePreprocessing: true,
		SpeechSampleRate:    24000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", ttsURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-subscription-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Sarvam TTS error (status %d): %s", resp.StatusCode, string(body))
	}

	var out ttsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(out.Audios) == 0 {
		return nil, fmt.Errorf("Sarvam TTS returned no audio data")
	}

	// Chunked audio arrives as base64 segments that concatenate into one
	// stream.
	audio, err := base64.StdEncoding.DecodeString(strings.Join(out.Audios, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio: %w", err)
	}
	return audio, nil
}

// Transcribe sends recorded audio to the speech-to-text API. Pass "unknown"
// as languageCode to let the model detect the language.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader, languageCode string) (*Transcript, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("Sarvam API key not configured")
	}
	if !IsSupportedAudioFormat(filename) {
		return nil, fmt.Errorf("unsupported audio format: %s", filename)
	}
	if languageCode == "" {
		languageCode = "unknown"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if err := mw.WriteField("model", sttModel); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if err := mw.WriteField("language_code", languageCode); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", sttURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("api-subscription-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Sarvam STT error (status %d): %s", resp.StatusCode, string(body))
	}

	var out Transcript
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if out.DetectedLanguage == "" {
		out.DetectedLanguage = "unknown"
	}
	return &out, nil
}

// IsSupportedAudioFormat reports whether the filename carries an audio
// extension the STT API accepts.
func IsSupportedAudioFormat(filename string) bool {
	lower := strings.ToLower(filename)
	for _, suffix := range supportedAudioSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
