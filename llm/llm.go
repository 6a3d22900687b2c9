// Package llm defines the contract every generative-model provider fulfils.
// The rest of the system treats a Client as an untrusted text producer: all
// hard correctness rules are enforced in code after generation, never by
// prompt instructions alone.
package llm

import (
	"context"

	"github.com/sweetpotato0/odialingua/message"
)

// Client defines the interface for LLM providers
type Client interface {
	// Generate generates a response from the LLM
	Generate(ctx context.Context, messages []*message.Message) (*message.Message, error)

	// SetTemperature updates the temperature setting for generation
	SetTemperature(temp float64)

	// SetMaxTokens updates the maximum tokens limit for generation
	SetMaxTokens(max int64)

	// SetModel updates the model to use for generation
	SetModel(model string)
}
