// Package provider groups the generative-model backends. Each subpackage
// implements llm.Client for one upstream API; Groq is the default for this
// deployment, the others are drop-in alternatives.
package provider
