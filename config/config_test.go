package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Provider: ProviderConfig{Name: "groq", Model: "llama-3.3-70b-versatile"},
		Store:    StoreConfig{Backend: "inmemory"},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Provider.Name = "llamacpp"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "provider.name") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestValidateBackendSpecificFields(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Backend = "postgres"
	// Postgres selected but left unconfigured.
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for empty postgres settings")
	}

	cfg.Store.Postgres = PostgresConfig{
		Host: "db.internal", Port: 5432, User: "svc", DBName: "odialingua", SSLMode: "require",
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidatorFluentChain(t *testing.T) {
	v := NewValidator().
		RequireNonEmpty("a", "").
		RequirePositive("b", 0).
		ValidateOneOf("c", "x", "y", "z")
	if len(v.Errors()) != 3 {
		t.Errorf("errors = %d, want 3", len(v.Errors()))
	}
	if v.Error() == nil {
		t.Error("combined error expected")
	}
}
