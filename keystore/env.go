package keystore

import (
	"context"
	"os"
	"strings"

	"github.com/ZaguanLabs/tlrouter"
)

// vendorEnv lists the variables each vendor's own SDKs read.
var vendorEnv = map[tlrouter.ProviderID]string{
	tlrouter.ProviderOpenAI:   "OPENAI_API_KEY",
	tlrouter.ProviderGroq:     "GROQ_API_KEY",
	tlrouter.ProviderCerebras: "CEREBRAS_API_KEY",
	tlrouter.ProviderXAI:      "XAI_API_KEY",
	tlrouter.ProviderGemini:   "GEMINI_API_KEY",
}

// Env reads keys from environment variables. TLROUTER_<PROVIDER>_API_KEY
// takes precedence over the vendor's conventional variable.
type Env struct {
	lookup func(string) (string, bool)
}

// NewEnv creates a store that reads the process environment.
func NewEnv() *Env {
	return &Env{lookup: os.LookupEnv}
}

// NewEnvFromMap creates a store that reads vars instead of the environment.
func NewEnvFromMap(vars map[string]string) *Env {
	return &Env{lookup: func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}}
}

// Variables returns the variable names consulted for provider, in order.
func Variables(provider tlrouter.ProviderID) []string {
	names := []string{"TLROUTER_" + strings.ToUpper(string(provider)) + "_API_KEY"}
	if name, ok := vendorEnv[provider]; ok {
		names = append(names, name)
	}
	return names
}

// APIKey implements tlrouter.KeyStore.
func (e *Env) APIKey(_ context.Context, provider tlrouter.ProviderID) (string, error) {
	for _, name := range Variables(provider) {
		if v, ok := e.lookup(name); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v, nil
			}
		}
	}
	return "", nil
}
