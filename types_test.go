package tlrouter

import (
	"context"
	"testing"
)

func TestRoutingPlan_Depth(t *testing.T) {
	five := make(RoutingPlan, 5)
	seven := make(RoutingPlan, 7)

	tests := []struct {
		name      string
		plan      RoutingPlan
		requested int
		expected  int
	}{
		{"within range", five, 2, 2},
		{"full", five, 5, 5},
		{"above plan length", make(RoutingPlan, 3), 5, 3},
		{"zero clamps to one", five, 0, 1},
		{"negative clamps to one", five, -3, 1},
		{"plan longer than max", seven, 7, MaxRoutingSteps},
		{"empty plan", nil, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.plan.Depth(tt.requested); got != tt.expected {
				t.Errorf("Depth(%d) = %d, want %d", tt.requested, got, tt.expected)
			}
		})
	}
}

func TestProviderConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProviderConfig
		wantErr bool
	}{
		{"defaults", ProviderConfig{Provider: ProviderOpenAI}, false},
		{"zero temperature", ProviderConfig{Provider: ProviderGemini, Temperature: Float64(0)}, false},
		{"max temperature", ProviderConfig{Provider: ProviderGroq, Temperature: Float64(2)}, false},
		{"too hot", ProviderConfig{Provider: ProviderGroq, Temperature: Float64(2.5)}, true},
		{"negative", ProviderConfig{Provider: ProviderGroq, Temperature: Float64(-0.1)}, true},
		{"missing provider", ProviderConfig{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProviderConfig_EffectiveTemperature(t *testing.T) {
	if got := (ProviderConfig{}).EffectiveTemperature(); got != DefaultTemperature {
		t.Errorf("default temperature = %v, want %v", got, DefaultTemperature)
	}
	if got := (ProviderConfig{Temperature: Float64(0)}).EffectiveTemperature(); got != 0 {
		t.Errorf("explicit zero temperature = %v, want 0", got)
	}
}

func TestRoutingStep_Config(t *testing.T) {
	step := RoutingStep{Provider: ProviderGemini, Model: "gemini-2.5-flash", Endpoint: "http://proxy", Temperature: Float64(0.2)}
	cfg := step.Config("AIza")

	if cfg.Provider != ProviderGemini || cfg.Model != "gemini-2.5-flash" || cfg.Endpoint != "http://proxy" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.APIKey != "AIza" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if cfg.EffectiveTemperature() != 0.2 {
		t.Errorf("temperature = %v", cfg.EffectiveTemperature())
	}
}

func TestTranslationResult_IsEmpty(t *testing.T) {
	var nilResult *TranslationResult
	if !nilResult.IsEmpty() {
		t.Error("nil result should be empty")
	}
	if !(&TranslationResult{}).IsEmpty() {
		t.Error("zero result should be empty")
	}
	if (&TranslationResult{Nuance: &NuanceExplanation{}}).IsEmpty() {
		t.Error("result with nuance should not be empty")
	}
}

func TestStaticKeys(t *testing.T) {
	keys := StaticKeys{ProviderGroq: " gsk \n"}

	key, err := keys.APIKey(context.Background(), ProviderGroq)
	if err != nil || key != "gsk" {
		t.Errorf("APIKey(groq) = %q, %v", key, err)
	}
	key, err = keys.APIKey(context.Background(), ProviderOpenAI)
	if err != nil || key != "" {
		t.Errorf("APIKey(openai) = %q, %v; want empty", key, err)
	}
}
