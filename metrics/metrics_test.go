package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_ObserveStep(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ObserveStep("groq", "llama", OutcomeSuccess, 250*time.Millisecond)
	c.ObserveStep("groq", "llama", OutcomeSuccess, time.Second)
	c.ObserveStep("groq", "llama", OutcomeCongested, time.Second)

	if got := testutil.ToFloat64(c.StepAttempts.WithLabelValues("groq", "llama", OutcomeSuccess)); got != 2 {
		t.Errorf("success attempts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.StepAttempts.WithLabelValues("groq", "llama", OutcomeCongested)); got != 1 {
		t.Errorf("congested attempts = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(c.StepDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestCollector_ObserveFallback(t *testing.T) {
	c := New(nil)

	c.ObserveFallback("openai", 429)
	c.ObserveFallback("openai", 503)
	c.ObserveFallback("openai", 429)

	if got := testutil.ToFloat64(c.Fallbacks.WithLabelValues("openai", "429")); got != 2 {
		t.Errorf("429 fallbacks = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Fallbacks.WithLabelValues("openai", "503")); got != 1 {
		t.Errorf("503 fallbacks = %v, want 1", got)
	}
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector
	// Must not panic.
	c.ObserveStep("openai", "gpt", OutcomeError, time.Second)
	c.ObserveFallback("openai", 429)
}

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)
	c.ObserveStep("gemini", "flash", OutcomeSuccess, time.Second)
	c.ObserveFallback("gemini", 503)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{"tlrouter_step_attempts_total", "tlrouter_fallbacks_total", "tlrouter_step_duration_seconds"} {
		if !names[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}
