package provider

import (
	"strings"
	"testing"

	"github.com/ZaguanLabs/tlrouter"
)

func TestTranslationPrompt(t *testing.T) {
	p := translationPrompt("Hello there", "en", "es_ES")

	if p.User != "Hello there" {
		t.Errorf("User message should be the raw text, got %q", p.User)
	}
	if !strings.Contains(p.System, "from English to Spanish (Spain)") {
		t.Errorf("Prompt should state the direction by label, got %q", p.System)
	}
	if !strings.Contains(p.System, `{"translation"`) {
		t.Error("Prompt should describe the JSON envelope")
	}
	if !strings.Contains(p.System, "commentary") {
		t.Error("Prompt should forbid commentary")
	}
}

func TestTranslationPrompt_AutoDetect(t *testing.T) {
	p := translationPrompt("Bonjour", "auto", "en")
	if !strings.Contains(p.System, "from the detected source language to English") {
		t.Errorf("Unexpected direction for auto-detect: %q", p.System)
	}
}

func TestTranslationPrompt_UnknownCode(t *testing.T) {
	p := translationPrompt("x", "en", "tlh")
	if !strings.Contains(p.System, "to tlh") {
		t.Errorf("Unknown code should fall back to the raw code, got %q", p.System)
	}
}

func TestAnalysisPrompt(t *testing.T) {
	tests := []struct {
		kind   tlrouter.AnalysisKind
		schema string
	}{
		{tlrouter.AnalysisVocabulary, `"words"`},
		{tlrouter.AnalysisGrammar, `"points"`},
		{tlrouter.AnalysisNuance, `"culturalContext"`},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			p := analysisPrompt(tlrouter.AnalysisRequest{
				SourceText:      "犬が好き",
				TranslatedText:  "I like dogs",
				SourceLang:      "ja",
				TargetLang:      "en",
				ExplanationLang: "de",
				Kind:            tt.kind,
			})

			if !strings.Contains(p.System, tt.schema) {
				t.Errorf("Prompt should embed the %s schema", tt.kind)
			}
			if !strings.Contains(p.System, "only valid JSON") {
				t.Error("Prompt should require only valid JSON")
			}
			if !strings.Contains(p.System, "in German") {
				t.Error("Prompt should name the explanation language")
			}
			if !strings.Contains(p.User, "犬が好き") || !strings.Contains(p.User, "I like dogs") {
				t.Errorf("User message should carry both texts, got %q", p.User)
			}
		})
	}
}

func TestAnalysisPrompt_WithoutTranslation(t *testing.T) {
	p := analysisPrompt(tlrouter.AnalysisRequest{SourceText: "Hola", SourceLang: "es", TargetLang: "en", Kind: tlrouter.AnalysisNuance})
	if strings.Contains(p.User, "Translation (") {
		t.Errorf("Empty translation should be omitted, got %q", p.User)
	}
}
