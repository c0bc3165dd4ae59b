package provider

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sashabaranov/go-openai"

	"github.com/ZaguanLabs/tlrouter"
)

const (
	// maxErrorBody bounds how much of an error response is inspected.
	maxErrorBody = 64 << 10
	// maxErrorMessage bounds the message carried by a ProviderError.
	maxErrorMessage = 300
)

// extractErrorMessage pulls a human-readable message out of an error body.
// JSON bodies are preferred, then HTML title or text, then the raw body.
func extractErrorMessage(body []byte) string {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	if msg := jsonErrorMessage(trimmed); msg != "" {
		return truncate(msg)
	}
	if trimmed[0] == '<' {
		if msg := htmlErrorMessage(trimmed); msg != "" {
			return truncate(msg)
		}
	}
	return truncate(collapseSpace(string(trimmed)))
}

// jsonErrorMessage understands the shapes vendors use:
// {"error":{"message":...}}, {"error":"..."}, {"message":"..."} and a
// one-element array of any of those.
func jsonErrorMessage(body []byte) string {
	if body[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil || len(items) == 0 {
			return ""
		}
		return jsonErrorMessage(bytes.TrimSpace(items[0]))
	}
	if body[0] != '{' {
		return ""
	}

	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
		Detail  string          `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	if len(payload.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(payload.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
		var plain string
		if err := json.Unmarshal(payload.Error, &plain); err == nil && plain != "" {
			return plain
		}
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Detail
}

// htmlErrorMessage returns the page title, or the body text when untitled.
// Gateways in front of the vendors answer 502/503 with HTML pages.
func htmlErrorMessage(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	if title := collapseSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	doc.Find("script, style").Remove()
	if h1 := collapseSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return collapseSpace(doc.Find("body").Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string) string {
	if len(s) <= maxErrorMessage {
		return s
	}
	cut := maxErrorMessage
	for cut > 0 && !utf8Start(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func utf8Start(b byte) bool {
	return b&0xC0 != 0x80
}

// statusError builds the ProviderError for a non-2xx response.
func statusError(provider tlrouter.ProviderID, status int, body []byte) *tlrouter.ProviderError {
	msg := extractErrorMessage(body)
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &tlrouter.ProviderError{
		Provider:   provider,
		StatusCode: status,
		Message:    msg,
	}
}

// transportError wraps a failure that produced no HTTP response. The request
// URL is dropped from the message since it may carry the API key.
func transportError(provider tlrouter.ProviderID, err error) *tlrouter.ProviderError {
	cause := err
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		cause = urlErr.Err
	}
	return &tlrouter.ProviderError{
		Provider: provider,
		Message:  "request failed",
		Cause:    cause,
	}
}

// openAIError converts go-openai errors into ProviderError.
func openAIError(provider tlrouter.ProviderID, err error) *tlrouter.ProviderError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.HTTPStatusCode)
		}
		return &tlrouter.ProviderError{
			Provider:   provider,
			StatusCode: apiErr.HTTPStatusCode,
			Message:    truncate(msg),
			Cause:      err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		providerErr := statusError(provider, reqErr.HTTPStatusCode, reqErr.Body)
		providerErr.Cause = reqErr.Err
		return providerErr
	}

	return transportError(provider, err)
}
