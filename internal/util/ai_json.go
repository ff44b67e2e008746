package util

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
)

var (
	ErrEmptyAIResponse = errors.New("empty AI response")

	leadingNonJSON  = regexp.MustCompile(`^[^{\[]*`)
	trailingNonJSON = regexp.MustCompile(`[^}\]]*$`)
	thinkBlock      = regexp.MustCompile(`(?s)<think>.*?</think>`)
)

// StripCodeFences trims the text and removes a leading ```json or ``` fence
// and a trailing ``` fence.
func StripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = thinkBlock.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	switch {
	case strings.HasPrefix(cleaned, "```json"):
		cleaned = cleaned[len("```json"):]
	case strings.HasPrefix(cleaned, "```"):
		cleaned = cleaned[len("```"):]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

// CleanAIJSON decodes model output into out. It strips code fences and tries
// a direct decode; on failure it drops everything before the first { or [
// and after the last } or ] and tries once more.
func CleanAIJSON(raw string, out interface{}) error {
	if strings.TrimSpace(raw) == "" {
		return ErrEmptyAIResponse
	}
	cleaned := StripCodeFences(raw)

	firstErr := json.Unmarshal([]byte(cleaned), out)
	if firstErr == nil {
		return nil
	}

	trimmed := leadingNonJSON.ReplaceAllString(cleaned, "")
	trimmed = trailingNonJSON.ReplaceAllString(trimmed, "")
	if trimmed == "" {
		return fmt.Errorf("could not parse JSON from AI response: %w", firstErr)
	}
	if err := json.Unmarshal([]byte(trimmed), out); err != nil {
		return fmt.Errorf("could not parse JSON from AI response: %w", firstErr)
	}
	return nil
}

// FixEscapedNewlines turns literal "\n" sequences left inside decoded text
// into real newlines so fenced code blocks render.
func FixEscapedNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
