package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parsed is a well-formed summary returned by the external service.
type Parsed struct {
	Summary string
	Tags    []string
}

// ParseFailure describes a completion that could not be turned into a summary.
type ParseFailure struct {
	Reason string
	Raw    string
}

func (p *ParseFailure) Error() string {
	return "unparseable completion: " + p.Reason
}

type completionPayload struct {
	AISummary *string `json:"ai_summary"`
	AITags    any     `json:"ai_tags"`
}

// ParseSummary decodes the JSON object requested by the prompt. Any non-nil error
// is a *ParseFailure. A missing or blank summary counts as a failure; a malformed
// tag list only drops the tags.
func ParseSummary(content string) (Parsed, error) {
	raw := stripCodeFence(content)

	var payload completionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Parsed{}, &ParseFailure{Reason: fmt.Sprintf("invalid json: %v", err), Raw: content}
	}
	if payload.AISummary == nil || strings.TrimSpace(*payload.AISummary) == "" {
		return Parsed{}, &ParseFailure{Reason: "ai_summary missing", Raw: content}
	}

	var tags []string
	if list, ok := payload.AITags.([]any); ok {
		for _, v := range list {
			if s, ok := v.(string); ok {
				tags = append(tags, s)
			}
		}
	}

	return Parsed{
		Summary: strings.TrimSpace(*payload.AISummary),
		Tags:    NormalizeTags(tags),
	}, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
