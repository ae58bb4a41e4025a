package insight

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Kind tags the outcome of parsing an LLM message.
type Kind int

const (
	// KindParsed means a JSON object was recovered from the message.
	KindParsed Kind = iota
	// KindEmpty means the message had no content or an empty object.
	KindEmpty
	// KindMalformed means content was present but no JSON object could be found.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindParsed:
		return "PARSED"
	case KindEmpty:
		return "EMPTY"
	default:
		return "MALFORMED"
	}
}

// Envelope is the parsed content of a chat completion message. Fields is only
// set when Kind is KindParsed; Reason explains the other kinds.
type Envelope struct {
	Kind   Kind
	Fields map[string]json.RawMessage
	Reason string
}

var embeddedObject = regexp.MustCompile(`(?s)\{.*\}`)

// ParseEnvelope extracts the JSON object from a message content. Markdown
// fences are stripped first; when the content is not a JSON object the first
// brace-delimited block is tried.
func ParseEnvelope(content string) Envelope {
	trimmed := stripFences(content)
	if trimmed == "" {
		return Envelope{Kind: KindEmpty, Reason: "empty message content"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &fields); err == nil && fields != nil {
		return parsed(fields)
	}

	block := embeddedObject.FindString(trimmed)
	if block == "" {
		return Envelope{Kind: KindMalformed, Reason: "no JSON object found in response"}
	}
	if err := json.Unmarshal([]byte(block), &fields); err != nil || fields == nil {
		reason := "embedded block is not a JSON object"
		if err != nil {
			reason = "invalid embedded JSON: " + err.Error()
		}
		return Envelope{Kind: KindMalformed, Reason: reason}
	}
	return parsed(fields)
}

func parsed(fields map[string]json.RawMessage) Envelope {
	if len(fields) == 0 {
		return Envelope{Kind: KindEmpty, Reason: "empty JSON object"}
	}
	return Envelope{Kind: KindParsed, Fields: fields}
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimPrefix(s, "JSON")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
