package service

import (
	"encoding/json"
	"errors"
	"strings"
)

const (
	jsonFence    = "```json"
	genericFence = "```"
)

var (
	errNotObject   = errors.New("reply is not a JSON object")
	errEmptyObject = errors.New("reply is an empty JSON object")
)

// extractJSONCandidate picks the text most likely to hold the JSON document:
// the body of the first ```json fence, else the first generic fence, else the
// whole reply. An unclosed fence runs to the end of the reply.
func extractJSONCandidate(reply string) string {
	if i := strings.Index(reply, jsonFence); i >= 0 {
		return fenceBody(reply[i+len(jsonFence):])
	}
	if i := strings.Index(reply, genericFence); i >= 0 {
		return fenceBody(reply[i+len(genericFence):])
	}
	return strings.TrimSpace(reply)
}

func fenceBody(rest string) string {
	if j := strings.Index(rest, genericFence); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest)
}

// ParseFloifyReply returns the JSON object carried by an LLM reply. When the
// fence-based candidate does not decode, top-level balanced {...} spans of the
// reply are tried in order. Braces nested in a span that failed are never
// retried on their own, and an object that never closes ends the scan.
func ParseFloifyReply(reply string) (json.RawMessage, error) {
	candidate := extractJSONCandidate(reply)
	doc, err := decodeObject(candidate)
	if err == nil {
		return doc, nil
	}

	for pos := 0; pos < len(reply); {
		start := strings.IndexByte(reply[pos:], '{')
		if start < 0 {
			break
		}
		start += pos

		end, ok := matchObject(reply, start)
		if !ok {
			break
		}
		if obj, objErr := decodeObject(reply[start : end+1]); objErr == nil {
			return obj, nil
		}
		pos = end + 1
	}

	return nil, err
}

// decodeObject accepts only a non-empty JSON object.
func decodeObject(s string) (json.RawMessage, error) {
	s = strings.TrimSpace(s)
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errNotObject
	}
	if len(fields) == 0 {
		return nil, errEmptyObject
	}
	return json.RawMessage(s), nil
}

// matchObject returns the index of the brace closing the object opened at
// s[start], skipping braces inside JSON strings.
func matchObject(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
