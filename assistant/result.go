package assistant

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind classifies a normalized tool result.
type Kind int

const (
	KindText Kind = iota
	KindRecord
	KindList
)

// Value is a tool result reduced to one of three shapes: plain text, a single
// record, or a list of records. Formatters only ever see these.
type Value struct {
	Kind   Kind
	Text   string
	Record map[string]any
	List   []map[string]any
}

// Normalize reduces a raw tool result to a Value. It peels the text-content
// envelope, decodes JSON strings, and classifies what remains. A single
// transaction record is promoted to a one-element list so the history
// formatter only has one shape to handle. Anything unrecognized passes
// through as text.
func Normalize(raw any) Value {
	return classify(unwrap(raw))
}

// unwrap peels result wrappers until a plain value remains.
func unwrap(raw any) any {
	for i := 0; i < 4; i++ {
		switch v := raw.(type) {
		case map[string]any:
			texts, ok := envelopeTexts(v)
			if !ok {
				return v
			}
			if len(texts) == 1 {
				raw = texts[0]
				continue
			}
			return decodeAll(texts)
		case string:
			decoded, ok := decodeJSON(v)
			if !ok {
				return v
			}
			raw = decoded
		default:
			return raw
		}
	}
	return raw
}

// decodeAll decodes every envelope text item. All-record items become a list;
// anything else keeps each item's text, joined.
func decodeAll(texts []string) any {
	records := make([]any, 0, len(texts))
	for _, t := range texts {
		decoded, ok := decodeJSON(t)
		if !ok {
			return strings.Join(texts, "\n")
		}
		if record, ok := decoded.(map[string]any); ok {
			records = append(records, record)
			continue
		}
		return strings.Join(texts, "\n")
	}
	return records
}

func classify(v any) Value {
	switch val := v.(type) {
	case nil:
		return Value{Kind: KindText, Text: ""}
	case string:
		return Value{Kind: KindText, Text: val}
	case map[string]any:
		if isTransactionRecord(val) {
			return Value{Kind: KindList, List: []map[string]any{val}}
		}
		return Value{Kind: KindRecord, Record: val}
	case []any:
		records := make([]map[string]any, 0, len(val))
		for _, item := range val {
			record, ok := item.(map[string]any)
			if !ok {
				// Mixed lists fall back to their JSON text.
				return Value{Kind: KindText, Text: compactJSON(v)}
			}
			records = append(records, record)
		}
		return Value{Kind: KindList, List: records}
	case []map[string]any:
		return Value{Kind: KindList, List: val}
	case bool:
		return Value{Kind: KindText, Text: fmt.Sprintf("%t", val)}
	case float64:
		return Value{Kind: KindText, Text: trimFloat(val)}
	default:
		return Value{Kind: KindText, Text: compactJSON(v)}
	}
}

// envelopeTexts extracts every text item from a content envelope.
func envelopeTexts(m map[string]any) ([]string, bool) {
	content, ok := m["content"].([]any)
	if !ok || len(content) == 0 {
		return nil, false
	}
	var texts []string
	for _, item := range content {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if text, ok := entry["text"].(string); ok {
			texts = append(texts, text)
		}
	}
	return texts, len(texts) > 0
}

// decodeJSON parses a string that carries a JSON document. Bare prose is
// returned unchanged.
func decodeJSON(s string) (any, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, false
	}
	switch trimmed[0] {
	case '{', '[', '"':
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
			return nil, false
		}
		return v, true
	default:
		return nil, false
	}
}

// isTransactionRecord reports whether a record is a lone transaction entry.
func isTransactionRecord(m map[string]any) bool {
	for _, key := range []string{"transaction_id", "date", "description"} {
		if _, ok := m[key]; !ok {
			return false
		}
	}
	return true
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
