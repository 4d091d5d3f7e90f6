package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelopeOf(text string) map[string]any {
	return map[string]any{
		"content": []any{
			map[string]any{"type": "text", "text": text},
		},
	}
}

func TestNormalizeEnvelopeWithRecord(t *testing.T) {
	v := Normalize(envelopeOf(`{"account_number":"1234567890","balance":"1000.00"}`))

	assert.Equal(t, KindRecord, v.Kind)
	assert.Equal(t, "1234567890", v.Record["account_number"])
}

func TestNormalizeEnvelopeWithList(t *testing.T) {
	v := Normalize(envelopeOf(`[{"account_number":"1234567890"},{"account_number":"2345678901"}]`))

	assert.Equal(t, KindList, v.Kind)
	assert.Len(t, v.List, 2)
}

func TestNormalizeEnvelopeWithPlainText(t *testing.T) {
	v := Normalize(envelopeOf("✅ Transferred $50 from 1234567890 to 2345678901."))

	assert.Equal(t, KindText, v.Kind)
	assert.Equal(t, "✅ Transferred $50 from 1234567890 to 2345678901.", v.Text)
}

func TestNormalizeEnvelopeWithJSONString(t *testing.T) {
	// A transfer outcome arrives JSON-encoded inside the envelope text.
	v := Normalize(envelopeOf(`"❌ Transfer failed: insufficient funds"`))

	assert.Equal(t, KindText, v.Kind)
	assert.Equal(t, "❌ Transfer failed: insufficient funds", v.Text)
}

func TestNormalizeMultiItemEnvelope(t *testing.T) {
	// Every text item is decoded; record items combine into one list.
	v := Normalize(map[string]any{
		"content": []any{
			map[string]any{"type": "text", "text": `{"account_number":"1234567890"}`},
			map[string]any{"type": "text", "text": `{"account_number":"2345678901"}`},
		},
	})
	assert.Equal(t, KindList, v.Kind)
	require.Len(t, v.List, 2)
	assert.Equal(t, "1234567890", v.List[0]["account_number"])
	assert.Equal(t, "2345678901", v.List[1]["account_number"])

	// Prose items keep all their text.
	v = Normalize(map[string]any{
		"content": []any{
			map[string]any{"type": "text", "text": "first part"},
			map[string]any{"type": "text", "text": "second part"},
		},
	})
	assert.Equal(t, KindText, v.Kind)
	assert.Contains(t, v.Text, "first part")
	assert.Contains(t, v.Text, "second part")
}

func TestNormalizeSingleTransactionBecomesList(t *testing.T) {
	v := Normalize(map[string]any{
		"transaction_id": "abc",
		"date":           "2026-08-01",
		"description":    "Transfer to 2345678901",
		"amount":         "-50.00",
	})

	assert.Equal(t, KindList, v.Kind)
	assert.Len(t, v.List, 1)
	assert.Equal(t, "abc", v.List[0]["transaction_id"])
}

func TestNormalizePlainValues(t *testing.T) {
	assert.Equal(t, KindText, Normalize("just text").Kind)
	assert.Equal(t, KindRecord, Normalize(map[string]any{"error": "boom"}).Kind)

	v := Normalize(nil)
	assert.Equal(t, KindText, v.Kind)
	assert.Equal(t, "", v.Text)
}

func TestNormalizeMixedListFallsBackToText(t *testing.T) {
	v := Normalize([]any{"a", map[string]any{"b": 1}})

	assert.Equal(t, KindText, v.Kind)
	assert.NotEmpty(t, v.Text)
}
