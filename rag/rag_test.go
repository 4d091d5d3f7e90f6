package rag

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omisdami/bankassist/config"
)

type stubGenerator struct {
	reply      string
	lastPrompt string
	calls      int
}

func (g *stubGenerator) Complete(ctx context.Context, system, prompt string) (string, error) {
	g.calls++
	g.lastPrompt = prompt
	return g.reply, nil
}

func writeDocs(t *testing.T, docs map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func testKB(t *testing.T, gen Generator, docs map[string]string) *KnowledgeBase {
	t.Helper()
	kb, err := NewKnowledgeBase(config.RAGConfig{
		DocsDir:         writeDocs(t, docs),
		TopK:            3,
		ChunkSize:       200,
		ChunkOverlap:    50,
		CacheTTLSeconds: 60,
	}, gen, zerolog.Nop())
	require.NoError(t, err)
	return kb
}

func TestAnswerCitesSources(t *testing.T) {
	gen := &stubGenerator{reply: "A TFSA shelters investment growth from tax."}
	kb := testKB(t, gen, map[string]string{
		"tfsa_guide.md":   "A TFSA is a tax-free savings account. Contributions grow tax free.",
		"mortgage_faq.md": "Mortgage rates depend on the term and the prime rate.",
	})

	answer, err := kb.Answer(context.Background(), "what is a TFSA savings account?")
	require.NoError(t, err)

	assert.Equal(t, "A TFSA shelters investment growth from tax.", answer.Text)
	assert.Contains(t, answer.Sources, "tfsa_guide.md")
	assert.NotContains(t, answer.Sources, "mortgage_faq.md")

	// The retrieved excerpt is in the prompt along with the question.
	assert.Contains(t, gen.lastPrompt, "tax-free savings account")
	assert.Contains(t, gen.lastPrompt, "Question: what is a TFSA savings account?")
}

func TestAnswerWithNoMatchingChunks(t *testing.T) {
	gen := &stubGenerator{reply: "should not be called"}
	kb := testKB(t, gen, map[string]string{
		"mortgage_faq.md": "Mortgage rates depend on the term and the prime rate.",
	})

	answer, err := kb.Answer(context.Background(), "zebra xylophone quux")
	require.NoError(t, err)

	assert.Equal(t, NoInformationAnswer, answer.Text)
	assert.Empty(t, answer.Sources)
	assert.Zero(t, gen.calls)
}

func TestEmptyKnowledgeBase(t *testing.T) {
	gen := &stubGenerator{}
	kb, err := NewKnowledgeBase(config.RAGConfig{
		DocsDir: filepath.Join(t.TempDir(), "does-not-exist"),
	}, gen, zerolog.Nop())
	require.NoError(t, err)

	answer, err := kb.Answer(context.Background(), "what are the mortgage rates?")
	require.NoError(t, err)
	assert.Equal(t, NoInformationAnswer, answer.Text)
	assert.Zero(t, gen.calls)
}

func TestNonTextFilesSkipped(t *testing.T) {
	gen := &stubGenerator{reply: "ok"}
	kb := testKB(t, gen, map[string]string{
		"rates.md":  "Savings interest rates are posted monthly.",
		"data.json": `{"savings": "rates"}`,
	})

	answer, err := kb.Answer(context.Background(), "savings interest rates")
	require.NoError(t, err)
	require.Equal(t, []string{"rates.md"}, answer.Sources)
}

func TestSplitTextOverlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10) // 100 runes
	chunks := splitText(text, 40, 10)

	require.NotEmpty(t, chunks)
	assert.Len(t, chunks[0], 40)
	// Consecutive chunks share the overlap region.
	assert.Equal(t, chunks[0][30:], chunks[1][:10])

	// Short text is a single chunk.
	assert.Equal(t, []string{"short"}, splitText("short", 40, 10))
	assert.Nil(t, splitText("   ", 40, 10))
}

func TestTermFrequencies(t *testing.T) {
	freq := termFrequencies("The TFSA, the TFSA! An ok tfsa.")

	assert.Equal(t, 3, freq["tfsa"])
	assert.Equal(t, 2, freq["the"])
	assert.NotContains(t, freq, "an")
	assert.NotContains(t, freq, "ok")
}
