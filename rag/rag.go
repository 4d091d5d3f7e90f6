// Package rag answers banking questions from a local document collection. It
// loads text documents, splits them into overlapping chunks, retrieves the
// best-scoring chunks for a question by term overlap, and asks a language
// model to synthesize an answer grounded in those chunks. Answers are cached
// with a TTL.
package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog"

	"github.com/omisdami/bankassist/config"
	"github.com/omisdami/bankassist/core"
)

// NoInformationAnswer is returned when the knowledge base has nothing
// relevant. The response formatter watches for this phrase.
const NoInformationAnswer = "I don't have information about that in my knowledge base."

const synthesisSystemPrompt = `You are an AI assistant for RBC Bank. Your purpose is to provide accurate
information about RBC's products, services, and policies based on the official
documentation. If you're unsure or the information isn't in the provided
context, say "I don't have information about that" and suggest the user
contact RBC directly. Always be professional, helpful, and concise.`

// Generator produces a completion for a prompt. Implemented by the Anthropic
// client; stubbed in tests.
type Generator interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Answerer answers a banking question with source citations.
type Answerer interface {
	Answer(ctx context.Context, question string) (core.Answer, error)
}

type chunk struct {
	source string
	text   string
	terms  map[string]int
}

// KnowledgeBase is the document-backed Answerer. Construct it once at startup
// and pass it to whatever needs it.
type KnowledgeBase struct {
	chunks []chunk
	gen    Generator
	cache  *ristretto.Cache
	topK   int
	ttl    time.Duration
	log    zerolog.Logger
}

// NewKnowledgeBase loads all .txt and .md documents under cfg.DocsDir. A
// missing or empty directory yields a knowledge base that answers every
// question with NoInformationAnswer.
func NewKnowledgeBase(cfg config.RAGConfig, gen Generator, logger zerolog.Logger) (*KnowledgeBase, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1 << 24,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating answer cache: %w", err)
	}

	kb := &KnowledgeBase{
		gen:   gen,
		cache: cache,
		topK:  cfg.TopK,
		ttl:   time.Duration(cfg.CacheTTLSeconds) * time.Second,
		log:   logger,
	}
	if kb.topK <= 0 {
		kb.topK = 5
	}

	if err := kb.loadDocuments(cfg.DocsDir, cfg.ChunkSize, cfg.ChunkOverlap); err != nil {
		return nil, err
	}
	logger.Info().Int("chunks", len(kb.chunks)).Str("dir", cfg.DocsDir).Msg("knowledge base loaded")
	return kb, nil
}

func (kb *KnowledgeBase) loadDocuments(dir string, chunkSize, overlap int) error {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 200
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		kb.log.Warn().Str("dir", dir).Msg("documents directory not found, knowledge base is empty")
		return nil
	}

	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".txt" && ext != ".md" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			// Skip unreadable files, keep loading the rest.
			kb.log.Warn().Err(err).Str("file", path).Msg("skipping unreadable document")
			return nil
		}
		source := filepath.Base(path)
		for _, piece := range splitText(string(data), chunkSize, overlap) {
			kb.chunks = append(kb.chunks, chunk{
				source: source,
				text:   piece,
				terms:  termFrequencies(piece),
			})
		}
		return nil
	})
}

// Answer retrieves relevant chunks and synthesizes a cited answer.
func (kb *KnowledgeBase) Answer(ctx context.Context, question string) (core.Answer, error) {
	key := strings.ToLower(strings.TrimSpace(question))
	if cached, ok := kb.cache.Get(key); ok {
		if ans, ok := cached.(core.Answer); ok {
			return ans, nil
		}
	}

	retrieved := kb.retrieve(question)
	if len(retrieved) == 0 {
		return core.Answer{Text: NoInformationAnswer, Sources: []string{}}, nil
	}

	var b strings.Builder
	b.WriteString("Use the following documentation excerpts to answer the question.\n\n")
	for _, c := range retrieved {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", c.source, c.text)
	}
	fmt.Fprintf(&b, "Question: %s", question)

	text, err := kb.gen.Complete(ctx, synthesisSystemPrompt, b.String())
	if err != nil {
		return core.Answer{}, fmt.Errorf("synthesizing answer: %w", err)
	}

	ans := core.Answer{Text: text, Sources: uniqueSources(retrieved)}
	kb.cache.SetWithTTL(key, ans, int64(len(ans.Text)), kb.ttl)
	return ans, nil
}

// retrieve returns the topK chunks with a positive term-overlap score.
func (kb *KnowledgeBase) retrieve(question string) []chunk {
	query := termFrequencies(question)
	if len(query) == 0 {
		return nil
	}

	type scored struct {
		chunk chunk
		score float64
	}
	var candidates []scored
	for _, c := range kb.chunks {
		score := 0.0
		for term := range query {
			if n, ok := c.terms[term]; ok {
				score += float64(n)
			}
		}
		if score > 0 {
			// Dampen long chunks so short relevant ones still rank.
			candidates = append(candidates, scored{c, score / float64(1+len(c.terms)/100)})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > kb.topK {
		candidates = candidates[:kb.topK]
	}

	out := make([]chunk, len(candidates))
	for i, s := range candidates {
		out[i] = s.chunk
	}
	return out
}

func uniqueSources(chunks []chunk) []string {
	seen := make(map[string]bool)
	var sources []string
	for _, c := range chunks {
		if !seen[c.source] {
			seen[c.source] = true
			sources = append(sources, c.source)
		}
	}
	sort.Strings(sources)
	return sources
}

// splitText splits text into chunks of roughly size runes with the given
// overlap between consecutive chunks.
func splitText(text string, size, overlap int) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= size {
		return []string{string(runes)}
	}

	var chunks []string
	step := size - overlap
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// termFrequencies lowercases text and counts its alphanumeric terms, skipping
// one- and two-letter words.
func termFrequencies(text string) map[string]int {
	freq := make(map[string]int)
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if len(word) < 3 {
			continue
		}
		freq[word]++
	}
	return freq
}
