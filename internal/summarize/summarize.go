// Package summarize composes retrieved evidence into a bounded prompt,
// delegates text generation to the language-model collaborator, and renders
// the citation-bearing answer.
package summarize

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tzachyh/telescan/internal/database"
	"github.com/tzachyh/telescan/internal/timewindow"
)

const (
	// maxPromptItems bounds how many evidence items are fed to the model.
	maxPromptItems = 12
	// snippetRunes bounds each rendered evidence snippet.
	snippetRunes = 180
	// citationItems is how many evidence items the citations block lists.
	citationItems = 5
)

// Generator is the text-generation operation this package depends on;
// the gemini client satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Summarizer turns evidence into a grounded Hebrew answer.
type Summarizer struct {
	gen             Generator
	insufficientMsg string
	logger          *slog.Logger
}

// New creates a Summarizer. insufficientMsg is returned verbatim when there
// is no evidence to summarize.
func New(gen Generator, insufficientMsg string, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Summarizer{
		gen:             gen,
		insufficientMsg: insufficientMsg,
		logger:          logger.With("component", "summarizer"),
	}
}

// Summarize generates a summary grounded in the evidence. Empty evidence
// short-circuits to the fixed insufficient-data message without calling the
// model.
func (s *Summarizer) Summarize(ctx context.Context, evidence []database.Evidence, sourceName string, window timewindow.Window) (string, error) {
	if len(evidence) == 0 {
		return s.insufficientMsg, nil
	}

	items := evidence
	if len(items) > maxPromptItems {
		items = items[:maxPromptItems]
	}

	var ev strings.Builder
	for i, it := range items {
		if i > 0 {
			ev.WriteByte('\n')
		}
		fmt.Fprintf(&ev, "- %s — %s [%s]", it.DateStr, truncateRunes(it.Text, snippetRunes), it.Link)
	}

	prompt := fmt.Sprintf(summaryPromptTemplate,
		sourceName,
		window.Start.Format("2006-01-02"),
		window.End.Format("2006-01-02"),
		ev.String())

	s.logger.DebugContext(ctx, "Requesting summary", "evidence_count", len(items), "prompt_len", len(prompt))

	out, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Answer appends the citations block to the summary: date and permalink for
// the top citationItems evidence items, regardless of how many were fed to
// the model.
func Answer(summary string, evidence []database.Evidence) string {
	n := len(evidence)
	if n == 0 {
		return summary
	}
	if n > citationItems {
		n = citationItems
	}

	var b strings.Builder
	b.WriteString(summary)
	b.WriteString("\n\n")
	b.WriteString(citationsHeader)
	for _, it := range evidence[:n] {
		fmt.Fprintf(&b, "\n• %s — %s", it.DateStr, it.Link)
	}
	return b.String()
}

// truncateRunes shortens s to at most n runes. Hebrew text is multi-byte,
// so byte slicing would split characters.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
