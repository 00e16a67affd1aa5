// Package relevance implements the disqualification-question gate.
//
// Questions are asked in order and the first "yes" disqualifies the article
// without asking the rest. Anything that is not a clean "yes" counts as "no":
// oracle errors and ambiguous answers never disqualify.
package relevance

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"HeadlineScreener/internal/domain"
	"HeadlineScreener/internal/excerpts"
	"HeadlineScreener/internal/ports"
)

const (
	answerYes = "yes"
	answerNo  = "no"
)

// Gate evaluates an ordered set of disqualification questions per article.
type Gate struct {
	oracle    ports.Oracle
	questions []string
	picker    *excerpts.Picker
	logger    *slog.Logger
}

// NewGate copies questions so later changes by the caller are not observed.
func NewGate(oracle ports.Oracle, questions []string, picker *excerpts.Picker, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Gate{
		oracle:    oracle,
		questions: append([]string(nil), questions...),
		picker:    picker,
		logger:    logger,
	}
}

// Evaluate asks the questions against the article text until one is answered "yes".
func (g *Gate) Evaluate(ctx context.Context, article domain.Article) domain.RelevanceVerdict {
	verdict := domain.RelevanceVerdict{
		ArticleID:      article.ID,
		Title:          article.Title,
		DisqualifiedBy: -1,
	}

	session := g.picker.Session(article.Text)
	for i, question := range g.questions {
		if ctx.Err() != nil {
			g.logger.Warn("gate interrupted", "article", article.ID, "error", ctx.Err())
			break
		}

		verdict.OracleCalls++
		if g.ask(ctx, session, article, question) == answerYes {
			verdict.Disqualified = true
			verdict.DisqualifiedBy = i
			g.logger.Debug("article disqualified", "article", article.ID, "question", i)
			break
		}
	}

	return verdict
}

func (g *Gate) ask(ctx context.Context, session *excerpts.Session, article domain.Article, question string) string {
	text, _ := session.Context(ctx, question)

	raw, err := g.oracle.Complete(ctx, buildPrompt(question, text), domain.FormatText)
	if err != nil {
		g.logger.Warn("gate question failed, treating as no",
			"article", article.ID, "stage", "gate", "error", err)
		return answerNo
	}

	return NormalizeAnswer(raw)
}

// NormalizeAnswer trims whitespace and wrapping quotes, lowercases, and
// coerces anything other than exactly "yes" or "no" to "no".
func NormalizeAnswer(raw string) string {
	answer := strings.ToLower(strings.TrimSpace(raw))
	answer = strings.TrimSpace(strings.Trim(answer, "\"'`"))
	if answer == answerYes {
		return answerYes
	}
	return answerNo
}

func buildPrompt(question, text string) string {
	return fmt.Sprintf("<instructions>Please respond with only \"yes\" or \"no\". %s</instructions>\n\nContent:\n\"\"\"%s\"\"\"",
		question, text)
}
