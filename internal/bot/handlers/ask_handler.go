package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/tzachyh/telescan/internal/summarize"
)

// NewAskHandler returns a handler for the /ask command. It retrieves
// evidence for the query, asks the model for a grounded summary, and
// replies with the summary plus a citations block.
func NewAskHandler(deps HandlerDeps) bot.HandlerFunc {
	return askHandler{deps}.Handle
}

type askHandler struct {
	deps HandlerDeps
}

func (h askHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "ask")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Ask handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	query := commandArgument(update.Message.Text)
	if query == "" {
		h.send(ctx, b, chatID, h.deps.Config.Messages.ProvideQuery, log)
		return
	}

	log.InfoContext(ctx, "Handling /ask command", "chat_id", chatID, "user_id", update.Message.From.ID, "query_len", len(query))

	startTime := time.Now()

	reply, err := h.answer(ctx, query)
	if err != nil {
		log.ErrorContext(ctx, "Failed to answer query", "error", err)
		h.send(ctx, b, chatID, h.deps.Config.Messages.GeneralError, log)
		return
	}

	log.InfoContext(ctx, "Answer composed", "duration", time.Since(startTime))

	h.send(ctx, b, chatID, reply, log)
}

// answer runs the retrieve-summarize pipeline and composes the reply text.
// When neither retrieval path finds anything the reply is the fixed
// no-posts message and the model is never called.
func (h askHandler) answer(ctx context.Context, query string) (string, error) {
	window := h.deps.Window

	evidence, err := h.deps.Retriever.Retrieve(ctx, query, window)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve evidence: %w", err)
	}
	if len(evidence) == 0 {
		return h.deps.Config.Messages.NoDataInWindow, nil
	}

	summary, err := h.deps.Summarizer.Summarize(ctx, evidence, h.deps.Config.Source.Channel, window)
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	return summarize.Answer(summary, evidence), nil
}

func (h askHandler) send(ctx context.Context, b *bot.Bot, chatID int64, text string, log *slog.Logger) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		log.ErrorContext(ctx, "Failed to send ask reply", "error", err, "chat_id", chatID)
	}
}

// commandArgument strips the leading /command (with optional @botname
// suffix) from a message and returns the trimmed remainder.
func commandArgument(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}
	_, rest, found := strings.Cut(text, " ")
	if !found {
		return ""
	}
	return strings.TrimSpace(rest)
}
