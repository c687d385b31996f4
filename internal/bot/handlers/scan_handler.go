package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewScanHandler returns a handler for the /scan command. It runs one
// ingestion pass over the source channel for the active window and reports
// how many new posts were indexed.
func NewScanHandler(deps HandlerDeps) bot.HandlerFunc {
	return scanHandler{deps}.Handle
}

type scanHandler struct {
	deps HandlerDeps
}

func (h scanHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "scan")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Scan handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	log.InfoContext(ctx, "Handling /scan command", "chat_id", chatID, "user_id", update.Message.From.ID)

	h.send(ctx, b, chatID, h.deps.Config.Messages.ScanStarted, log)

	startTime := time.Now()

	added, total, err := h.deps.Ingestor.Ingest(ctx, h.deps.Window)
	if err != nil {
		log.ErrorContext(ctx, "Scan failed", "error", err, "duration", time.Since(startTime))
		h.send(ctx, b, chatID, h.deps.Config.Messages.GeneralError, log)
		return
	}

	log.InfoContext(ctx, "Scan completed", "added", added, "total", total, "duration", time.Since(startTime))

	h.send(ctx, b, chatID, h.report(added, total), log)
}

// report renders the scan outcome. Counts are always reported, zero
// included.
func (h scanHandler) report(added, total int64) string {
	return fmt.Sprintf(h.deps.Config.Messages.ScanCompleteFmt,
		added, total,
		h.deps.Window.Start.Format("2006-01-02"),
		h.deps.Window.End.Format("2006-01-02"))
}

func (h scanHandler) send(ctx context.Context, b *bot.Bot, chatID int64, text string, log *slog.Logger) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		log.ErrorContext(ctx, "Failed to send scan reply", "error", err, "chat_id", chatID)
	}
}
