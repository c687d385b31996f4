// Package telegram implements the source.Client seam on top of the Telegram
// Bot API. The bot must be a member of the source channel; every channel
// post delivered through the long-poll loop is buffered in arrival order,
// and traversals replay the buffer oldest-first. Dedup across repeated
// traversals is the store's job, not the collector's.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/tzachyh/telescan/internal/source"
)

// Collector buffers channel posts from the configured source channel.
type Collector struct {
	sourceName string
	logger     *slog.Logger

	mu   sync.Mutex
	tg   *bot.Bot
	byID map[int64]source.Message
}

// NewCollector creates a collector for the given source channel
// (with or without the leading '@').
func NewCollector(sourceName string, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		sourceName: strings.TrimPrefix(sourceName, "@"),
		logger:     logger.With("component", "source_collector"),
		byID:       make(map[int64]source.Message),
	}
}

// Bind attaches the Telegram bot instance used for entity resolution.
// Called once from main after the bot is constructed; the collector itself
// is created first so it can be wired in as the default update handler.
func (c *Collector) Bind(tg *bot.Bot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tg = tg
}

// Handler is the bot update handler that feeds the collector. Updates that
// are not posts from the source channel are ignored.
func (c *Collector) Handler(ctx context.Context, _ *bot.Bot, update *models.Update) {
	post := update.ChannelPost
	if post == nil {
		return
	}
	if !strings.EqualFold(post.Chat.Username, c.sourceName) {
		c.logger.DebugContext(ctx, "Ignoring post from unrelated channel",
			"chat", post.Chat.Username, "message_id", post.ID)
		return
	}

	msg := source.Message{
		ID:        int64(post.ID),
		Signature: post.AuthorSignature,
		Date:      time.Unix(int64(post.Date), 0),
		Text:      post.Text,
	}
	if msg.Text == "" {
		msg.Text = post.Caption
	}
	if post.From != nil {
		msg.SenderID = post.From.ID
	}

	c.mu.Lock()
	_, seen := c.byID[msg.ID]
	if !seen {
		c.byID[msg.ID] = msg
	}
	c.mu.Unlock()

	if !seen {
		c.logger.DebugContext(ctx, "Collected channel post", "message_id", msg.ID, "date", msg.Date)
	}
}

// Resolve maps a public handle to its numeric identifier via the Bot API.
func (c *Collector) Resolve(ctx context.Context, handle string) (int64, error) {
	c.mu.Lock()
	tg := c.tg
	c.mu.Unlock()
	if tg == nil {
		return 0, fmt.Errorf("collector is not bound to a bot instance")
	}

	info, err := tg.GetChat(ctx, &bot.GetChatParams{ChatID: handle})
	if err != nil {
		return 0, fmt.Errorf("failed to resolve %q: %w", handle, err)
	}
	return info.ID, nil
}

// Messages replays the buffered posts oldest-first.
func (c *Collector) Messages(ctx context.Context, fn func(source.Message) error) error {
	c.mu.Lock()
	snapshot := make([]source.Message, 0, len(c.byID))
	for _, m := range c.byID {
		snapshot = append(snapshot, m)
	}
	c.mu.Unlock()

	sort.Slice(snapshot, func(i, j int) bool {
		if snapshot[i].Date.Equal(snapshot[j].Date) {
			return snapshot[i].ID < snapshot[j].ID
		}
		return snapshot[i].Date.Before(snapshot[j].Date)
	})

	for _, m := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(m); err != nil {
			return err
		}
	}
	return nil
}

var _ source.Client = (*Collector)(nil)
