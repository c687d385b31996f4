// Package source defines the seam to the external content stream: an
// ordered supply of timestamped messages with sender identity and an
// optional display signature. Implementations live in subpackages; the
// ingestion pipeline depends only on this interface.
package source

import (
	"context"
	"time"
)

// Message is one raw message from the content stream, before normalization.
type Message struct {
	// ID is the source-native numeric identifier, unique within the stream.
	ID int64
	// SenderID identifies the attributed sender; zero when the source does
	// not expose one (common for channel posts).
	SenderID int64
	// Signature is the optional display attribution string.
	Signature string
	// Date is the instant the message was authored.
	Date time.Time
	// Text is the plain message body; empty for pure-media messages.
	Text string
}

// Client supplies messages from one configured stream.
type Client interface {
	// Resolve maps a user or entity handle to its numeric identifier.
	Resolve(ctx context.Context, handle string) (int64, error)

	// Messages traverses the stream oldest-first, invoking fn for each
	// message. A non-nil error from fn aborts the traversal and is
	// returned. Repeated traversals rewind to the beginning.
	Messages(ctx context.Context, fn func(Message) error) error
}
