package models

import "time"

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one entry in a chat transcript. Messages are append-only; the
// only in-place updates are resolving a processing placeholder and growing
// the visible text during a streaming reveal.
type Message struct {
	// ID is monotonic within a session (timestamp-derived plus a sequence
	// suffix to break ties).
	ID string

	// Text is the full message content. While Streaming is true the visible
	// portion may lag behind; VisibleText holds what a client should render.
	Text string

	// VisibleText is the revealed prefix of Text during a streaming reveal.
	// Equal to Text once the reveal finishes.
	VisibleText string

	Sender    Sender
	CreatedAt time.Time

	// AttachedImage is an opaque reference to an uploaded image, if any.
	// Populated asynchronously after the message is appended.
	AttachedImage string

	// Streaming marks a message whose visible text is still growing.
	Streaming bool
}

// SessionSummary is the sidebar listing entry for one conversation.
type SessionSummary struct {
	ID                string
	Title             string
	PreviewText       string
	LastActivityLabel string
	HasUnread         bool
}
