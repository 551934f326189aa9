// Package chat implements the chat session controller: an append-only
// transcript with three response pathways (keyword simulation, real text
// completion, receipt analysis), a character streaming reveal, and the
// hand-off into the bill-split flow.
package chat

import (
	"context"
	"strings"
)

// Fixed assistant strings. The responder pathways and the failure handling
// degrade to these; they are part of the product copy, not placeholders.
const (
	GreetingReply = "Hello! I'm your financial assistant. How can I help you today?"

	BudgetReply = "I can help you create a budget! First, let's analyze your income and expenses. What's your monthly income?"

	InvestReply = "Investment is a great way to grow your wealth! Based on your risk profile, I can suggest some investment options. Would you prefer low-risk, medium-risk, or high-risk investments?"

	ReceiptDetectedReply = "I see you've shared an image. It looks like a receipt. Would you like me to analyze your spending or add these expenses to your budget tracker?"

	DefaultReply = "Thanks for your message! I'm here to help with any financial questions you might have. Could you provide more details about what you're looking for?"

	FallbackApology = "Sorry, I'm having trouble answering right now. Please try again in a moment."

	ProcessingPlaceholder = "Analyzing your receipt..."
)

// Responder produces the assistant's reply to one user turn. The simulated
// keyword pathway and the real completion backend share this contract so
// they can be swapped without touching the session controller.
type Responder interface {
	Respond(ctx context.Context, message string, hasImage bool) (string, error)
}

// KeywordResponder is the pure client-side simulation: a deterministic
// keyword match selecting one of four fixed responses. Superseded by the
// real backend in later revisions but kept as the offline fallback.
type KeywordResponder struct{}

// Respond never fails; the default branch covers everything the keywords
// miss.
func (KeywordResponder) Respond(_ context.Context, message string, hasImage bool) (string, error) {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "budget"):
		return BudgetReply, nil
	case strings.Contains(lower, "invest"):
		return InvestReply, nil
	case hasImage:
		return ReceiptDetectedReply, nil
	default:
		return DefaultReply, nil
	}
}
