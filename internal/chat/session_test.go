package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/budgetly/budgetly/internal/handoff"
	"github.com/budgetly/budgetly/internal/models"
	"github.com/budgetly/budgetly/internal/receipts"
)

type stubResponder struct {
	reply string
	err   error
	block bool
}

func (r stubResponder) Respond(ctx context.Context, _ string, _ bool) (string, error) {
	if r.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return r.reply, r.err
}

type stubAnalyzer struct {
	receipt *receipts.Receipt
	err     error
}

func (a stubAnalyzer) Process(context.Context, string, string, []byte) (*receipts.Receipt, error) {
	return a.receipt, a.err
}

func newTestSession(opts Options) *Session {
	if opts.Responder == nil {
		opts.Responder = KeywordResponder{}
	}
	return NewSession("test-session", opts)
}

func assistantMessages(s *Session) []models.Message {
	var out []models.Message
	for _, m := range s.Messages() {
		if m.Sender == models.SenderAssistant {
			out = append(out, m)
		}
	}
	return out
}

func TestNewSessionGreets(t *testing.T) {
	s := newTestSession(Options{})
	defer s.Close()

	msgs := s.Messages()
	if len(msgs) != 1 {
		t.Fatalf("transcript has %d messages, want 1", len(msgs))
	}
	if msgs[0].Sender != models.SenderAssistant || msgs[0].Text != GreetingReply {
		t.Errorf("greeting = %+v", msgs[0])
	}
	if msgs[0].VisibleText != msgs[0].Text {
		t.Error("greeting is not fully visible")
	}
}

func TestKeywordPathway(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		hasImage bool
		want     string
	}{
		{name: "budget keyword", text: "I need a budget plan", want: BudgetReply},
		{name: "invest keyword", text: "should I invest?", want: InvestReply},
		{name: "image only", text: "", hasImage: true, want: ReceiptDetectedReply},
		{name: "no match", text: "hello there", want: DefaultReply},
		{name: "budget wins over image", text: "my budget", hasImage: true, want: BudgetReply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(Options{})
			defer s.Close()

			s.AppendUserMessage(tt.text, nil, "")
			reply := s.RequestAssistantReply(context.Background(), tt.text, tt.hasImage)
			if reply.Text != tt.want {
				t.Errorf("reply = %q, want %q", reply.Text, tt.want)
			}
			if s.State() != Idle {
				t.Errorf("state = %v, want Idle", s.State())
			}
		})
	}
}

func TestMessageIDsAreUnique(t *testing.T) {
	s := newTestSession(Options{})
	defer s.Close()

	for i := 0; i < 20; i++ {
		s.AppendUserMessage("hi", nil, "")
	}
	seen := make(map[string]bool)
	for _, m := range s.Messages() {
		if seen[m.ID] {
			t.Fatalf("duplicate message ID %q", m.ID)
		}
		seen[m.ID] = true
	}
}

func TestFallbackOnResponderFailure(t *testing.T) {
	s := newTestSession(Options{Responder: stubResponder{err: errors.New("backend down")}})
	defer s.Close()

	s.AppendUserMessage("hello", nil, "")
	reply := s.RequestAssistantReply(context.Background(), "hello", false)
	if reply.Text != FallbackApology {
		t.Errorf("reply = %q, want fallback apology", reply.Text)
	}
	if s.State() != Idle {
		t.Errorf("state = %v, want Idle", s.State())
	}
}

func TestReceiptAnalysisSuccess(t *testing.T) {
	store := handoff.NewStore(time.Minute)
	defer store.Close()

	receipt := &receipts.Receipt{
		MerchantName: "Luigi's Pizza",
		Total:        26.49,
		Items: []receipts.Item{
			{Name: "Margherita", Price: 12.99, Quantity: 1},
			{Name: "Garlic Bread", Price: 4.50, Quantity: 2},
		},
	}
	navigated := make(chan string, 1)
	s := newTestSession(Options{
		Analyzer:      stubAnalyzer{receipt: receipt},
		Handoff:       store,
		NavigateDelay: 5 * time.Millisecond,
		Navigate:      func(key string) { navigated <- key },
	})
	defer s.Close()

	s.AppendUserMessage("", []byte("fake-image"), "image/jpeg")
	key, msg := s.RequestReceiptAnalysis(context.Background(), "receipt.jpg", "image/jpeg", []byte("fake-image"))
	if key == "" {
		t.Fatal("no hand-off key returned")
	}
	if !strings.Contains(msg.Text, "Luigi's Pizza") {
		t.Errorf("summary = %q, want merchant name mentioned", msg.Text)
	}

	// The placeholder was rewritten, not followed by a second message.
	assistants := assistantMessages(s)
	if len(assistants) != 2 { // greeting + summary
		t.Fatalf("assistant messages = %d, want 2", len(assistants))
	}

	select {
	case got := <-navigated:
		if got != key {
			t.Errorf("navigated with key %q, want %q", got, key)
		}
	case <-time.After(time.Second):
		t.Fatal("navigation never fired")
	}

	claimed, err := store.Take(key)
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if claimed.MerchantName != "Luigi's Pizza" {
		t.Errorf("claimed merchant = %q", claimed.MerchantName)
	}
}

func TestReceiptAnalysisFailureLeavesOneMessage(t *testing.T) {
	store := handoff.NewStore(time.Minute)
	defer store.Close()

	s := newTestSession(Options{
		Analyzer: stubAnalyzer{err: errors.New("extraction failed")},
		Handoff:  store,
	})
	defer s.Close()

	s.AppendUserMessage("", []byte("blurry"), "image/jpeg")
	key, msg := s.RequestReceiptAnalysis(context.Background(), "receipt.jpg", "image/jpeg", []byte("blurry"))
	if key != "" {
		t.Errorf("key = %q, want empty on failure", key)
	}
	if msg.Text != FallbackApology {
		t.Errorf("message = %q, want fallback apology", msg.Text)
	}

	// Exactly one assistant message after the greeting: the placeholder,
	// rewritten in place. Never a placeholder plus an apology.
	assistants := assistantMessages(s)
	if len(assistants) != 2 {
		t.Fatalf("assistant messages = %d, want 2", len(assistants))
	}
	if assistants[1].Text != FallbackApology {
		t.Errorf("final assistant message = %q", assistants[1].Text)
	}
	if s.State() != Idle {
		t.Errorf("state = %v, want Idle", s.State())
	}
}

func TestStreamingReveal(t *testing.T) {
	s := newTestSession(Options{
		Responder:      stubResponder{reply: "short reply"},
		StreamInterval: time.Millisecond,
	})
	defer s.Close()

	s.AppendUserMessage("hi", nil, "")
	reply := s.RequestAssistantReply(context.Background(), "hi", false)
	if !reply.Streaming {
		t.Fatal("reply did not start streaming")
	}

	deadline := time.After(2 * time.Second)
	for {
		msgs := s.Messages()
		last := msgs[len(msgs)-1]
		if !last.Streaming {
			if last.VisibleText != last.Text {
				t.Errorf("visible = %q, want %q", last.VisibleText, last.Text)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("reveal never completed")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestNewMessageCancelsReveal(t *testing.T) {
	s := newTestSession(Options{
		Responder:      stubResponder{reply: strings.Repeat("a long streamed reply ", 20)},
		StreamInterval: 50 * time.Millisecond,
	})
	defer s.Close()

	s.AppendUserMessage("hi", nil, "")
	s.RequestAssistantReply(context.Background(), "hi", false)
	s.AppendUserMessage("never mind", nil, "")

	msgs := s.Messages()
	for _, m := range msgs {
		if m.Streaming {
			t.Errorf("message %q still streaming after new user message", m.ID)
		}
		if m.VisibleText != m.Text {
			t.Errorf("message %q not snapped to full text", m.ID)
		}
	}
}

func TestCloseCancelsInFlightCall(t *testing.T) {
	s := newTestSession(Options{Responder: stubResponder{block: true}})

	s.AppendUserMessage("hi", nil, "")
	done := make(chan models.Message, 1)
	go func() {
		done <- s.RequestAssistantReply(context.Background(), "hi", false)
	}()

	time.Sleep(10 * time.Millisecond)
	s.Close()

	select {
	case reply := <-done:
		if reply.Text != FallbackApology {
			t.Errorf("reply = %q, want fallback apology", reply.Text)
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not unblock the in-flight call")
	}
}

func TestImageAttachedAsynchronously(t *testing.T) {
	s := newTestSession(Options{})
	defer s.Close()

	msg := s.AppendUserMessage("receipt attached", []byte{0xFF, 0xD8}, "image/jpeg")

	deadline := time.After(time.Second)
	for {
		var got models.Message
		for _, m := range s.Messages() {
			if m.ID == msg.ID {
				got = m
			}
		}
		if got.AttachedImage != "" {
			if !strings.HasPrefix(got.AttachedImage, "data:image/jpeg;base64,") {
				t.Errorf("attached image = %q", got.AttachedImage)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("image reference never attached")
		case <-time.After(2 * time.Millisecond):
		}
	}
}
