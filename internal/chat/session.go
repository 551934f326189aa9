package chat

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/budgetly/budgetly/internal/handoff"
	"github.com/budgetly/budgetly/internal/models"
	"github.com/budgetly/budgetly/internal/receipts"
	"github.com/budgetly/budgetly/internal/storage"
)

// TurnState tracks where the session is within one conversational turn.
type TurnState int

const (
	// Idle: no turn in flight.
	Idle TurnState = iota
	// UserMessageAppended: the user's message is on the transcript, no
	// response requested yet.
	UserMessageAppended
	// AwaitingResponse: an external round trip is in flight.
	AwaitingResponse
	// StreamingCharacters: the reply is on the transcript and its visible
	// text is still growing.
	StreamingCharacters
)

// Analyzer extracts a structured receipt from an uploaded image.
type Analyzer interface {
	Process(ctx context.Context, filename, contentType string, image []byte) (*receipts.Receipt, error)
}

// Options configures a Session. Responder is required; everything else is
// optional and disables the corresponding behavior when zero.
type Options struct {
	Responder Responder
	Analyzer  Analyzer
	Handoff   *handoff.Store

	// History persists the transcript when set. Persistence is best
	// effort: a failed write is logged, never surfaced to the user.
	History storage.Store
	Title   string

	// StreamInterval is the character reveal tick; 0 disables the
	// streaming effect and replies appear whole.
	StreamInterval time.Duration

	// NavigateDelay is the pause between a successful receipt analysis
	// and the cross-page transition, so the user can read the summary.
	NavigateDelay time.Duration

	// Navigate fires the cross-page transition with the hand-off key.
	Navigate func(handoffKey string)

	// DecodeImage turns raw image bytes into a displayable reference.
	// Defaults to a base64 data URL.
	DecodeImage func(image []byte, contentType string) (string, error)
}

// Session owns one append-only chat transcript and coordinates the response
// pathways. The transcript is owned by a single conversation, but reveal and
// navigation timers run on their own goroutines, so all state is guarded by
// a mutex.
type Session struct {
	mu       sync.Mutex
	id       string
	opts     Options
	messages []*models.Message
	seq      int
	state    TurnState

	reveal   *revealTask
	navTimer *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// NewSession creates a session with the assistant's greeting already on the
// transcript.
func NewSession(id string, opts Options) *Session {
	if opts.DecodeImage == nil {
		opts.DecodeImage = dataURL
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:     id,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
	}
	greeting := s.appendMessage(GreetingReply, models.SenderAssistant)
	greeting.VisibleText = greeting.Text
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current turn state.
func (s *Session) State() TurnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Messages returns a snapshot of the transcript.
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.messages))
	for i, m := range s.messages {
		out[i] = *m
	}
	return out
}

// AppendUserMessage assigns a new message ID and appends the user's message
// to the transcript. When an image is attached it is decoded asynchronously
// and the message is patched in place once the reference is ready; the
// append itself never blocks on the decode.
func (s *Session) AppendUserMessage(text string, image []byte, contentType string) models.Message {
	s.mu.Lock()
	s.cancelRevealLocked()
	msg := s.appendLocked(text, models.SenderUser)
	s.state = UserMessageAppended
	id := msg.ID
	snapshot := *msg
	s.mu.Unlock()

	if len(image) > 0 {
		go s.decodeImage(id, image, contentType)
	}

	s.persist(snapshot)
	return snapshot
}

// RequestAssistantReply runs the text pathway: it delegates to the
// configured Responder and appends the reply. On failure the fixed fallback
// apology is appended instead; errors never propagate past this boundary.
func (s *Session) RequestAssistantReply(ctx context.Context, text string, hasImage bool) models.Message {
	s.setState(AwaitingResponse)

	callCtx, cancel := s.callContext(ctx)
	reply, err := s.opts.Responder.Respond(callCtx, text, hasImage)
	cancel()
	if err != nil {
		slog.Warn("assistant reply failed, using fallback", "session_id", s.id, "error", err)
		reply = FallbackApology
	}

	s.mu.Lock()
	msg := s.appendLocked(reply, models.SenderAssistant)
	snapshot := s.startRevealLocked(msg)
	s.mu.Unlock()

	s.persist(snapshot)
	return snapshot
}

// RequestReceiptAnalysis runs the image pathway. A "processing" placeholder
// is appended immediately; after the round trip the same placeholder is
// rewritten with either a summary of the extracted receipt or the fallback
// apology, so exactly one assistant message results either way. On success the
// structured receipt is parked in the hand-off store and the cross-page
// transition is scheduled after a fixed delay.
//
// The returned key is empty when analysis failed; the transcript is already
// consistent, so callers need no further recovery.
func (s *Session) RequestReceiptAnalysis(ctx context.Context, filename, contentType string, image []byte) (string, models.Message) {
	s.mu.Lock()
	placeholder := s.appendLocked(ProcessingPlaceholder, models.SenderAssistant)
	placeholder.VisibleText = placeholder.Text
	id := placeholder.ID
	s.state = AwaitingResponse
	s.mu.Unlock()

	callCtx, cancel := s.callContext(ctx)
	receipt, err := s.opts.Analyzer.Process(callCtx, filename, contentType, image)
	cancel()

	if err != nil {
		slog.Warn("receipt analysis failed", "session_id", s.id, "error", err)
		snapshot := s.rewriteMessage(id, FallbackApology)
		s.persist(snapshot)
		return "", snapshot
	}

	summary := fmt.Sprintf(
		"I've analyzed your receipt from %s. The total is $%.2f across %d items. Taking you to the bill split page...",
		receipt.MerchantName, receipt.Total, len(receipt.Items),
	)
	snapshot := s.rewriteMessage(id, summary)
	s.persist(snapshot)

	var key string
	if s.opts.Handoff != nil {
		key = s.opts.Handoff.Put(receipt)
		s.scheduleNavigate(key)
	}

	slog.Info("receipt analyzed",
		"session_id", s.id,
		"merchant", receipt.MerchantName,
		"total", receipt.Total,
		"items", len(receipt.Items),
	)
	return key, snapshot
}

// Close cancels any in-flight external call, the active reveal, and the
// pending navigation timer. Plain page navigation does not close the
// session; only tearing down the conversation does.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancelRevealLocked()
	if s.navTimer != nil {
		s.navTimer.Stop()
		s.navTimer = nil
	}
	s.mu.Unlock()
	s.cancel()
}

// callContext derives a context cancelled by either the caller or Close.
func (s *Session) callContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (s *Session) setState(state TurnState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// appendMessage appends under lock; used by the constructor.
func (s *Session) appendMessage(text string, sender models.Sender) *models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(text, sender)
}

func (s *Session) appendLocked(text string, sender models.Sender) *models.Message {
	s.seq++
	msg := &models.Message{
		ID:        fmt.Sprintf("%d-%04d", time.Now().UnixMilli(), s.seq),
		Text:      text,
		Sender:    sender,
		CreatedAt: time.Now(),
	}
	if sender == models.SenderUser {
		msg.VisibleText = text
	}
	s.messages = append(s.messages, msg)
	return msg
}

// rewriteMessage resolves a placeholder in place.
func (s *Session) rewriteMessage(id, text string) models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == id {
			m.Text = text
			m.VisibleText = text
			s.state = Idle
			return *m
		}
	}
	// Unreachable while the transcript is append-only.
	s.state = Idle
	return models.Message{}
}

func (s *Session) decodeImage(id string, image []byte, contentType string) {
	ref, err := s.opts.DecodeImage(image, contentType)
	if err != nil {
		slog.Warn("image decode failed", "session_id", s.id, "error", err)
		return
	}
	s.mu.Lock()
	for _, m := range s.messages {
		if m.ID == id {
			m.AttachedImage = ref
			break
		}
	}
	s.mu.Unlock()
}

func (s *Session) scheduleNavigate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.opts.Navigate == nil {
		return
	}
	if s.navTimer != nil {
		s.navTimer.Stop()
	}
	s.navTimer = time.AfterFunc(s.opts.NavigateDelay, func() {
		s.opts.Navigate(key)
	})
}

func (s *Session) persist(msg models.Message) {
	if s.opts.History == nil {
		return
	}
	if err := s.opts.History.SaveMessage(context.Background(), s.id, s.opts.Title, msg); err != nil {
		slog.Warn("transcript persistence failed", "session_id", s.id, "error", err)
	}
}

func dataURL(image []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(image), nil
}
