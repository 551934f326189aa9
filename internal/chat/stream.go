package chat

import (
	"sync"
	"time"

	"github.com/budgetly/budgetly/internal/models"
)

// revealTask grows one message's visible text rune by rune on a ticker.
// At most one task runs per session; a new message or Close cancels it and
// the message snaps to its full text.
type revealTask struct {
	msg  *models.Message
	stop chan struct{}
	once sync.Once
}

func (t *revealTask) cancel() {
	t.once.Do(func() { close(t.stop) })
}

// startRevealLocked appends the streaming effect to msg and returns a
// snapshot. With no interval configured the message appears whole.
// Caller holds s.mu.
func (s *Session) startRevealLocked(msg *models.Message) models.Message {
	s.cancelRevealLocked()
	if s.opts.StreamInterval <= 0 || s.closed {
		msg.VisibleText = msg.Text
		s.state = Idle
		return *msg
	}
	msg.Streaming = true
	msg.VisibleText = ""
	s.state = StreamingCharacters
	task := &revealTask{msg: msg, stop: make(chan struct{})}
	s.reveal = task
	go s.runReveal(task)
	return *msg
}

// cancelRevealLocked stops the active reveal and snaps its message to the
// full text, so the transcript is never left mid-word. Caller holds s.mu.
func (s *Session) cancelRevealLocked() {
	if s.reveal == nil {
		return
	}
	task := s.reveal
	s.reveal = nil
	task.cancel()
	task.msg.VisibleText = task.msg.Text
	task.msg.Streaming = false
	if s.state == StreamingCharacters {
		s.state = Idle
	}
}

func (s *Session) runReveal(task *revealTask) {
	// Text is immutable once streaming starts; only placeholders are
	// rewritten and those never stream.
	runes := []rune(task.msg.Text)
	ticker := time.NewTicker(s.opts.StreamInterval)
	defer ticker.Stop()

	for i := 1; i <= len(runes); i++ {
		select {
		case <-task.stop:
			return
		case <-ticker.C:
		}
		s.mu.Lock()
		select {
		case <-task.stop:
			s.mu.Unlock()
			return
		default:
		}
		task.msg.VisibleText = string(runes[:i])
		s.mu.Unlock()
	}

	s.mu.Lock()
	select {
	case <-task.stop:
		s.mu.Unlock()
		return
	default:
	}
	task.msg.VisibleText = task.msg.Text
	task.msg.Streaming = false
	s.reveal = nil
	s.state = Idle
	s.mu.Unlock()
}
