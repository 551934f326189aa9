package api

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/budgetly/budgetly/internal/chat"
	"github.com/budgetly/budgetly/internal/models"
)

// maxReceiptUpload bounds the multipart form held in memory per request.
const maxReceiptUpload = 10 << 20

// sessionManager tracks the live chat sessions by ID.
type sessionManager struct {
	mu       sync.Mutex
	sessions map[string]*chat.Session
}

func newSessionManager() *sessionManager {
	return &sessionManager{sessions: make(map[string]*chat.Session)}
}

func (m *sessionManager) get(id string) (*chat.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	return session, ok
}

func (m *sessionManager) put(session *chat.Session) {
	m.mu.Lock()
	m.sessions[session.ID()] = session
	m.mu.Unlock()
}

func (m *sessionManager) remove(id string) (*chat.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	return session, ok
}

type messagePayload struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	VisibleText   string    `json:"visible_text"`
	Sender        string    `json:"sender"`
	CreatedAt     time.Time `json:"created_at"`
	AttachedImage string    `json:"attached_image,omitempty"`
	Streaming     bool      `json:"streaming"`
}

func toMessagePayload(m models.Message) messagePayload {
	return messagePayload{
		ID:            m.ID,
		Text:          m.Text,
		VisibleText:   m.VisibleText,
		Sender:        string(m.Sender),
		CreatedAt:     m.CreatedAt,
		AttachedImage: m.AttachedImage,
		Streaming:     m.Streaming,
	}
}

// getOrCreateSession resolves the session for a turn, creating one when the
// ID is empty or unknown. The title is derived from the opening message.
func (s *Server) getOrCreateSession(id, firstMessage string) *chat.Session {
	if id != "" {
		if session, ok := s.sessions.get(id); ok {
			return session
		}
	}
	if id == "" {
		id = uuid.New().String()
	}
	session := chat.NewSession(id, chat.Options{
		Responder:      s.deps.Responder,
		Analyzer:       s.deps.Analyzer,
		Handoff:        s.deps.Handoff,
		History:        s.deps.Store,
		Title:          sessionTitle(firstMessage),
		StreamInterval: s.cfg.StreamInterval,
		NavigateDelay:  s.cfg.NavigateDelay,
	})
	s.sessions.put(session)
	return session
}

func sessionTitle(firstMessage string) string {
	title := strings.TrimSpace(firstMessage)
	if title == "" {
		return "New conversation"
	}
	// Truncate on a rune boundary so multi-byte text stays valid UTF-8.
	if runes := []rune(title); len(runes) > 40 {
		title = string(runes[:40])
	}
	return title
}

func (s *Server) chatMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
		HasImage  bool   `json:"has_image"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" && !req.HasImage {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	session := s.getOrCreateSession(req.SessionID, req.Message)
	session.AppendUserMessage(req.Message, nil, "")
	reply := session.RequestAssistantReply(r.Context(), req.Message, req.HasImage)

	s.countChatTurn("text", reply.Text)
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": session.ID(),
		"reply":      toMessagePayload(reply),
	})
}

func (s *Server) chatReceipt(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxReceiptUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()
	image, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read file")
		return
	}
	contentType := header.Header.Get("Content-Type")

	session := s.getOrCreateSession(r.FormValue("session_id"), "Receipt scan")
	session.AppendUserMessage("", image, contentType)
	key, msg := session.RequestReceiptAnalysis(r.Context(), header.Filename, contentType, image)

	if key == "" {
		s.countReceiptScan("failed")
		s.countChatTurn("receipt", msg.Text)
		// The transcript already carries the apology; the HTTP status
		// signals the upstream failure.
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"session_id": session.ID(),
			"message":    toMessagePayload(msg),
		})
		return
	}

	s.countReceiptScan("ok")
	s.countChatTurn("receipt", msg.Text)
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":  session.ID(),
		"handoff_key": key,
		"message":     toMessagePayload(msg),
	})
}

func (s *Server) listChatSessions(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.deps.Store.ListSessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list sessions")
		return
	}
	type summaryPayload struct {
		ID           string `json:"id"`
		Title        string `json:"title"`
		PreviewText  string `json:"preview_text"`
		LastActivity string `json:"last_activity"`
		HasUnread    bool   `json:"has_unread"`
	}
	out := make([]summaryPayload, 0, len(summaries))
	for _, sum := range summaries {
		out = append(out, summaryPayload{
			ID:           sum.ID,
			Title:        sum.Title,
			PreviewText:  sum.PreviewText,
			LastActivity: sum.LastActivityLabel,
			HasUnread:    sum.HasUnread,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

func (s *Server) getChatSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Prefer the live transcript: it carries streaming state the
	// persisted copy does not.
	if session, ok := s.sessions.get(id); ok {
		msgs := session.Messages()
		out := make([]messagePayload, len(msgs))
		for i, m := range msgs {
			out[i] = toMessagePayload(m)
		}
		writeJSON(w, http.StatusOK, map[string]any{"session_id": id, "messages": out})
		return
	}

	msgs, err := s.deps.Store.GetTranscript(r.Context(), id)
	if err != nil || len(msgs) == 0 {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	out := make([]messagePayload, len(msgs))
	for i, m := range msgs {
		out[i] = toMessagePayload(m)
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": id, "messages": out})
}

func (s *Server) closeChatSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, ok := s.sessions.remove(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	session.Close()
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (s *Server) countChatTurn(pathway, replyText string) {
	if s.deps.Metrics == nil {
		return
	}
	outcome := "ok"
	if replyText == chat.FallbackApology {
		outcome = "fallback"
	}
	s.deps.Metrics.ChatTurns.WithLabelValues(pathway, outcome).Inc()
}

func (s *Server) countReceiptScan(outcome string) {
	if s.deps.Metrics == nil {
		return
	}
	s.deps.Metrics.ReceiptScans.WithLabelValues(outcome).Inc()
}
