package viewer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FallbackAnswer replaces the assistant reply when the chat endpoint fails.
// Chat failures are non-fatal and never surface a raw error into the
// transcript.
const FallbackAnswer = "Sorry, I couldn't answer that right now. Please try asking again in a moment."

// Direction says which side of the conversation a message belongs to
type Direction string

const (
	DirectionUser      Direction = "user"
	DirectionAssistant Direction = "assistant"
)

// Message is one chat transcript entry. Messages are never mutated after
// creation.
type Message struct {
	ID        string
	Direction Direction
	Text      string
	CreatedAt time.Time
}

// Asker is the chat endpoint surface
type Asker interface {
	Ask(ctx context.Context, documentID, query string) (string, error)
}

// ChatSession is an append-only Q&A transcript scoped to one document
type ChatSession struct {
	mu         sync.Mutex
	api        Asker
	documentID string
	messages   []Message
}

func NewChatSession(api Asker, documentID string) *ChatSession {
	return &ChatSession{api: api, documentID: documentID}
}

// Ask appends the user's message immediately, before any network round trip,
// then requests an answer scoped to the session's document. On success the
// assistant's reply is appended; on any failure the fixed fallback text is
// appended instead.
func (s *ChatSession) Ask(ctx context.Context, text string) {
	s.append(DirectionUser, text)

	answer, err := s.api.Ask(ctx, s.documentID, text)
	if err != nil || answer == "" {
		s.append(DirectionAssistant, FallbackAnswer)
		return
	}
	s.append(DirectionAssistant, answer)
}

// Messages returns a copy of the transcript in creation order
func (s *ChatSession) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *ChatSession) append(direction Direction, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, Message{
		ID:        uuid.New().String(),
		Direction: direction,
		Text:      text,
		CreatedAt: time.Now(),
	})
}
