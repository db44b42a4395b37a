package chatlog

import (
	"sync"

	"github.com/Shahin2512/HCP-Module/internal/model"
)

// Log is an append-only chat transcript. Order is call order; nothing is
// deduplicated or reordered.
type Log struct {
	mu       sync.RWMutex
	messages []model.ChatMessage
}

// New creates an empty Log.
func New() *Log {
	return &Log{}
}

// Append adds msg to the end of the transcript.
func (l *Log) Append(msg model.ChatMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

// Clear empties the transcript.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = nil
}

// Messages returns a copy of the transcript. If limit > 0 only the last
// limit messages are returned.
func (l *Log) Messages(limit int) []model.ChatMessage {
	l.mu.RLock()
	defer l.mu.RUnlock()

	msgs := l.messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	cp := make([]model.ChatMessage, len(msgs))
	copy(cp, msgs)
	return cp
}

// Len returns the number of messages in the transcript.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Last returns the most recent message, if any.
func (l *Log) Last() (model.ChatMessage, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.messages) == 0 {
		return model.ChatMessage{}, false
	}
	return l.messages[len(l.messages)-1], true
}
