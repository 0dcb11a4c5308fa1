package domain

import "time"

// MaxSessionTurns bounds the in-process per-session turn window.
const MaxSessionTurns = 10

// Turn is a bounded summary of one resolved query in a session.
type Turn struct {
	Query      string
	Intent     string
	Response   string
	AgentTypes []string
	CreatedAt  time.Time
}

// SessionMemory is the ordered, bounded turn history of one session.
type SessionMemory struct {
	SessionID string
	Turns     []Turn
}

// Append adds a turn, dropping the oldest beyond MaxSessionTurns.
func (m *SessionMemory) Append(t Turn) {
	m.Turns = append(m.Turns, t)
	if len(m.Turns) > MaxSessionTurns {
		m.Turns = m.Turns[len(m.Turns)-MaxSessionTurns:]
	}
}

// RecentTopics returns the intents of the last n turns, most recent last.
func (m *SessionMemory) RecentTopics(n int) []string {
	if n <= 0 || len(m.Turns) == 0 {
		return nil
	}
	start := len(m.Turns) - n
	if start < 0 {
		start = 0
	}
	topics := make([]string, 0, n)
	for _, t := range m.Turns[start:] {
		topics = append(topics, t.Intent)
	}
	return topics
}
