package orchestrator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cidade-aberta/urbanq/internal/domain"
	"github.com/cidade-aberta/urbanq/internal/logger"
)

// recentTopicWindow is how many prior turns inform analysis.
const recentTopicWindow = 3

// responseExcerptLen bounds the stored response excerpt.
const responseExcerptLen = 200

// recentTopics returns the intents of the session's last turns. A
// cold in-process window is seeded from the store when available.
func (s *Service) recentTopics(ctx context.Context, sessionID string) []string {
	if sessionID == "" {
		return nil
	}

	s.mu.Lock()
	mem, ok := s.memory[sessionID]
	s.mu.Unlock()
	if ok {
		return mem.RecentTopics(recentTopicWindow)
	}

	if s.sessions == nil {
		return nil
	}
	turns, err := s.sessions.Recent(ctx, sessionID, domain.MaxSessionTurns)
	if err != nil {
		logger.FromContext(ctx).Warn("session history load failed",
			zap.String("session_id", sessionID), zap.Error(err))
		return nil
	}

	mem = &domain.SessionMemory{SessionID: sessionID, Turns: turns}
	s.mu.Lock()
	s.memory[sessionID] = mem
	s.mu.Unlock()
	return mem.RecentTopics(recentTopicWindow)
}

// appendTurn records the resolved turn in the in-process window and,
// best-effort, in the store. Never blocks or fails the response.
func (s *Service) appendTurn(ctx context.Context, sessionID, query, intent, response string, agents []string) {
	if sessionID == "" {
		return
	}

	excerpt := response
	if runes := []rune(excerpt); len(runes) > responseExcerptLen {
		excerpt = string(runes[:responseExcerptLen])
	}
	turn := domain.Turn{
		Query:      query,
		Intent:     intent,
		Response:   excerpt,
		AgentTypes: agents,
		CreatedAt:  time.Now().UTC(),
	}

	s.mu.Lock()
	mem, ok := s.memory[sessionID]
	if !ok {
		mem = &domain.SessionMemory{SessionID: sessionID}
		s.memory[sessionID] = mem
	}
	mem.Append(turn)
	s.mu.Unlock()

	if s.sessions == nil {
		return
	}
	if err := s.sessions.Append(ctx, sessionID, turn); err != nil {
		logger.FromContext(ctx).Warn("session persist failed",
			zap.String("session_id", sessionID), zap.Error(err))
	}
}
