package chat

import (
	"sync"
	"time"

	"taskflow-backend/internal/ai"
)

const (
	defaultMaxSessions = 1000
	defaultIdleTTL     = 30 * time.Minute

	// maxTranscriptTurns bounds how much history is resubmitted to the
	// model; the oldest user/model pair is dropped first.
	maxTranscriptTurns = 40
)

// session is the per-user conversational state: either a transcript of
// free-chat turns or an in-progress guided task creation. The two never
// coexist meaningfully — guided mode suspends forwarding to the model.
type session struct {
	turns    []ai.Turn
	guided   *guidedTask
	lastSeen time.Time
}

// Sessions holds per-user state for the process lifetime. The map itself
// is guarded against concurrent requests from different users; a single
// user's overlapping requests get last-writer-wins, which is acceptable
// since a user has at most one in-flight chat at a time.
type Sessions struct {
	mu     sync.Mutex
	byUser map[int64]*session

	maxSessions int
	idleTTL     time.Duration
	now         func() time.Time
}

func NewSessions() *Sessions {
	return &Sessions{
		byUser:      make(map[int64]*session),
		maxSessions: defaultMaxSessions,
		idleTTL:     defaultIdleTTL,
		now:         time.Now,
	}
}

// get returns the user's session, creating it lazily. Idle sessions are
// swept on every access and the map is capped, evicting the least
// recently seen user first; unbounded growth here was a latent leak in
// earlier versions. Caller must hold mu.
func (s *Sessions) get(userID int64) *session {
	now := s.now()
	for id, sess := range s.byUser {
		if now.Sub(sess.lastSeen) > s.idleTTL {
			delete(s.byUser, id)
		}
	}

	sess, ok := s.byUser[userID]
	if !ok {
		for len(s.byUser) >= s.maxSessions {
			var oldestID int64
			var oldest time.Time
			first := true
			for id, candidate := range s.byUser {
				if first || candidate.lastSeen.Before(oldest) {
					oldestID, oldest = id, candidate.lastSeen
					first = false
				}
			}
			delete(s.byUser, oldestID)
		}
		sess = &session{}
		s.byUser[userID] = sess
	}
	sess.lastSeen = now
	return sess
}

// History returns a copy of the user's transcript.
func (s *Sessions) History(userID int64) []ai.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(userID)
	out := make([]ai.Turn, len(sess.turns))
	copy(out, sess.turns)
	return out
}

// AppendTurn records a completed exchange. Failed turns are never
// appended, so a model outage cannot corrupt the transcript.
func (s *Sessions) AppendTurn(userID int64, userMsg, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(userID)
	sess.turns = append(sess.turns,
		ai.Turn{Role: ai.RoleUser, Text: userMsg},
		ai.Turn{Role: ai.RoleModel, Text: reply},
	)
	for len(sess.turns) > maxTranscriptTurns {
		sess.turns = sess.turns[2:]
	}
}

// StartGuided puts the user into guided task creation and returns the
// opening prompt.
func (s *Sessions) StartGuided(userID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(userID)
	sess.guided = &guidedTask{}
	return promptTitle
}

// AdvanceGuided feeds one message into the guided flow. The second
// return is false when the user has no guided state. When the flow
// completes, the returned Draft is non-nil and the guided state is
// cleared, returning the user to free chat.
func (s *Sessions) AdvanceGuided(userID int64, message string) (GuidedResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(userID)
	if sess.guided == nil {
		return GuidedResult{}, false
	}

	res := sess.guided.advance(message)
	if res.Draft != nil {
		sess.guided = nil
	}
	return res, true
}

// ClearGuided abandons an in-progress guided flow.
func (s *Sessions) ClearGuided(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.byUser[userID]; ok {
		sess.guided = nil
	}
}
