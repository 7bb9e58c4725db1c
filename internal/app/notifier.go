package app

import (
	"time"

	"cipherquiz-service/internal/domain"
)

// Notifier carries push notifications out to connected clients. Connection
// targeted methods take a transport connection id; room targeted methods fan
// out to everyone watching the room. Implementations must not block: the
// room lock is held while these are called.
type Notifier interface {
	JoinRequested(roomCode string, p domain.ParticipantInfo)
	JoinApproved(connectionID string)
	JoinRejected(connectionID, reason string)
	Kicked(connectionID, reason string)

	ConfigUpdated(roomCode string, cfg domain.QuizConfig)
	QuizStarted(roomCode string, startedAt time.Time, cfg domain.QuizConfig)
	QuizFinished(roomCode string)
	ParticipantListChanged(roomCode string, list []domain.ParticipantInfo)
	ScoreboardUpdated(roomCode string, entries []domain.ScoreboardEntry)
	ProctorEvent(roomCode, participantID string, ev domain.ProctorEvent)
	RoomClosed(roomCode string)
	ShowResults(roomCode string)
}

// NoopNotifier discards every notification. Used in tests and as the default
// when no transport is attached.
type NoopNotifier struct{}

func (NoopNotifier) JoinRequested(string, domain.ParticipantInfo)          {}
func (NoopNotifier) JoinApproved(string)                                   {}
func (NoopNotifier) JoinRejected(string, string)                           {}
func (NoopNotifier) Kicked(string, string)                                 {}
func (NoopNotifier) ConfigUpdated(string, domain.QuizConfig)               {}
func (NoopNotifier) QuizStarted(string, time.Time, domain.QuizConfig)      {}
func (NoopNotifier) QuizFinished(string)                                   {}
func (NoopNotifier) ParticipantListChanged(string, []domain.ParticipantInfo) {}
func (NoopNotifier) ScoreboardUpdated(string, []domain.ScoreboardEntry)    {}
func (NoopNotifier) ProctorEvent(string, string, domain.ProctorEvent)      {}
func (NoopNotifier) RoomClosed(string)                                     {}
func (NoopNotifier) ShowResults(string)                                    {}
