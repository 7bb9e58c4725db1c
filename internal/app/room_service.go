// Package app holds the room service: the state machine driving admission,
// quiz progress, scoring and time-based completion for live quiz rooms.
package app

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"cipherquiz-service/internal/domain"
	"cipherquiz-service/internal/question"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const (
	msgCorrect       = "correct"
	msgWrongOneLeft  = "wrong answer, one attempt left"
	msgFailed        = "wrong answer, question failed"
	msgAlreadyFailed = "question already failed"
	msgAlreadySolved = "question already solved"
)

// roomHandle owns the live in-memory state of one room. Every mutation of
// the room goes through its mutex; rooms never share a lock, so operations
// on different rooms run in parallel.
type roomHandle struct {
	mu     sync.Mutex
	room   *domain.Room
	closed bool
}

// RoomService drives the room lifecycle. In-memory state is authoritative;
// the store receives a full snapshot after every mutation, and a failed
// write is logged rather than surfaced so a storage outage never corrupts a
// running quiz.
type RoomService struct {
	store    RoomStore
	builder  QuestionBuilder
	notifier Notifier
	now      func() time.Time
	newID    func() string

	mu    sync.Mutex // guards rooms and rnd
	rooms map[string]*roomHandle
	rnd   *rand.Rand
}

// NewRoomService wires the service over a store, a question builder and a
// notifier. notifier may be nil; rnd seeds room-code generation and is
// injected so tests can pin it.
func NewRoomService(store RoomStore, builder QuestionBuilder, notifier Notifier, rnd *rand.Rand) *RoomService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &RoomService{
		store:    store,
		builder:  builder,
		notifier: notifier,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		rooms:    make(map[string]*roomHandle),
		rnd:      rnd,
	}
}

// handle returns the live handle for a room, loading it from the store on a
// miss so rooms survive a process restart. Returns nil for unknown codes.
func (s *RoomService) handle(ctx context.Context, code string) *roomHandle {
	s.mu.Lock()
	h, ok := s.rooms[code]
	s.mu.Unlock()
	if ok {
		return h
	}

	room, err := s.store.Get(ctx, code)
	if err != nil {
		if !errors.Is(err, domain.ErrRoomNotFound) {
			log.Printf("room %s: load: %v", code, err)
		}
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.rooms[code]; ok {
		return h
	}
	h = &roomHandle{room: room}
	s.rooms[code] = h
	return h
}

// withRoom runs fn while holding the room's lock. Unknown codes are a
// silent no-op.
func (s *RoomService) withRoom(ctx context.Context, code string, fn func(*domain.Room)) bool {
	h := s.handle(ctx, code)
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	fn(h.room)
	return true
}

// withAdmin is withRoom plus the admin-token check. A token mismatch is
// deliberately indistinguishable from an unknown room.
func (s *RoomService) withAdmin(ctx context.Context, code, token string, fn func(*domain.Room)) bool {
	h := s.handle(ctx, code)
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || h.room.AdminToken != token {
		return false
	}
	fn(h.room)
	return true
}

// persist writes the room snapshot; memory stays authoritative on failure.
func (s *RoomService) persist(ctx context.Context, room *domain.Room) {
	if err := s.store.Update(ctx, room); err != nil {
		log.Printf("room %s: persist: %v", room.Code, err)
	}
}

// CreateRoom opens a new room in the lobby state with the default config.
func (s *RoomService) CreateRoom(ctx context.Context, name string) (domain.CreateRoomResult, error) {
	code := s.uniqueCode(ctx)
	room := &domain.Room{
		Code:        code,
		Name:        name,
		AdminToken:  s.newID(),
		Config:      domain.DefaultConfig(),
		State:       domain.RoomLobby,
		Quiz:        make(map[string]*domain.ParticipantQuizState),
		ProctorLogs: make(map[string][]domain.ProctorEvent),
	}
	if err := s.store.Create(ctx, room); err != nil {
		return domain.CreateRoomResult{}, err
	}

	s.mu.Lock()
	s.rooms[code] = &roomHandle{room: room}
	s.mu.Unlock()

	log.Printf("room %s: created (%s)", code, name)
	return domain.CreateRoomResult{RoomCode: code, AdminToken: room.AdminToken}, nil
}

// uniqueCode draws 6-character codes from A-Z0-9 until one is free among
// active rooms.
func (s *RoomService) uniqueCode(ctx context.Context) string {
	for {
		s.mu.Lock()
		buf := make([]byte, 6)
		for i := range buf {
			buf[i] = codeAlphabet[s.rnd.Intn(len(codeAlphabet))]
		}
		code := string(buf)
		_, active := s.rooms[code]
		s.mu.Unlock()
		if active {
			continue
		}
		if _, err := s.store.Get(ctx, code); err != nil {
			if !errors.Is(err, domain.ErrRoomNotFound) {
				log.Printf("room code check: %v", err)
			}
			return code
		}
	}
}

// UpdateConfig replaces the room config. Allowed in any state; the new
// config only takes effect at the next quiz start.
func (s *RoomService) UpdateConfig(ctx context.Context, code, token string, cfg domain.QuizConfig) {
	s.withAdmin(ctx, code, token, func(room *domain.Room) {
		room.Config = cfg
		s.persist(ctx, room)
		s.notifier.ConfigUpdated(code, cfg)
	})
}

// GetRoomInfo returns the admin summary of a room, or nil.
func (s *RoomService) GetRoomInfo(ctx context.Context, code, token string) *domain.RoomInfo {
	var info *domain.RoomInfo
	s.withAdmin(ctx, code, token, func(room *domain.Room) {
		info = &domain.RoomInfo{
			Code:      room.Code,
			Name:      room.Name,
			State:     room.State,
			Config:    room.Config,
			StartedAt: room.StartedAt,
		}
	})
	return info
}

// StartQuiz builds every approved participant's personal question set and
// moves the room to Running. Valid only from the lobby.
func (s *RoomService) StartQuiz(ctx context.Context, code, token string) error {
	var buildErr error
	s.withAdmin(ctx, code, token, func(room *domain.Room) {
		if room.State != domain.RoomLobby {
			return
		}

		var master []*domain.QuestionState
		if room.Config.SameQuestionsForAll {
			master, buildErr = s.builder.BuildSet(ctx, room.Config)
			if buildErr != nil {
				return
			}
		}

		room.Quiz = make(map[string]*domain.ParticipantQuizState)
		for _, p := range room.Participants {
			if !p.Approved {
				continue
			}
			var qs []*domain.QuestionState
			if master != nil {
				// Identical content, fresh identities: attempts and
				// answers must never alias between participants.
				qs = make([]*domain.QuestionState, len(master))
				for i, q := range master {
					qs[i] = q.CloneWithID(s.newID())
				}
			} else {
				qs, buildErr = s.builder.BuildSet(ctx, room.Config)
				if buildErr != nil {
					return
				}
			}
			p.Finished = false
			room.Quiz[p.ParticipantID] = &domain.ParticipantQuizState{
				ParticipantID: p.ParticipantID,
				DisplayName:   p.DisplayName,
				Questions:     qs,
			}
		}

		started := s.now()
		room.StartedAt = &started
		room.State = domain.RoomRunning
		s.persist(ctx, room)
		s.notifier.QuizStarted(code, started, room.Config)
		log.Printf("room %s: quiz started, %d participants", code, len(room.Quiz))
	})
	return buildErr
}

// FinishQuiz ends a running quiz: every participant is marked finished, the
// room transitions to Finished and its snapshot is archived.
func (s *RoomService) FinishQuiz(ctx context.Context, code, token string) {
	s.withAdmin(ctx, code, token, func(room *domain.Room) {
		if room.State != domain.RoomRunning {
			return
		}
		for _, p := range room.Participants {
			p.Finished = true
		}
		room.State = domain.RoomFinished
		s.persist(ctx, room)
		if err := s.store.Archive(ctx, room); err != nil {
			log.Printf("room %s: archive: %v", code, err)
		}
		s.notifier.QuizFinished(code)
		s.notifier.ScoreboardUpdated(code, scoreboard(room))
	})
}

// Approve admits a pending participant.
func (s *RoomService) Approve(ctx context.Context, code, token, participantID string) {
	s.withAdmin(ctx, code, token, func(room *domain.Room) {
		p := findParticipant(room, participantID)
		if p == nil {
			return
		}
		p.Approved = true
		s.persist(ctx, room)
		s.notifier.JoinApproved(p.ConnectionID)
		s.notifier.ParticipantListChanged(code, s.participantList(room))
	})
}

// ApproveAll admits every pending participant at once.
func (s *RoomService) ApproveAll(ctx context.Context, code, token string) {
	s.withAdmin(ctx, code, token, func(room *domain.Room) {
		for _, p := range room.Participants {
			if !p.Approved {
				p.Approved = true
				s.notifier.JoinApproved(p.ConnectionID)
			}
		}
		s.persist(ctx, room)
		s.notifier.ParticipantListChanged(code, s.participantList(room))
	})
}

// Reject removes a pending participant from the room.
func (s *RoomService) Reject(ctx context.Context, code, token, participantID string) {
	s.withAdmin(ctx, code, token, func(room *domain.Room) {
		p := removeParticipant(room, participantID)
		if p == nil {
			return
		}
		s.persist(ctx, room)
		s.notifier.JoinRejected(p.ConnectionID, "join rejected by admin")
		s.notifier.ParticipantListChanged(code, s.participantList(room))
	})
}

// KickParticipant removes a participant, approved or not.
func (s *RoomService) KickParticipant(ctx context.Context, code, token, participantID string) {
	s.withAdmin(ctx, code, token, func(room *domain.Room) {
		p := removeParticipant(room, participantID)
		if p == nil {
			return
		}
		s.persist(ctx, room)
		s.notifier.Kicked(p.ConnectionID, "removed by admin")
		s.notifier.ParticipantListChanged(code, s.participantList(room))
	})
}

// CloseRoom archives the room snapshot and deletes the room. The handle is
// marked closed under its own lock so that a writer already waiting on it
// cannot persist the room back into the store afterwards.
func (s *RoomService) CloseRoom(ctx context.Context, code, token string) {
	h := s.handle(ctx, code)
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || h.room.AdminToken != token {
		return
	}
	if err := s.store.Archive(ctx, h.room); err != nil {
		log.Printf("room %s: archive: %v", code, err)
	}
	if err := s.store.Remove(ctx, code); err != nil {
		log.Printf("room %s: remove: %v", code, err)
	}
	h.closed = true
	s.notifier.RoomClosed(code)

	s.mu.Lock()
	delete(s.rooms, code)
	s.mu.Unlock()
	log.Printf("room %s: closed", code)
}

// ShowResults tells participant clients to reveal the final results view.
func (s *RoomService) ShowResults(ctx context.Context, code, token string) {
	s.withAdmin(ctx, code, token, func(room *domain.Room) {
		s.notifier.ShowResults(code)
	})
}

// ResumeAdmin re-syncs a reconnecting admin client: room summary, current
// participant list and scoreboard.
func (s *RoomService) ResumeAdmin(ctx context.Context, code, token string) (*domain.RoomInfo, []domain.ParticipantInfo, []domain.ScoreboardEntry) {
	var (
		info  *domain.RoomInfo
		list  []domain.ParticipantInfo
		board []domain.ScoreboardEntry
	)
	s.withAdmin(ctx, code, token, func(room *domain.Room) {
		info = &domain.RoomInfo{
			Code:      room.Code,
			Name:      room.Name,
			State:     room.State,
			Config:    room.Config,
			StartedAt: room.StartedAt,
		}
		list = s.participantList(room)
		board = scoreboard(room)
	})
	return info, list, board
}

// GetParticipantDetails returns one participant's full quiz state, answers
// included, plus their proctor log. Admin view only.
func (s *RoomService) GetParticipantDetails(ctx context.Context, code, token, participantID string) (*domain.ParticipantQuizState, []domain.ProctorEvent) {
	var (
		state  *domain.ParticipantQuizState
		events []domain.ProctorEvent
	)
	s.withAdmin(ctx, code, token, func(room *domain.Room) {
		state = room.Quiz[participantID]
		events = room.ProctorLogs[participantID]
	})
	return state, events
}

// CheckTime marks every not-yet-finished participant finished once the time
// limit has elapsed. Safe to call repeatedly; only the first effective call
// mutates anything.
func (s *RoomService) CheckTime(ctx context.Context, code string) {
	s.withRoom(ctx, code, func(room *domain.Room) {
		if room.State != domain.RoomRunning || room.StartedAt == nil {
			return
		}
		limit := time.Duration(room.Config.TimeLimitMinutes) * time.Minute
		if s.now().Sub(*room.StartedAt) < limit {
			return
		}

		changed := false
		for _, p := range room.Participants {
			if p.Approved && !p.Finished {
				p.Finished = true
				changed = true
			}
		}
		if !changed {
			return
		}
		s.persist(ctx, room)
		s.notifier.ScoreboardUpdated(code, scoreboard(room))
		log.Printf("room %s: time limit reached", code)
	})
}

// ActiveCodes snapshots the codes of rooms currently held in memory. The
// time-limit poll loop iterates over this.
func (s *RoomService) ActiveCodes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	codes := make([]string, 0, len(s.rooms))
	for code := range s.rooms {
		codes = append(codes, code)
	}
	return codes
}

// RequestJoin adds a new unapproved participant, or re-binds an existing one
// to a new connection when the client presents a known participant id. The
// only failure is an unknown room code.
func (s *RoomService) RequestJoin(ctx context.Context, code, connectionID, displayName, participantID string) domain.JoinResult {
	var res domain.JoinResult
	ok := s.withRoom(ctx, code, func(room *domain.Room) {
		if participantID != "" {
			if p := findParticipant(room, participantID); p != nil {
				p.ConnectionID = connectionID
				if displayName != "" {
					p.DisplayName = displayName
				}
				s.persist(ctx, room)
				s.notifier.ParticipantListChanged(code, s.participantList(room))
				res = domain.JoinResult{
					Success:       true,
					ParticipantID: p.ParticipantID,
					RoomName:      room.Name,
					Language:      room.Config.Language,
				}
				return
			}
		}

		p := &domain.Participant{
			ParticipantID: s.newID(),
			ConnectionID:  connectionID,
			DisplayName:   displayName,
		}
		room.Participants = append(room.Participants, p)
		s.persist(ctx, room)
		s.notifier.JoinRequested(code, participantInfo(room, p))
		s.notifier.ParticipantListChanged(code, s.participantList(room))
		res = domain.JoinResult{
			Success:       true,
			ParticipantID: p.ParticipantID,
			RoomName:      room.Name,
			Language:      room.Config.Language,
		}
	})
	if !ok {
		return domain.JoinResult{Success: false, Message: "room not found"}
	}
	return res
}

// ResumeParticipant re-binds a reconnecting participant and returns the
// state snapshot the client needs to resync.
func (s *RoomService) ResumeParticipant(ctx context.Context, code, connectionID, participantID string) (domain.ResumeStatus, *domain.ParticipantQuizState) {
	status := domain.ResumeNotFound
	var state *domain.ParticipantQuizState
	s.withRoom(ctx, code, func(room *domain.Room) {
		p := findParticipant(room, participantID)
		if p == nil {
			return
		}
		p.ConnectionID = connectionID
		s.persist(ctx, room)
		status, state = resumeState(room, participantID)
	})
	return status, state
}

// GetState returns the participant's current quiz state for a client-side
// resync, with correct answers stripped.
func (s *RoomService) GetState(ctx context.Context, code, participantID string) (domain.ResumeStatus, *domain.ParticipantQuizState) {
	status := domain.ResumeNotFound
	var state *domain.ParticipantQuizState
	s.withRoom(ctx, code, func(room *domain.Room) {
		if findParticipant(room, participantID) == nil {
			return
		}
		status, state = resumeState(room, participantID)
	})
	return status, state
}

// GetQuestions returns the participant's question list with correct answers
// stripped. The redaction is unconditional.
func (s *RoomService) GetQuestions(ctx context.Context, code, participantID string) []*domain.QuestionState {
	var out []*domain.QuestionState
	s.withRoom(ctx, code, func(room *domain.Room) {
		pq, ok := room.Quiz[participantID]
		if !ok {
			return
		}
		out = make([]*domain.QuestionState, len(pq.Questions))
		for i, q := range pq.Questions {
			out[i] = q.Redacted()
		}
	})
	return out
}

// SubmitAnswer runs the per-question scoring state machine and returns the
// synchronous outcome.
func (s *RoomService) SubmitAnswer(ctx context.Context, code, participantID, questionID, answer string) domain.AnswerResult {
	var res domain.AnswerResult
	s.withRoom(ctx, code, func(room *domain.Room) {
		if room.State != domain.RoomRunning {
			return
		}
		pq, ok := room.Quiz[participantID]
		if !ok {
			return
		}
		var q *domain.QuestionState
		for _, c := range pq.Questions {
			if c.ID == questionID {
				q = c
				break
			}
		}
		if q == nil {
			return
		}

		switch {
		case q.Solved:
			res = domain.AnswerResult{Correct: true, Message: msgAlreadySolved, Finished: participantFinished(pq)}
			return
		case q.Attempts >= 2:
			res = domain.AnswerResult{Message: msgAlreadyFailed, Finished: participantFinished(pq)}
			return
		}

		q.UserAnswer = answer
		if question.CompareAnswer(q.Topic, q.CorrectAnswer, answer) {
			awarded := q.RemainingScore
			pq.Score += awarded
			q.Solved = true
			res = domain.AnswerResult{
				Correct:        true,
				ScoreAwarded:   awarded,
				RemainingScore: q.RemainingScore,
				Message:        msgCorrect,
			}
		} else {
			q.Attempts++
			if q.Attempts >= 2 {
				q.RemainingScore = 0
				res = domain.AnswerResult{Message: msgFailed}
			} else {
				res = domain.AnswerResult{Message: msgWrongOneLeft, RemainingScore: q.RemainingScore}
				s.persist(ctx, room)
				return
			}
		}

		// Question reached a terminal state: advance the cursor and
		// recompute finished.
		pq.CurrentIndex = terminalCount(pq)
		if participantFinished(pq) {
			if p := findParticipant(room, participantID); p != nil {
				p.Finished = true
			}
			res.Finished = true
		}
		s.persist(ctx, room)
		s.notifier.ScoreboardUpdated(code, scoreboard(room))
	})
	return res
}

// ReportProctorEvent appends an integrity event to the participant's log.
// Additive only; it never affects scoring.
func (s *RoomService) ReportProctorEvent(ctx context.Context, code, participantID, eventType, content string) {
	s.withRoom(ctx, code, func(room *domain.Room) {
		if findParticipant(room, participantID) == nil {
			return
		}
		ev := domain.ProctorEvent{
			Type:      eventType,
			Content:   content,
			Timestamp: s.now(),
		}
		if room.ProctorLogs == nil {
			room.ProctorLogs = make(map[string][]domain.ProctorEvent)
		}
		room.ProctorLogs[participantID] = append(room.ProctorLogs[participantID], ev)
		s.persist(ctx, room)
		s.notifier.ProctorEvent(code, participantID, ev)
	})
}

// ListArchivedRooms exposes the archive log for reporting clients.
func (s *RoomService) ListArchivedRooms(ctx context.Context) ([]*domain.Room, error) {
	return s.store.ListArchived(ctx)
}

// ArchivedRoom fetches one archived snapshot by code.
func (s *RoomService) ArchivedRoom(ctx context.Context, code string) (*domain.Room, error) {
	return s.store.GetArchived(ctx, code)
}

func findParticipant(room *domain.Room, participantID string) *domain.Participant {
	for _, p := range room.Participants {
		if p.ParticipantID == participantID {
			return p
		}
	}
	return nil
}

func removeParticipant(room *domain.Room, participantID string) *domain.Participant {
	for i, p := range room.Participants {
		if p.ParticipantID == participantID {
			room.Participants = append(room.Participants[:i], room.Participants[i+1:]...)
			delete(room.Quiz, participantID)
			return p
		}
	}
	return nil
}

// terminalCount reports how many questions are solved or failed out.
func terminalCount(pq *domain.ParticipantQuizState) int {
	n := 0
	for _, q := range pq.Questions {
		if q.Solved || q.Attempts >= 2 {
			n++
		}
	}
	return n
}

func participantFinished(pq *domain.ParticipantQuizState) bool {
	return len(pq.Questions) > 0 && terminalCount(pq) == len(pq.Questions)
}

// resumeState builds the redacted quiz-state snapshot handed to a
// reconnecting participant client.
func resumeState(room *domain.Room, participantID string) (domain.ResumeStatus, *domain.ParticipantQuizState) {
	switch room.State {
	case domain.RoomLobby:
		return domain.ResumeLobby, nil
	case domain.RoomFinished:
		// Finished rooms still hand back the state so the results view
		// can render.
	}

	pq, ok := room.Quiz[participantID]
	if !ok {
		if room.State == domain.RoomFinished {
			return domain.ResumeFinished, nil
		}
		return domain.ResumeRunning, nil
	}

	snap := &domain.ParticipantQuizState{
		ParticipantID:    pq.ParticipantID,
		DisplayName:      pq.DisplayName,
		CurrentIndex:     pq.CurrentIndex,
		Score:            pq.Score,
		StartedAt:        room.StartedAt,
		TimeLimitMinutes: room.Config.TimeLimitMinutes,
		Language:         room.Config.Language,
		RoomFinished:     room.State == domain.RoomFinished,
	}
	snap.Questions = make([]*domain.QuestionState, len(pq.Questions))
	for i, q := range pq.Questions {
		snap.Questions[i] = q.Redacted()
	}
	if room.State == domain.RoomFinished {
		return domain.ResumeFinished, snap
	}
	return domain.ResumeRunning, snap
}

func participantInfo(room *domain.Room, p *domain.Participant) domain.ParticipantInfo {
	info := domain.ParticipantInfo{
		ParticipantID:   p.ParticipantID,
		DisplayName:     p.DisplayName,
		Approved:        p.Approved,
		Finished:        p.Finished,
		ProctorWarnings: len(room.ProctorLogs[p.ParticipantID]),
	}
	if pq, ok := room.Quiz[p.ParticipantID]; ok {
		info.Completed = pq.Completed()
		info.Total = len(pq.Questions)
	}
	return info
}

func (s *RoomService) participantList(room *domain.Room) []domain.ParticipantInfo {
	list := make([]domain.ParticipantInfo, 0, len(room.Participants))
	for _, p := range room.Participants {
		list = append(list, participantInfo(room, p))
	}
	return list
}

// scoreboard builds the admin scoreboard, descending by score with stable
// tie order (participant join order).
func scoreboard(room *domain.Room) []domain.ScoreboardEntry {
	entries := make([]domain.ScoreboardEntry, 0, len(room.Participants))
	for _, p := range room.Participants {
		pq, ok := room.Quiz[p.ParticipantID]
		if !ok {
			continue
		}
		entries = append(entries, domain.ScoreboardEntry{
			ParticipantID: p.ParticipantID,
			DisplayName:   p.DisplayName,
			Score:         pq.Score,
			Finished:      p.Finished,
			CurrentIndex:  pq.CurrentIndex,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}
