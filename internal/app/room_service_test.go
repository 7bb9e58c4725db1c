package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"sync"
	"testing"
	"time"

	"cipherquiz-service/internal/domain"
	"cipherquiz-service/internal/infra/memory"
)

// fixedBuilder hands out fresh copies of a canned question set so scoring
// tests are deterministic.
type fixedBuilder struct {
	template []*domain.QuestionState
}

func (b fixedBuilder) BuildSet(context.Context, domain.QuizConfig) ([]*domain.QuestionState, error) {
	out := make([]*domain.QuestionState, len(b.template))
	for i, q := range b.template {
		c := *q
		out[i] = &c
	}
	return out, nil
}

type recordingNotifier struct {
	NoopNotifier
	mu          sync.Mutex
	scoreboards [][]domain.ScoreboardEntry
	approved    []string
	kicked      []string
}

func (n *recordingNotifier) ScoreboardUpdated(code string, entries []domain.ScoreboardEntry) {
	n.mu.Lock()
	n.scoreboards = append(n.scoreboards, entries)
	n.mu.Unlock()
}

func (n *recordingNotifier) JoinApproved(connectionID string) {
	n.mu.Lock()
	n.approved = append(n.approved, connectionID)
	n.mu.Unlock()
}

func (n *recordingNotifier) Kicked(connectionID, reason string) {
	n.mu.Lock()
	n.kicked = append(n.kicked, connectionID)
	n.mu.Unlock()
}

func (n *recordingNotifier) scoreboardCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.scoreboards)
}

func caesarTemplate() []*domain.QuestionState {
	return []*domain.QuestionState{{
		ID:             "tpl-1",
		Topic:          "caesar",
		Prompt:         "Encrypt the text \"HELLO\" using Caesar cipher with a shift of 3.",
		InputType:      "text",
		CorrectAnswer:  "KHOOR",
		RemainingScore: 100,
		Position:       1,
		Total:          1,
	}}
}

func newTestService(t *testing.T, builder QuestionBuilder, notifier Notifier) (*RoomService, *memory.RoomStore) {
	t.Helper()
	store := memory.NewRoomStore()
	svc := NewRoomService(store, builder, notifier, rand.New(rand.NewSource(42)))
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return svc, store
}

// startedRoom creates a room, joins and approves one participant and starts
// the quiz with the canned Caesar question.
func startedRoom(t *testing.T, svc *RoomService) (code, token, pid string) {
	t.Helper()
	ctx := context.Background()
	created, err := svc.CreateRoom(ctx, "test room")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	join := svc.RequestJoin(ctx, created.RoomCode, "conn-1", "Alice", "")
	if !join.Success {
		t.Fatalf("RequestJoin failed: %s", join.Message)
	}
	svc.Approve(ctx, created.RoomCode, created.AdminToken, join.ParticipantID)
	if err := svc.StartQuiz(ctx, created.RoomCode, created.AdminToken); err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}
	return created.RoomCode, created.AdminToken, join.ParticipantID
}

func TestCreateRoomDefaults(t *testing.T) {
	svc, _ := newTestService(t, fixedBuilder{}, nil)
	res, err := svc.CreateRoom(context.Background(), "crypto 101")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if !regexp.MustCompile(`^[A-Z0-9]{6}$`).MatchString(res.RoomCode) {
		t.Errorf("room code %q does not match 6-char A-Z0-9 format", res.RoomCode)
	}
	if res.AdminToken == "" {
		t.Error("admin token is empty")
	}
	info := svc.GetRoomInfo(context.Background(), res.RoomCode, res.AdminToken)
	if info == nil {
		t.Fatal("GetRoomInfo returned nil for fresh room")
	}
	if info.State != domain.RoomLobby {
		t.Errorf("state = %v, want lobby", info.State)
	}
	if got := info.Config.QuestionsPerTopic["Caesar"]; got != 2 {
		t.Errorf("default Caesar count = %d, want 2", got)
	}
	if info.Config.TimeLimitMinutes != 30 {
		t.Errorf("default time limit = %d, want 30", info.Config.TimeLimitMinutes)
	}
}

func TestRequestJoinUnknownRoom(t *testing.T) {
	svc, _ := newTestService(t, fixedBuilder{}, nil)
	res := svc.RequestJoin(context.Background(), "ABC123", "conn-1", "Alice", "")
	if res.Success {
		t.Fatal("join to unknown room succeeded")
	}
	if res.ParticipantID != "" {
		t.Errorf("participant created for unknown room: %s", res.ParticipantID)
	}
}

func TestWrongAdminTokenIsSilentNoop(t *testing.T) {
	svc, _ := newTestService(t, fixedBuilder{}, nil)
	ctx := context.Background()
	res, _ := svc.CreateRoom(ctx, "room")

	cfg := domain.DefaultConfig()
	cfg.TimeLimitMinutes = 5
	svc.UpdateConfig(ctx, res.RoomCode, "wrong-token", cfg)

	info := svc.GetRoomInfo(ctx, res.RoomCode, res.AdminToken)
	if info.Config.TimeLimitMinutes != 30 {
		t.Errorf("config changed under wrong token: limit = %d", info.Config.TimeLimitMinutes)
	}
	if got := svc.GetRoomInfo(ctx, res.RoomCode, "wrong-token"); got != nil {
		t.Error("GetRoomInfo under wrong token returned data")
	}
}

func TestSubmitCorrectAnswerAwardsFullScore(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, _ := newTestService(t, fixedBuilder{template: caesarTemplate()}, notifier)
	ctx := context.Background()
	code, token, pid := startedRoom(t, svc)

	qs := svc.GetQuestions(ctx, code, pid)
	if len(qs) != 1 {
		t.Fatalf("got %d questions, want 1", len(qs))
	}
	if qs[0].CorrectAnswer != "" {
		t.Fatal("correct answer leaked to participant")
	}

	res := svc.SubmitAnswer(ctx, code, pid, qs[0].ID, "  khoor ")
	if !res.Correct {
		t.Fatalf("submit KHOOR: not accepted (%s)", res.Message)
	}
	if res.ScoreAwarded != 100.0 {
		t.Errorf("score awarded = %v, want 100.0", res.ScoreAwarded)
	}
	if !res.Finished {
		t.Error("participant not finished after solving only question")
	}

	_, _, board := svc.ResumeAdmin(ctx, code, token)
	if len(board) != 1 || board[0].Score != 100.0 {
		t.Errorf("scoreboard = %+v, want single 100.0 entry", board)
	}
	if notifier.scoreboardCount() == 0 {
		t.Error("no scoreboard notification after scoring mutation")
	}
}

func TestSubmitTwoWrongAnswersFailsQuestion(t *testing.T) {
	svc, _ := newTestService(t, fixedBuilder{template: caesarTemplate()}, nil)
	ctx := context.Background()
	code, token, pid := startedRoom(t, svc)
	qid := svc.GetQuestions(ctx, code, pid)[0].ID

	first := svc.SubmitAnswer(ctx, code, pid, qid, "WRONG")
	if first.Correct || first.Finished {
		t.Fatalf("first wrong answer: %+v", first)
	}
	second := svc.SubmitAnswer(ctx, code, pid, qid, "WRONG")
	if second.Correct {
		t.Fatal("second wrong answer accepted")
	}
	if !second.Finished {
		t.Error("participant not finished after failing only question")
	}

	state, _ := svc.GetParticipantDetails(ctx, code, token, pid)
	q := state.Questions[0]
	if q.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", q.Attempts)
	}
	if q.RemainingScore != 0 {
		t.Errorf("remaining score = %v, want 0", q.RemainingScore)
	}
	if q.UserAnswer != "WRONG" {
		t.Errorf("last answer not retained: %q", q.UserAnswer)
	}

	third := svc.SubmitAnswer(ctx, code, pid, qid, "KHOOR")
	if third.Correct {
		t.Fatal("terminally failed question accepted a correct answer")
	}
	if third.Message != msgAlreadyFailed {
		t.Errorf("message = %q, want %q", third.Message, msgAlreadyFailed)
	}
	if state.Questions[0].Attempts != 2 {
		t.Errorf("attempts moved past 2: %d", state.Questions[0].Attempts)
	}
}

func TestReconnectRebindsParticipant(t *testing.T) {
	svc, _ := newTestService(t, fixedBuilder{}, nil)
	ctx := context.Background()
	created, _ := svc.CreateRoom(ctx, "room")
	code := created.RoomCode

	join := svc.RequestJoin(ctx, code, "conn-1", "Alice", "")
	rejoin := svc.RequestJoin(ctx, code, "conn-2", "Alice B", join.ParticipantID)
	if !rejoin.Success {
		t.Fatalf("rejoin failed: %s", rejoin.Message)
	}
	if rejoin.ParticipantID != join.ParticipantID {
		t.Errorf("reconnect minted new participant id %s", rejoin.ParticipantID)
	}

	_, list, _ := svc.ResumeAdmin(ctx, code, created.AdminToken)
	if len(list) != 1 {
		t.Fatalf("participant duplicated on reconnect: %d entries", len(list))
	}
	if list[0].DisplayName != "Alice B" {
		t.Errorf("display name not updated: %q", list[0].DisplayName)
	}
}

func TestCheckTimeIdempotent(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, _ := newTestService(t, fixedBuilder{template: caesarTemplate()}, notifier)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	code, token, _ := startedRoom(t, svc)

	before := notifier.scoreboardCount()
	svc.CheckTime(ctx, code)
	if notifier.scoreboardCount() != before {
		t.Error("CheckTime fired before the limit elapsed")
	}

	svc.now = func() time.Time { return base.Add(31 * time.Minute) }
	svc.CheckTime(ctx, code)
	after := notifier.scoreboardCount()
	if after != before+1 {
		t.Fatalf("scoreboard notifications = %d, want %d", after, before+1)
	}

	// Repeats must not re-notify or re-mutate.
	svc.CheckTime(ctx, code)
	svc.CheckTime(ctx, code)
	if notifier.scoreboardCount() != after {
		t.Error("CheckTime is not idempotent")
	}

	_, list, _ := svc.ResumeAdmin(ctx, code, token)
	if !list[0].Finished {
		t.Error("participant not finished after time limit")
	}
}

func TestScoreboardSortedDescending(t *testing.T) {
	svc, _ := newTestService(t, fixedBuilder{template: caesarTemplate()}, nil)
	ctx := context.Background()
	created, _ := svc.CreateRoom(ctx, "room")
	code, token := created.RoomCode, created.AdminToken

	alice := svc.RequestJoin(ctx, code, "conn-a", "Alice", "")
	bob := svc.RequestJoin(ctx, code, "conn-b", "Bob", "")
	svc.ApproveAll(ctx, code, token)
	if err := svc.StartQuiz(ctx, code, token); err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}

	// Bob solves, Alice fails out.
	bq := svc.GetQuestions(ctx, code, bob.ParticipantID)[0].ID
	svc.SubmitAnswer(ctx, code, bob.ParticipantID, bq, "KHOOR")
	aq := svc.GetQuestions(ctx, code, alice.ParticipantID)[0].ID
	svc.SubmitAnswer(ctx, code, alice.ParticipantID, aq, "NOPE")
	svc.SubmitAnswer(ctx, code, alice.ParticipantID, aq, "NOPE")

	_, _, board := svc.ResumeAdmin(ctx, code, token)
	if len(board) != 2 {
		t.Fatalf("scoreboard has %d entries, want 2", len(board))
	}
	if board[0].DisplayName != "Bob" || board[0].Score != 100.0 {
		t.Errorf("top entry = %+v, want Bob at 100.0", board[0])
	}
	if board[1].Score != 0 {
		t.Errorf("bottom entry score = %v, want 0", board[1].Score)
	}
}

func TestSameQuestionsForAllClonesState(t *testing.T) {
	svc, _ := newTestService(t, fixedBuilder{template: caesarTemplate()}, nil)
	ctx := context.Background()
	created, _ := svc.CreateRoom(ctx, "room")
	code, token := created.RoomCode, created.AdminToken

	cfg := domain.DefaultConfig()
	cfg.SameQuestionsForAll = true
	svc.UpdateConfig(ctx, code, token, cfg)

	alice := svc.RequestJoin(ctx, code, "conn-a", "Alice", "")
	bob := svc.RequestJoin(ctx, code, "conn-b", "Bob", "")
	svc.ApproveAll(ctx, code, token)
	if err := svc.StartQuiz(ctx, code, token); err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}

	aq := svc.GetQuestions(ctx, code, alice.ParticipantID)[0]
	bq := svc.GetQuestions(ctx, code, bob.ParticipantID)[0]
	if aq.ID == bq.ID {
		t.Error("shared question set aliases ids between participants")
	}
	if aq.Prompt != bq.Prompt {
		t.Error("shared question set has diverging content")
	}

	// Alice's mistakes must not bleed into Bob's state.
	svc.SubmitAnswer(ctx, code, alice.ParticipantID, aq.ID, "WRONG")
	bobState, _ := svc.GetParticipantDetails(ctx, code, token, bob.ParticipantID)
	if bobState.Questions[0].Attempts != 0 {
		t.Errorf("attempts aliased across participants: %d", bobState.Questions[0].Attempts)
	}
}

func TestKickRemovesParticipant(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, _ := newTestService(t, fixedBuilder{}, notifier)
	ctx := context.Background()
	created, _ := svc.CreateRoom(ctx, "room")
	join := svc.RequestJoin(ctx, created.RoomCode, "conn-1", "Alice", "")

	svc.KickParticipant(ctx, created.RoomCode, created.AdminToken, join.ParticipantID)

	_, list, _ := svc.ResumeAdmin(ctx, created.RoomCode, created.AdminToken)
	if len(list) != 0 {
		t.Errorf("participant still listed after kick: %+v", list)
	}
	if len(notifier.kicked) != 1 || notifier.kicked[0] != "conn-1" {
		t.Errorf("kick notification = %v, want [conn-1]", notifier.kicked)
	}
}

func TestFinishQuizArchivesSnapshot(t *testing.T) {
	svc, store := newTestService(t, fixedBuilder{template: caesarTemplate()}, nil)
	ctx := context.Background()
	code, token, pid := startedRoom(t, svc)

	svc.FinishQuiz(ctx, code, token)

	status, _ := svc.GetState(ctx, code, pid)
	if status != domain.ResumeFinished {
		t.Errorf("resume status = %s, want finished", status)
	}
	archived, err := store.GetArchived(ctx, code)
	if err != nil {
		t.Fatalf("GetArchived: %v", err)
	}
	if archived.State != domain.RoomFinished {
		t.Errorf("archived state = %v, want finished", archived.State)
	}
	if !archived.Participants[0].Finished {
		t.Error("participant not finished in archived snapshot")
	}
}

func TestRoomSurvivesRestartThroughStore(t *testing.T) {
	store := memory.NewRoomStore()
	svc1 := NewRoomService(store, fixedBuilder{template: caesarTemplate()}, nil, rand.New(rand.NewSource(1)))
	ctx := context.Background()
	created, err := svc1.CreateRoom(ctx, "persistent room")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	join := svc1.RequestJoin(ctx, created.RoomCode, "conn-1", "Alice", "")

	// A fresh service over the same store simulates a process restart.
	svc2 := NewRoomService(store, fixedBuilder{template: caesarTemplate()}, nil, rand.New(rand.NewSource(2)))
	info := svc2.GetRoomInfo(ctx, created.RoomCode, created.AdminToken)
	if info == nil {
		t.Fatal("room lost across restart")
	}
	rejoin := svc2.RequestJoin(ctx, created.RoomCode, "conn-2", "Alice", join.ParticipantID)
	if !rejoin.Success || rejoin.ParticipantID != join.ParticipantID {
		t.Errorf("reconnect after restart: %+v", rejoin)
	}
}

func TestProctorEventsLoggedAndCounted(t *testing.T) {
	svc, _ := newTestService(t, fixedBuilder{}, nil)
	ctx := context.Background()
	created, _ := svc.CreateRoom(ctx, "room")
	join := svc.RequestJoin(ctx, created.RoomCode, "conn-1", "Alice", "")

	svc.ReportProctorEvent(ctx, created.RoomCode, join.ParticipantID, "paste", "KHOOR")
	svc.ReportProctorEvent(ctx, created.RoomCode, join.ParticipantID, "blur", "")

	_, events := svc.GetParticipantDetails(ctx, created.RoomCode, created.AdminToken, join.ParticipantID)
	if len(events) != 2 {
		t.Fatalf("got %d proctor events, want 2", len(events))
	}
	if events[0].Type != "paste" || events[0].Content != "KHOOR" {
		t.Errorf("first event = %+v", events[0])
	}
	_, list, _ := svc.ResumeAdmin(ctx, created.RoomCode, created.AdminToken)
	if list[0].ProctorWarnings != 2 {
		t.Errorf("warning count = %d, want 2", list[0].ProctorWarnings)
	}
}

func TestCloseRoomRemovesAndArchives(t *testing.T) {
	svc, store := newTestService(t, fixedBuilder{}, nil)
	ctx := context.Background()
	created, _ := svc.CreateRoom(ctx, "room")

	svc.CloseRoom(ctx, created.RoomCode, created.AdminToken)

	if info := svc.GetRoomInfo(ctx, created.RoomCode, created.AdminToken); info != nil {
		t.Error("room still reachable after close")
	}
	if _, err := store.GetArchived(ctx, created.RoomCode); err != nil {
		t.Errorf("closed room missing from archive: %v", err)
	}
	archived, err := svc.ListArchivedRooms(ctx)
	if err != nil || len(archived) != 1 {
		t.Errorf("ListArchivedRooms = %d rooms, err %v", len(archived), err)
	}
}

func TestCloseRoomStaleHandleCannotResurrect(t *testing.T) {
	svc, store := newTestService(t, fixedBuilder{}, nil)
	ctx := context.Background()
	created, _ := svc.CreateRoom(ctx, "room")

	// A writer that resolved the handle before the close and only acquires
	// its lock afterwards must see a dead handle, not a live room.
	stale := svc.handle(ctx, created.RoomCode)
	svc.CloseRoom(ctx, created.RoomCode, created.AdminToken)

	svc.mu.Lock()
	svc.rooms[created.RoomCode] = stale
	svc.mu.Unlock()

	cfg := domain.DefaultConfig()
	cfg.TimeLimitMinutes = 5
	svc.UpdateConfig(ctx, created.RoomCode, created.AdminToken, cfg)

	if _, err := store.Get(ctx, created.RoomCode); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("closed room resurrected in store: err %v", err)
	}
}
