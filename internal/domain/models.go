package domain

import "time"

// RoomState is the lifecycle of a quiz room. Transitions are monotonic:
// Lobby -> Running -> Finished.
type RoomState int

const (
	RoomLobby RoomState = iota
	RoomRunning
	RoomFinished
)

func (s RoomState) String() string {
	switch s {
	case RoomLobby:
		return "lobby"
	case RoomRunning:
		return "running"
	case RoomFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// QuizConfig is the immutable configuration snapshot consumed at quiz start.
type QuizConfig struct {
	QuestionsPerTopic   map[string]int `json:"questionsPerTopic"`
	MistakesPerQuestion int            `json:"mistakesPerQuestion"`
	Difficulty          int            `json:"difficulty"`
	TimeLimitMinutes    int            `json:"timeLimitMinutes"`
	Language            string         `json:"language"`
	CustomQuestionIDs   []string       `json:"customQuestionIds"`
	Cryptanalysis       bool           `json:"cryptanalysis"`
	SameQuestionsForAll bool           `json:"sameQuestionsForAll"`
}

// DefaultConfig is what a freshly created room starts with.
func DefaultConfig() QuizConfig {
	return QuizConfig{
		QuestionsPerTopic:   map[string]int{"Caesar": 2, "Vigenere": 2},
		MistakesPerQuestion: 2,
		Difficulty:          1,
		TimeLimitMinutes:    30,
		Language:            "tr",
	}
}

// Room is one live quiz session, identified by a 6-character code. It is owned
// by the room service; stores only serialize snapshots of it.
type Room struct {
	Code         string                           `json:"code"`
	Name         string                           `json:"name"`
	AdminToken   string                           `json:"adminToken"`
	Config       QuizConfig                       `json:"config"`
	State        RoomState                        `json:"state"`
	StartedAt    *time.Time                       `json:"startedAt,omitempty"`
	Participants []*Participant                   `json:"participants"`
	Quiz         map[string]*ParticipantQuizState `json:"quiz"`
	ProctorLogs  map[string][]ProctorEvent        `json:"proctorLogs"`
}

// Participant is a member of a room. ParticipantID survives reconnects;
// ConnectionID is overwritten every time the client rebinds.
type Participant struct {
	ParticipantID string `json:"participantId"`
	ConnectionID  string `json:"connectionId"`
	DisplayName   string `json:"displayName"`
	Approved      bool   `json:"approved"`
	Finished      bool   `json:"finished"`
}

// ParticipantQuizState is one participant's personal question set and score.
type ParticipantQuizState struct {
	ParticipantID string           `json:"participantId"`
	DisplayName   string           `json:"displayName"`
	Questions     []*QuestionState `json:"questions"`
	CurrentIndex  int              `json:"currentIndex"`
	Score         float64          `json:"score"`

	// Resync fields, filled from the room when handed to a client.
	StartedAt        *time.Time `json:"startedAt,omitempty"`
	TimeLimitMinutes int        `json:"timeLimitMinutes"`
	Language         string     `json:"language"`
	RoomFinished     bool       `json:"roomFinished"`
}

// Completed reports how many questions the participant has moved past.
func (p *ParticipantQuizState) Completed() int {
	if p.CurrentIndex > len(p.Questions) {
		return len(p.Questions)
	}
	return p.CurrentIndex
}

// QuestionState is one puzzle instance owned by one participant.
type QuestionState struct {
	ID        string            `json:"id"`
	Topic     string            `json:"topic"`
	Prompt    string            `json:"prompt"`
	InputHint string            `json:"inputHint"`
	InputType string            `json:"inputType"`
	Data      map[string]string `json:"data,omitempty"`

	// CorrectAnswer is server-only. It must be stripped before a question
	// reaches a participant; see Redacted.
	CorrectAnswer string `json:"correctAnswer,omitempty"`

	Attempts       int     `json:"attempts"`
	RemainingScore float64 `json:"remainingScore"`
	Position       int     `json:"position"`
	Total          int     `json:"total"`
	UserAnswer     string  `json:"userAnswer"`
	Solved         bool    `json:"solved"`
}

// Redacted returns a copy safe to send to a participant: the correct answer
// is dropped, everything shown to the solver is kept.
func (q *QuestionState) Redacted() *QuestionState {
	c := *q
	c.CorrectAnswer = ""
	return &c
}

// CloneWithID deep-copies the question under a fresh identity so that
// per-participant mutable fields never alias between participants.
func (q *QuestionState) CloneWithID(id string) *QuestionState {
	c := *q
	c.ID = id
	if q.Data != nil {
		c.Data = make(map[string]string, len(q.Data))
		for k, v := range q.Data {
			c.Data[k] = v
		}
	}
	return &c
}

// CustomQuestion is an externally authored puzzle template.
type CustomQuestion struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Mode      string    `json:"mode"` // "Encrypt" or "Decrypt"
	Key       string    `json:"key"`
	Text      string    `json:"text"`
	Analysis  bool      `json:"analysis"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProctorEvent is an integrity log entry (copy, paste, blur, ...).
type ProctorEvent struct {
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// CreateRoomResult is returned to the admin who opened a room.
type CreateRoomResult struct {
	RoomCode   string `json:"roomCode"`
	AdminToken string `json:"adminToken"`
}

// JoinResult is the outcome of a join request. Join-by-code is the one lookup
// that surfaces an explicit failure instead of a silent no-op.
type JoinResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	ParticipantID string `json:"participantId"`
	RoomName      string `json:"roomName"`
	Language      string `json:"language"`
}

// ParticipantInfo is the admin-facing view of a participant.
type ParticipantInfo struct {
	ParticipantID   string `json:"participantId"`
	DisplayName     string `json:"displayName"`
	Approved        bool   `json:"approved"`
	Finished        bool   `json:"finished"`
	Completed       int    `json:"completed"`
	Total           int    `json:"total"`
	ProctorWarnings int    `json:"proctorWarnings"`
}

// ScoreboardEntry is one row of the admin scoreboard, ordered by score.
type ScoreboardEntry struct {
	ParticipantID string  `json:"participantId"`
	DisplayName   string  `json:"displayName"`
	Score         float64 `json:"score"`
	Finished      bool    `json:"finished"`
	CurrentIndex  int     `json:"currentIndex"`
}

// AnswerResult is the synchronous outcome of an answer submission.
type AnswerResult struct {
	Correct        bool    `json:"correct"`
	ScoreAwarded   float64 `json:"scoreAwarded"`
	RemainingScore float64 `json:"remainingScore"`
	Message        string  `json:"message"`
	Finished       bool    `json:"finished"`
}

// RoomInfo is the lightweight room summary handed to admin clients.
type RoomInfo struct {
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	State     RoomState  `json:"state"`
	Config    QuizConfig `json:"config"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
}

// ResumeStatus tells a reconnecting client which phase the room is in.
type ResumeStatus string

const (
	ResumeNotFound ResumeStatus = "not_found"
	ResumeLobby    ResumeStatus = "lobby"
	ResumeRunning  ResumeStatus = "running"
	ResumeFinished ResumeStatus = "finished"
)
