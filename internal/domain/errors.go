package domain

import "errors"

var (
	// ErrRoomNotFound is returned by stores when a room code does not
	// resolve. Unknown participants and questions are soft failures
	// reported through result values, so they carry no sentinel.
	ErrRoomNotFound = errors.New("room not found")
	// ErrCustomQuestionNotFound indicates a referenced custom question id is unknown.
	ErrCustomQuestionNotFound = errors.New("custom question not found")
)
