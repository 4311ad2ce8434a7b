package domain

import "errors"

var (
	// ErrRoomNotFound is returned when a room code does not match a live session.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomCodeTaken signals a room code collision; callers retry with a fresh code.
	ErrRoomCodeTaken = errors.New("room code already taken")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrNotHost is returned when a non-host client issues a host-only command.
	ErrNotHost = errors.New("client is not the session host")
)
