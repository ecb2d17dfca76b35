package service

import "errors"

// Expected denials are plain return values distinguished by sentinel, never
// panics. Only unexpected backend failures propagate as wrapped errors.
var (
	ErrInvalidRoomCode    = errors.New("invalid room code")
	ErrRoomNotFound       = errors.New("room not found or has ended")
	ErrRoomExpired        = errors.New("this meeting has expired")
	ErrPasswordRequired   = errors.New("this room requires a password")
	ErrWrongPassword      = errors.New("incorrect password")
	ErrLobbyRequired      = errors.New("waiting for host to admit you")
	ErrLobbyRejected      = errors.New("the host declined your request to join")
	ErrLobbyEntryGone     = errors.New("that user is no longer waiting")
	ErrRoomFull           = errors.New("meeting is full")
	ErrNotOwner           = errors.New("only the room owner may do that")
	ErrEmptyMessage       = errors.New("message cannot be empty")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
