package models

// SessionEvent is published after every session transition. Err carries the
// failure signal of the operation that caused it, if any.
type SessionEvent struct {
	Session Session
	Err     error
}

// ConversationEvent is published after every change of a conversation.
// Messages is a full snapshot; Err is set when a refresh or a send failed.
type ConversationEvent struct {
	ConversationID string
	Messages       []Message
	Err            error
}
