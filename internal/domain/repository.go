package domain

import (
	"context"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListExcept(ctx context.Context, excludeID string) ([]*User, error)
	UpdateProfile(ctx context.Context, u *User) error
}

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error

	// ListConversationAndAcknowledge returns every message exchanged between
	// selfID and peerID in ascending creation order and, in the same
	// transaction, flips seen=true on all unseen messages from peerID to
	// selfID. Listing a conversation acknowledges it; the two steps are one
	// store operation to close the race window between read and flip.
	ListConversationAndAcknowledge(ctx context.Context, selfID, peerID string) ([]*Message, error)

	// MarkSeen flips a single message's seen flag. Idempotent; returns
	// ErrNotFound when the id does not resolve.
	MarkSeen(ctx context.Context, messageID string) error

	// CountUnseenBySender returns, for each sender with at least one unseen
	// message addressed to receiverID, the number of such messages. Senders
	// with zero unseen messages are absent from the map.
	CountUnseenBySender(ctx context.Context, receiverID string) (map[string]int, error)
}
