package domain

import "time"

// User represents an application user. JSON field names mirror what the
// existing frontend expects, so the identifier stays `_id`.
type User struct {
	ID             string    `db:"id" json:"_id"`
	Email          string    `db:"email" json:"email"`
	FullName       string    `db:"full_name" json:"fullName"`
	Bio            string    `db:"bio" json:"bio,omitempty"`
	ProfilePic     string    `db:"profile_pic" json:"profilePic,omitempty"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// Message is a single one-to-one chat message. Immutable once created, except
// for the seen flag which only ever flips false -> true.
type Message struct {
	ID         string    `db:"id" json:"_id"`
	SenderID   string    `db:"sender_id" json:"senderId"`
	ReceiverID string    `db:"receiver_id" json:"receiverId"`
	Text       string    `db:"text" json:"text,omitempty"` // encrypted at rest
	Image      string    `db:"image" json:"image,omitempty"`
	Seen       bool      `db:"seen" json:"seen"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// HasContent reports whether the message carries a text body or an image
// reference. Messages with neither are invalid.
func (m *Message) HasContent() bool {
	return m.Text != "" || m.Image != ""
}
