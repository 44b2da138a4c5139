package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quickchat/internal/assets"
	"quickchat/internal/domain"
	"quickchat/internal/security"
	"quickchat/internal/ws"
)

const maxTextRunes = 5000

// Notifier is the best-effort real-time delivery hook. Satisfied by ws.Relay.
type Notifier interface {
	Notify(userID, event string, payload any)
}

// MessageService orchestrates the send / read / mark-seen flows: persist
// first, then attempt a real-time push. Push failures never surface to the
// HTTP caller and never roll back persistence.
type MessageService struct {
	users     domain.UserRepository
	messages  domain.MessageRepository
	uploader  assets.Uploader
	relay     Notifier
	encryptor *security.Encryptor
}

func NewMessageService(
	users domain.UserRepository,
	messages domain.MessageRepository,
	uploader assets.Uploader,
	relay Notifier,
	encryptor *security.Encryptor,
) *MessageService {
	return &MessageService{
		users:     users,
		messages:  messages,
		uploader:  uploader,
		relay:     relay,
		encryptor: encryptor,
	}
}

type SendInput struct {
	Text  string
	Image string // base64 or data URL
}

// Send persists a message from senderID to receiverID and pushes it to the
// recipient's connection if they are online. Order matters: the image is
// resolved against the asset host before anything is persisted, so a failed
// upload never leaves a message behind.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID string, in SendInput) (*domain.Message, error) {
	if receiverID == "" {
		return nil, fmt.Errorf("%w: missing recipient", domain.ErrInvalidInput)
	}
	if in.Text == "" && in.Image == "" {
		return nil, fmt.Errorf("%w: message requires text or image", domain.ErrInvalidInput)
	}
	if len([]rune(in.Text)) > maxTextRunes {
		return nil, fmt.Errorf("%w: message text exceeds %d characters", domain.ErrInvalidInput, maxTextRunes)
	}

	receiver, err := s.users.GetByID(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("get recipient: %w", err)
	}
	if receiver == nil {
		return nil, fmt.Errorf("%w: recipient", domain.ErrNotFound)
	}

	var imageURL string
	if in.Image != "" {
		imageURL, err = s.uploader.Upload(ctx, in.Image)
		if err != nil {
			return nil, err
		}
	}

	var stored string
	if in.Text != "" {
		stored, err = s.encryptor.Encrypt(in.Text)
		if err != nil {
			return nil, fmt.Errorf("encrypt text: %w", err)
		}
	}

	msg := &domain.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       stored,
		Image:      imageURL,
		Seen:       false,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	out := *msg
	out.Text = in.Text
	s.relay.Notify(receiverID, ws.EventNewMessage, &out)
	return &out, nil
}

// ListConversation returns every message between selfID and peerID in
// chronological order and, as a deliberate side effect, acknowledges all
// unseen messages the peer sent to self.
func (s *MessageService) ListConversation(ctx context.Context, selfID, peerID string) ([]*domain.Message, error) {
	peer, err := s.users.GetByID(ctx, peerID)
	if err != nil {
		return nil, fmt.Errorf("get peer: %w", err)
	}
	if peer == nil {
		return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
	}

	msgs, err := s.messages.ListConversationAndAcknowledge(ctx, selfID, peerID)
	if err != nil {
		return nil, err
	}
	for _, m := range msgs {
		m.Text = s.decryptText(m.Text)
	}
	return msgs, nil
}

// MarkSeen flips one message's seen flag. Idempotent; an unknown id is
// reported as not found but is not fatal to anything.
func (s *MessageService) MarkSeen(ctx context.Context, messageID string) error {
	return s.messages.MarkSeen(ctx, messageID)
}

// ListPeersWithUnseen returns every other user and the count of unseen
// messages each of them has sent to selfID. Peers with no unseen messages do
// not appear in the map.
func (s *MessageService) ListPeersWithUnseen(ctx context.Context, selfID string) ([]*domain.User, map[string]int, error) {
	users, err := s.users.ListExcept(ctx, selfID)
	if err != nil {
		return nil, nil, err
	}
	counts, err := s.messages.CountUnseenBySender(ctx, selfID)
	if err != nil {
		return nil, nil, err
	}
	return users, counts, nil
}

func (s *MessageService) decryptText(stored string) string {
	if stored == "" {
		return ""
	}
	plain, err := s.encryptor.Decrypt(stored)
	if err != nil {
		// Pre-encryption rows; serve them as-is.
		return stored
	}
	return plain
}
