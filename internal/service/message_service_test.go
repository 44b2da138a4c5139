package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"quickchat/internal/domain"
	"quickchat/internal/security"
	"quickchat/internal/service"
	"quickchat/internal/ws"
)

type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepo) ListConversationAndAcknowledge(ctx context.Context, selfID, peerID string) ([]*domain.Message, error) {
	args := m.Called(ctx, selfID, peerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

func (m *MockMessageRepo) MarkSeen(ctx context.Context, messageID string) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MockMessageRepo) CountUnseenBySender(ctx context.Context, receiverID string) (map[string]int, error) {
	args := m.Called(ctx, receiverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

// recordingNotifier captures relay invocations.
type recordingNotifier struct {
	calls []notifyCall
}

type notifyCall struct {
	userID  string
	event   string
	payload any
}

func (n *recordingNotifier) Notify(userID, event string, payload any) {
	n.calls = append(n.calls, notifyCall{userID: userID, event: event, payload: payload})
}

func newMessageService(t *testing.T, users *MockUserRepo, msgs *MockMessageRepo, up *fakeUploader, n *recordingNotifier) *service.MessageService {
	t.Helper()
	enc, err := security.NewEncryptor([]byte("test-key"))
	require.NoError(t, err)
	return service.NewMessageService(users, msgs, up, n, enc)
}

func TestSend(t *testing.T) {
	receiver := &domain.User{ID: "bob", Email: "bob@example.com", FullName: "Bob"}

	t.Run("RejectsEmptyMessage", func(t *testing.T) {
		users := new(MockUserRepo)
		msgs := new(MockMessageRepo)
		svc := newMessageService(t, users, msgs, &fakeUploader{}, &recordingNotifier{})

		_, err := svc.Send(context.Background(), "alice", "bob", service.SendInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		msgs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("UnknownRecipient", func(t *testing.T) {
		users := new(MockUserRepo)
		msgs := new(MockMessageRepo)
		svc := newMessageService(t, users, msgs, &fakeUploader{}, &recordingNotifier{})

		users.On("GetByID", mock.Anything, "ghost").Return(nil, nil)

		_, err := svc.Send(context.Background(), "alice", "ghost", service.SendInput{Text: "hi"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("TextPersistedEncryptedAndRelayed", func(t *testing.T) {
		users := new(MockUserRepo)
		msgs := new(MockMessageRepo)
		notifier := &recordingNotifier{}
		svc := newMessageService(t, users, msgs, &fakeUploader{}, notifier)

		users.On("GetByID", mock.Anything, "bob").Return(receiver, nil)

		var persisted *domain.Message
		msgs.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.Message) bool {
			persisted = m
			return m.SenderID == "alice" && m.ReceiverID == "bob" && !m.Seen
		})).Return(nil)

		out, err := svc.Send(context.Background(), "alice", "bob", service.SendInput{Text: "hi"})
		require.NoError(t, err)

		// Callers and the relay see plaintext; the stored row does not.
		assert.Equal(t, "hi", out.Text)
		assert.NotEqual(t, "hi", persisted.Text)
		assert.False(t, out.Seen)

		require.Len(t, notifier.calls, 1)
		assert.Equal(t, "bob", notifier.calls[0].userID)
		assert.Equal(t, ws.EventNewMessage, notifier.calls[0].event)
		delivered := notifier.calls[0].payload.(*domain.Message)
		assert.Equal(t, "hi", delivered.Text)
	})

	t.Run("ImageUploadedBeforePersist", func(t *testing.T) {
		users := new(MockUserRepo)
		msgs := new(MockMessageRepo)
		up := &fakeUploader{url: "https://assets.example.com/img.png"}
		svc := newMessageService(t, users, msgs, up, &recordingNotifier{})

		users.On("GetByID", mock.Anything, "bob").Return(receiver, nil)
		msgs.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.Message) bool {
			return m.Image == "https://assets.example.com/img.png"
		})).Return(nil)

		out, err := svc.Send(context.Background(), "alice", "bob", service.SendInput{
			Text:  "look",
			Image: "data:image/png;base64,aGk=",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://assets.example.com/img.png", out.Image)
		assert.Equal(t, "look", out.Text)
	})

	t.Run("UploadFailureAborts", func(t *testing.T) {
		users := new(MockUserRepo)
		msgs := new(MockMessageRepo)
		up := &fakeUploader{err: fmt.Errorf("%w: asset host returned 500", domain.ErrUpstream)}
		notifier := &recordingNotifier{}
		svc := newMessageService(t, users, msgs, up, notifier)

		users.On("GetByID", mock.Anything, "bob").Return(receiver, nil)

		_, err := svc.Send(context.Background(), "alice", "bob", service.SendInput{
			Image: "data:image/png;base64,aGk=",
		})
		assert.ErrorIs(t, err, domain.ErrUpstream)
		// No message record, no notification: no image means no message.
		msgs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, notifier.calls)
	})
}

func TestListConversation(t *testing.T) {
	users := new(MockUserRepo)
	msgs := new(MockMessageRepo)
	enc, err := security.NewEncryptor([]byte("test-key"))
	require.NoError(t, err)
	svc := service.NewMessageService(users, msgs, &fakeUploader{}, &recordingNotifier{}, enc)

	stored, err := enc.Encrypt("secret hello")
	require.NoError(t, err)

	users.On("GetByID", mock.Anything, "bob").Return(&domain.User{ID: "bob"}, nil)
	msgs.On("ListConversationAndAcknowledge", mock.Anything, "alice", "bob").Return([]*domain.Message{
		{ID: "m1", SenderID: "bob", ReceiverID: "alice", Text: stored, Seen: true, CreatedAt: time.Now().UTC()},
	}, nil)

	out, err := svc.ListConversation(context.Background(), "alice", "bob")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "secret hello", out[0].Text)

	t.Run("UnknownPeer", func(t *testing.T) {
		users.On("GetByID", mock.Anything, "ghost").Return(nil, nil)
		_, err := svc.ListConversation(context.Background(), "alice", "ghost")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestListPeersWithUnseen(t *testing.T) {
	users := new(MockUserRepo)
	msgs := new(MockMessageRepo)
	svc := newMessageService(t, users, msgs, &fakeUploader{}, &recordingNotifier{})

	peers := []*domain.User{{ID: "bob"}, {ID: "carol"}}
	users.On("ListExcept", mock.Anything, "alice").Return(peers, nil)
	msgs.On("CountUnseenBySender", mock.Anything, "alice").Return(map[string]int{"bob": 3}, nil)

	gotUsers, counts, err := svc.ListPeersWithUnseen(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, peers, gotUsers)
	assert.Equal(t, map[string]int{"bob": 3}, counts)
	assert.NotContains(t, counts, "carol")
}
