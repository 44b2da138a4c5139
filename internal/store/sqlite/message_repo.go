package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"quickchat/internal/domain"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, receiver_id, text, image, seen, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.SenderID,
		m.ReceiverID,
		m.Text,
		m.Image,
		m.Seen,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListConversationAndAcknowledge fetches the full conversation between selfID
// and peerID in chronological order and flips every unseen peer -> self
// message to seen, all in one transaction. Listing acknowledges: this is an
// intentional read-with-side-effect, not an accident to be fixed.
func (r *MessageRepo) ListConversationAndAcknowledge(ctx context.Context, selfID, peerID string) ([]*domain.Message, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		SELECT id, sender_id, receiver_id, text, image, seen, created_at
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at ASC, id ASC
	`
	rows, err := tx.QueryContext(ctx, query, selfID, peerID, peerID, selfID)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}

	var msgs []*domain.Message
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(
			&m.ID,
			&m.SenderID,
			&m.ReceiverID,
			&m.Text,
			&m.Image,
			&m.Seen,
			&m.CreatedAt,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	rows.Close()

	if _, err := tx.ExecContext(ctx, `
		UPDATE messages SET seen = 1
		WHERE sender_id = ? AND receiver_id = ? AND seen = 0
	`, peerID, selfID); err != nil {
		return nil, fmt.Errorf("acknowledge messages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	// Returned records reflect the acknowledged state.
	for _, m := range msgs {
		if m.SenderID == peerID && m.ReceiverID == selfID {
			m.Seen = true
		}
	}
	return msgs, nil
}

func (r *MessageRepo) MarkSeen(ctx context.Context, messageID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET seen = 1 WHERE id = ?`, messageID)
	if err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		// Distinguish missing from already-seen: flipping twice is a no-op,
		// not an error.
		var exists int
		err := r.db.QueryRowContext(ctx, `SELECT 1 FROM messages WHERE id = ?`, messageID).Scan(&exists)
		if err == sql.ErrNoRows {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("check message: %w", err)
		}
	}
	return nil
}

func (r *MessageRepo) CountUnseenBySender(ctx context.Context, receiverID string) (map[string]int, error) {
	query := `
		SELECT sender_id, COUNT(*)
		FROM messages
		WHERE receiver_id = ? AND seen = 0
		GROUP BY sender_id
	`
	rows, err := r.db.QueryContext(ctx, query, receiverID)
	if err != nil {
		return nil, fmt.Errorf("count unseen: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var senderID string
		var n int
		if err := rows.Scan(&senderID, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[senderID] = n
	}
	return counts, rows.Err()
}
