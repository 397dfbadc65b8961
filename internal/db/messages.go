package db

import (
	"fmt"
)

// InsertMessage stores a message and returns its id
func (db *DB) InsertMessage(conversationID int, senderID, text string) (int, error) {
	res, err := db.Exec(
		"INSERT INTO messages (conversation_id, sender_id, text) VALUES (?, ?, ?)",
		conversationID, senderID, text,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// GetMessageByID retrieves a message. Returns sql.ErrNoRows when missing.
func (db *DB) GetMessageByID(id int) (*Message, error) {
	var m Message
	err := db.QueryRow(`
		SELECT id, conversation_id, sender_id, text, timestamp
		FROM messages WHERE id = ?`, id).
		Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Text, &m.Timestamp)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMessage removes a message only if authorID sent it, reporting whether a row went away
func (db *DB) DeleteMessage(id int, authorID string) (bool, error) {
	res, err := db.Exec("DELETE FROM messages WHERE id = ? AND sender_id = ?", id, authorID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListConversationMessages returns messages newest first
func (db *DB) ListConversationMessages(conversationID int) ([]Message, error) {
	rows, err := db.Query(`
		SELECT id, conversation_id, sender_id, text, timestamp
		FROM messages
		WHERE conversation_id = ?
		ORDER BY timestamp DESC, id DESC`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Text, &m.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpsertComment stores or replaces the user's comment on a message
func (db *DB) UpsertComment(messageID int, userID, comment string) (int, error) {
	var id int
	err := db.QueryRow(`
		INSERT INTO message_comments (message_id, user_id, comment)
		VALUES (?, ?, ?)
		ON CONFLICT(message_id, user_id) DO UPDATE
			SET comment = excluded.comment,
			    timestamp = CURRENT_TIMESTAMP
		RETURNING id`, messageID, userID, comment).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// DeleteComment removes the user's comment, reporting whether one existed
func (db *DB) DeleteComment(messageID int, userID string) (bool, error) {
	res, err := db.Exec("DELETE FROM message_comments WHERE message_id = ? AND user_id = ?", messageID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListMessageComments returns comments oldest first
func (db *DB) ListMessageComments(messageID int) ([]Comment, error) {
	rows, err := db.Query(`
		SELECT message_id, user_id, comment, timestamp
		FROM message_comments
		WHERE message_id = ?
		ORDER BY timestamp ASC, id ASC`, messageID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.MessageID, &c.UserID, &c.Comment, &c.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
