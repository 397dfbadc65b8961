package db

import (
	"database/sql"
	"fmt"
)

// CreateConversation inserts a conversation and makes creatorID its first member
func (db *DB) CreateConversation(name string, isGroup bool, creatorID string) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	id, err := createConversationTx(tx, name, isGroup, creatorID)
	if err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

func createConversationTx(tx *sql.Tx, name string, isGroup bool, creatorID string) (int, error) {
	res, err := tx.Exec("INSERT INTO conversations (name, is_group) VALUES (?, ?)", name, isGroup)
	if err != nil {
		return 0, fmt.Errorf("insert conversation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(
		"INSERT INTO user_conversations (conversation_id, user_id) VALUES (?, ?)",
		id, creatorID,
	); err != nil {
		return 0, fmt.Errorf("add creator to conversation: %w", err)
	}
	return int(id), nil
}

// CreateDirectConversation creates a 1:1 conversation between userA and userB
func (db *DB) CreateDirectConversation(userA, userB, name string) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	id, err := createConversationTx(tx, name, false, userA)
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(
		"INSERT INTO user_conversations (conversation_id, user_id) VALUES (?, ?)",
		id, userB,
	); err != nil {
		return 0, fmt.Errorf("add peer to conversation: %w", err)
	}
	return id, tx.Commit()
}

// FindDirectConversation returns the 1:1 conversation shared by two users.
// Returns sql.ErrNoRows when there is none.
func (db *DB) FindDirectConversation(userA, userB string) (int, error) {
	var id int
	err := db.QueryRow(`
		SELECT c.id
		FROM conversations c
		JOIN user_conversations uc1 ON uc1.conversation_id = c.id AND uc1.user_id = ?
		JOIN user_conversations uc2 ON uc2.conversation_id = c.id AND uc2.user_id = ?
		WHERE c.is_group = 0
		LIMIT 1`, userA, userB).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// AddUserToConversation adds a member. Adding an existing member is a no-op.
func (db *DB) AddUserToConversation(conversationID int, userID string) error {
	_, err := db.Exec(
		"INSERT OR IGNORE INTO user_conversations (conversation_id, user_id) VALUES (?, ?)",
		conversationID, userID,
	)
	return err
}

// RemoveUserFromConversation drops a membership and reports whether one existed
func (db *DB) RemoveUserFromConversation(conversationID int, userID string) (bool, error) {
	res, err := db.Exec(
		"DELETE FROM user_conversations WHERE conversation_id = ? AND user_id = ?",
		conversationID, userID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetConversationInfo returns id and type. Returns sql.ErrNoRows when missing.
func (db *DB) GetConversationInfo(id int) (*ConversationInfo, error) {
	var info ConversationInfo
	if err := db.QueryRow("SELECT id, is_group FROM conversations WHERE id = ?", id).
		Scan(&info.ID, &info.IsGroup); err != nil {
		return nil, err
	}
	return &info, nil
}

// IsUserInConversation reports membership
func (db *DB) IsUserInConversation(conversationID int, userID string) (bool, error) {
	var one int
	err := db.QueryRow(`
		SELECT 1 FROM user_conversations
		WHERE conversation_id = ? AND user_id = ?
		LIMIT 1`, conversationID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateConversationName renames a conversation
func (db *DB) UpdateConversationName(id int, name string) error {
	_, err := db.Exec("UPDATE conversations SET name = ? WHERE id = ?", name, id)
	return err
}

// SetConversationPhoto stores the public URL of the conversation photo
func (db *DB) SetConversationPhoto(id int, photoURL string) error {
	_, err := db.Exec("UPDATE conversations SET photo = ? WHERE id = ?", photoURL, id)
	return err
}

// GetMyConversations lists the user's conversations, most recent activity first.
// Direct conversations without a name show the peer's username and photo.
func (db *DB) GetMyConversations(userID string) ([]ConversationSummary, error) {
	const q = `
		SELECT
			c.id,
			CASE
				WHEN c.is_group = 1 OR TRIM(IFNULL(c.name, '')) <> '' THEN IFNULL(c.name, '')
				ELSE IFNULL((
					SELECT u.username
					FROM user_conversations uc2
					JOIN users u ON u.id = uc2.user_id
					WHERE uc2.conversation_id = c.id AND uc2.user_id <> ?
					LIMIT 1
				), '')
			END AS display_name,
			c.is_group,
			(
				SELECT m.text FROM messages m
				WHERE m.conversation_id = c.id
				ORDER BY m.timestamp DESC, m.id DESC
				LIMIT 1
			) AS last_text,
			(
				SELECT strftime('%Y-%m-%dT%H:%M:%SZ', m.timestamp) FROM messages m
				WHERE m.conversation_id = c.id
				ORDER BY m.timestamp DESC, m.id DESC
				LIMIT 1
			) AS last_ts,
			CASE
				WHEN c.is_group = 1 AND TRIM(IFNULL(c.photo, '')) <> '' THEN c.photo
				WHEN c.is_group = 1 THEN NULL
				ELSE (
					SELECT u.photo
					FROM user_conversations uc2
					JOIN users u ON u.id = uc2.user_id
					WHERE uc2.conversation_id = c.id AND uc2.user_id <> ?
					LIMIT 1
				)
			END AS photo_url
		FROM conversations c
		JOIN user_conversations uc ON uc.conversation_id = c.id
		WHERE uc.user_id = ?
		ORDER BY COALESCE(last_ts, strftime('%Y-%m-%dT%H:%M:%SZ', c.timestamp)) DESC, c.id DESC`

	rows, err := db.Query(q, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	out := []ConversationSummary{}
	for rows.Next() {
		var it ConversationSummary
		if err := rows.Scan(&it.ID, &it.Name, &it.IsGroup, &it.LastText, &it.LastAtISO, &it.Photo); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// GetConversationParticipants returns member usernames ordered by name
func (db *DB) GetConversationParticipants(conversationID int) ([]string, error) {
	rows, err := db.Query(`
		SELECT u.username
		FROM user_conversations uc
		JOIN users u ON u.id = uc.user_id
		WHERE uc.conversation_id = ?
		ORDER BY u.username`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
