package storage

import (
	"context"
	"fmt"
	"time"
)

// AddMessage stores a message with exactly one target, receiver for direct chats or group
// for group chats, and returns its id. The timestamp is assigned by the store.
func (s *Store) AddMessage(ctx context.Context, sender int64, receiver, group *int64, content string) (int64, error) {
	if (receiver == nil) == (group == nil) {
		return 0, ErrMessageTarget
	}

	if receiver != nil {
		s.logger.Debugf("Creating message from user (id: %d) to user (id: %d)", sender, *receiver)
	} else {
		s.logger.Debugf("Creating message from user (id: %d) in group (id: %d)", sender, *group)
	}

	row := messageRow{
		SenderID:   sender,
		ReceiverID: receiver,
		GroupID:    group,
		Content:    content,
		Timestamp:  s.timestamp(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("adding message from user %d: %w", sender, translate(err))
	}

	return row.ID, nil
}

// GetMessages returns the direct conversation between a and b in both directions,
// sorted by message creation time (from earliest to latest)
func (s *Store) GetMessages(ctx context.Context, a, b int64) ([]Message, error) {
	s.logger.Debugf("Retrieving messages between users (id: %d) and (id: %d)", a, b)

	var rows []messageRow
	err := s.db.WithContext(ctx).
		Where("(sender_id = ? and receiver_id = ?) or (sender_id = ? and receiver_id = ?)", a, b, b, a).
		Order("timestamp, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(rows))
	for _, r := range rows {
		messages = append(messages, r.toMessage())
	}

	s.logger.Debugf("Retrieved %d messages", len(messages))

	return messages, nil
}

// GetGroupMessages returns all group messages with the sender's current name,
// sorted by message creation time (from earliest to latest)
func (s *Store) GetGroupMessages(ctx context.Context, group int64) ([]GroupMessage, error) {
	s.logger.Debugf("Retrieving messages for group (id: %d)", group)

	type retrievedMessage struct {
		ID         int64
		SenderID   int64
		ReceiverID *int64
		GroupID    *int64
		Content    string
		Timestamp  time.Time
		IsRead     bool
		FirstName  string
		LastName   string
	}

	sql := `select m.id, m.sender_id, m.receiver_id, m.group_id, m.content, m.timestamp, m.is_read,
				   u.first_name, u.last_name
			  from messages m
			  join users u
				on u.id = m.sender_id
			 where m.group_id = ?
			 order by m.timestamp, m.id`

	var rows []retrievedMessage
	if err := s.db.WithContext(ctx).Raw(sql, group).Scan(&rows).Error; err != nil {
		return nil, err
	}

	messages := make([]GroupMessage, 0, len(rows))
	for _, r := range rows {
		row := messageRow{
			ID:         r.ID,
			SenderID:   r.SenderID,
			ReceiverID: r.ReceiverID,
			GroupID:    r.GroupID,
			Content:    r.Content,
			Timestamp:  r.Timestamp,
			IsRead:     r.IsRead,
		}
		messages = append(messages, GroupMessage{
			Message:         row.toMessage(),
			SenderFirstName: r.FirstName,
			SenderLastName:  r.LastName,
		})
	}

	s.logger.Debugf("Retrieved %d messages", len(messages))

	return messages, nil
}

// MarkConversationRead flags every message sent by peer to reader as read and returns how many changed
func (s *Store) MarkConversationRead(ctx context.Context, reader, peer int64) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&messageRow{}).
		Where("sender_id = ? and receiver_id = ? and is_read = ?", peer, reader, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// UnreadCounts returns the number of unread direct messages addressed to reader, per sender
func (s *Store) UnreadCounts(ctx context.Context, reader int64) (map[int64]int, error) {
	type count struct {
		SenderID int64
		Unread   int
	}

	var rows []count
	err := s.db.WithContext(ctx).
		Model(&messageRow{}).
		Select("sender_id, count(*) as unread").
		Where("receiver_id = ? and is_read = ?", reader, false).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int, len(rows))
	for _, r := range rows {
		counts[r.SenderID] = r.Unread
	}
	return counts, nil
}
