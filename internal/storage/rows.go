package storage

import "time"

// table mappings used by gorm; the schema itself is created by CreateSchema

type userRow struct {
	ID        int64 `gorm:"primaryKey"`
	FirstName string
	LastName  string
	Email     string
	Password  string
	IsOnline  bool
	LastSeen  *time.Time
}

func (userRow) TableName() string { return "users" }

func (r userRow) toUser() User {
	return User{
		ID:           r.ID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		PasswordHash: r.Password,
		IsOnline:     r.IsOnline,
		LastSeen:     r.LastSeen,
	}
}

func (r userRow) toContact() Contact {
	return Contact{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		IsOnline:  r.IsOnline,
	}
}

type messageRow struct {
	ID         int64 `gorm:"primaryKey"`
	SenderID   int64
	ReceiverID *int64
	GroupID    *int64
	Content    string
	Timestamp  time.Time
	IsRead     bool
}

func (messageRow) TableName() string { return "messages" }

func (r messageRow) toMessage() Message {
	return Message{
		ID:         r.ID,
		SenderID:   r.SenderID,
		ReceiverID: r.ReceiverID,
		GroupID:    r.GroupID,
		Content:    r.Content,
		Timestamp:  r.Timestamp,
		IsRead:     r.IsRead,
	}
}

type groupRow struct {
	ID        int64 `gorm:"primaryKey"`
	Name      string
	CreatedBy int64
	CreatedAt time.Time
}

func (groupRow) TableName() string { return "groups" }

func (r groupRow) toGroup() Group {
	return Group{
		ID:        r.ID,
		Name:      r.Name,
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
	}
}

type memberRow struct {
	GroupID  int64 `gorm:"primaryKey;autoIncrement:false"`
	UserID   int64 `gorm:"primaryKey;autoIncrement:false"`
	JoinedAt time.Time
}

func (memberRow) TableName() string { return "group_members" }
