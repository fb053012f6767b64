package storage

import "time"

type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	IsOnline     bool
	LastSeen     *time.Time
}

// FullName joins first and last name for display
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// NewUser holds the fields required to register a user
type NewUser struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
}

// Contact is the projection returned by user listing and search
type Contact struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	IsOnline  bool
}

func (c Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Message is either direct (ReceiverID set) or group (GroupID set), never both
type Message struct {
	ID         int64
	SenderID   int64
	ReceiverID *int64
	GroupID    *int64
	Content    string
	Timestamp  time.Time
	IsRead     bool
}

type GroupMessage struct {
	Message
	SenderFirstName string
	SenderLastName  string
}

type Group struct {
	ID        int64
	Name      string
	CreatedBy int64
	CreatedAt time.Time
}

// PresenceFunc receives presence changes emitted by UpdateUserStatus and RegisterUser
type PresenceFunc func(userID int64, online bool)
