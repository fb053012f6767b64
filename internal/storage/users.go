package storage

import (
	"context"
	"errors"
	"gorm.io/gorm"
	"strings"
)

// AddUser inserts an offline user and returns its id.
func (s *Store) AddUser(ctx context.Context, u NewUser) (int64, error) {
	s.logger.Debugf("Creating user (%s)", u.Email)

	row := userRow{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Password:  u.PasswordHash,
	}
	if err := s.insertUser(ctx, &row); err != nil {
		return 0, err
	}

	s.logger.Debugf("Created user (%s) with id %d", u.Email, row.ID)

	return row.ID, nil
}

// RegisterUser inserts a user that is already online in a single statement
// and notifies presence subscribers
func (s *Store) RegisterUser(ctx context.Context, u NewUser) (User, error) {
	s.logger.Debugf("Registering user (%s)", u.Email)

	seen := s.timestamp()
	row := userRow{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Password:  u.PasswordHash,
		IsOnline:  true,
		LastSeen:  &seen,
	}
	if err := s.insertUser(ctx, &row); err != nil {
		return User{}, err
	}

	s.logger.Debugf("Registered user (%s) with id %d", u.Email, row.ID)
	s.emitPresence(row.ID, true)

	return row.toUser(), nil
}

func (s *Store) insertUser(ctx context.Context, row *userRow) error {
	err := s.db.WithContext(ctx).Create(row).Error
	if err != nil {
		if classify(err) == violationUnique {
			return ErrUserExists
		}
		return translate(err)
	}
	return nil
}

// GetUserByEmail returns the user with exactly this email (case-sensitive).
func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotExist
		}
		return User{}, err
	}
	return row.toUser(), nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotExist
		}
		return User{}, err
	}
	return row.toUser(), nil
}

// UpdateUserStatus sets the online flag and last seen time, then notifies presence subscribers
func (s *Store) UpdateUserStatus(ctx context.Context, id int64, online bool) error {
	s.logger.Debugf("Setting user (id: %d) online=%t", id, online)

	res := s.db.WithContext(ctx).
		Model(&userRow{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_online": online,
			"last_seen": s.timestamp(),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotExist
	}

	s.emitPresence(id, online)

	return nil
}

// GetOnlineUsers lists online users ordered by id, exclude of 0 keeps everyone
func (s *Store) GetOnlineUsers(ctx context.Context, exclude int64) ([]Contact, error) {
	q := s.db.WithContext(ctx).Where("is_online = ?", true)
	return s.listContacts(q, exclude)
}

// GetAllUsers lists every user ordered by id, exclude of 0 keeps everyone
func (s *Store) GetAllUsers(ctx context.Context, exclude int64) ([]Contact, error) {
	return s.listContacts(s.db.WithContext(ctx), exclude)
}

// SearchUsers matches term as a case-insensitive substring of email, first name or last name
func (s *Store) SearchUsers(ctx context.Context, term string, exclude int64) ([]Contact, error) {
	s.logger.Debugf("Searching users (%q)", term)

	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	q := s.db.WithContext(ctx).Where(
		`(lower(email) like ? escape '\' or lower(first_name) like ? escape '\' or lower(last_name) like ? escape '\')`,
		pattern, pattern, pattern,
	)
	return s.listContacts(q, exclude)
}

func (s *Store) listContacts(q *gorm.DB, exclude int64) ([]Contact, error) {
	if exclude != 0 {
		q = q.Where("id <> ?", exclude)
	}

	var rows []userRow
	err := q.Select("id", "first_name", "last_name", "email", "is_online").
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	contacts := make([]Contact, 0, len(rows))
	for _, r := range rows {
		contacts = append(contacts, r.toContact())
	}

	s.logger.Debugf("Retrieved %d contacts", len(contacts))

	return contacts, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
