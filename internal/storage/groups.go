package storage

import (
	"context"
	"errors"
	"fmt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateGroup performs a transaction that inserts the group and the membership rows
// for its creator and the initial members, then returns the group id
func (s *Store) CreateGroup(ctx context.Context, name string, creator int64, members ...int64) (int64, error) {
	s.logger.Debugf("Creating group (%s) by user (id: %d) with members (%v)", name, creator, members)

	var id int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.timestamp()
		group := groupRow{
			Name:      name,
			CreatedBy: creator,
			CreatedAt: now,
		}
		if err := tx.Create(&group).Error; err != nil {
			return translate(err)
		}

		// creator always comes first so it is never dropped as a duplicate
		rows := memberRows(group.ID, now, append([]int64{creator}, members...)...)
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			CreateInBatches(rows, 100).Error
		if err != nil {
			return translate(err)
		}

		id = group.ID
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("creating group %q: %w", name, err)
	}

	s.logger.Debugf("Created group (%s) with id %d", name, id)

	return id, nil
}

// AddGroupMember adds user to group, adding an existing member is a no-op
func (s *Store) AddGroupMember(ctx context.Context, group, user int64) error {
	s.logger.Debugf("Adding user (id: %d) to group (id: %d)", user, group)

	row := memberRow{
		GroupID:  group,
		UserID:   user,
		JoinedAt: s.timestamp(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("adding user %d to group %d: %w", user, group, translate(err))
	}
	return nil
}

func (s *Store) GetGroup(ctx context.Context, id int64) (Group, error) {
	var row groupRow
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Group{}, ErrGroupNotExist
		}
		return Group{}, err
	}
	return row.toGroup(), nil
}

// GetUserGroups returns groups the user is a member of, oldest first
func (s *Store) GetUserGroups(ctx context.Context, user int64) ([]Group, error) {
	s.logger.Debugf("Retrieving groups for user (id: %d)", user)

	var rows []groupRow
	err := s.db.WithContext(ctx).
		Joins(`join group_members gm on gm.group_id = "groups".id`).
		Where("gm.user_id = ?", user).
		Order(`"groups".created_at, "groups".id`).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	groups := make([]Group, 0, len(rows))
	for _, r := range rows {
		groups = append(groups, r.toGroup())
	}

	s.logger.Debugf("Retrieved %d groups", len(groups))

	return groups, nil
}

func (s *Store) IsGroupMember(ctx context.Context, group, user int64) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&memberRow{}).
		Where("group_id = ? and user_id = ?", group, user).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetGroupMembers returns the members of group ordered by join time
func (s *Store) GetGroupMembers(ctx context.Context, group int64) ([]Contact, error) {
	var rows []userRow
	err := s.db.WithContext(ctx).
		Select("users.id", "users.first_name", "users.last_name", "users.email", "users.is_online").
		Joins("join group_members gm on gm.user_id = users.id").
		Where("gm.group_id = ?", group).
		Order("gm.joined_at, users.id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	contacts := make([]Contact, 0, len(rows))
	for _, r := range rows {
		contacts = append(contacts, r.toContact())
	}
	return contacts, nil
}
