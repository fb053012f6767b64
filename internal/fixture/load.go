package fixture

import (
	"context"
	"desktop-messenger/internal/session"
	"desktop-messenger/internal/storage"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Report counts what Load wrote
type Report struct {
	Users        int
	SkippedUsers int
	Groups       int
}

// Loader writes fixtures through the same Store calls the client uses
type Loader struct {
	logger *zap.SugaredLogger
	store  *storage.Store
	cost   int
}

// NewLoader returns Loader hashing passwords with cost, out of range values fall back to bcrypt.DefaultCost
func NewLoader(logger *zap.SugaredLogger, store *storage.Store, cost int) *Loader {
	return &Loader{
		logger: logger,
		store:  store,
		cost:   session.ValidCost(cost),
	}
}

// Load adds users, skipping emails that are already registered, then creates groups
func (l *Loader) Load(ctx context.Context, fx Fixture) (Report, error) {
	var report Report

	for _, u := range fx.Users {
		hash, err := session.HashPassword(u.Password, l.cost)
		if err != nil {
			return report, err
		}

		_, err = l.store.AddUser(ctx, storage.NewUser{
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			Email:        u.Email,
			PasswordHash: hash,
		})
		if err != nil {
			if errors.Is(err, storage.ErrUserExists) {
				l.logger.Infof("Skipping existing user %q", u.Email)
				report.SkippedUsers++
				continue
			}
			return report, fmt.Errorf("adding user %q: %w", u.Email, err)
		}
		report.Users++
	}

	for _, g := range fx.Groups {
		creator, err := l.userID(ctx, g.Creator)
		if err != nil {
			return report, fmt.Errorf("group %q creator: %w", g.Name, err)
		}

		members := make([]int64, 0, len(g.Members))
		for _, email := range g.Members {
			id, err := l.userID(ctx, email)
			if err != nil {
				return report, fmt.Errorf("group %q member: %w", g.Name, err)
			}
			members = append(members, id)
		}

		if _, err := l.store.CreateGroup(ctx, g.Name, creator, members...); err != nil {
			return report, fmt.Errorf("creating group %q: %w", g.Name, err)
		}
		report.Groups++
	}

	l.logger.Infof("Loaded fixture: %d users (%d skipped), %d groups", report.Users, report.SkippedUsers, report.Groups)

	return report, nil
}

func (l *Loader) userID(ctx context.Context, email string) (int64, error) {
	u, err := l.store.GetUserByEmail(ctx, email)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", email, err)
	}
	return u.ID, nil
}
