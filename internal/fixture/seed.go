package fixture

import (
	"context"
	"desktop-messenger/internal/session"
	"desktop-messenger/internal/storage"
	"errors"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	ErrTooFewUsers   = errors.New("seeding needs at least two users")
	ErrBlankPassword = errors.New("seeding needs a non-blank password")
)

type SeedOptions struct {
	Users    int
	Password string
	// Messages is the number of messages in each seeded conversation
	Messages int
	// Seed makes the generated names reproducible, zero picks a random seed
	Seed int64
}

type SeedReport struct {
	UserIDs  []int64
	GroupID  int64
	Messages int
}

// Seed creates fake users sharing one password, direct chats between the first user and everybody else,
// and a group holding all of them
func (l *Loader) Seed(ctx context.Context, opts SeedOptions) (SeedReport, error) {
	if opts.Users < 2 {
		return SeedReport{}, ErrTooFewUsers
	}
	// passwords are trimmed at login
	password := strings.TrimSpace(opts.Password)
	if password == "" {
		return SeedReport{}, ErrBlankPassword
	}

	faker := gofakeit.New(opts.Seed)

	hash, err := session.HashPassword(password, l.cost)
	if err != nil {
		return SeedReport{}, err
	}

	var report SeedReport
	for i := 0; i < opts.Users; i++ {
		first, last := faker.FirstName(), faker.LastName()
		id, err := l.store.AddUser(ctx, storage.NewUser{
			FirstName:    first,
			LastName:     last,
			Email:        seedEmail(first, last, i),
			PasswordHash: hash,
		})
		if err != nil {
			return report, fmt.Errorf("adding user %d: %w", i, err)
		}
		report.UserIDs = append(report.UserIDs, id)
	}

	first := report.UserIDs[0]
	for _, peer := range report.UserIDs[1:] {
		for n := 0; n < opts.Messages; n++ {
			sender, receiver := first, peer
			if n%2 == 1 {
				sender, receiver = peer, first
			}
			if _, err := l.store.AddMessage(ctx, sender, &receiver, nil, faker.Sentence(faker.Number(3, 12))); err != nil {
				return report, err
			}
			report.Messages++
		}
	}

	report.GroupID, err = l.store.CreateGroup(ctx, faker.Company()+" Team", first, report.UserIDs[1:]...)
	if err != nil {
		return report, err
	}
	for n := 0; n < opts.Messages; n++ {
		sender := report.UserIDs[n%len(report.UserIDs)]
		if _, err := l.store.AddMessage(ctx, sender, nil, &report.GroupID, faker.Sentence(faker.Number(3, 12))); err != nil {
			return report, err
		}
		report.Messages++
	}

	l.logger.Infof("Seeded %d users, group (id: %d) and %d messages", len(report.UserIDs), report.GroupID, report.Messages)

	return report, nil
}

// seedEmail keeps addresses unique when the faker repeats a name
func seedEmail(first, last string, i int) string {
	local := strings.ToLower(first + "." + last)
	local = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\'' {
			return -1
		}
		return r
	}, local)
	return fmt.Sprintf("%s%d@example.com", local, i+1)
}
