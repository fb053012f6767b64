package storage

import (
	"context"
	mytesting "desktop-messenger/internal/testing"
	"errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"sync"
	"testing"
	"time"
)

// tickClock returns a strictly increasing time on every call
type tickClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func bootstrap(t *testing.T, opts ...Option) *Store {
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)
	s, err := New(logger.Sugar(), Memory(mytesting.RandString()), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func createUser(t *testing.T, s *Store, first, last string) int64 {
	id, err := s.AddUser(context.Background(), NewUser{
		FirstName:    first,
		LastName:     last,
		Email:        mytesting.RandEmail(),
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return id
}

func ptr(v int64) *int64 { return &v }

func TestCreateSchema_Idempotent(t *testing.T) {
	s := bootstrap(t)

	require.NoError(t, s.CreateSchema(context.Background()))
	require.NoError(t, s.CreateSchema(context.Background()))
}

func TestAddUser(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	email := mytesting.RandEmail()
	id, err := s.AddUser(ctx, NewUser{FirstName: "Alice", LastName: "Smith", Email: email, PasswordHash: "hash"})
	require.NoError(t, err)
	require.NotZero(t, id)

	u, err := s.GetUserByEmail(ctx, email)
	require.NoError(t, err)
	require.Equal(t, User{
		ID:           id,
		FirstName:    "Alice",
		LastName:     "Smith",
		Email:        email,
		PasswordHash: "hash",
	}, u)

	byID, err := s.GetUserByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, u, byID)
}

func TestAddUser_Exists(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	email := mytesting.RandEmail()
	_, err := s.AddUser(ctx, NewUser{FirstName: "a", LastName: "b", Email: email, PasswordHash: "x"})
	require.NoError(t, err)

	_, err = s.AddUser(ctx, NewUser{FirstName: "c", LastName: "d", Email: email, PasswordHash: "y"})
	require.Equal(t, ErrUserExists, err)
	require.True(t, errors.Is(err, ErrConstraintViolation))

	all, err := s.GetAllUsers(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "a", all[0].FirstName)
}

func TestGetUserByEmail_CaseSensitive(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	_, err := s.AddUser(ctx, NewUser{FirstName: "a", LastName: "b", Email: "alice@example.com", PasswordHash: "x"})
	require.NoError(t, err)

	_, err = s.GetUserByEmail(ctx, "Alice@example.com")
	require.Equal(t, ErrUserNotExist, err)
}

func TestGetUserByID_NotExist(t *testing.T) {
	s := bootstrap(t)

	_, err := s.GetUserByID(context.Background(), 42)
	require.Equal(t, ErrUserNotExist, err)
	require.True(t, errors.Is(err, ErrReference))
}

func TestRegisterUser(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	var got []int64
	s.Subscribe(func(id int64, online bool) {
		require.True(t, online)
		got = append(got, id)
	})

	u, err := s.RegisterUser(ctx, NewUser{FirstName: "a", LastName: "b", Email: mytesting.RandEmail(), PasswordHash: "x"})
	require.NoError(t, err)
	require.True(t, u.IsOnline)
	require.NotNil(t, u.LastSeen)
	require.Equal(t, []int64{u.ID}, got)

	online, err := s.GetOnlineUsers(ctx, 0)
	require.NoError(t, err)
	require.Len(t, online, 1)
	require.Equal(t, u.ID, online[0].ID)
}

func TestRegisterUser_Exists(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	email := mytesting.RandEmail()
	_, err := s.AddUser(ctx, NewUser{FirstName: "a", LastName: "b", Email: email, PasswordHash: "x"})
	require.NoError(t, err)

	called := false
	s.Subscribe(func(int64, bool) { called = true })

	_, err = s.RegisterUser(ctx, NewUser{FirstName: "a", LastName: "b", Email: email, PasswordHash: "x"})
	require.Equal(t, ErrUserExists, err)
	require.False(t, called)
}

func TestUpdateUserStatus(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	u := createUser(t, s, "Alice", "Smith")

	type event struct {
		id     int64
		online bool
	}
	var events []event
	unsubscribe := s.Subscribe(func(id int64, online bool) {
		events = append(events, event{id, online})
	})

	require.NoError(t, s.UpdateUserStatus(ctx, u, true))
	online, err := s.GetOnlineUsers(ctx, 0)
	require.NoError(t, err)
	require.Len(t, online, 1)
	require.Equal(t, u, online[0].ID)

	user, err := s.GetUserByID(ctx, u)
	require.NoError(t, err)
	require.True(t, user.IsOnline)
	require.NotNil(t, user.LastSeen)

	require.NoError(t, s.UpdateUserStatus(ctx, u, false))
	online, err = s.GetOnlineUsers(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, online)

	require.Equal(t, []event{{u, true}, {u, false}}, events)

	unsubscribe()
	require.NoError(t, s.UpdateUserStatus(ctx, u, true))
	require.Len(t, events, 2)
}

func TestUpdateUserStatus_NotExist(t *testing.T) {
	s := bootstrap(t)

	called := false
	s.Subscribe(func(int64, bool) { called = true })

	err := s.UpdateUserStatus(context.Background(), 42, true)
	require.Equal(t, ErrUserNotExist, err)
	require.False(t, called)
}

func TestGetOnlineUsers_Exclude(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	a := createUser(t, s, "Alice", "Smith")
	b := createUser(t, s, "Bob", "Jones")
	createUser(t, s, "Carol", "White")
	require.NoError(t, s.UpdateUserStatus(ctx, a, true))
	require.NoError(t, s.UpdateUserStatus(ctx, b, true))

	online, err := s.GetOnlineUsers(ctx, a)
	require.NoError(t, err)
	require.Len(t, online, 1)
	require.Equal(t, b, online[0].ID)
	require.Equal(t, "Bob", online[0].FirstName)

	all, err := s.GetAllUsers(ctx, a)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.True(t, all[0].IsOnline)
	require.False(t, all[1].IsOnline)
}

func TestSearchUsers(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	me := createUser(t, s, "Alice", "Smith")
	bob, err := s.AddUser(ctx, NewUser{FirstName: "Bob", LastName: "Jones", Email: "bob@corp.io", PasswordHash: "x"})
	require.NoError(t, err)
	carol, err := s.AddUser(ctx, NewUser{FirstName: "Carol", LastName: "Bobbins", Email: "carol@corp.io", PasswordHash: "x"})
	require.NoError(t, err)

	found, err := s.SearchUsers(ctx, "BOB", me)
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, bob, found[0].ID)
	require.Equal(t, carol, found[1].ID)

	found, err = s.SearchUsers(ctx, "corp", carol)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, bob, found[0].ID)

	found, err = s.SearchUsers(ctx, "smith", me)
	require.NoError(t, err)
	require.Empty(t, found)

	found, err = s.SearchUsers(ctx, "%", me)
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestAddMessage_Target(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	a := createUser(t, s, "Alice", "Smith")
	b := createUser(t, s, "Bob", "Jones")
	g, err := s.CreateGroup(ctx, "Team", a)
	require.NoError(t, err)

	_, err = s.AddMessage(ctx, a, &b, &g, "both")
	require.Equal(t, ErrMessageTarget, err)
	require.True(t, errors.Is(err, ErrInvariantViolation))

	_, err = s.AddMessage(ctx, a, nil, nil, "neither")
	require.Equal(t, ErrMessageTarget, err)

	msgs, err := s.GetMessages(ctx, a, b)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestAddMessage_BadReference(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	a := createUser(t, s, "Alice", "Smith")

	_, err := s.AddMessage(ctx, 999, &a, nil, "hi")
	require.True(t, errors.Is(err, ErrReference))

	_, err = s.AddMessage(ctx, a, ptr(999), nil, "hi")
	require.True(t, errors.Is(err, ErrReference))

	_, err = s.AddMessage(ctx, a, nil, ptr(999), "hi")
	require.True(t, errors.Is(err, ErrReference))
}

func TestGetMessages(t *testing.T) {
	clock := &tickClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := bootstrap(t, WithClock(clock.now))
	ctx := context.Background()

	a := createUser(t, s, "Alice", "Smith")
	b := createUser(t, s, "Bob", "Jones")
	c := createUser(t, s, "Carol", "White")

	var expected []int64
	for i, pair := range [][2]int64{{a, b}, {b, a}, {a, c}, {c, b}, {a, b}} {
		id, err := s.AddMessage(ctx, pair[0], ptr(pair[1]), nil, mytesting.RandString())
		require.NoError(t, err)
		if i != 2 && i != 3 {
			expected = append(expected, id)
		}
	}

	msgs, err := s.GetMessages(ctx, a, b)
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	var actual []int64
	for i, m := range msgs {
		actual = append(actual, m.ID)
		require.Nil(t, m.GroupID)
		require.False(t, m.IsRead)
		if i > 0 {
			require.True(t, m.Timestamp.After(msgs[i-1].Timestamp))
		}
	}
	require.Equal(t, expected, actual)

	reversed, err := s.GetMessages(ctx, b, a)
	require.NoError(t, err)
	require.Equal(t, msgs, reversed)
}

func TestConversation(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	alice := createUser(t, s, "Alice", "Smith")
	bob := createUser(t, s, "Bob", "Jones")

	_, err := s.AddMessage(ctx, alice, &bob, nil, "hi")
	require.NoError(t, err)

	msgs, err := s.GetMessages(ctx, alice, bob)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "hi", msgs[0].Content)
	require.Equal(t, alice, msgs[0].SenderID)
	require.Equal(t, bob, *msgs[0].ReceiverID)

	_, err = s.AddMessage(ctx, bob, &alice, nil, "hello back")
	require.NoError(t, err)

	msgs, err = s.GetMessages(ctx, alice, bob)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "hi", msgs[0].Content)
	require.Equal(t, "hello back", msgs[1].Content)
	require.Equal(t, bob, msgs[1].SenderID)
}

func TestGroupConversation(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	alice := createUser(t, s, "Alice", "Smith")
	bob := createUser(t, s, "Bob", "Jones")

	team, err := s.CreateGroup(ctx, "Team", alice)
	require.NoError(t, err)
	require.NoError(t, s.AddGroupMember(ctx, team, bob))

	_, err = s.AddMessage(ctx, alice, nil, &team, "welcome")
	require.NoError(t, err)

	msgs, err := s.GetGroupMessages(ctx, team)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "welcome", msgs[0].Content)
	require.Equal(t, alice, msgs[0].SenderID)
	require.Equal(t, team, *msgs[0].GroupID)
	require.Nil(t, msgs[0].ReceiverID)
	require.Equal(t, "Alice", msgs[0].SenderFirstName)
	require.Equal(t, "Smith", msgs[0].SenderLastName)
}

func TestGetGroupMessages_Rows(t *testing.T) {
	clock := &tickClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := bootstrap(t, WithClock(clock.now))
	ctx := context.Background()

	alice := createUser(t, s, "Alice", "Smith")
	bob := createUser(t, s, "Bob", "Jones")

	team, err := s.CreateGroup(ctx, "Team", alice, bob)
	require.NoError(t, err)

	first, err := s.AddMessage(ctx, alice, nil, &team, "welcome")
	require.NoError(t, err)
	second, err := s.AddMessage(ctx, bob, nil, &team, "thanks")
	require.NoError(t, err)

	msgs, err := s.GetGroupMessages(ctx, team)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	require.Equal(t, first, msgs[0].ID)
	require.Equal(t, alice, msgs[0].SenderID)
	require.Equal(t, "welcome", msgs[0].Content)
	require.False(t, msgs[0].Timestamp.IsZero())

	require.Equal(t, second, msgs[1].ID)
	require.Equal(t, bob, msgs[1].SenderID)
	require.Equal(t, "thanks", msgs[1].Content)
	require.Equal(t, "Bob", msgs[1].SenderFirstName)
	require.True(t, msgs[1].Timestamp.After(msgs[0].Timestamp))
}

func TestCreateGroup_Members(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	alice := createUser(t, s, "Alice", "Smith")
	bob := createUser(t, s, "Bob", "Jones")
	carol := createUser(t, s, "Carol", "White")

	team, err := s.CreateGroup(ctx, "Team", alice, bob, alice, bob)
	require.NoError(t, err)

	for _, u := range []int64{alice, bob} {
		ok, err := s.IsGroupMember(ctx, team, u)
		require.NoError(t, err)
		require.True(t, ok)

		groups, err := s.GetUserGroups(ctx, u)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		require.Equal(t, "Team", groups[0].Name)
		require.Equal(t, alice, groups[0].CreatedBy)
	}

	ok, err := s.IsGroupMember(ctx, team, carol)
	require.NoError(t, err)
	require.False(t, ok)

	groups, err := s.GetUserGroups(ctx, carol)
	require.NoError(t, err)
	require.Empty(t, groups)

	members, err := s.GetGroupMembers(ctx, team)
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Equal(t, alice, members[0].ID)
	require.Equal(t, bob, members[1].ID)
}

func TestCreateGroup_BadMember(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	alice := createUser(t, s, "Alice", "Smith")

	_, err := s.CreateGroup(ctx, "Team", alice, 999)
	require.True(t, errors.Is(err, ErrReference))

	groups, err := s.GetUserGroups(ctx, alice)
	require.NoError(t, err)
	require.Empty(t, groups)
}

func TestCreateGroup_BadCreator(t *testing.T) {
	s := bootstrap(t)

	_, err := s.CreateGroup(context.Background(), "Team", 999)
	require.True(t, errors.Is(err, ErrReference))
}

func TestAddGroupMember(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	alice := createUser(t, s, "Alice", "Smith")
	bob := createUser(t, s, "Bob", "Jones")
	team, err := s.CreateGroup(ctx, "Team", alice)
	require.NoError(t, err)

	require.NoError(t, s.AddGroupMember(ctx, team, bob))
	require.NoError(t, s.AddGroupMember(ctx, team, bob))
	require.NoError(t, s.AddGroupMember(ctx, team, alice))

	members, err := s.GetGroupMembers(ctx, team)
	require.NoError(t, err)
	require.Len(t, members, 2)

	err = s.AddGroupMember(ctx, 999, bob)
	require.True(t, errors.Is(err, ErrReference))

	err = s.AddGroupMember(ctx, team, 999)
	require.True(t, errors.Is(err, ErrReference))
}

func TestGetGroup(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	alice := createUser(t, s, "Alice", "Smith")
	team, err := s.CreateGroup(ctx, "Team", alice)
	require.NoError(t, err)

	g, err := s.GetGroup(ctx, team)
	require.NoError(t, err)
	require.Equal(t, "Team", g.Name)
	require.False(t, g.CreatedAt.IsZero())

	_, err = s.GetGroup(ctx, 999)
	require.Equal(t, ErrGroupNotExist, err)
}

func TestUnread(t *testing.T) {
	s := bootstrap(t)
	ctx := context.Background()

	alice := createUser(t, s, "Alice", "Smith")
	bob := createUser(t, s, "Bob", "Jones")
	carol := createUser(t, s, "Carol", "White")

	for _, from := range []int64{bob, bob, carol} {
		_, err := s.AddMessage(ctx, from, &alice, nil, "ping")
		require.NoError(t, err)
	}
	_, err := s.AddMessage(ctx, alice, &bob, nil, "pong")
	require.NoError(t, err)

	counts, err := s.UnreadCounts(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, map[int64]int{bob: 2, carol: 1}, counts)

	n, err := s.MarkConversationRead(ctx, alice, bob)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	counts, err = s.UnreadCounts(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, map[int64]int{carol: 1}, counts)

	counts, err = s.UnreadCounts(ctx, bob)
	require.NoError(t, err)
	require.Equal(t, map[int64]int{alice: 1}, counts)
}

func TestClose(t *testing.T) {
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)
	s, err := New(logger.Sugar(), Memory(mytesting.RandString()))
	require.NoError(t, err)

	require.NoError(t, s.Close())

	_, err = s.GetUserByID(context.Background(), 1)
	require.Error(t, err)
}

func TestNew_UnsupportedDriver(t *testing.T) {
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	_, err = New(logger.Sugar(), Config{Driver: "oracle"})
	require.Error(t, err)
}
