// Package chat holds the state of the main chat window: which conversation is open,
// which contacts are listed and what has to be rendered after every change.
package chat

import (
	"context"
	"desktop-messenger/internal/storage"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotMember     = errors.New("you are not a member of this group")
	ErrNoGroupChat   = errors.New("no group chat is selected")
	ErrEmptyName     = errors.New("group name must not be empty")
	ErrSelfSelection = errors.New("cannot open a chat with yourself")
)

// Store is the part of storage.Store the chat view depends on
type Store interface {
	GetUserByID(ctx context.Context, id int64) (storage.User, error)
	GetOnlineUsers(ctx context.Context, exclude int64) ([]storage.Contact, error)
	GetAllUsers(ctx context.Context, exclude int64) ([]storage.Contact, error)
	SearchUsers(ctx context.Context, term string, exclude int64) ([]storage.Contact, error)
	AddMessage(ctx context.Context, sender int64, receiver, group *int64, content string) (int64, error)
	GetMessages(ctx context.Context, a, b int64) ([]storage.Message, error)
	GetGroupMessages(ctx context.Context, group int64) ([]storage.GroupMessage, error)
	MarkConversationRead(ctx context.Context, reader, peer int64) (int64, error)
	UnreadCounts(ctx context.Context, reader int64) (map[int64]int, error)
	CreateGroup(ctx context.Context, name string, creator int64, members ...int64) (int64, error)
	AddGroupMember(ctx context.Context, group, user int64) error
	GetGroup(ctx context.Context, id int64) (storage.Group, error)
	GetUserGroups(ctx context.Context, user int64) ([]storage.Group, error)
	IsGroupMember(ctx context.Context, group, user int64) (bool, error)
	Subscribe(fn storage.PresenceFunc) func()
}

// Renderer receives everything the view wants displayed
type Renderer interface {
	RenderConversation(c Conversation)
	RenderContacts(l ContactList)
	RenderGroups(groups []storage.Group)
}

type Kind int

const (
	NoChatSelected Kind = iota
	DirectChat
	GroupChat
)

// State identifies the open conversation, PeerID is set for DirectChat and GroupID for GroupChat
type State struct {
	Kind    Kind
	PeerID  int64
	GroupID int64
}

type Filter int

const (
	OnlineOnly Filter = iota
	AllUsers
	SearchResults
)

type ContactList struct {
	Filter   Filter
	Term     string
	Contacts []storage.Contact
	Unread   map[int64]int
}

// Line is one rendered message, Mine selects the side and color it is drawn with
type Line struct {
	MessageID  int64
	SenderID   int64
	SenderName string
	Content    string
	SentAt     time.Time
	Mine       bool
}

type Conversation struct {
	State State
	Title string
	Lines []Line
}

// View is the chat window state machine
type View struct {
	logger   *zap.SugaredLogger
	store    Store
	me       storage.User
	renderer Renderer

	unsubscribe func()

	mu     sync.Mutex
	state  State
	title  string
	filter Filter
	term   string
}

// New returns View in NoChatSelected state that reloads its contacts on presence changes until Close
func New(logger *zap.SugaredLogger, store Store, me storage.User, r Renderer) *View {
	v := &View{
		logger:   logger,
		store:    store,
		me:       me,
		renderer: r,
		title:    "Select a chat to start messaging",
	}
	v.unsubscribe = store.Subscribe(v.OnPresenceChanged)
	return v
}

func (v *View) Close() {
	v.unsubscribe()
}

func (v *View) Me() storage.User {
	return v.me
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *View) Filter() Filter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

// Load renders the initial contact and group lists
func (v *View) Load(ctx context.Context) error {
	if err := v.ReloadContacts(ctx); err != nil {
		return err
	}
	return v.ReloadGroups(ctx)
}

// SelectContact opens the direct chat with user and renders its full history
func (v *View) SelectContact(ctx context.Context, user int64) error {
	if user == v.me.ID {
		return ErrSelfSelection
	}

	peer, err := v.store.GetUserByID(ctx, user)
	if err != nil {
		return err
	}

	if _, err := v.store.MarkConversationRead(ctx, v.me.ID, peer.ID); err != nil {
		v.logger.Errorf("Marking chat with user (id: %d) read: %v", peer.ID, err)
	}

	v.mu.Lock()
	v.state = State{Kind: DirectChat, PeerID: peer.ID}
	v.title = "Chat with " + peer.FullName()
	v.mu.Unlock()

	v.logger.Debugf("Selected direct chat with user (id: %d)", peer.ID)

	return v.Refresh(ctx)
}

// SelectGroup opens a group chat, only members may open it
func (v *View) SelectGroup(ctx context.Context, group int64) error {
	g, err := v.store.GetGroup(ctx, group)
	if err != nil {
		return err
	}

	ok, err := v.store.IsGroupMember(ctx, g.ID, v.me.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotMember
	}

	v.mu.Lock()
	v.state = State{Kind: GroupChat, GroupID: g.ID}
	v.title = "Group: " + g.Name
	v.mu.Unlock()

	v.logger.Debugf("Selected group chat (id: %d)", g.ID)

	return v.Refresh(ctx)
}

// Send stores text in the open conversation and reloads it, blank text or no open chat is a no-op
func (v *View) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	state := v.State()
	if text == "" || state.Kind == NoChatSelected {
		return nil
	}

	var receiver, group *int64
	switch state.Kind {
	case DirectChat:
		receiver = &state.PeerID
	case GroupChat:
		group = &state.GroupID
	}

	if _, err := v.store.AddMessage(ctx, v.me.ID, receiver, group, text); err != nil {
		return err
	}

	return v.Refresh(ctx)
}

// Refresh re-queries the open conversation and renders it
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	state, title := v.state, v.title
	v.mu.Unlock()

	conv := Conversation{State: state, Title: title}

	switch state.Kind {
	case DirectChat:
		msgs, err := v.store.GetMessages(ctx, v.me.ID, state.PeerID)
		if err != nil {
			return err
		}
		peer, err := v.store.GetUserByID(ctx, state.PeerID)
		if err != nil {
			return err
		}
		for _, m := range msgs {
			name := peer.FullName()
			if m.SenderID == v.me.ID {
				name = v.me.FullName()
			}
			conv.Lines = append(conv.Lines, v.line(m, name))
		}
	case GroupChat:
		msgs, err := v.store.GetGroupMessages(ctx, state.GroupID)
		if err != nil {
			return err
		}
		for _, m := range msgs {
			conv.Lines = append(conv.Lines, v.line(m.Message, m.SenderFirstName+" "+m.SenderLastName))
		}
	}

	v.renderer.RenderConversation(conv)

	return nil
}

func (v *View) line(m storage.Message, sender string) Line {
	return Line{
		MessageID:  m.ID,
		SenderID:   m.SenderID,
		SenderName: sender,
		Content:    m.Content,
		SentAt:     m.Timestamp,
		Mine:       m.SenderID == v.me.ID,
	}
}

// OnPresenceChanged reloads the contact list when it shows online users only
func (v *View) OnPresenceChanged(user int64, online bool) {
	if v.Filter() != OnlineOnly {
		return
	}

	v.logger.Debugf("User (id: %d) online=%t, reloading contacts", user, online)

	if err := v.ReloadContacts(context.Background()); err != nil {
		v.logger.Errorf("Reloading contacts: %v", err)
	}
}

// ShowOnline lists online users only
func (v *View) ShowOnline(ctx context.Context) error {
	v.setFilter(OnlineOnly, "")
	return v.ReloadContacts(ctx)
}

// ShowAll lists every user
func (v *View) ShowAll(ctx context.Context) error {
	v.setFilter(AllUsers, "")
	return v.ReloadContacts(ctx)
}

// Search lists users matching term, an empty term goes back to online users
func (v *View) Search(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return v.ShowOnline(ctx)
	}
	v.setFilter(SearchResults, term)
	return v.ReloadContacts(ctx)
}

func (v *View) setFilter(f Filter, term string) {
	v.mu.Lock()
	v.filter = f
	v.term = term
	v.mu.Unlock()
}

// ReloadContacts re-queries the contact list for the current filter and renders it
func (v *View) ReloadContacts(ctx context.Context) error {
	v.mu.Lock()
	filter, term := v.filter, v.term
	v.mu.Unlock()

	var (
		contacts []storage.Contact
		err      error
	)
	switch filter {
	case OnlineOnly:
		contacts, err = v.store.GetOnlineUsers(ctx, v.me.ID)
	case AllUsers:
		contacts, err = v.store.GetAllUsers(ctx, v.me.ID)
	case SearchResults:
		contacts, err = v.store.SearchUsers(ctx, term, v.me.ID)
	}
	if err != nil {
		return err
	}

	unread, err := v.store.UnreadCounts(ctx, v.me.ID)
	if err != nil {
		return err
	}

	v.renderer.RenderContacts(ContactList{
		Filter:   filter,
		Term:     term,
		Contacts: contacts,
		Unread:   unread,
	})

	return nil
}

// ReloadGroups re-queries the groups of the current user and renders them
func (v *View) ReloadGroups(ctx context.Context) error {
	groups, err := v.store.GetUserGroups(ctx, v.me.ID)
	if err != nil {
		return err
	}
	v.renderer.RenderGroups(groups)
	return nil
}

// CreateGroup creates a group owned by the current user with the given members and refreshes the group list
func (v *View) CreateGroup(ctx context.Context, name string, members ...int64) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrEmptyName
	}

	id, err := v.store.CreateGroup(ctx, name, v.me.ID, members...)
	if err != nil {
		return 0, err
	}

	v.logger.Infof("User (id: %d) created group (id: %d)", v.me.ID, id)

	return id, v.ReloadGroups(ctx)
}

// AddMember adds user to the open group chat
func (v *View) AddMember(ctx context.Context, user int64) error {
	state := v.State()
	if state.Kind != GroupChat {
		return ErrNoGroupChat
	}

	if err := v.store.AddGroupMember(ctx, state.GroupID, user); err != nil {
		return fmt.Errorf("adding member: %w", err)
	}
	return nil
}
