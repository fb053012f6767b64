package tui

import (
	tea "charm.land/bubbletea/v2"
	"desktop-messenger/internal/chat"
	"desktop-messenger/internal/storage"
)

type conversationMsg chat.Conversation

type contactsMsg chat.ContactList

type groupsMsg []storage.Group

// programRenderer forwards chat view renders into the bubbletea event loop
type programRenderer struct {
	send func(tea.Msg)
}

func (r programRenderer) RenderConversation(c chat.Conversation) {
	r.send(conversationMsg(c))
}

func (r programRenderer) RenderContacts(l chat.ContactList) {
	r.send(contactsMsg(l))
}

func (r programRenderer) RenderGroups(groups []storage.Group) {
	r.send(groupsMsg(groups))
}
