package engine

import (
	"fmt"

	"github.com/hferris/earnhub/internal/model"
	"github.com/hferris/earnhub/internal/store"
)

// ContactAdmin appends a message to the admin inbox.
func (e *Engine) ContactAdmin(username, text string, msgType model.MessageType) (model.SupportMessage, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.findUser(username)
	if u == nil {
		return model.SupportMessage{}, ErrUnknownUser
	}
	if msgType != model.MessageSupport && msgType != model.MessageFeedback {
		msgType = model.MessageSupport
	}

	msg := model.SupportMessage{
		ID:         newID(),
		SenderName: fmt.Sprintf("%s (@%s)", u.Name, u.Username),
		Text:       text,
		Type:       msgType,
		Timestamp:  now(),
	}
	e.messages = append([]model.SupportMessage{msg}, e.messages...)
	e.persist(store.KeyMessages, e.messages)

	return msg, nil
}

// Messages returns the admin inbox, newest first.
func (e *Engine) Messages() []model.SupportMessage {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.SupportMessage, len(e.messages))
	copy(out, e.messages)
	return out
}

// DeleteMessage removes one inbox message. Unknown ids are a no-op.
func (e *Engine) DeleteMessage(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.messages {
		if e.messages[i].ID == id {
			e.messages = append(e.messages[:i], e.messages[i+1:]...)
			e.persist(store.KeyMessages, e.messages)
			return true
		}
	}
	return false
}
