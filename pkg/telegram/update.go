// Package telegram contains the inbound update model, the executor
// registry, and the chat-partitioned dispatcher that drives them.
//
// The dispatcher guarantees strict processing order for updates of one
// chat while unrelated chats progress concurrently. Executors are
// self-contained capabilities registered once at startup; the router
// picks exactly one of them per update.
package telegram

// Command is a recognized bot command, without the leading slash.
type Command string

const (
	CommandStart   Command = "start"
	CommandLang    Command = "lang"
	CommandWatch   Command = "watch"
	CommandUnwatch Command = "unwatch"
	CommandAsk     Command = "ask"
)

// Update is one inbound platform event. The variant set is sealed so
// executors can type-switch exhaustively.
type Update interface {
	// UpdateID is the platform's monotonically increasing update id.
	UpdateID() int64
	// ChatID returns the conversation the update belongs to, or false
	// for updates with no chat context (inline queries).
	ChatID() (int64, bool)

	update()
}

// MessageUpdate is an incoming chat message.
type MessageUpdate struct {
	ID         int64
	Chat       int64
	MessageID  int64
	Text       string
	SenderName string
	Command    Command
	CommandArg string
}

func (u MessageUpdate) UpdateID() int64       { return u.ID }
func (u MessageUpdate) ChatID() (int64, bool) { return u.Chat, true }
func (MessageUpdate) update()                 {}

// CallbackUpdate is a pressed inline-keyboard button.
type CallbackUpdate struct {
	ID        int64
	Chat      int64
	MessageID int64
	QueryID   string
	Data      string
}

func (u CallbackUpdate) UpdateID() int64       { return u.ID }
func (u CallbackUpdate) ChatID() (int64, bool) { return u.Chat, true }
func (CallbackUpdate) update()                 {}

// InlineQueryUpdate is an inline query typed into any chat's input
// field. It has no chat context and bypasses partitioning.
type InlineQueryUpdate struct {
	ID      int64
	QueryID string
	Query   string
}

func (u InlineQueryUpdate) UpdateID() int64     { return u.ID }
func (InlineQueryUpdate) ChatID() (int64, bool) { return 0, false }
func (InlineQueryUpdate) update()               {}
