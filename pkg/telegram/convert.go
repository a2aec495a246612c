package telegram

import (
	"strings"

	"github.com/mymmrac/telego"
)

// Convert maps a raw platform update onto the sealed Update model.
// Unsupported update kinds return ok=false and are skipped upstream.
func Convert(u telego.Update) (Update, bool) {
	switch {
	case u.Message != nil:
		cmd, arg := parseCommand(u.Message.Text)
		return MessageUpdate{
			ID:         int64(u.UpdateID),
			Chat:       u.Message.Chat.ID,
			MessageID:  int64(u.Message.MessageID),
			Text:       u.Message.Text,
			SenderName: senderName(u.Message.From),
			Command:    cmd,
			CommandArg: arg,
		}, true

	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil:
		return CallbackUpdate{
			ID:        int64(u.UpdateID),
			Chat:      u.CallbackQuery.Message.GetChat().ID,
			MessageID: int64(u.CallbackQuery.Message.GetMessageID()),
			QueryID:   u.CallbackQuery.ID,
			Data:      u.CallbackQuery.Data,
		}, true

	case u.InlineQuery != nil:
		return InlineQueryUpdate{
			ID:      int64(u.UpdateID),
			QueryID: u.InlineQuery.ID,
			Query:   u.InlineQuery.Query,
		}, true
	}
	return nil, false
}

// parseCommand splits "/cmd@bot arg..." into the command and its
// argument string. Non-command text yields an empty command.
func parseCommand(text string) (Command, string) {
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	head, arg, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return "", ""
	}
	return Command(head), strings.TrimSpace(arg)
}

func senderName(u *telego.User) string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	return name
}
