package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"w3bbot/internal/intake"
)

// Transport is the chat capability the rest of the system consumes. Tests
// substitute a recording double for it.
type Transport interface {
	SendText(chatID int64, text string) error
	SendPrompt(chatID int64, p intake.Prompt) error
	AnswerCallback(callbackID, text string) error
	EditText(chatID int64, messageID int, text string) error
	ClearButtons(chatID int64, messageID int) error
	ChatMemberStatus(channel string, userID int64) (string, error)
}

type botTransport struct {
	api *tgbotapi.BotAPI
}

func NewTransport(api *tgbotapi.BotAPI) Transport {
	return &botTransport{api: api}
}

func (t *botTransport) SendText(chatID int64, text string) error {
	_, err := t.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (t *botTransport) SendPrompt(chatID int64, p intake.Prompt) error {
	msg := tgbotapi.NewMessage(chatID, p.Text)
	switch {
	case len(p.Inline) > 0:
		msg.ReplyMarkup = inlineMarkup(p.Inline)
	case len(p.Reply) > 0:
		msg.ReplyMarkup = replyMarkup(p.Reply)
	case p.RemoveReply:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}
	_, err := t.api.Send(msg)
	return err
}

func (t *botTransport) AnswerCallback(callbackID, text string) error {
	_, err := t.api.Request(tgbotapi.NewCallback(callbackID, text))
	return err
}

func (t *botTransport) EditText(chatID int64, messageID int, text string) error {
	_, err := t.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
	return err
}

func (t *botTransport) ClearButtons(chatID int64, messageID int) error {
	empty := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	_, err := t.api.Send(tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, empty))
	return err
}

func (t *botTransport) ChatMemberStatus(channel string, userID int64) (string, error) {
	member, err := t.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: "@" + channel,
			UserID:             userID,
		},
	})
	if err != nil {
		return "", err
	}
	return member.Status, nil
}

func inlineMarkup(rows [][]intake.Button) tgbotapi.InlineKeyboardMarkup {
	var out [][]tgbotapi.InlineKeyboardButton
	for _, r := range rows {
		var row []tgbotapi.InlineKeyboardButton
		for _, b := range r {
			if b.URL != "" {
				row = append(row, tgbotapi.NewInlineKeyboardButtonURL(b.Label, b.URL))
			} else {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Code))
			}
		}
		out = append(out, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...)
}

func replyMarkup(rows [][]intake.Button) tgbotapi.ReplyKeyboardMarkup {
	var out [][]tgbotapi.KeyboardButton
	for _, r := range rows {
		var row []tgbotapi.KeyboardButton
		for _, b := range r {
			btn := tgbotapi.NewKeyboardButton(b.Label)
			btn.RequestContact = b.RequestContact
			row = append(row, btn)
		}
		out = append(out, row)
	}
	kb := tgbotapi.NewReplyKeyboard(out...)
	kb.OneTimeKeyboard = true
	return kb
}
