package telegram

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	errs []error
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return tgbotapi.Message{}, err
	}
	return tgbotapi.Message{}, nil
}

func TestClient_SendMessage(t *testing.T) {
	t.Run("markdown accepted", func(t *testing.T) {
		bot := &fakeSender{}
		c := &client{bot: bot, chatID: 42}

		require.NoError(t, c.SendMessage("*hello*"))
		require.Len(t, bot.sent, 1)
		assert.Equal(t, tgbotapi.ModeMarkdown, bot.sent[0].ParseMode)
		assert.Equal(t, int64(42), bot.sent[0].ChatID)
	})

	t.Run("falls back to plain text", func(t *testing.T) {
		bot := &fakeSender{errs: []error{errors.New("Bad Request: can't parse entities: unexpected end")}}
		c := &client{bot: bot, chatID: 42}

		require.NoError(t, c.SendMessage("TSLA_levels *"))
		require.Len(t, bot.sent, 2)
		assert.Empty(t, bot.sent[1].ParseMode)
	})

	t.Run("other errors are returned", func(t *testing.T) {
		bot := &fakeSender{errs: []error{errors.New("Forbidden: bot was blocked")}}
		c := &client{bot: bot, chatID: 42}

		assert.Error(t, c.SendMessage("hi"))
		assert.Len(t, bot.sent, 1)
	})
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient("", 1)
	assert.Error(t, err)

	_, err = NewClient("token", 0)
	assert.Error(t, err)
}
