package pkg

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type TelegramClient struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramClient 会调用一次 getMe 校验 token
func NewTelegramClient(token string) (*TelegramClient, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramClient{bot: bot}, nil
}

func (c *TelegramClient) SendText(chatID int64, text string) error {
	_, err := c.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
