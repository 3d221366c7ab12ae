package main

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// runBot polls telegram until ctx is done.
func runBot(ctx context.Context, a *app, token string) error {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return err
	}
	log.Printf("[bot] authorized on account %s", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates, err := bot.GetUpdatesChan(u)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go handleMessage(bot, a, update.Message)
		}
	}
}

func handleMessage(bot *tgbotapi.BotAPI, a *app, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	var replies []reply
	switch {
	case message.IsCommand():
		replies = a.handleCommand(chatID, message.Command(), message.CommandArguments())
	case message.Document != nil:
		replies = []reply{{Text: "Os dados vêm da base da PRF carregada no servidor; não é preciso enviar arquivos. Use /ajuda."}}
	default:
		replies = []reply{{Text: helpText}}
	}
	for _, r := range replies {
		sendReply(bot, chatID, r)
	}
}
