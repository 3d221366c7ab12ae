package main

import (
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

const (
	// bigger images go out as documents so telegram does not recompress them
	maxSizePhoto = 150000
	maxTextLen   = 4000
)

func sendReply(api *tgbotapi.BotAPI, chatID int64, r reply) {
	switch {
	case r.Image != nil:
		sendGraphVisualization(api, chatID, r.Image, r.FileName, r.Caption)
	case r.Document != nil:
		sendDocument(api, chatID, tgbotapi.FileBytes{Name: r.FileName, Bytes: r.Document}, r.Caption)
	case len(r.Text) > maxTextLen:
		// too long for one message
		name := "resposta_" + time.Now().Format("20060102-150405") + ".txt"
		sendDocument(api, chatID, tgbotapi.FileBytes{Name: name, Bytes: []byte(plainText(r))}, "")
	default:
		msg := tgbotapi.NewMessage(chatID, r.Text)
		if r.HTML {
			msg.ParseMode = tgbotapi.ModeHTML
		}
		if _, err := api.Send(msg); err != nil {
			log.Printf("[bot] send message to %d: %v", chatID, err)
		}
	}
}

// plainText undoes the <pre> wrapping of table replies.
func plainText(r reply) string {
	if !r.HTML {
		return r.Text
	}
	return unescapePre(r.Text)
}

// sendGraphVisualization sends a chart as a photo, or as a document when it
// is too big for a photo.
func sendGraphVisualization(api *tgbotapi.BotAPI, chatID int64, graph []byte, fileName, caption string) {
	pngFile := tgbotapi.FileBytes{Name: fileName, Bytes: graph}
	if len(graph) >= maxSizePhoto {
		sendDocument(api, chatID, pngFile, caption)
		return
	}
	msg := tgbotapi.NewPhotoUpload(chatID, pngFile)
	msg.Caption = caption
	if _, err := api.Send(msg); err != nil {
		log.Printf("[bot] send graph %s to %d: %v", fileName, chatID, err)
		api.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Não foi possível enviar o gráfico. Erro: %v", err)))
	}
}

func sendDocument(api *tgbotapi.BotAPI, chatID int64, file tgbotapi.FileBytes, caption string) {
	msg := tgbotapi.NewDocumentUpload(chatID, file)
	msg.Caption = caption
	if _, err := api.Send(msg); err != nil {
		log.Printf("[bot] send document %s to %d: %v", file.Name, chatID, err)
	}
}
