package main

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// larger PNGs go out as documents so telegram does not recompress them
const maxSizePhoto = 150000

func (b *Bot) sendGraphVisualization(graph []byte, visualType string, columnName string, stage string, chatID int64) {
	fileName := fmt.Sprintf("%s_%s_%s_%s.png",
		visualType,
		columnName,
		stage,
		time.Now().Format("20060102-150405"))
	pngFile := tgbotapi.FileBytes{
		Name:  fileName,
		Bytes: graph,
	}
	caption := generateVizualDescription(visualType, columnName, stage)

	var msg tgbotapi.Chattable
	if len(graph) < maxSizePhoto {
		photo := tgbotapi.NewPhotoUpload(chatID, pngFile)
		photo.Caption = caption
		msg = photo
	} else {
		doc := tgbotapi.NewDocumentUpload(chatID, pngFile)
		doc.Caption = caption
		msg = doc
	}
	if _, err := b.api.Send(msg); err != nil {
		logger.Error().Err(err).Str("type", visualType).Str("column", columnName).Msg("error sending visualization")
		b.reply(chatID, fmt.Sprintf("Cannot send %s of %s: %v", visualType, columnName, err))
	}
}

func generateVizualDescription(visualType, columnName, stage string) string {
	switch visualType {
	case "histogram":
		return fmt.Sprintf("Histogram of %s (%s)\nHow often each range of values occurs.", columnName, stage)
	case "timeseries":
		return fmt.Sprintf("%s over time (%s)", columnName, stage)
	default:
		return fmt.Sprintf("%s: %s", visualType, columnName)
	}
}
