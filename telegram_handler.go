package main

import (
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pivolan/ridership_clipper/dataset"
	"github.com/pivolan/ridership_clipper/domain/models"
	"github.com/pivolan/ridership_clipper/pipeline"
	"github.com/pivolan/ridership_clipper/report"
	uuid "github.com/satori/go.uuid"
)

const maxMessageLen = 4000

const helpText = `This bot clips outliers out of ridership data.

Send a CSV file (plain or gzip, lz4, zip archived) with a date column and I will:
- describe every numeric column
- Winsorize each column separately inside every date window
- send back the clipped CSV, the statistics and box plots before and after

Send a list of numbers ("1 2 3 100" or one per line) to clip just those.

Commands:
/eras - date windows used for clipping
/summary - statistics of the last file
/graph_<column> - the column over time, raw and clipped
/hist_<column> - distribution of the clipped column`

type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Bot struct {
	api       botAPI
	opts      *pipeline.Options
	uploadDir string

	mu      sync.Mutex
	results map[int64]*pipeline.Result
}

func NewBot(api botAPI, opts *pipeline.Options, uploadDir string) *Bot {
	return &Bot{
		api:       api,
		opts:      opts,
		uploadDir: uploadDir,
		results:   map[int64]*pipeline.Result{},
	}
}

// Run consumes updates until the channel closes
func (b *Bot) Run(api *tgbotapi.BotAPI) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates, err := api.GetUpdatesChan(u)
	if err != nil {
		logger.Error().Err(err).Msg("cannot get telegram updates")
		return
	}
	for update := range updates {
		if update.Message == nil {
			continue
		}
		go b.handleMessage(update.Message)
	}
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	switch {
	case message.Document != nil:
		b.handleDocument(message)
	case message.IsCommand():
		b.handleCommand(message)
	case message.Text != "":
		b.handleText(message)
	}
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		logger.Error().Err(err).Msg("error sending telegram message")
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

// truncate cuts text to at most limit bytes without splitting a rune
func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "\n..."
}

func (b *Bot) replyPre(chatID int64, text string) {
	text = html.EscapeString(truncate(text, maxMessageLen))
	msg := tgbotapi.NewMessage(chatID, "<pre>\n"+text+"\n</pre>")
	msg.ParseMode = tgbotapi.ModeHTML
	b.send(msg)
}

func (b *Bot) sendFile(chatID int64, name string, data []byte, caption string) {
	doc := tgbotapi.NewDocumentUpload(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	b.send(doc)
}

func (b *Bot) handleText(message *tgbotapi.Message) {
	numbers := pipeline.ExtractNumbers(message.Text)
	if len(numbers) == 0 {
		b.reply(message.Chat.ID, helpText)
		return
	}
	clipped, before, after, err := pipeline.ClipNumbers(numbers, b.opts.Lower, b.opts.Upper)
	if err != nil {
		b.reply(message.Chat.ID, "Cannot clip these numbers: "+err.Error())
		return
	}
	b.replyPre(message.Chat.ID, report.RenderStats([]models.ColumnStats{before, after})+"\n\n"+formatNumbers(clipped))
}

func formatNumbers(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return strings.Join(parts, " ")
}

func download(url, filePath string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(file, resp.Body)
	return err
}

func (b *Bot) handleDocument(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	fileURL, err := b.api.GetFileDirectURL(message.Document.FileID)
	if err != nil {
		logger.Error().Err(err).Msg("error getting file URL")
		b.reply(chatID, "Error on upload file, if the file is too big try to archive it")
		return
	}

	filePath := filepath.Join(b.uploadDir, uuid.NewV4().String(), filepath.Base(message.Document.FileName))
	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		logger.Error().Err(err).Msg("error creating directory")
		return
	}
	defer os.RemoveAll(filepath.Dir(filePath))
	if err := download(fileURL, filePath); err != nil {
		logger.Error().Err(err).Msg("error downloading file")
		b.reply(chatID, "Cannot download the file, try again")
		return
	}

	result, err := pipeline.RunFile(filePath, b.opts)
	if err != nil {
		logger.Warn().Err(err).Str("file", message.Document.FileName).Msg("cannot clip document")
		b.reply(chatID, "Cannot clip this file: "+err.Error())
		return
	}
	b.mu.Lock()
	b.results[chatID] = result
	b.mu.Unlock()

	b.sendResult(chatID, result)
}

func (b *Bot) sendResult(chatID int64, result *pipeline.Result) {
	stamp := time.Now().Format("20060102-150405")
	summary := result.Summary()
	b.replyPre(chatID, summary)

	var csvBuf strings.Builder
	if err := result.WriteCSV(&csvBuf); err != nil {
		logger.Error().Err(err).Msg("error writing clipped csv")
		b.reply(chatID, "Cannot write the clipped CSV")
		return
	}
	b.sendFile(chatID, "clipped_"+stamp+".csv", []byte(csvBuf.String()), fmt.Sprintf("%d rows inside the date windows", result.Clipped.Len()))
	b.sendFile(chatID, "stats_"+stamp+".txt", []byte(summary), "statistics before and after clipping")

	var html strings.Builder
	if err := result.WriteBoxPlots(&html); err != nil {
		logger.Error().Err(err).Msg("error rendering box plots")
	} else {
		b.sendFile(chatID, "boxplots_"+stamp+".html", []byte(html.String()), "box plots, open in a browser")
	}

	var hints []string
	for _, c := range result.Columns {
		id := dataset.Identifier(c)
		hints = append(hints, fmt.Sprintf("/graph_%s /hist_%s", id, id))
	}
	if len(hints) > 0 {
		b.reply(chatID, "Charts per column:\n"+strings.Join(hints, "\n"))
	}
}
