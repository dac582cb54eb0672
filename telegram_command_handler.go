package main

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pivolan/ridership_clipper/pipeline"
)

const (
	graphPrefix = "graph_"
	histPrefix  = "hist_"
)

func (b *Bot) handleCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	fullCommand := message.Command()

	switch {
	case fullCommand == "start" || fullCommand == "help":
		b.reply(chatID, helpText)
	case fullCommand == "eras":
		b.reply(chatID, b.erasText())
	case fullCommand == "summary":
		if result := b.lastResult(chatID); result != nil {
			b.replyPre(chatID, result.Summary())
		} else {
			b.reply(chatID, "Send a CSV file first")
		}
	case strings.HasPrefix(fullCommand, graphPrefix):
		b.withColumn(chatID, strings.TrimPrefix(fullCommand, graphPrefix), b.handleGraphColumn)
	case strings.HasPrefix(fullCommand, histPrefix):
		b.withColumn(chatID, strings.TrimPrefix(fullCommand, histPrefix), b.handleHistColumn)
	default:
		b.reply(chatID, "Unknown command. Use /graph_<column>, /hist_<column>, /eras or /summary")
	}
}

func (b *Bot) erasText() string {
	lines := []string{"Date windows, each clipped on its own:"}
	for _, w := range b.opts.Boundaries {
		lines = append(lines, fmt.Sprintf("%s: %s .. %s",
			w.Label, w.Start.Format(b.opts.DateLayout), w.End.Format(b.opts.DateLayout)))
	}
	lines = append(lines, fmt.Sprintf("Clipping below the %g and above the %g quantile", b.opts.Lower, 1-b.opts.Upper))
	return strings.Join(lines, "\n")
}

func (b *Bot) lastResult(chatID int64) *pipeline.Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.results[chatID]
}

func (b *Bot) withColumn(chatID int64, name string, handle func(chatID int64, result *pipeline.Result, column string)) {
	if name == "" {
		b.reply(chatID, "Add the column name after the command, e.g. /graph_Subway")
		return
	}
	result := b.lastResult(chatID)
	if result == nil {
		b.reply(chatID, "Send a CSV file first")
		return
	}
	column, ok := result.FindColumn(name)
	if !ok {
		b.reply(chatID, fmt.Sprintf("No clipped column %q", name))
		return
	}
	handle(chatID, result, column)
}

func (b *Bot) handleGraphColumn(chatID int64, result *pipeline.Result, column string) {
	for _, clipped := range []bool{false, true} {
		graph, err := result.TimeSeries(column, clipped)
		if err != nil {
			logger.Warn().Err(err).Str("column", column).Msg("cannot draw time series")
			b.reply(chatID, fmt.Sprintf("Cannot draw %s: %v", column, err))
			return
		}
		stage := "raw"
		if clipped {
			stage = "clipped"
		}
		b.sendGraphVisualization(graph, "timeseries", column, stage, chatID)
	}
}

func (b *Bot) handleHistColumn(chatID int64, result *pipeline.Result, column string) {
	graph, err := result.Histogram(column, true)
	if err != nil {
		logger.Warn().Err(err).Str("column", column).Msg("cannot draw histogram")
		b.reply(chatID, fmt.Sprintf("Cannot draw %s: %v", column, err))
		return
	}
	b.sendGraphVisualization(graph, "histogram", column, "clipped", chatID)
}
