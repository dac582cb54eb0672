package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pivolan/ridership_clipper/config"
	"github.com/pivolan/ridership_clipper/gologger"
	"github.com/pivolan/ridership_clipper/http_server"
	"github.com/pivolan/ridership_clipper/pipeline"
)

var logger = gologger.NewLogger()

func main() {
	cfg := config.GetConfig()
	opts, err := pipeline.OptionsFromConfig(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid clipping options")
	}

	if cfg.InputPath != "" {
		if err := runBatch(cfg, opts); err != nil {
			logger.Fatal().Err(err).Str("input", cfg.InputPath).Msg("batch run failed")
		}
		return
	}

	httpServer, err := http_server.StartHTTPServer(cfg.HTTPPort, opts, cfg.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start http server")
	}

	if cfg.TgToken != "" {
		api, err := tgbotapi.NewBotAPI(cfg.TgToken)
		if err != nil {
			logger.Fatal().Err(err).Msg("tg error")
		}
		logger.Info().Str("account", api.Self.UserName).Msg("bot authorized")
		bot := NewBot(api, opts, cfg.UploadDir)
		go bot.Run(api)
	}

	go func() {
		for {
			time.Sleep(time.Minute)
			if err := removeOldFiles(cfg.UploadDir, time.Now().Add(-time.Hour*2)); err != nil && !os.IsNotExist(err) {
				logger.Warn().Err(err).Msg("cannot clean upload dir")
			}
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Warn().Msg("received shutdown signal!")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown HTTP server")
	} else {
		logger.Info().Msg("successfully shutdown HTTP server")
	}
}

// removeOldFiles deletes files older than maxAge and the directories they leave empty
func removeOldFiles(dirPath string, maxAge time.Time) error {
	files, err := os.ReadDir(dirPath)
	if err != nil {
		return err
	}

	for _, file := range files {
		filePath := filepath.Join(dirPath, file.Name())
		if file.IsDir() {
			if err := removeOldFiles(filePath, maxAge); err != nil {
				return err
			}
			if rest, err := os.ReadDir(filePath); err == nil && len(rest) == 0 {
				os.Remove(filePath)
			}
			continue
		}
		fileStat, err := os.Stat(filePath)
		if err != nil {
			return err
		}
		if fileStat.ModTime().Before(maxAge) {
			if err := os.Remove(filePath); err != nil {
				return err
			}
			logger.Debug().Str("path", filePath).Msg("removed old file")
		}
	}
	return nil
}
