package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/dewgenenny/facesinq/internal/bot"
	"github.com/dewgenenny/facesinq/internal/chat"
	"github.com/dewgenenny/facesinq/internal/config"
	"github.com/dewgenenny/facesinq/internal/database"
	"github.com/dewgenenny/facesinq/internal/images"
	logger "github.com/dewgenenny/facesinq/internal/logging"
	"github.com/dewgenenny/facesinq/internal/models"
	"github.com/dewgenenny/facesinq/internal/services"

	"go.uber.org/zap"
)

func main() {
	// Bootstrap logger so config loading has somewhere to report; replaced
	// once the real logging config is known.
	bootLog, err := logger.Init(logger.Options{Directory: "logs", MaxSize: 10, MaxBackups: 3, MaxAge: 7})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	if err := config.Init(".", bootLog); err != nil {
		bootLog.Fatal("Failed to load configuration", zap.Error(err))
	}

	logCfg := config.Conf.Logging
	log, err := logger.Init(logger.Options{
		Directory:  logCfg.Directory,
		MaxSize:    logCfg.MaxSize,
		MaxBackups: logCfg.MaxBackups,
		MaxAge:     logCfg.MaxAge,
		Compress:   logCfg.Compress,
	})
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer log.Sync()

	// Initialize Database
	database.Init(log)

	// Load bot copy at startup
	msgs, err := models.LoadMessages(config.Conf.Quiz.MessagesFile)
	if err != nil {
		log.Fatal("Failed to load bot messages", zap.Error(err))
	}

	slackClient := chat.NewSlackClient(config.Conf.Slack.BotToken)

	compositor := images.NewCompositor(log, images.Options{
		QuadrantSize: config.Conf.Image.QuadrantSize,
		FetchTimeout: config.Conf.Image.FetchTimeout,
		JPEGQuality:  config.Conf.Image.JPEGQuality,
	})
	generator := services.NewGenerator(log, compositor)
	pending := services.NewPendingQuizzes(log, generator)
	scorer := services.NewScorer(log, config.Conf.Scoring)
	engine := services.NewEngine(log, slackClient, generator, pending, scorer, msgs)
	leaderboard := services.NewLeaderboard(log, config.Conf.Leaderboard)

	dispatcher := bot.NewDispatcher(log, engine, leaderboard, slackClient)
	_ = dispatcher // handed to the webhook layer, which lives outside this module

	scheduler := services.NewScheduler(log, engine, config.Conf.Quiz)
	scheduler.Start()

	log.Info("FaceSinq is running!")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down.")
}
