package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"

	"binance-trade-bot/handlers"
	"binance-trade-bot/services"
	"binance-trade-bot/storage"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	godotenv.Load()

	logger := log.New()
	logger.SetLevel(log.DebugLevel)

	credentials := storage.NewCredentialsStorage()

	var orderStorage *storage.Storage
	if dsn := credentials.GetDatabaseDSN(); dsn != "" {
		var err error
		orderStorage, err = storage.New(postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}))
		if err != nil {
			logger.Panicf("%v", err)
		}
	} else {
		logger.Printf("DATABASE_DSN not set, order history will not be persisted")
	}

	var notifier *services.TelegramBot
	if credentials.GetTelegramBotAPIToken() != "" {
		if orderStorage == nil {
			logger.Panicf("Telegram notifications need DATABASE_DSN for the subscriber list")
		}
		usersService := services.NewUsersService(orderStorage)
		var err error
		notifier, err = services.NewTelegramBot(usersService, credentials, logger)
		if err != nil {
			logger.Panicf("%v", err)
		}
	}

	eventLog := services.NewEventLog(200, logger)
	priceFeed := services.NewPriceFeed(ctx, credentials, logger)
	exchangeClient := services.NewExchangeClient(credentials)

	// Typed nils must not reach the engine's interface fields.
	var engine *services.Engine
	switch {
	case notifier != nil:
		engine = services.NewEngine(credentials, priceFeed, exchangeClient, orderStorage, notifier, eventLog)
	case orderStorage != nil:
		engine = services.NewEngine(credentials, priceFeed, exchangeClient, orderStorage, nil, eventLog)
	default:
		engine = services.NewEngine(credentials, priceFeed, exchangeClient, nil, nil, eventLog)
	}

	server := handlers.NewServer(ctx, engine, credentials, eventLog, logger)
	server.Serve(credentials.GetServerAddress())
	logger.Printf("Listening on %s", credentials.GetServerAddress())

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-done

	engine.Stop()
	cancel()
}
