package services

import (
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"binance-trade-bot/domain"
)

type telegramUsersService interface {
	CheckAddUser(user *domain.User) error
	GetUsers() ([]domain.User, error)
}

type telegramBotCredentials interface {
	GetTelegramBotAPIToken() string
}

type telegramBotLogger interface {
	Printf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// TelegramBot pushes completed-trade notifications to subscribed chats.
// Users subscribe by sending /start to the bot.
type TelegramBot struct {
	bot          *tgbotapi.BotAPI
	usersService telegramUsersService
	logger       telegramBotLogger
}

func NewTelegramBot(usersService telegramUsersService, telegramBotCredentials telegramBotCredentials, telegramBotLogger telegramBotLogger) (*TelegramBot, error) {
	telegramBot := TelegramBot{usersService: usersService, logger: telegramBotLogger}

	var err error

	telegramBot.bot, err = tgbotapi.NewBotAPI(telegramBotCredentials.GetTelegramBotAPIToken())
	if err != nil {
		return nil, err
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 10

	updates := telegramBot.bot.GetUpdatesChan(u)

	go func() {
		for update := range updates {
			if update.Message == nil {
				continue
			}

			if update.Message.Text == "/start" {
				if err := telegramBot.usersService.CheckAddUser(&domain.User{ChatID: update.Message.Chat.ID}); err != nil {
					telegramBot.logger.Errorf("Failed to register subscriber: %v", err)
					continue
				}
				msg := tgbotapi.NewMessage(update.Message.Chat.ID, "You are subscribed to trade notifications 👍")
				telegramBot.bot.Send(msg)
			}
		}
	}()

	return &telegramBot, nil
}

// NotifyTradeCompleted broadcasts a completed trade to every subscriber.
func (telegramBot *TelegramBot) NotifyTradeCompleted(record domain.OrderRecord) {
	users, err := telegramBot.usersService.GetUsers()
	if err != nil {
		telegramBot.logger.Errorf("Failed to load subscribers: %v", err)
		return
	}

	template := "%s %s for %s USDT 💵\nprofit %s USDT\n%s ⏱"
	text := fmt.Sprintf(template,
		record.Side,
		record.Symbol,
		strconv.FormatFloat(record.CumQuote, 'f', -1, 64),
		strconv.FormatFloat(record.Profit, 'f', 2, 64),
		record.Timestamp.Format(time.RFC1123))

	for _, user := range users {
		msg := tgbotapi.NewMessage(user.ChatID, text)
		if _, err := telegramBot.bot.Send(msg); err != nil {
			telegramBot.logger.Errorf("Failed to send telegram message: %v", err)
		}
	}
}
