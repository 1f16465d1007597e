// Package bot is the Telegram front-end: account bootstrap, the /photo
// generation conversation, and credit top-ups. It talks to the same store as
// the reconcilers but only ever through the ledger/task/payment primitives,
// so it shares their concurrency guarantees.
package bot

import (
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/chris/imagegen-credits/pkg/genapi"
	"github.com/chris/imagegen-credits/pkg/payments"
	"github.com/chris/imagegen-credits/pkg/storage"
)

const defaultModel = "gpt-image-1"

// Bot wires the Telegram handlers to the store and the outbound providers.
type Bot struct {
	B        *tele.Bot
	Store    storage.Storage
	Gen      genapi.Submitter
	Pay      payments.LinkCreator
	Sessions *Sessions

	StartCredits   int64
	GenerationCost int64
}

// Inline buttons
var (
	btnSizeSquare = tele.Btn{Text: "✅ Confirm (1024x1024)", Unique: "size_square"}
	btnSizeWide   = tele.Btn{Text: "✅ Confirm (1536x1024)", Unique: "size_wide"}
	btnBuyPlan    = tele.Btn{Unique: "buy_plan"}
)

// New creates the bot and registers its handlers.
func New(token string, store storage.Storage, gen genapi.Submitter, pay payments.LinkCreator, startCredits, generationCost int64) (*Bot, error) {
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		B:              b,
		Store:          store,
		Gen:            gen,
		Pay:            pay,
		Sessions:       NewSessions(),
		StartCredits:   startCredits,
		GenerationCost: generationCost,
	}

	bot.registerHandlers()
	return bot, nil
}

// Start begins long polling and blocks until Stop.
func (bot *Bot) Start() {
	bot.B.Start()
}

// Stop stops long polling.
func (bot *Bot) Stop() {
	bot.B.Stop()
}

func (bot *Bot) registerHandlers() {
	bot.B.Handle("/start", bot.handleStart)
	bot.B.Handle("/status", bot.handleStatus)
	bot.B.Handle("/photo", bot.handlePhoto)
	bot.B.Handle("/buy", bot.handleBuy)

	bot.B.Handle(tele.OnPhoto, bot.handleIncomingPhoto)
	bot.B.Handle(tele.OnText, bot.handleIncomingText)

	bot.B.Handle(&btnSizeSquare, func(c tele.Context) error { return bot.handleConfirm(c, "1024x1024") })
	bot.B.Handle(&btnSizeWide, func(c tele.Context) error { return bot.handleConfirm(c, "1536x1024") })
	bot.B.Handle(&btnBuyPlan, bot.handlePlanSelected)
}
