package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	tele "gopkg.in/telebot.v3"

	"github.com/chris/imagegen-credits/pkg/genapi"
	"github.com/chris/imagegen-credits/pkg/models"
	"github.com/chris/imagegen-credits/pkg/payments"
	"github.com/chris/imagegen-credits/pkg/storage"
)

func (bot *Bot) handleStart(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()

	account, err := bot.Store.GetAccount(ctx, sender.ID)
	if err != nil {
		if !errors.Is(err, storage.ErrAccountNotFound) {
			slog.Error("failed to load account", "user_id", sender.ID, "error", err)
			return c.Send("❌ Something went wrong, please try again.")
		}
		account, err = bot.Store.CreateAccount(ctx, &models.Account{
			UserID:    sender.ID,
			Username:  sender.Username,
			FirstName: sender.FirstName,
			Balance:   bot.StartCredits,
		})
		if err != nil && !errors.Is(err, storage.ErrAccountExists) {
			slog.Error("failed to create account", "user_id", sender.ID, "error", err)
			return c.Send("❌ Something went wrong, please try again.")
		}
		if errors.Is(err, storage.ErrAccountExists) {
			// Lost a /start race; the other create won.
			if account, err = bot.Store.GetAccount(ctx, sender.ID); err != nil {
				return c.Send("❌ Something went wrong, please try again.")
			}
		}
	}

	name := sender.FirstName
	if name == "" {
		name = "friend"
	}
	return c.Send(fmt.Sprintf(
		"👋 Hi, %s!\n\n"+
			"🎨 I generate images with AI.\n\n"+
			"💳 Your balance: %d credits\n\n"+
			"📋 Commands:\n"+
			"/photo — generate an image (costs %d credits)\n"+
			"/buy — buy credits\n"+
			"/status — check your balance",
		name, account.Balance, bot.GenerationCost,
	))
}

func (bot *Bot) handleStatus(c tele.Context) error {
	account, err := bot.Store.GetAccount(context.Background(), c.Sender().ID)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return c.Send("❌ Account not found. Use /start first.")
		}
		slog.Error("failed to load account", "user_id", c.Sender().ID, "error", err)
		return c.Send("❌ Something went wrong, please try again.")
	}
	return c.Send(fmt.Sprintf("📊 Your balance: %d credits", account.Balance))
}

func (bot *Bot) handlePhoto(c tele.Context) error {
	account, err := bot.Store.GetAccount(context.Background(), c.Sender().ID)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return c.Send("❌ Account not found. Use /start first.")
		}
		slog.Error("failed to load account", "user_id", c.Sender().ID, "error", err)
		return c.Send("❌ Something went wrong, please try again.")
	}

	// Soft check only; the authoritative balance check happens inside the
	// atomic debit at submission time.
	if account.Balance < bot.GenerationCost {
		return c.Send(fmt.Sprintf(
			"❌ Not enough credits: need %d, you have %d.\nUse /buy to top up.",
			bot.GenerationCost, account.Balance,
		))
	}

	bot.Sessions.Begin(c.Sender().ID, c.Chat().ID)
	return c.Send("📸 Send me the image to work from.\n\nYou will add a prompt after that.")
}

func (bot *Bot) handleIncomingPhoto(c tele.Context) error {
	session, ok := bot.Sessions.Get(c.Sender().ID)
	if !ok || session.Stage != StageWaitImage {
		return nil
	}

	photo := c.Message().Photo
	if photo == nil {
		return c.Send("❌ Please send an image.")
	}

	rc, err := bot.B.File(&photo.File)
	if err != nil {
		slog.Error("failed to download photo", "user_id", c.Sender().ID, "error", err)
		return c.Send("❌ Could not read the image, please try again.")
	}
	defer rc.Close()

	imageBytes, err := io.ReadAll(rc)
	if err != nil {
		slog.Error("failed to read photo", "user_id", c.Sender().ID, "error", err)
		return c.Send("❌ Could not read the image, please try again.")
	}

	session.ImageBytes = imageBytes
	session.Stage = StageWaitPrompt
	return c.Send("✅ Image received!\n\n📝 Now send the prompt.")
}

func (bot *Bot) handleIncomingText(c tele.Context) error {
	session, ok := bot.Sessions.Get(c.Sender().ID)
	if !ok {
		return nil
	}

	switch session.Stage {
	case StageWaitImage:
		return c.Send("❌ Please send an image first.")
	case StageWaitPrompt:
		session.Prompt = c.Text()
		session.Stage = StageWaitConfirm

		markup := &tele.ReplyMarkup{}
		markup.Inline(markup.Row(
			markup.Data(btnSizeSquare.Text, btnSizeSquare.Unique),
			markup.Data(btnSizeWide.Text, btnSizeWide.Unique),
		))
		return c.Send(fmt.Sprintf(
			"📋 Check the parameters:\n\n"+
				"📝 Prompt: %s\n"+
				"🎨 Model: %s\n"+
				"💳 Cost: %d credits\n\n"+
				"Choose the image size:",
			session.Prompt, defaultModel, bot.GenerationCost,
		), markup)
	default:
		return nil
	}
}

func (bot *Bot) handleConfirm(c tele.Context, size string) error {
	ctx := context.Background()
	userID := c.Sender().ID

	session, ok := bot.Sessions.Get(userID)
	if !ok || session.Stage != StageWaitConfirm || len(session.ImageBytes) == 0 || session.Prompt == "" {
		bot.Sessions.Clear(userID)
		return c.Respond(&tele.CallbackResponse{Text: "❌ Session expired, start over with /photo", ShowAlert: true})
	}

	// Submit first: the provider-issued request id keys the task row that
	// commits atomically with the debit.
	requestID, err := bot.Gen.Submit(ctx, &genapi.SubmitRequest{
		ImageBytes: session.ImageBytes,
		Prompt:     session.Prompt,
		Model:      defaultModel,
		Size:       size,
	})
	if err != nil {
		slog.Error("failed to submit generation", "user_id", userID, "error", err)
		bot.Sessions.Clear(userID)
		if err := c.Edit("❌ Could not start the generation. Nothing was charged, try again later."); err != nil {
			return err
		}
		return c.Respond(&tele.CallbackResponse{Text: "Generation failed", ShowAlert: true})
	}

	_, err = bot.Store.DebitForTask(ctx, &models.GenerationTask{
		RequestID: requestID,
		UserID:    userID,
		ChatID:    session.ChatID,
		Prompt:    session.Prompt,
		Model:     defaultModel,
		Size:      size,
		Cost:      bot.GenerationCost,
	})
	if err != nil {
		bot.Sessions.Clear(userID)
		if errors.Is(err, storage.ErrInsufficientFunds) {
			if err := c.Edit(fmt.Sprintf("❌ Not enough credits: need %d. Use /buy to top up.", bot.GenerationCost)); err != nil {
				return err
			}
			return c.Respond(&tele.CallbackResponse{Text: "Not enough credits", ShowAlert: true})
		}
		slog.Error("failed to debit for task", "user_id", userID, "request_id", requestID, "error", err)
		if err := c.Edit("❌ Something went wrong, please try again."); err != nil {
			return err
		}
		return c.Respond(&tele.CallbackResponse{Text: "Error", ShowAlert: true})
	}

	bot.Sessions.Clear(userID)

	remaining := int64(-1)
	if account, err := bot.Store.GetAccount(ctx, userID); err == nil {
		remaining = account.Balance
	}
	text := fmt.Sprintf("⏳ Generation started!\n\n💳 Charged: %d credits", bot.GenerationCost)
	if remaining >= 0 {
		text = fmt.Sprintf("%s\n💰 Credits left: %d", text, remaining)
	}
	if err := c.Edit(text + "\n\n🔄 You will get the result here."); err != nil {
		return err
	}
	return c.Respond(&tele.CallbackResponse{Text: "Generation started!"})
}

func (bot *Bot) handleBuy(c tele.Context) error {
	markup := &tele.ReplyMarkup{}
	text := "💰 Available plans:\n\n"

	var rows []tele.Row
	for _, amount := range payments.PlanAmounts() {
		credits := payments.Plans[amount]
		text += fmt.Sprintf("💳 %d ₽ — %d credits\n", amount, credits)
		rows = append(rows, markup.Row(markup.Data(
			fmt.Sprintf("%d ₽ (%d credits)", amount, credits),
			btnBuyPlan.Unique,
			strconv.FormatInt(amount, 10),
		)))
	}
	markup.Inline(rows...)

	return c.Send(text+"\nChoose a plan:", markup)
}

func (bot *Bot) handlePlanSelected(c tele.Context) error {
	ctx := context.Background()
	userID := c.Sender().ID

	amount, err := strconv.ParseInt(c.Data(), 10, 64)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Invalid plan", ShowAlert: true})
	}
	credits, ok := payments.CreditsFor(amount)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Invalid plan", ShowAlert: true})
	}

	paymentID, paymentURL, err := bot.Pay.CreatePayment(ctx, userID, amount)
	if err != nil {
		slog.Error("failed to create payment", "user_id", userID, "amount", amount, "error", err)
		return c.Respond(&tele.CallbackResponse{Text: "❌ Could not create the payment", ShowAlert: true})
	}

	// The pending row must exist before the user can pay: the webhook
	// rejects callbacks for payments it has never seen.
	if _, err := bot.Store.CreatePayment(ctx, &models.Payment{
		PaymentID: paymentID,
		UserID:    userID,
		Amount:    amount,
		Credits:   credits,
	}); err != nil {
		slog.Error("failed to record payment", "user_id", userID, "payment_id", paymentID, "error", err)
		return c.Respond(&tele.CallbackResponse{Text: "❌ Could not create the payment", ShowAlert: true})
	}

	if err := c.Edit(fmt.Sprintf(
		"💳 Follow the link to pay:\n\n"+
			"💰 Amount: %d ₽\n"+
			"🎁 Credits: %d\n\n"+
			"🔗 %s",
		amount, credits, paymentURL,
	)); err != nil {
		return err
	}
	return c.Respond(&tele.CallbackResponse{Text: "Payment link sent"})
}
