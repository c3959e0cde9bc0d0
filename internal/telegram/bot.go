package telegram

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"w3bbot/internal/intake"
	"w3bbot/internal/models"
	"w3bbot/internal/moderation"
	"w3bbot/internal/session"
	"w3bbot/internal/storage"
)

// Bot owns the long-polling update loop and routes commands, messages and
// callbacks to the intake machine, the moderation coordinator and the admin
// menus. Updates for one subject are serialized; distinct subjects run on
// their own goroutines.
type Bot struct {
	api      *tgbotapi.BotAPI
	tr       Transport
	machine  *intake.Machine
	registry *session.Registry
	store    *storage.Store
	mod      *moderation.Coordinator
	log      *zap.Logger

	mu    sync.Mutex
	locks map[int64]*subjectLock
}

// subjectLock serializes one subject's events. The reference count lets the
// map entry be pruned once no event holds or waits for the lock.
type subjectLock struct {
	sync.Mutex
	refs int
}

func New(api *tgbotapi.BotAPI, tr Transport, machine *intake.Machine, reg *session.Registry, store *storage.Store, mod *moderation.Coordinator, log *zap.Logger) *Bot {
	return &Bot{
		api:      api,
		tr:       tr,
		machine:  machine,
		registry: reg,
		store:    store,
		mod:      mod,
		log:      log,
		locks:    make(map[int64]*subjectLock),
	}
}

func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{tgbotapi.UpdateTypeMessage, tgbotapi.UpdateTypeCallbackQuery}

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("bot update loop started", zap.String("account", b.api.Self.UserName))

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		go b.process(ctx, update)
	}
}

// process handles one update to completion under the subject's lock. Two
// overlapping events for the same telegram id never interleave their
// session reads and writes; distinct subjects proceed concurrently.
func (b *Bot) process(ctx context.Context, update tgbotapi.Update) {
	subject, ok := subjectOf(update)
	if !ok {
		return
	}
	lock := b.acquireSubject(subject)
	defer b.releaseSubject(subject, lock)
	b.dispatch(ctx, update)
}

func (b *Bot) acquireSubject(subject int64) *subjectLock {
	b.mu.Lock()
	l, ok := b.locks[subject]
	if !ok {
		l = &subjectLock{}
		b.locks[subject] = l
	}
	l.refs++
	b.mu.Unlock()

	l.Lock()
	return l
}

func (b *Bot) releaseSubject(subject int64, l *subjectLock) {
	l.Unlock()

	b.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(b.locks, subject)
	}
	b.mu.Unlock()
}

func subjectOf(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, true
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID, true
	}
	return 0, false
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.handleStart(ctx, msg)
		case "applications":
			b.handleApplicationsCommand(ctx, msg.Chat.ID, msg.From.ID)
		}
		return
	}

	sess, ok := b.registry.Get(msg.From.ID)
	if !ok {
		return
	}

	var ev intake.Event
	switch {
	case msg.Contact != nil:
		ev = intake.Contact{Phone: msg.Contact.PhoneNumber}
	case msg.Text != "":
		ev = intake.Text{Body: msg.Text}
	default:
		return
	}
	b.runEffects(ctx, msg.Chat.ID, msg.From.ID, sess, b.machine.Transition(sess, ev))
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if sess, ok := b.registry.Get(userID); ok {
		b.registry.Remove(userID)
		notice := "Предыдущая заявка отменена. Начинаем новую заявку."
		if sess.Draft.Language == "en" {
			notice = "Your previous application has been cancelled. Starting a new one."
		}
		b.send(chatID, notice)
	}

	isAdmin, err := b.store.IsAdmin(ctx, userID)
	if err != nil {
		b.log.Error("admin check failed", zap.Int64("user", userID), zap.Error(err))
	}
	if isAdmin {
		b.sendAdminMenu(chatID, msg.From.FirstName)
		return
	}

	b.sendPrompt(chatID, intake.Prompt{
		Text: "Выберите язык / Choose your language",
		Inline: [][]intake.Button{{
			{Label: "🇷🇺 Русский", Code: "set_lang_ru"},
			{Label: "🇬🇧 English", Code: "set_lang_en"},
		}},
	})
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	data := cb.Data
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID

	// Decisions answer their own callback with a decision-specific toast.
	if strings.HasPrefix(data, "approve_") || strings.HasPrefix(data, "reject_") {
		b.mod.Decide(ctx, moderation.DecisionEvent{
			ActorID:     userID,
			CallbackID:  cb.ID,
			ChatID:      chatID,
			MessageID:   cb.Message.MessageID,
			MessageText: cb.Message.Text,
			Data:        data,
		})
		return
	}

	if err := b.tr.AnswerCallback(cb.ID, ""); err != nil {
		b.log.Warn("failed to answer callback", zap.Error(err))
	}

	switch {
	case data == "set_lang_ru":
		b.startApplication(ctx, chatID, cb.From, "ru")
	case data == "set_lang_en":
		b.startApplication(ctx, chatID, cb.From, "en")
	case data == "start_application":
		b.startApplication(ctx, chatID, cb.From, languageOf(cb.From))
	case data == "admin_view_applications":
		b.handleAdminViewApplications(ctx, chatID, userID)
	case data == "admin_stats":
		b.handleAdminStats(ctx, chatID, userID)
	case data == "admin_back":
		b.handleAdminBack(ctx, chatID, userID)
	case data == "admin_exit":
		b.handleAdminExit(chatID)
	case strings.HasPrefix(data, "view_app_"):
		b.handleViewApplication(ctx, chatID, userID, data)
	default:
		sess, ok := b.registry.Get(userID)
		if !ok {
			return
		}
		b.runEffects(ctx, chatID, userID, sess, b.machine.Transition(sess, intake.Selection{Code: data}))
	}
}

func (b *Bot) startApplication(ctx context.Context, chatID int64, from *tgbotapi.User, lang string) {
	if sess, ok := b.registry.Get(from.ID); ok {
		notice := "Вы уже заполняете заявку. Пожалуйста, завершите текущую заявку или нажмите /start для начала новой."
		if sess.Draft.Language == "en" {
			notice = "You are already filling out an application. Please finish the current one or press /start to begin a new one."
		}
		b.send(chatID, notice)
		return
	}

	sess, effects := b.machine.Start(models.Draft{
		TelegramID: from.ID,
		Language:   lang,
		Username:   from.UserName,
		FirstName:  from.FirstName,
		LastName:   from.LastName,
	})
	b.registry.StartOrReplace(from.ID, sess)
	b.runEffects(ctx, chatID, from.ID, sess, effects)
}

// runEffects executes the machine's effects in order. CheckMembership is the
// suspension point: the transport query happens here and its result is fed
// back into the machine.
func (b *Bot) runEffects(ctx context.Context, chatID, userID int64, sess *intake.Session, effects []intake.Effect) {
	for _, eff := range effects {
		switch e := eff.(type) {
		case intake.SendPrompt:
			b.sendPrompt(chatID, e.Prompt)
		case intake.CheckMembership:
			result := b.checkMembership(userID)
			b.runEffects(ctx, chatID, userID, sess, b.machine.ResolveMembership(sess, result))
		case intake.Submit:
			if err := b.mod.Submit(ctx, sess); err == nil {
				b.registry.Remove(userID)
			}
		case intake.Decline:
			b.send(chatID, e.Text)
			b.registry.Remove(userID)
		}
	}
}

func (b *Bot) checkMembership(userID int64) intake.MembershipResult {
	status, err := b.tr.ChatMemberStatus(b.machine.Channel, userID)
	if err != nil {
		b.log.Warn("membership check failed", zap.Int64("user", userID), zap.Error(err))
		return intake.CheckFailed
	}
	switch status {
	case "member", "administrator", "creator":
		return intake.Member
	default:
		return intake.NotMember
	}
}

func languageOf(from *tgbotapi.User) string {
	if strings.HasPrefix(strings.ToLower(from.LanguageCode), "en") {
		return "en"
	}
	return "ru"
}

func (b *Bot) send(chatID int64, text string) {
	if err := b.tr.SendText(chatID, text); err != nil {
		b.log.Warn("failed to send message", zap.Int64("chat", chatID), zap.Error(err))
	}
}

func (b *Bot) sendPrompt(chatID int64, p intake.Prompt) {
	if err := b.tr.SendPrompt(chatID, p); err != nil {
		b.log.Warn("failed to send message", zap.Int64("chat", chatID), zap.Error(err))
	}
}
