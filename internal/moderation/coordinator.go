// Package moderation turns submitted drafts into persisted applications and
// processes operator decisions on them.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"w3bbot/internal/intake"
	"w3bbot/internal/models"
	"w3bbot/internal/storage"
)

// Transport is the slice of chat capability the coordinator needs. The
// concrete implementation lives in internal/telegram.
type Transport interface {
	SendText(chatID int64, text string) error
	SendPrompt(chatID int64, p intake.Prompt) error
	AnswerCallback(callbackID, text string) error
	EditText(chatID int64, messageID int, text string) error
	ClearButtons(chatID int64, messageID int) error
}

// Mirror replicates application rows to the spreadsheet. Every call is
// best-effort: the coordinator logs failures and moves on.
type Mirror interface {
	RecordApplication(ctx context.Context, app *models.Application) error
	RecordStatusChange(ctx context.Context, id uint, status models.ApplicationStatus) error
}

type Coordinator struct {
	store  *storage.Store
	mirror Mirror
	tr     Transport
	log    *zap.Logger
}

func NewCoordinator(store *storage.Store, mirror Mirror, tr Transport, log *zap.Logger) *Coordinator {
	return &Coordinator{store: store, mirror: mirror, tr: tr, log: log}
}

// Submit persists the draft, confirms to the submitter and fans the new
// application out to every admin. A non-nil error means the application was
// not persisted; the caller keeps the session so the user can retry.
func (c *Coordinator) Submit(ctx context.Context, sess *intake.Session) error {
	d := sess.Draft
	id, err := c.store.CreateApplication(ctx, d)
	if err != nil {
		c.log.Error("failed to persist application", zap.Int64("telegram_id", d.TelegramID), zap.Error(err))
		c.sendText(d.TelegramID, submitFailedText(d.Language))
		return err
	}

	app, err := c.store.GetApplication(ctx, id)
	if err != nil {
		// The row exists; fall back to a snapshot built from the draft.
		c.log.Warn("could not reload persisted application", zap.Uint("id", id), zap.Error(err))
		app = draftSnapshot(id, d)
	}

	go func() {
		if err := c.mirror.RecordApplication(context.Background(), app); err != nil {
			c.log.Warn("sheets mirror failed for new application", zap.Uint("id", id), zap.Error(err))
		}
	}()

	c.sendText(d.TelegramID, submittedText(d.Language, id))
	c.notifyAdmins(ctx, app)
	return nil
}

// DecisionEvent is one operator click on an approve_/reject_ button.
type DecisionEvent struct {
	ActorID     int64
	CallbackID  string
	ChatID      int64  // chat holding the operator's notification message
	MessageID   int    // the notification message itself
	MessageText string // its current text, for the decision-marker rewrite
	Data        string // approve_{id} or reject_{id}
}

// Decide applies an operator decision. The persisted status is the single
// source of truth; failures editing the operator's message never undo it.
func (c *Coordinator) Decide(ctx context.Context, ev DecisionEvent) {
	status, id, ok := parseDecision(ev.Data)
	if !ok {
		c.ack(ev.CallbackID, "")
		return
	}

	authorized, err := c.store.IsAdmin(ctx, ev.ActorID)
	if err != nil {
		c.log.Error("admin check failed", zap.Int64("actor", ev.ActorID), zap.Error(err))
	}
	if !authorized {
		c.ack(ev.CallbackID, deniedText)
		return
	}

	app, err := c.store.GetApplication(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.log.Error("failed to load application", zap.Uint("id", id), zap.Error(err))
		} else {
			c.log.Warn("decision on missing application", zap.Uint("id", id), zap.Int64("actor", ev.ActorID))
		}
		c.ack(ev.CallbackID, "")
		return
	}

	if _, err := c.store.UpdateApplicationStatus(ctx, id, status, ""); err != nil {
		c.log.Error("failed to update application status", zap.Uint("id", id), zap.Error(err))
		c.ack(ev.CallbackID, "")
		return
	}

	go func() {
		if err := c.mirror.RecordStatusChange(context.Background(), id, status); err != nil {
			c.log.Warn("sheets mirror failed for status change", zap.Uint("id", id), zap.Error(err))
		}
	}()

	c.sendText(app.TelegramID, outcomeText(app.Language, status))
	c.ack(ev.CallbackID, ackText(status))
	c.rewriteOperatorMessage(ev, status)
}

// rewriteOperatorMessage appends the decision marker and drops the action
// buttons. Fallback chain: full rewrite, then buttons only, then give up.
func (c *Coordinator) rewriteOperatorMessage(ev DecisionEvent, status models.ApplicationStatus) {
	marker := "✅ Вы одобрили эту заявку"
	if status == models.StatusRejected {
		marker = "❌ Вы отклонили эту заявку"
	}
	if err := c.tr.EditText(ev.ChatID, ev.MessageID, ev.MessageText+"\n\n"+marker); err != nil {
		c.log.Warn("failed to rewrite operator message", zap.Int("message_id", ev.MessageID), zap.Error(err))
		if err := c.tr.ClearButtons(ev.ChatID, ev.MessageID); err != nil {
			c.log.Warn("failed to strip operator keyboard", zap.Int("message_id", ev.MessageID), zap.Error(err))
		}
	}
}

// notifyAdmins pushes the application snapshot with approve/reject buttons
// to every admin. A failure for one admin never aborts delivery to the rest.
func (c *Coordinator) notifyAdmins(ctx context.Context, app *models.Application) {
	admins, err := c.store.ListAdmins(ctx)
	if err != nil {
		c.log.Error("failed to list admins", zap.Error(err))
		return
	}
	if len(admins) == 0 {
		c.log.Warn("no admins configured, application will sit unreviewed", zap.Uint("id", app.ID))
		return
	}

	prompt := intake.Prompt{
		Text: "🔔 Новая заявка #" + strconv.FormatUint(uint64(app.ID), 10) + "\n\n" + FormatCard(app),
		Inline: [][]intake.Button{{
			{Label: "✅ Одобрить", Code: fmt.Sprintf("approve_%d", app.ID)},
			{Label: "❌ Отклонить", Code: fmt.Sprintf("reject_%d", app.ID)},
		}},
	}
	for _, admin := range admins {
		if err := c.tr.SendPrompt(admin.TelegramID, prompt); err != nil {
			c.log.Warn("failed to notify admin", zap.Int64("admin", admin.TelegramID), zap.Error(err))
		}
	}
}

func (c *Coordinator) sendText(chatID int64, text string) {
	if err := c.tr.SendText(chatID, text); err != nil {
		c.log.Warn("failed to send message", zap.Int64("chat", chatID), zap.Error(err))
	}
}

func (c *Coordinator) ack(callbackID, text string) {
	if err := c.tr.AnswerCallback(callbackID, text); err != nil {
		c.log.Warn("failed to answer callback", zap.Error(err))
	}
}

func parseDecision(data string) (models.ApplicationStatus, uint, bool) {
	var status models.ApplicationStatus
	var raw string
	switch {
	case strings.HasPrefix(data, "approve_"):
		status, raw = models.StatusApproved, strings.TrimPrefix(data, "approve_")
	case strings.HasPrefix(data, "reject_"):
		status, raw = models.StatusRejected, strings.TrimPrefix(data, "reject_")
	default:
		return "", 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return "", 0, false
	}
	return status, uint(id), true
}

func draftSnapshot(id uint, d models.Draft) *models.Application {
	return &models.Application{
		ID:                  id,
		TelegramID:          d.TelegramID,
		Username:            d.Username,
		FirstName:           d.FirstName,
		LastName:            d.LastName,
		PhoneNumber:         d.PhoneNumber,
		Age:                 d.Age,
		Occupation:          d.Occupation,
		InterestTopic:       d.InterestTopic,
		Source:              d.Source,
		Language:            d.Language,
		SubscribedToChannel: d.Subscribed.Bool(),
		RulesAgreed:         d.RulesAgreed,
		Status:              models.StatusPending,
		CreatedAt:           time.Now(),
	}
}
