package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"w3bbot/internal/intake"
	"w3bbot/internal/models"
	"w3bbot/internal/moderation"
	"w3bbot/internal/storage"
)

const adminDeniedText = "У вас нет прав для доступа к админ панели."

func (b *Bot) ensureAdmin(ctx context.Context, chatID, userID int64) bool {
	ok, err := b.store.IsAdmin(ctx, userID)
	if err != nil {
		b.log.Error("admin check failed", zap.Int64("user", userID), zap.Error(err))
	}
	if !ok {
		b.send(chatID, adminDeniedText)
	}
	return ok
}

func (b *Bot) sendAdminMenu(chatID int64, firstName string) {
	greeting := "Привет!\n\nТы в админ-панели"
	if firstName != "" {
		greeting = fmt.Sprintf("Привет, %s!\n\nТы в админ-панели", firstName)
	}
	b.sendPrompt(chatID, intake.Prompt{
		Text: greeting,
		Inline: [][]intake.Button{
			{{Label: "📋 Осмотреть заявки", Code: "admin_view_applications"}},
			{{Label: "📊 Статистика", Code: "admin_stats"}},
			{{Label: "🚪 Выйти с админ панели", Code: "admin_exit"}},
		},
	})
}

func (b *Bot) handleAdminBack(ctx context.Context, chatID, userID int64) {
	if !b.ensureAdmin(ctx, chatID, userID) {
		return
	}
	b.sendAdminMenu(chatID, "")
}

func (b *Bot) handleAdminExit(chatID int64) {
	b.sendPrompt(chatID, intake.Prompt{
		Text: "Привет!\n\n" +
			"Ты уже на первом шагу для вступления в W3B сообщество\n\n" +
			"Заполни заявку и мы ответим в течение суток",
		Inline: [][]intake.Button{{
			{Label: "📝 Подать заявку", Code: "start_application"},
		}},
	})
}

func (b *Bot) handleAdminViewApplications(ctx context.Context, chatID, userID int64) {
	if !b.ensureAdmin(ctx, chatID, userID) {
		return
	}

	apps, err := b.store.ListApplications(ctx)
	if err != nil {
		b.log.Error("failed to list applications", zap.Error(err))
		b.send(chatID, "Произошла ошибка при получении заявок.")
		return
	}

	if len(apps) == 0 {
		b.sendPrompt(chatID, intake.Prompt{
			Text:   "📋 Заявок пока нет.\n\nНовые заявки появятся здесь.",
			Inline: [][]intake.Button{{{Label: "🔙 Назад", Code: "admin_back"}}},
		})
		return
	}

	recent := apps
	if len(recent) > 5 {
		recent = recent[:5]
	}

	var text strings.Builder
	text.WriteString("📋 Последние заявки:\n\n")
	for i, app := range recent {
		fmt.Fprintf(&text, "%d. #%d - %s - %s\n", i+1, app.ID, app.FirstName, moderation.StatusLabel(app.Status))
	}
	if len(apps) > 5 {
		fmt.Fprintf(&text, "\n... и еще %d заявок", len(apps)-5)
	}

	var rows [][]intake.Button
	for _, app := range recent {
		rows = append(rows, []intake.Button{{
			Label: fmt.Sprintf("👁️ Заявка #%d", app.ID),
			Code:  fmt.Sprintf("view_app_%d", app.ID),
		}})
	}
	rows = append(rows,
		[]intake.Button{{Label: "📊 Статистика", Code: "admin_stats"}},
		[]intake.Button{{Label: "🔙 Назад", Code: "admin_back"}},
	)

	b.sendPrompt(chatID, intake.Prompt{Text: text.String(), Inline: rows})
}

func (b *Bot) handleAdminStats(ctx context.Context, chatID, userID int64) {
	if !b.ensureAdmin(ctx, chatID, userID) {
		return
	}

	stats, err := b.store.CountByStatus(ctx)
	if err != nil {
		b.log.Error("failed to compute stats", zap.Error(err))
		b.send(chatID, "Произошла ошибка при получении статистики.")
		return
	}

	text := fmt.Sprintf("📊 Статистика заявок:\n\n"+
		"📋 Всего заявок: %d\n"+
		"⏳ Ожидают: %d\n"+
		"✅ Одобрены: %d\n"+
		"❌ Отклонены: %d",
		stats.Total, stats.Pending, stats.Approved, stats.Rejected)

	b.sendPrompt(chatID, intake.Prompt{
		Text: text,
		Inline: [][]intake.Button{
			{{Label: "📋 Заявки", Code: "admin_view_applications"}},
			{{Label: "🔙 Назад", Code: "admin_back"}},
		},
	})
}

func (b *Bot) handleViewApplication(ctx context.Context, chatID, userID int64, data string) {
	if !b.ensureAdmin(ctx, chatID, userID) {
		return
	}

	raw := strings.TrimPrefix(data, "view_app_")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return
	}

	app, err := b.store.GetApplication(ctx, uint(id))
	if err != nil {
		if err == storage.ErrNotFound {
			b.send(chatID, "Заявка не найдена.")
			return
		}
		b.log.Error("failed to load application", zap.Uint64("id", id), zap.Error(err))
		b.send(chatID, "Произошла ошибка при получении заявки.")
		return
	}

	text := fmt.Sprintf("📋 Заявка #%d\n\n%s\n📊 Статус: %s",
		app.ID, moderation.FormatCard(app), moderation.StatusLabel(app.Status))

	var rows [][]intake.Button
	if app.Status == models.StatusPending {
		rows = append(rows, []intake.Button{
			{Label: "✅ Одобрить", Code: fmt.Sprintf("approve_%d", app.ID)},
			{Label: "❌ Отклонить", Code: fmt.Sprintf("reject_%d", app.ID)},
		})
	}
	rows = append(rows, []intake.Button{{Label: "🔙 Назад к заявкам", Code: "admin_view_applications"}})

	b.sendPrompt(chatID, intake.Prompt{Text: text, Inline: rows})
}

func (b *Bot) handleApplicationsCommand(ctx context.Context, chatID, userID int64) {
	ok, err := b.store.IsAdmin(ctx, userID)
	if err != nil {
		b.log.Error("admin check failed", zap.Int64("user", userID), zap.Error(err))
	}
	if !ok {
		b.send(chatID, "У вас нет прав для выполнения этой команды.")
		return
	}

	apps, err := b.store.ListApplications(ctx)
	if err != nil {
		b.log.Error("failed to list applications", zap.Error(err))
		b.send(chatID, "Произошла ошибка при получении заявок.")
		return
	}
	if len(apps) == 0 {
		b.send(chatID, "Заявок пока нет.")
		return
	}

	var text strings.Builder
	text.WriteString("📋 Все заявки:\n\n")
	for _, app := range apps {
		name := app.FirstName
		if name == "" {
			name = "—"
		}
		fmt.Fprintf(&text, "#%d - %s - %s\n", app.ID, name, moderation.StatusLabel(app.Status))
	}
	b.send(chatID, text.String())
}
