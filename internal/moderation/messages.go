package moderation

import (
	"fmt"
	"strings"

	"w3bbot/internal/models"
)

const deniedText = "У вас нет прав для выполнения этого действия."

func submittedText(lang string, id uint) string {
	if lang == "en" {
		return fmt.Sprintf("✅ Application submitted!\n\n"+
			"Thank you for your interest in our W3B community. We will review your application "+
			"and get back to you shortly.\n\n"+
			"Application number: #%d", id)
	}
	return fmt.Sprintf("✅ Заявка успешно отправлена!\n\n"+
		"Спасибо за интерес к нашему W3B сообществу. Мы рассмотрим вашу заявку "+
		"и свяжемся с вами в ближайшее время.\n\n"+
		"Номер заявки: #%d", id)
}

func submitFailedText(lang string) string {
	if lang == "en" {
		return "❌ Something went wrong while submitting your application. Please try again or contact support."
	}
	return "❌ Произошла ошибка при отправке заявки. Попробуйте еще раз или обратитесь в поддержку."
}

func outcomeText(lang string, status models.ApplicationStatus) string {
	english := strings.HasPrefix(strings.ToLower(lang), "en")
	if status == models.StatusApproved {
		if english {
			return "Congratulations, your application has been approved ✅\n\n" +
				"Thank you for being with us, see you at the event 😎\n\n" +
				"If you have any questions, just write to us 🤝"
		}
		return "Поздравляем, Ваша заявка одобрена ✅\n\n" +
			"Спасибо, что Вы с нами и до встречи на мероприятии 😎\n\n" +
			"Если остались вопросы - пишите, с радостью ответим 🤝"
	}
	if english {
		return "😔 Unfortunately, your application has been rejected\n\n" +
			"Thank you for your interest in our W3B community. " +
			"Perhaps there will be an opportunity to join in the future.\n\n" +
			"If you have any questions, you can always contact support."
	}
	return "😔 К сожалению, ваша заявка была отклонена\n\n" +
		"Спасибо за интерес к нашему W3B сообществу. " +
		"Возможно, в будущем у нас будет возможность для участия.\n\n" +
		"Если у вас есть вопросы, вы всегда можете обратиться в поддержку."
}

func ackText(status models.ApplicationStatus) string {
	if status == models.StatusApproved {
		return "Заявка одобрена!"
	}
	return "Заявка отклонена!"
}

// FormatCard renders the application snapshot shown to admins, both in the
// fan-out notification and in the view_app_{id} card.
func FormatCard(app *models.Application) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👤 Клиент: %s %s\n", orDash(app.FirstName), app.LastName)
	fmt.Fprintf(&b, "📱 Username: %s\n", orDash(app.Username))
	fmt.Fprintf(&b, "📞 Телефон: %s\n", orDash(app.PhoneNumber))
	fmt.Fprintf(&b, "🎂 Возраст: %s\n", orDash(app.Age))
	fmt.Fprintf(&b, "💼 Род деятельности: %s\n", orDash(app.Occupation))
	fmt.Fprintf(&b, "🎯 Интересующая тема: %s\n", orDash(app.InterestTopic))
	fmt.Fprintf(&b, "📢 Откуда узнали: %s\n", orDash(app.Source))
	fmt.Fprintf(&b, "🌍 Язык: %s\n", orDash(app.Language))
	fmt.Fprintf(&b, "✅ Согласие с правилами: %s\n", yesNo(app.RulesAgreed))
	fmt.Fprintf(&b, "📅 Дата: %s", app.CreatedAt.Format("02.01.2006 15:04"))
	return b.String()
}

// StatusLabel is the human form of a status used in admin lists and cards.
func StatusLabel(status models.ApplicationStatus) string {
	switch status {
	case models.StatusApproved:
		return "✅ Одобрена"
	case models.StatusRejected:
		return "❌ Отклонена"
	default:
		return "⏳ Ожидает"
	}
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func yesNo(v bool) string {
	if v {
		return "Да"
	}
	return "Нет"
}
