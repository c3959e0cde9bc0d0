package intake

import "fmt"

// Button is a transport-neutral keyboard button. Exactly one of Code, URL or
// RequestContact is meaningful.
type Button struct {
	Label          string
	Code           string
	URL            string
	RequestContact bool
}

// Prompt is a transport-neutral outbound message.
type Prompt struct {
	Text        string
	Inline      [][]Button // inline keyboard rows
	Reply       [][]Button // reply keyboard rows (contact request)
	RemoveReply bool       // drop a previously shown reply keyboard
}

func row(bs ...Button) []Button { return bs }

func usernamePrompt(lang, prefill string) Prompt {
	intro := "📋 Давайте заполним заявку.\n\n"
	if lang == "en" {
		intro = "📋 Let's fill out the application.\n\n"
	}
	if prefill != "" {
		text := fmt.Sprintf("Шаг 1/7: Укажите свой @user\n\nВаш username: %s\n\nЭто правильно?", prefill)
		confirm := "✅ Да, верно"
		if lang == "en" {
			text = fmt.Sprintf("Step 1/7: Your username: %s\n\nIs this correct?", prefill)
			confirm = "✅ Yes, correct"
		}
		return Prompt{
			Text:   intro + text,
			Inline: [][]Button{row(Button{Label: confirm, Code: CodeConfirmUsername})},
		}
	}
	text := "Шаг 1/7: Укажите свой @user"
	if lang == "en" {
		text = "Step 1/7: Please enter your @username"
	}
	return Prompt{Text: intro + text}
}

func phonePrompt(lang string) Prompt {
	text := "Шаг 2/7: Поделитесь номером телефона"
	label := "📱 Поделиться номером телефона"
	if lang == "en" {
		text = "Step 2/7: Please share your phone number"
		label = "📱 Share Phone Number"
	}
	return Prompt{
		Text:  text,
		Reply: [][]Button{row(Button{Label: label, RequestContact: true})},
	}
}

func phoneReceivedPrompt(lang string) Prompt {
	text := "✅ Номер телефона получен"
	if lang == "en" {
		text = "✅ Phone number received"
	}
	return Prompt{Text: text, RemoveReply: true}
}

func namePrompt(lang, prefill string) Prompt {
	text := "Шаг 3/7: Имя"
	if lang == "en" {
		text = "Step 3/7: What is your name?"
	}
	if prefill == "" {
		return Prompt{Text: text}
	}
	body := fmt.Sprintf("%s\n\nВаше имя: %s\n\nЭто правильно?", text, prefill)
	confirm, edit := "✅ Да, верно", "✏️ Ввести другое"
	if lang == "en" {
		body = fmt.Sprintf("%s\n\nYour name: %s\n\nIs this correct?", text, prefill)
		confirm, edit = "✅ Yes, correct", "✏️ Enter another"
	}
	return Prompt{
		Text: body,
		Inline: [][]Button{row(
			Button{Label: confirm, Code: CodeConfirmName},
			Button{Label: edit, Code: CodeEnterName},
		)},
	}
}

func enterNamePrompt(lang string) Prompt {
	text := "Введите ваше имя:"
	if lang == "en" {
		text = "Please enter your name:"
	}
	return Prompt{Text: text}
}

func agePrompt(lang string) Prompt {
	text := "Шаг 4/7: Возраст"
	if lang == "en" {
		text = "Step 4/7: What is your age?"
	}
	return Prompt{
		Text: text,
		Inline: [][]Button{
			row(Button{Label: "16-18", Code: "age_16-18"}),
			row(Button{Label: "18-25", Code: "age_18-25"}),
			row(Button{Label: "25-35", Code: "age_25-35"}),
			row(Button{Label: "35+", Code: "age_35+"}),
		},
	}
}

func occupationPrompt(lang string) Prompt {
	text := "Шаг 5/7: Род деятельности"
	if lang == "en" {
		text = "Step 5/7: What is your occupation?"
	}
	return Prompt{
		Text: text,
		Inline: [][]Button{
			row(Button{Label: "Бизнесмен/предприниматель Web2", Code: "occupation_web2"}),
			row(Button{Label: "Бизнесмен/предприниматель Web3", Code: "occupation_web3"}),
			row(Button{Label: "Инвестор", Code: "occupation_investor"}),
			row(Button{Label: "Разработчик", Code: "occupation_developer"}),
			row(Button{Label: "Крипто-энтузиаст", Code: "occupation_crypto"}),
			row(Button{Label: "Студент", Code: "occupation_student"}),
			row(Button{Label: "Иное", Code: "occupation_other"}),
		},
	}
}

func topicPrompt(lang string) Prompt {
	text := "Шаг 6/7: Какая тема для вас наиболее интересна"
	if lang == "en" {
		text = "Step 6/7: What topic interests you most?"
	}
	return Prompt{
		Text: text,
		Inline: [][]Button{
			row(Button{Label: "Web3 инструменты для бизнеса", Code: "topic_web3_business"}),
			row(Button{Label: "Крипта", Code: "topic_crypto"}),
			row(Button{Label: "AI", Code: "topic_ai"}),
			row(Button{Label: "Все", Code: "topic_all"}),
		},
	}
}

func sourcePrompt(lang string) Prompt {
	text := "Шаг 7/7: Откуда узнали о мероприятии"
	if lang == "en" {
		text = "Step 7/7: Where did you learn about the event?"
	}
	return Prompt{
		Text: text,
		Inline: [][]Button{
			row(Button{Label: "Социальные сети", Code: "source_social"}),
			row(Button{Label: "Рекомендация друга", Code: "source_friend"}),
			row(Button{Label: "Реклама", Code: "source_ads"}),
			row(Button{Label: "Поиск в интернете", Code: "source_search"}),
			row(Button{Label: "Другое", Code: CodeSourceOther}),
		},
	}
}

func sourceOtherPrompt(lang string) Prompt {
	text := "Укажите, откуда вы узнали о мероприятии:"
	if lang == "en" {
		text = "Please specify where you learned about the event:"
	}
	return Prompt{Text: text}
}

func (m *Machine) subscribePrompt(lang string) Prompt {
	title := "📢 Подпишитесь на наш канал:"
	sub := fmt.Sprintf("📢 Подписаться на @%s", m.Channel)
	done := "✅ Я подписался"
	if lang == "en" {
		title = "📢 Subscribe to our channel:"
		sub = fmt.Sprintf("📢 Subscribe to @%s", m.Channel)
		done = "✅ I have subscribed"
	}
	return Prompt{
		Text: title,
		Inline: [][]Button{
			row(Button{Label: sub, URL: "https://t.me/" + m.Channel}),
			row(Button{Label: done, Code: CodeSubscribed}),
		},
	}
}

func (m *Machine) notSubscribedPrompt(lang string) Prompt {
	p := m.subscribePrompt(lang)
	if lang == "en" {
		p.Text = "It looks like you have not subscribed to the channel yet. Please subscribe and press the button below."
	} else {
		p.Text = "Похоже, вы еще не подписаны на канал. Пожалуйста, подпишитесь и нажмите кнопку ниже."
	}
	return p
}

func (m *Machine) rulesPrompt(lang string) Prompt {
	text := fmt.Sprintf("Правила сообщества: Ознакомиться (%s)\n\nОтправляя эту форму Вы даете согласие на обработку персональных данных и соглашаетесь с правилами сообщества @W3Belarus.", m.RulesURL)
	agree, decline := "✅ Ознакомился", "❌ Не согласен"
	if lang == "en" {
		text = fmt.Sprintf("Community rules: %s\n\nBy submitting this form you consent to the processing of your personal data and agree to the @W3Belarus community rules.", m.RulesURL)
		agree, decline = "✅ I agree", "❌ I decline"
	}
	return Prompt{
		Text: text,
		Inline: [][]Button{
			row(Button{Label: agree, Code: CodeRulesAgreed}),
			row(Button{Label: decline, Code: CodeRulesDeclined}),
		},
	}
}

func declineText(lang string) string {
	if lang == "en" {
		return "Unfortunately, we cannot accept your application without agreement to the community rules. If you change your mind, start the form again with /start"
	}
	return "К сожалению, без согласия с правилами сообщества мы не можем принять вашу заявку. Если передумаете, начните заполнение формы заново командой /start"
}
