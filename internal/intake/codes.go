package intake

// Callback payload codes shared between prompts and the transition function.
const (
	CodeConfirmUsername = "confirm_username"
	CodeConfirmName     = "confirm_name"
	CodeEnterName       = "enter_name"
	CodeSourceOther     = "source_other"
	CodeSubscribed      = "subscribed"
	CodeRulesAgreed     = "rules_agreed"
	CodeRulesDeclined   = "rules_declined"
)

var ageByCode = map[string]string{
	"age_16-18": "16-18",
	"age_18-25": "18-25",
	"age_25-35": "25-35",
	"age_35+":   "35+",
}

var occupationByCode = map[string]string{
	"occupation_web2":      "Бизнесмен/предприниматель Web2",
	"occupation_web3":      "Бизнесмен/предприниматель Web3",
	"occupation_investor":  "Инвестор",
	"occupation_developer": "Разработчик",
	"occupation_crypto":    "Крипто-энтузиаст",
	"occupation_student":   "Студент",
	"occupation_other":     "Иное",
}

var topicByCode = map[string]string{
	"topic_web3_business": "Web3 инструменты для бизнеса",
	"topic_crypto":        "Крипта",
	"topic_ai":            "AI",
	"topic_all":           "Все",
}

var sourceByCode = map[string]string{
	"source_social": "Социальные сети",
	"source_friend": "Рекомендация друга",
	"source_ads":    "Реклама",
	"source_search": "Поиск в интернете",
}

// DecodeAge maps an age_* payload to its value. Unrecognized codes report
// ok=false; the caller treats that as no transition.
func DecodeAge(code string) (string, bool) {
	v, ok := ageByCode[code]
	return v, ok
}

func DecodeOccupation(code string) (string, bool) {
	v, ok := occupationByCode[code]
	return v, ok
}

func DecodeTopic(code string) (string, bool) {
	v, ok := topicByCode[code]
	return v, ok
}

// DecodeSource covers the four fixed sources; source_other is handled as its
// own step and never reaches this map.
func DecodeSource(code string) (string, bool) {
	v, ok := sourceByCode[code]
	return v, ok
}
