package intake

import (
	"strings"

	"w3bbot/internal/models"
)

// Machine holds the static pieces of the flow: the channel the subject must
// join and the rules link. Transition logic itself is stateless.
type Machine struct {
	Channel  string // channel username without the @ prefix
	RulesURL string
}

// Start creates a fresh session from whatever the inviting event supplied.
// The language is fixed here and never changes for the session's lifetime.
func (m *Machine) Start(d models.Draft) (*Session, []Effect) {
	if d.Username != "" && !strings.HasPrefix(d.Username, "@") {
		d.Username = "@" + d.Username
	}
	s := &Session{Step: StepUsername, Draft: d}
	return s, []Effect{SendPrompt{usernamePrompt(d.Language, d.Username)}}
}

// Transition advances the session for one inbound event. Events that do not
// match the current step's accepted shape are absorbed: no step change, no
// draft mutation, no effects. That keeps double-clicks and replays harmless.
func (m *Machine) Transition(s *Session, ev Event) []Effect {
	lang := s.Draft.Language

	switch s.Step {
	case StepUsername:
		switch e := ev.(type) {
		case Selection:
			if e.Code == CodeConfirmUsername {
				return m.toPhone(s)
			}
		case Text:
			if e.Body != "" {
				s.Draft.Username = "@" + strings.TrimPrefix(e.Body, "@")
				return m.toPhone(s)
			}
		}

	case StepPhone:
		if e, ok := ev.(Contact); ok && e.Phone != "" {
			s.Draft.PhoneNumber = e.Phone
			s.Step = StepName
			effects := []Effect{SendPrompt{phoneReceivedPrompt(lang)}}
			return append(effects, SendPrompt{namePrompt(lang, s.Draft.FirstName)})
		}

	case StepName:
		switch e := ev.(type) {
		case Selection:
			switch e.Code {
			case CodeConfirmName:
				return m.toAge(s)
			case CodeEnterName:
				return []Effect{SendPrompt{enterNamePrompt(lang)}}
			}
		case Text:
			if e.Body != "" {
				s.Draft.FirstName = e.Body
				return m.toAge(s)
			}
		}

	case StepAge:
		if e, ok := ev.(Selection); ok {
			if v, ok := DecodeAge(e.Code); ok {
				s.Draft.Age = v
				s.Step = StepOccupation
				return []Effect{SendPrompt{occupationPrompt(lang)}}
			}
		}

	case StepOccupation:
		if e, ok := ev.(Selection); ok {
			if v, ok := DecodeOccupation(e.Code); ok {
				s.Draft.Occupation = v
				s.Step = StepTopic
				return []Effect{SendPrompt{topicPrompt(lang)}}
			}
		}

	case StepTopic:
		if e, ok := ev.(Selection); ok {
			if v, ok := DecodeTopic(e.Code); ok {
				s.Draft.InterestTopic = v
				s.Step = StepSource
				return []Effect{SendPrompt{sourcePrompt(lang)}}
			}
		}

	case StepSource:
		if e, ok := ev.(Selection); ok {
			if e.Code == CodeSourceOther {
				s.Step = StepSourceOther
				return []Effect{SendPrompt{sourceOtherPrompt(lang)}}
			}
			if v, ok := DecodeSource(e.Code); ok {
				s.Draft.Source = v
				return m.toSubscribe(s)
			}
		}

	case StepSourceOther:
		if e, ok := ev.(Text); ok && e.Body != "" {
			s.Draft.Source = e.Body
			return m.toSubscribe(s)
		}

	case StepSubscribe:
		if e, ok := ev.(Selection); ok && e.Code == CodeSubscribed {
			return []Effect{CheckMembership{}}
		}

	case StepRules:
		if e, ok := ev.(Selection); ok {
			switch e.Code {
			case CodeRulesAgreed:
				s.Draft.RulesAgreed = true
				return []Effect{Submit{}}
			case CodeRulesDeclined:
				return []Effect{Decline{Text: declineText(lang)}}
			}
		}
	}

	return nil
}

// ResolveMembership feeds the membership-check result back into the flow.
// A failed check is fail-open: the subject is not trapped behind a gate the
// bot itself cannot verify, and the draft records the uncertainty.
func (m *Machine) ResolveMembership(s *Session, r MembershipResult) []Effect {
	if s.Step != StepSubscribe {
		return nil
	}
	lang := s.Draft.Language

	switch r {
	case Member:
		s.Draft.Subscribed = models.SubscriptionYes
	case NotMember:
		return []Effect{SendPrompt{m.notSubscribedPrompt(lang)}}
	case CheckFailed:
		s.Draft.Subscribed = models.SubscriptionUnknown
	}
	s.Step = StepRules
	return []Effect{SendPrompt{m.rulesPrompt(lang)}}
}

func (m *Machine) toPhone(s *Session) []Effect {
	s.Step = StepPhone
	return []Effect{SendPrompt{phonePrompt(s.Draft.Language)}}
}

func (m *Machine) toAge(s *Session) []Effect {
	s.Step = StepAge
	return []Effect{SendPrompt{agePrompt(s.Draft.Language)}}
}

func (m *Machine) toSubscribe(s *Session) []Effect {
	s.Step = StepSubscribe
	return []Effect{SendPrompt{m.subscribePrompt(s.Draft.Language)}}
}
