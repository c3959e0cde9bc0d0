// Package intake implements the application form as a pure state machine.
// Transition mutates a session and returns effects (messages to send, the
// membership check, submission) without touching the transport, so the whole
// flow is testable without a live bot.
package intake

import (
	"w3bbot/internal/models"
)

type Step string

const (
	StepUsername    Step = "username"
	StepPhone       Step = "phone"
	StepName        Step = "name"
	StepAge         Step = "age"
	StepOccupation  Step = "occupation"
	StepTopic       Step = "interest_topic"
	StepSource      Step = "source"
	StepSourceOther Step = "source_other"
	StepSubscribe   Step = "subscribe_channel"
	StepRules       Step = "rules"
)

// Session pairs a subject's current step with the draft being filled in.
// At most one session exists per telegram id; the registry enforces that.
type Session struct {
	Step  Step
	Draft models.Draft
}

// Event is one inbound user action, already stripped of transport detail.
type Event interface{ isEvent() }

// Selection is a button press carrying its callback code.
type Selection struct{ Code string }

// Text is a freeform message.
type Text struct{ Body string }

// Contact is a shared phone number.
type Contact struct{ Phone string }

func (Selection) isEvent() {}
func (Text) isEvent()      {}
func (Contact) isEvent()   {}

// Effect is an outbound action the caller must perform. The machine never
// performs side effects itself.
type Effect interface{ isEffect() }

// SendPrompt asks the transport to deliver a message to the subject.
type SendPrompt struct{ Prompt Prompt }

// CheckMembership suspends the flow: the caller queries channel membership
// and feeds the result back through ResolveMembership.
type CheckMembership struct{}

// Submit signals that the draft is complete and must be handed to moderation.
type Submit struct{}

// Decline signals an explicit rules refusal; the caller clears the session.
type Decline struct{ Text string }

func (SendPrompt) isEffect()      {}
func (CheckMembership) isEffect() {}
func (Submit) isEffect()          {}
func (Decline) isEffect()         {}

// MembershipResult classifies the outcome of the channel-membership query.
type MembershipResult int

const (
	Member MembershipResult = iota
	NotMember
	CheckFailed
)
