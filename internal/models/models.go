package models

import (
	"time"
)

type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusApproved ApplicationStatus = "approved"
	StatusRejected ApplicationStatus = "rejected"
)

// Subscription is the result of the channel-membership gate. Unknown is set
// only when the membership check itself failed, never as a default answer.
type Subscription int8

const (
	SubscriptionUnknown Subscription = iota
	SubscriptionYes
	SubscriptionNo
)

// Bool maps the tri-state onto the nullable column the store uses.
func (s Subscription) Bool() *bool {
	switch s {
	case SubscriptionYes:
		v := true
		return &v
	case SubscriptionNo:
		v := false
		return &v
	default:
		return nil
	}
}

// Draft is the in-progress application owned by one active session. It is
// never persisted; an Application is created from it on submission.
type Draft struct {
	TelegramID    int64
	Language      string // "ru" or "en", fixed at session start
	Username      string
	FirstName     string
	LastName      string
	PhoneNumber   string
	Age           string
	Occupation    string
	InterestTopic string
	Source        string
	Subscribed    Subscription
	RulesAgreed   bool
}

type Application struct {
	ID                  uint   `gorm:"primaryKey"`
	TelegramID          int64  `gorm:"index;not null"`
	Username            string `gorm:"size:255"`
	FirstName           string `gorm:"size:255"`
	LastName            string `gorm:"size:255"`
	PhoneNumber         string `gorm:"size:32"`
	Age                 string `gorm:"size:16"`
	Occupation          string `gorm:"size:255"`
	InterestTopic       string `gorm:"size:255"`
	Source              string `gorm:"size:255"`
	Language            string `gorm:"size:8"`
	SubscribedToChannel *bool
	RulesAgreed         bool
	Status              ApplicationStatus `gorm:"size:16;default:'pending';index"`
	CreatedAt           time.Time
	ProcessedAt         *time.Time
	AdminNotes          string `gorm:"type:text"`
}

type Admin struct {
	ID         uint   `gorm:"primaryKey"`
	TelegramID int64  `gorm:"uniqueIndex;not null"`
	Username   string `gorm:"size:255"`
	FirstName  string `gorm:"size:255"`
	CreatedAt  time.Time
}

// Stats is the status breakdown shown in the admin panel and the bot menu.
type Stats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}
