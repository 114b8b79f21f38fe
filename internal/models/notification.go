package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification delivery outcomes. Every dispatch attempt yields exactly one
// row; there is no pending state.
const (
	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

// Notification is one row of the delivery ledger: a single email dispatch
// attempt and its recorded outcome. Retries overwrite Status, SentAt and
// ErrorMessage in place rather than appending history.
type Notification struct {
	BaseModel

	ReaderID     string         `gorm:"type:uuid;index;not null" json:"readerId"`
	ReaderName   string         `gorm:"type:varchar(100);not null" json:"readerName"`
	ReaderEmail  string         `gorm:"type:varchar(255);not null" json:"readerEmail"`
	Subject      string         `gorm:"type:varchar(255);not null" json:"subject"`
	Message      string         `gorm:"type:text;not null" json:"message"`
	BookTitles   datatypes.JSON `json:"-"`
	Status       string         `gorm:"type:varchar(16);default:'sent';index" json:"status"`
	SentAt       time.Time      `gorm:"index" json:"sentAt"`
	ErrorMessage string         `gorm:"type:text" json:"errorMessage,omitempty"`
}
