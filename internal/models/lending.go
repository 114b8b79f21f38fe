package models

import "time"

// Lending lifecycle states.
const (
	LendingStatusActive   = "active"
	LendingStatusReturned = "returned"
	LendingStatusOverdue  = "overdue"
)

// LendingRecord tracks one book loan. BookID and ReaderID are references,
// not ownership; records are mutated on return or overdue-marking and are
// never hard-deleted by the notification core.
type LendingRecord struct {
	BaseModel

	BookID     string     `gorm:"type:uuid;index;not null" json:"bookId"`
	ReaderID   string     `gorm:"type:uuid;index;not null" json:"readerId"`
	LendDate   time.Time  `gorm:"not null" json:"lendDate"`
	DueDate    time.Time  `gorm:"not null" json:"dueDate"`
	ReturnDate *time.Time `json:"returnDate"`
	Status     string     `gorm:"type:varchar(16);default:'active'" json:"status"`
}

// ValidLendingStatus reports whether value is one of the lending states.
func ValidLendingStatus(value string) bool {
	switch value {
	case LendingStatusActive, LendingStatusReturned, LendingStatusOverdue:
		return true
	}
	return false
}
