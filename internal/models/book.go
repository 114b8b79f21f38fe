package models

// Book availability states.
const (
	BookStatusAvailable   = "available"
	BookStatusUnavailable = "unavailable"
)

// Book represents a catalogued title.
type Book struct {
	BaseModel

	ISBN   string `gorm:"type:varchar(32);uniqueIndex;not null" json:"isbn"`
	Title  string `gorm:"type:varchar(200);not null" json:"title"`
	Author string `gorm:"type:varchar(100);not null" json:"author"`
	Status string `gorm:"type:varchar(16);default:'available'" json:"status"`
}
