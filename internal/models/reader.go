package models

// Reader represents a registered library member.
type Reader struct {
	BaseModel

	Name    string `gorm:"type:varchar(50);not null" json:"name"`
	Email   string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone   string `gorm:"type:varchar(32);not null" json:"phone"`
	Address string `gorm:"type:varchar(255);not null" json:"address"`
}
