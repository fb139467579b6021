package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a registered account. Anonymous sessions never create a row here;
// they exist only as a token-carried user id. The id is always assigned
// server-side, so it carries no validation tag and is never read from a
// request body.
type User struct {
	ID        string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username  string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email     string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password  string `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
