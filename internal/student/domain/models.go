package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Student struct {
	ID                 snowflake.ID `json:"id" gorm:"primaryKey"`
	Name               string       `json:"name" gorm:"size:255"`
	RegistrationNumber string       `json:"registration_number" gorm:"uniqueIndex;size:32"`
	GuardianName       string       `json:"guardian_name" gorm:"size:255"`
	GuardianDocument   string       `json:"guardian_document" gorm:"size:32"`
	GuardianEmail      string       `json:"guardian_email" gorm:"size:255"`
	Active             bool         `json:"active" gorm:"index;default:true"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

func (Student) TableName() string {
	return "students"
}
