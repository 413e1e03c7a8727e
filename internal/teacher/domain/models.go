package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Teacher struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"size:255"`
	Email       string       `json:"email" gorm:"uniqueIndex;size:255"`
	Document    string       `json:"document" gorm:"size:32"`
	SalaryCents int64        `json:"salary_cents"`
	Active      bool         `json:"active" gorm:"index;default:true"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (Teacher) TableName() string {
	return "teachers"
}
