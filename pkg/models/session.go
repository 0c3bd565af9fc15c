package models

import (
	"time"
)

type Session struct {
	UserID    string    `gorm:"type:text;not null;index"`
	Hash      string    `gorm:"type:text;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
