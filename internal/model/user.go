package model

import "time"

// PrivacyStatus 用户主页可见性
const (
	PrivacyPublic  = "PUBLIC"
	PrivacyPrivate = "PRIVATE"
)

// User 用户主体
type User struct {
	ID            string `gorm:"primaryKey;type:varchar(36)"`
	Username      string `gorm:"type:varchar(64);uniqueIndex;not null"`
	Email         string `gorm:"type:varchar(255)"`
	Password      string `gorm:"type:varchar(255)"`
	PrivacyStatus string `gorm:"type:varchar(16);not null;default:PUBLIC"`
	AdsDisabled   bool   `gorm:"not null;default:false"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (User) TableName() string { return "users" }
