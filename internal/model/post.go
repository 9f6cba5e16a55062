package model

import "time"

// PostStatus 帖子生命周期
const (
	PostPending   = "PENDING"
	PostCompleted = "COMPLETED"
	PostArchived  = "ARCHIVED"
	PostDeleting  = "DELETING"
	PostError     = "ERROR"
)

// AdStatus 广告帖审批状态（非广告帖为空）
const (
	AdPending = "PENDING"
	AdActive  = "ACTIVE"
)

// PostType 内容类型
const (
	PostTypeText  = "TEXT"
	PostTypeImage = "IMAGE"
	PostTypeVideo = "VIDEO"
)

// Post 内容主体
type Post struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	OwnerID  string `gorm:"type:varchar(36);index:idx_post_owner;not null"`
	PostType string `gorm:"type:varchar(16);not null"`
	Status   string `gorm:"type:varchar(16);index:idx_post_status;not null"`
	Payload  string `gorm:"type:text"`
	PostedAt time.Time `gorm:"index:idx_post_posted_at"`
	// ExpiresAt 非空表示限时 story
	ExpiresAt *time.Time

	IsAd      bool    `gorm:"not null;default:false"`
	AdStatus  string  `gorm:"type:varchar(16)"`
	AdPayment float64 `gorm:"type:decimal(10,2);default:0"`

	// OriginalPostID 指向同内容最早的 COMPLETED 帖；无重复时等于自身 ID。
	// 首次 COMPLETED 后不可变。
	OriginalPostID  string `gorm:"type:varchar(36);index:idx_post_original"`
	ContentChecksum string `gorm:"type:varchar(64);index:idx_post_checksum"`
	IsVerified      bool   `gorm:"not null;default:false"`

	ViewedByCount int64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Post) TableName() string { return "posts" }

// IsOriginal 是否为归因目标（非重复帖）
func (p *Post) IsOriginal() bool { return p.OriginalPostID == "" || p.OriginalPostID == p.ID }

// Expired 是否为已过期的 story
func (p *Post) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && !p.ExpiresAt.After(now)
}

// TrendingEligible 是否可进入热榜 / 广告池：COMPLETED、非重复、未过期
func (p *Post) TrendingEligible(now time.Time) bool {
	return p.Status == PostCompleted && p.IsOriginal() && !p.Expired(now)
}
