package model

import "time"

// Block 拉黑关系（A 拉黑 B），存在即生效
type Block struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	BlockerID string `gorm:"type:varchar(36);index:idx_block_blocker;index:idx_block_pair,unique;not null"`
	BlockedID string `gorm:"type:varchar(36);not null;index:idx_block_blocked;index:idx_block_pair,unique"`
	// idx_block_pair = (blocker_id, blocked_id)
	CreatedAt time.Time
}

func (Block) TableName() string { return "blocks" }
