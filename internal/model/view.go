package model

import "time"

// View 去重后的浏览记录（按 viewer_id 查询）
type View struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	ViewerID string `gorm:"type:varchar(36);index:idx_view_viewer;uniqueIndex:ux_view_viewer_post"`
	PostID   string `gorm:"type:varchar(36);index:idx_view_post;uniqueIndex:ux_view_viewer_post"`
	// 复合唯一键，浏览是集合而非多重集
	// ux_view_viewer_post = (viewer_id, post_id)
	CreatedAt time.Time
}

func (View) TableName() string { return "views" }
