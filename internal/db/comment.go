package db

import "gorm.io/gorm"

// Comment 是读者在文章下留下的评论。
// Active=false 的评论由管理员隐藏，不会被物理删除。
type Comment struct {
	gorm.Model
	PostID uint   `gorm:"index;not null"`
	Post   Post   `json:"-"`
	Name   string `gorm:"size:80;not null"`
	Email  string `gorm:"size:254;not null"`
	Body   string `gorm:"type:text;not null"`
	Active bool   `gorm:"not null;index"`
}
