package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	// StatusDraft 表示草稿状态
	StatusDraft = "draft"
	// StatusPublished 表示已发布状态
	StatusPublished = "published"
)

// PublishDateLayout is the layout of Post.PublishDate.
const PublishDateLayout = "2006-01-02"

// Post 定义了文章模型
type Post struct {
	gorm.Model
	Title       string    `gorm:"size:250;not null"`
	Slug        string    `gorm:"size:250;not null;uniqueIndex:idx_posts_publish_slug"`
	PublishDate string    `gorm:"size:10;not null;uniqueIndex:idx_posts_publish_slug"`
	AuthorID    uint      `gorm:"index;not null"`
	Author      User      `gorm:"foreignKey:AuthorID"`
	Body        string    `gorm:"type:text"`
	PublishedAt time.Time `gorm:"index;not null"`
	Status      string    `gorm:"size:10;not null;index"`
	Tags        []Tag     `gorm:"many2many:post_tags;"`
	Comments    []Comment
}

// BeforeSave keeps PublishDate in step with PublishedAt so the
// (publish date, slug) unique index sees the day the post is published on.
func (p *Post) BeforeSave(tx *gorm.DB) error {
	if p.PublishedAt.IsZero() {
		p.PublishedAt = time.Now().UTC()
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	p.PublishDate = PublishDateOf(p.PublishedAt)
	return nil
}

// IsPublished reports whether readers may see the post.
func (p *Post) IsPublished() bool {
	return p.Status == StatusPublished
}

// AbsoluteURL 返回文章详情页的规范路径
func (p *Post) AbsoluteURL() string {
	t := p.PublishedAt.UTC()
	return fmt.Sprintf("/post/%d/%d/%d/%s", t.Year(), int(t.Month()), t.Day(), p.Slug)
}

// TagIDs returns the distinct tag ids attached to the post.
func (p *Post) TagIDs() []uint {
	seen := make(map[uint]struct{}, len(p.Tags))
	ids := make([]uint, 0, len(p.Tags))
	for _, tag := range p.Tags {
		if _, ok := seen[tag.ID]; ok {
			continue
		}
		seen[tag.ID] = struct{}{}
		ids = append(ids, tag.ID)
	}
	return ids
}

// PublishDateOf formats t as the UTC calendar day used for slug uniqueness.
func PublishDateOf(t time.Time) string {
	return t.UTC().Format(PublishDateLayout)
}
