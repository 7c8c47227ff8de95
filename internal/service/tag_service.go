package service

import (
	"errors"
	"strings"

	"github.com/gosimple/slug"
	"github.com/tagpress/internal/db"
	"gorm.io/gorm"
)

var ErrTagNotFound = errors.New("tag not found")

// TagService wraps tag related operations.
type TagService struct {
	db *gorm.DB
}

// NewTagService creates a TagService instance.
func NewTagService(gdb *gorm.DB) *TagService {
	return &TagService{db: gdb}
}

// GetBySlug fetches a tag by its slug.
func (s *TagService) GetBySlug(tagSlug string) (*db.Tag, error) {
	var tag db.Tag
	if err := s.db.Where("slug = ?", strings.TrimSpace(tagSlug)).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return &tag, nil
}

// List returns tags by name with the number of published posts using each one.
func (s *TagService) List() ([]db.Tag, error) {
	var tags []db.Tag
	if err := s.db.
		Model(&db.Tag{}).
		Select("tags.*, COUNT(posts.id) AS post_count").
		Joins("LEFT JOIN post_tags ON post_tags.tag_id = tags.id").
		Joins("LEFT JOIN posts ON posts.id = post_tags.post_id AND posts.status = ? AND posts.deleted_at IS NULL", db.StatusPublished).
		Group("tags.id").
		Order("tags.name asc").
		Order("tags.id asc").
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// Ensure 按名称查找标签，不存在时创建。
func (s *TagService) Ensure(names []string) ([]db.Tag, error) {
	return ensureTags(s.db, names)
}

func ensureTags(tx *gorm.DB, names []string) ([]db.Tag, error) {
	tags := make([]db.Tag, 0, len(names))
	seen := make(map[string]struct{}, len(names))

	for _, raw := range names {
		name := strings.TrimSpace(raw)
		tagSlug := slug.Make(name)
		if tagSlug == "" {
			continue
		}
		if _, ok := seen[tagSlug]; ok {
			continue
		}
		seen[tagSlug] = struct{}{}

		var tag db.Tag
		if err := tx.Where(db.Tag{Slug: tagSlug}).
			Attrs(db.Tag{Name: name}).
			FirstOrCreate(&tag).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, nil
}
