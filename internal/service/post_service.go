package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"
	"github.com/tagpress/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrTitleRequired    = errors.New("post title is required")
	ErrSlugTaken        = errors.New("slug already used for this publish date")
	ErrInvalidStatus    = errors.New("invalid post status")
	ErrStatusTransition = errors.New("published posts cannot return to draft")
	ErrAuthorRequired   = errors.New("post author is required")
	ErrSlugNotDerivable = errors.New("slug cannot be derived from title")
)

// PostService wraps post related database operations.
type PostService struct {
	db *gorm.DB
}

// PostFilter describes filters for listing posts.
type PostFilter struct {
	Search    string
	Status    string
	AuthorID  uint
	TagID     uint
	StartDate *time.Time // published_at >= StartDate
	EndDate   *time.Time // published_at < EndDate
	Page      string
	PerPage   int
}

// PostListResult aggregates a page of posts and status counters for the admin list.
type PostListResult struct {
	Page[db.Post]
	PublishedCount int64
	DraftCount     int64
}

// PostInput represents fields accepted when creating or updating a post.
type PostInput struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Body        string     `json:"body"`
	Status      string     `json:"status"`
	AuthorID    uint       `json:"authorId"`
	PublishedAt *time.Time `json:"publishedAt"`
	TagNames    []string   `json:"tags"`
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb}
}

// Get fetches a post by id with tags and author preloaded.
func (s *PostService) Get(id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Tags").Preload("Author").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetPublished fetches a published post by id; drafts are reported as not found.
func (s *PostService) GetPublished(id uint) (*db.Post, error) {
	post, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished() {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// GetPublishedByDate 按发布日期与 slug 查找已发布文章。
func (s *PostService) GetPublishedByDate(year, month, day int, postSlug string) (*db.Post, error) {
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return nil, ErrPostNotFound
	}

	var post db.Post
	if err := s.db.Preload("Tags").Preload("Author").
		Where("slug = ? AND status = ? AND publish_date = ?", postSlug, db.StatusPublished, db.PublishDateOf(date)).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// ListPublished 返回已发布文章的分页结果，最新发布的在前。
func (s *PostService) ListPublished(filter PostFilter) (*Page[db.Post], error) {
	filter.Status = db.StatusPublished

	var total int64
	if err := s.applyFilters(s.db.Model(&db.Post{}), filter, true).Count(&total).Error; err != nil {
		return nil, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	number, totalPages := ResolvePage(total, perPage, filter.Page)

	var posts []db.Post
	dataQuery := s.db.Model(&db.Post{}).Preload("Tags").Preload("Author")
	if err := s.applyFilters(dataQuery, filter, true).
		Order("posts.published_at desc").
		Order("posts.id desc").
		Limit(perPage).
		Offset((number - 1) * perPage).
		Find(&posts).Error; err != nil {
		return nil, err
	}

	return &Page[db.Post]{
		Items:      posts,
		Number:     number,
		TotalPages: totalPages,
		Total:      total,
		PerPage:    perPage,
	}, nil
}

// List provides paginated posts with aggregated counters based on filters.
// Posts are ordered by status then publish time, drafts first.
func (s *PostService) List(filter PostFilter) (*PostListResult, error) {
	var total int64
	if err := s.applyFilters(s.db.Model(&db.Post{}), filter, true).Count(&total).Error; err != nil {
		return nil, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	number, totalPages := ResolvePage(total, perPage, filter.Page)

	var posts []db.Post
	dataQuery := s.db.Model(&db.Post{}).Preload("Tags").Preload("Author")
	if err := s.applyFilters(dataQuery, filter, true).
		Order("posts.status asc").
		Order("posts.published_at asc").
		Order("posts.id asc").
		Limit(perPage).
		Offset((number - 1) * perPage).
		Find(&posts).Error; err != nil {
		return nil, err
	}

	result := &PostListResult{Page: Page[db.Post]{
		Items:      posts,
		Number:     number,
		TotalPages: totalPages,
		Total:      total,
		PerPage:    perPage,
	}}

	filterWithoutStatus := filter
	filterWithoutStatus.Status = ""

	if err := s.applyFilters(s.db.Model(&db.Post{}), filterWithoutStatus, false).
		Where("posts.status = ?", db.StatusPublished).
		Count(&result.PublishedCount).Error; err != nil {
		return nil, err
	}
	if err := s.applyFilters(s.db.Model(&db.Post{}), filterWithoutStatus, false).
		Where("posts.status = ?", db.StatusDraft).
		Count(&result.DraftCount).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// Create persists a post and associates tags in a transaction.
func (s *PostService) Create(input PostInput) (*db.Post, error) {
	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = db.StatusDraft
	}
	if status != db.StatusDraft && status != db.StatusPublished {
		return nil, ErrInvalidStatus
	}
	if input.AuthorID == 0 {
		return nil, ErrAuthorRequired
	}

	post := db.Post{
		AuthorID:    input.AuthorID,
		Status:      status,
		PublishedAt: time.Now().UTC(),
	}
	if err := applyPostInput(&post, input); err != nil {
		return nil, err
	}

	if err := s.saveWithTags(&post, input.TagNames, true); err != nil {
		return nil, err
	}

	log.Info().Uint("post_id", post.ID).Str("slug", post.Slug).Str("status", post.Status).Msg("post created")
	return s.Get(post.ID)
}

// Update applies updates to an existing post. A nil TagNames keeps the current tags.
func (s *PostService) Update(id uint, input PostInput) (*db.Post, error) {
	var existing db.Post
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	switch strings.TrimSpace(input.Status) {
	case "":
	case db.StatusPublished:
		existing.Status = db.StatusPublished
	case db.StatusDraft:
		if existing.IsPublished() {
			return nil, ErrStatusTransition
		}
	default:
		return nil, ErrInvalidStatus
	}

	if err := applyPostInput(&existing, input); err != nil {
		return nil, err
	}

	if err := s.saveWithTags(&existing, input.TagNames, input.TagNames != nil); err != nil {
		return nil, err
	}

	return s.Get(existing.ID)
}

// Publish 将草稿切换为已发布状态；已发布的文章保持不变。
func (s *PostService) Publish(id uint) (*db.Post, error) {
	post, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if post.IsPublished() {
		return post, nil
	}

	if err := s.db.Model(&db.Post{}).Where("id = ?", id).Update("status", db.StatusPublished).Error; err != nil {
		return nil, err
	}
	post.Status = db.StatusPublished

	log.Info().Uint("post_id", post.ID).Msg("post published")
	return post, nil
}

// Similar recommends published posts that share tags with post.
func (s *PostService) Similar(post *db.Post, limit int) ([]SimilarPost, error) {
	tagIDs := post.TagIDs()
	if len(tagIDs) == 0 {
		return []SimilarPost{}, nil
	}

	tagged := s.db.Table("post_tags").Select("post_id").Where("tag_id IN ?", tagIDs)

	var candidates []db.Post
	if err := s.db.Preload("Tags").
		Where("status = ? AND id <> ? AND id IN (?)", db.StatusPublished, post.ID, tagged).
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	return RankSimilar(*post, candidates, limit), nil
}

func applyPostInput(post *db.Post, input PostInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		if post.ID == 0 || input.Title != "" {
			return ErrTitleRequired
		}
		title = post.Title
	}
	post.Title = title

	rawSlug := strings.TrimSpace(input.Slug)
	switch {
	case rawSlug != "":
		post.Slug = slug.Make(rawSlug)
	case post.Slug == "":
		post.Slug = slug.Make(title)
	}
	if post.Slug == "" {
		return ErrSlugNotDerivable
	}

	if input.Body != "" || post.ID == 0 {
		post.Body = input.Body
	}
	if input.PublishedAt != nil && !input.PublishedAt.IsZero() {
		post.PublishedAt = input.PublishedAt.UTC()
	}
	return nil
}

func (s *PostService) saveWithTags(post *db.Post, tagNames []string, replaceTags bool) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var clashes int64
		query := tx.Model(&db.Post{}).
			Where("slug = ? AND publish_date = ?", post.Slug, db.PublishDateOf(post.PublishedAt))
		if post.ID != 0 {
			query = query.Where("id <> ?", post.ID)
		}
		if err := query.Count(&clashes).Error; err != nil {
			return err
		}
		if clashes > 0 {
			return ErrSlugTaken
		}

		if err := tx.Omit("Tags", "Comments", "Author").Save(post).Error; err != nil {
			return err
		}

		if !replaceTags {
			return nil
		}

		tags, err := ensureTags(tx, tagNames)
		if err != nil {
			return err
		}
		if err := tx.Model(post).Association("Tags").Replace(tags); err != nil {
			return fmt.Errorf("replace tags: %w", err)
		}
		return nil
	})
}

func (s *PostService) applyFilters(query *gorm.DB, filter PostFilter, includeStatus bool) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("(posts.title LIKE ? OR posts.body LIKE ?)", like, like)
	}

	if includeStatus && filter.Status != "" {
		query = query.Where("posts.status = ?", filter.Status)
	}

	if filter.AuthorID != 0 {
		query = query.Where("posts.author_id = ?", filter.AuthorID)
	}

	if filter.TagID != 0 {
		subQuery := s.db.Table("post_tags").Select("post_id").Where("tag_id = ?", filter.TagID)
		query = query.Where("posts.id IN (?)", subQuery)
	}

	if filter.StartDate != nil {
		query = query.Where("posts.published_at >= ?", filter.StartDate)
	}

	if filter.EndDate != nil {
		query = query.Where("posts.published_at < ?", filter.EndDate)
	}

	return query
}
