package service

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tagpress/internal/db"
	"gorm.io/gorm"
)

var ErrCommentNotFound = errors.New("comment not found")

// CommentService wraps comment intake and moderation.
type CommentService struct {
	db  *gorm.DB
	now func() time.Time
}

// CommentInput represents the fields a reader submits with a comment.
type CommentInput struct {
	Name  string `form:"name" json:"name" validate:"required,max=80"`
	Email string `form:"email" json:"email" validate:"required,email"`
	Body  string `form:"body" json:"body" validate:"required"`
}

// CommentFilter describes filters for the moderation list.
type CommentFilter struct {
	PostID  uint
	Active  *bool
	Search  string
	Page    string
	PerPage int
}

// NewCommentService creates a CommentService instance.
func NewCommentService(gdb *gorm.DB) *CommentService {
	return &CommentService{db: gdb, now: time.Now}
}

func (in CommentInput) normalized() CommentInput {
	return CommentInput{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
		Body:  strings.TrimSpace(in.Body),
	}
}

// Submit 校验并为文章追加一条评论。校验失败时返回 *ValidationError，且不会写入任何数据。
func (s *CommentService) Submit(postID uint, input CommentInput) (*db.Comment, error) {
	input = input.normalized()
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	var post db.Post
	if err := s.db.Select("id").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	now := s.now().UTC()
	comment := db.Comment{
		PostID: post.ID,
		Name:   input.Name,
		Email:  input.Email,
		Body:   input.Body,
		Active: true,
	}
	comment.CreatedAt = now
	comment.UpdatedAt = now

	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	log.Info().Uint("post_id", post.ID).Uint("comment_id", comment.ID).Msg("comment added")
	return &comment, nil
}

// ListActive returns the visible comments of a post, oldest first.
func (s *CommentService) ListActive(postID uint) ([]db.Comment, error) {
	var comments []db.Comment
	if err := s.db.
		Where("post_id = ? AND active = ?", postID, true).
		Order("created_at asc").
		Order("id asc").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// List provides the paginated moderation list, newest first.
func (s *CommentService) List(filter CommentFilter) (*Page[db.Comment], error) {
	query := s.applyFilters(s.db.Model(&db.Comment{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	number, totalPages := ResolvePage(total, perPage, filter.Page)

	var comments []db.Comment
	if err := s.applyFilters(s.db.Model(&db.Comment{}), filter).
		Order("created_at desc").
		Order("id desc").
		Limit(perPage).
		Offset((number - 1) * perPage).
		Find(&comments).Error; err != nil {
		return nil, err
	}

	return &Page[db.Comment]{
		Items:      comments,
		Number:     number,
		TotalPages: totalPages,
		Total:      total,
		PerPage:    perPage,
	}, nil
}

// SetActive 切换评论的可见状态，用于后台审核。
func (s *CommentService) SetActive(id uint, active bool) (*db.Comment, error) {
	var comment db.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	if err := s.db.Model(&comment).Update("active", active).Error; err != nil {
		return nil, err
	}
	comment.Active = active

	log.Info().Uint("comment_id", comment.ID).Bool("active", active).Msg("comment moderated")
	return &comment, nil
}

func (s *CommentService) applyFilters(query *gorm.DB, filter CommentFilter) *gorm.DB {
	if filter.PostID != 0 {
		query = query.Where("comments.post_id = ?", filter.PostID)
	}
	if filter.Active != nil {
		query = query.Where("comments.active = ?", *filter.Active)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("(comments.name LIKE ? OR comments.email LIKE ? OR comments.body LIKE ?)", like, like, like)
	}
	return query
}
