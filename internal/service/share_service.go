package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tagpress/internal/db"
	"github.com/tagpress/internal/mail"
)

// ShareInput is the "email this post" form.
type ShareInput struct {
	Name     string `form:"name" json:"name" validate:"required,max=25"`
	Email    string `form:"email" json:"email" validate:"required,email"`
	To       string `form:"to" json:"to" validate:"required,email"`
	Comments string `form:"comments" json:"comments"`
}

// ShareService 负责构建并发送文章分享邮件。
type ShareService struct {
	sender mail.Sender
	from   string
}

// NewShareService creates a ShareService sending from the given system address.
func NewShareService(sender mail.Sender, from string) *ShareService {
	return &ShareService{sender: sender, from: from}
}

func (in ShareInput) normalized() ShareInput {
	return ShareInput{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		To:       strings.TrimSpace(in.To),
		Comments: strings.TrimSpace(in.Comments),
	}
}

// Prepare validates input and builds the message recommending post.
// postURL must be the absolute URL of the post.
func (s *ShareService) Prepare(post *db.Post, postURL string, input ShareInput) (*mail.Message, error) {
	input = input.normalized()
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	return &mail.Message{
		Subject: fmt.Sprintf("%s (%s) recommends you read %s", input.Name, input.Email, post.Title),
		Body:    fmt.Sprintf("Read %s at %s\n\n%s's comments: %s", post.Title, postURL, input.Name, input.Comments),
		From:    s.from,
		To:      []string{input.To},
	}, nil
}

// Share validates and sends the share email. The returned error is only set
// for validation failures; delivery failures are logged and reported as sent=false.
func (s *ShareService) Share(ctx context.Context, post *db.Post, postURL string, input ShareInput) (bool, error) {
	msg, err := s.Prepare(post, postURL, input)
	if err != nil {
		return false, err
	}

	if err := s.sender.Send(ctx, *msg); err != nil {
		log.Error().Err(err).Uint("post_id", post.ID).Msg("share mail not sent")
		return false, nil
	}

	log.Info().Uint("post_id", post.ID).Msg("share mail sent")
	return true, nil
}
