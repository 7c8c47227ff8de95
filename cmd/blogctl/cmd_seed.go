package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/tagpress/internal/db"
	"github.com/tagpress/internal/service"
	"gorm.io/gorm"
)

// seedCmd fills the database with sample content
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with sample posts, tags and comments",
	Long: `Create a sample author, a handful of tagged posts and a few comments.

Sample posts carry fixed publish dates, so a post whose slug already
exists for that day is skipped and the command can be run more than once.`,
	RunE: runSeed,
}

type seedPost struct {
	title  string
	body   string
	status string
	tags   []string
	date   time.Time
}

func seedDate(month time.Month, day, hour int) time.Time {
	return time.Date(2024, month, day, hour, 0, 0, 0, time.UTC)
}

var seedPosts = []seedPost{
	{
		title:  "Building web services with Go",
		body:   "Go's concurrency model and small standard library make it a good fit for **web services**.\n\nThis post walks through routing, middleware and graceful shutdown.",
		status: db.StatusPublished,
		tags:   []string{"Go", "Web"},
		date:   seedDate(time.May, 6, 9),
	},
	{
		title:  "GORM tips for SQLite",
		body:   "Preloading, transactions and many-to-many associations with GORM on top of SQLite.",
		status: db.StatusPublished,
		tags:   []string{"Go", "Databases"},
		date:   seedDate(time.May, 13, 9),
	},
	{
		title:  "Writing Gin middleware",
		body:   "Request ids, structured logs and panic recovery in a few lines of Gin middleware.",
		status: db.StatusPublished,
		tags:   []string{"Go", "Web", "Tutorial"},
		date:   seedDate(time.May, 20, 9),
	},
	{
		title:  "Indexing strategies for small databases",
		body:   "Composite indexes, covering indexes and when not to bother.",
		status: db.StatusPublished,
		tags:   []string{"Databases"},
		date:   seedDate(time.May, 27, 9),
	},
	{
		title:  "Notes on tag based recommendations",
		body:   "Ranking related posts by the number of shared tags, newest first on ties.",
		status: db.StatusDraft,
		tags:   []string{"Tutorial"},
		date:   seedDate(time.June, 3, 18),
	},
}

var seedComments = []service.CommentInput{
	{Name: "Ada", Email: "ada@example.com", Body: "Clear and to the point, thanks."},
	{Name: "Grace", Email: "grace@example.com", Body: "Would love a follow-up on testing."},
}

func runSeed(cmd *cobra.Command, args []string) error {
	gdb, err := openDatabase()
	if err != nil {
		return err
	}
	return seedBlog(gdb, cmd.OutOrStdout())
}

// seedBlog 生成示例作者、文章与评论
func seedBlog(gdb *gorm.DB, out io.Writer) error {
	author, err := db.EnsureUser(gdb, "author", "author123")
	if err != nil {
		return fmt.Errorf("create sample author: %w", err)
	}

	posts := service.NewPostService(gdb)
	comments := service.NewCommentService(gdb)

	created := 0
	for _, sample := range seedPosts {
		publishedAt := sample.date
		post, err := posts.Create(service.PostInput{
			Title:       sample.title,
			Body:        sample.body,
			Status:      sample.status,
			AuthorID:    author.ID,
			PublishedAt: &publishedAt,
			TagNames:    sample.tags,
		})
		if errors.Is(err, service.ErrSlugTaken) {
			fmt.Fprintf(out, "文章已存在，跳过: %s\n", sample.title)
			continue
		}
		if err != nil {
			return fmt.Errorf("create post %q: %w", sample.title, err)
		}
		created++

		if !post.IsPublished() {
			continue
		}
		for _, input := range seedComments {
			if _, err := comments.Submit(post.ID, input); err != nil {
				return fmt.Errorf("comment on %q: %w", sample.title, err)
			}
		}
	}

	fmt.Fprintf(out, "示例数据生成完成: %d 篇文章\n", created)
	return nil
}
