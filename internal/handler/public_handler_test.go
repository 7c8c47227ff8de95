package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagpress/internal/db"
	"github.com/tagpress/internal/service"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 10, 0, 0, 0, time.UTC)
}

func TestShowPostListPaginatesPublishedPosts(t *testing.T) {
	env := setupHandlerTestEnv(t)
	for i := 1; i <= 4; i++ {
		env.createPost(t, fmt.Sprintf("Published %d", i), db.StatusPublished, day(i))
	}
	env.createPost(t, "Hidden draft", db.StatusDraft, day(10))

	w := env.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	data := env.rendered(t, "post_list.html")
	posts := data["posts"].([]db.Post)
	require.Len(t, posts, 3)
	assert.Equal(t, "Published 4", posts[0].Title)
	assert.Nil(t, data["tag"].(*db.Tag))

	page := data["page"].(*service.Page[db.Post])
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNext())

	tests := []struct {
		query string
		page  int
		first string
	}{
		{query: "?page=2", page: 2, first: "Published 1"},
		{query: "?page=abc", page: 1, first: "Published 4"},
		{query: "?page=99", page: 2, first: "Published 1"},
	}
	for _, tt := range tests {
		w := env.get("/" + tt.query)
		require.Equal(t, http.StatusOK, w.Code, tt.query)
		data := env.rendered(t, "post_list.html")
		assert.Equal(t, tt.page, data["page"].(*service.Page[db.Post]).Number, tt.query)
		assert.Equal(t, tt.first, data["posts"].([]db.Post)[0].Title, tt.query)
	}
}

func TestShowPostListEmpty(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	data := env.rendered(t, "post_list.html")
	assert.Empty(t, data["posts"].([]db.Post))
	assert.Equal(t, 1, data["page"].(*service.Page[db.Post]).TotalPages)
}

func TestShowTagPostList(t *testing.T) {
	env := setupHandlerTestEnv(t)
	env.createPost(t, "Go one", db.StatusPublished, day(1), "Go")
	env.createPost(t, "Sql one", db.StatusPublished, day(2), "SQL")

	w := env.get("/tag/go")
	require.Equal(t, http.StatusOK, w.Code)
	data := env.rendered(t, "post_list.html")
	posts := data["posts"].([]db.Post)
	require.Len(t, posts, 1)
	assert.Equal(t, "Go one", posts[0].Title)
	assert.Equal(t, "Go", data["tag"].(*db.Tag).Name)
	assert.Equal(t, "/tag/go", data["pagePath"])

	w = env.get("/tag/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)
	env.rendered(t, "error.html")
}

func TestShowPostDetail(t *testing.T) {
	env := setupHandlerTestEnv(t)
	post := env.createPost(t, "Main post", db.StatusPublished, day(5), "go", "web")
	env.createPost(t, "One shared", db.StatusPublished, day(3), "go")
	env.createPost(t, "Two shared", db.StatusPublished, day(2), "web", "go")
	env.createPost(t, "Draft shared", db.StatusDraft, day(4), "go", "web")

	w := env.get(post.AbsoluteURL())
	require.Equal(t, http.StatusOK, w.Code)
	data := env.rendered(t, "post_detail.html")

	assert.Equal(t, post.ID, data["post"].(*db.Post).ID)
	assert.Equal(t, service.CommentInput{}, data["form"])
	assert.Nil(t, data["newComment"].(*db.Comment))
	assert.Empty(t, data["comments"].([]db.Comment))
	assert.Contains(t, fmt.Sprint(data["bodyHTML"]), "<strong>Main post</strong>")
	assert.Equal(t, fmt.Sprintf("/share/%d", post.ID), data["shareURL"])

	similar := data["similarPosts"].([]service.SimilarPost)
	require.Len(t, similar, 2)
	assert.Equal(t, "Two shared", similar[0].Post.Title)
	assert.Equal(t, 2, similar[0].SharedTags)
	assert.Equal(t, "One shared", similar[1].Post.Title)
}

func TestShowPostDetailNotFound(t *testing.T) {
	env := setupHandlerTestEnv(t)
	env.createPost(t, "Visible", db.StatusPublished, day(5))
	env.createPost(t, "Secret", db.StatusDraft, day(6))

	paths := []string{
		"/post/2024/3/6/secret",
		"/post/2024/3/4/visible",
		"/post/2024/13/5/visible",
		"/post/2024/march/5/visible",
		"/post/2024/3/5/nothing",
	}
	for _, path := range paths {
		w := env.get(path)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		env.rendered(t, "error.html")
	}
}

func TestSubmitCommentCreatesActiveComment(t *testing.T) {
	env := setupHandlerTestEnv(t)
	post := env.createPost(t, "Commented", db.StatusPublished, day(5))

	w := env.postForm(post.AbsoluteURL(), url.Values{
		"name":  {"Ada"},
		"email": {"ada@example.com"},
		"body":  {"Nice write-up"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := env.rendered(t, "post_detail.html")

	created := data["newComment"].(*db.Comment)
	require.NotNil(t, created)
	assert.True(t, created.Active)
	assert.Equal(t, post.ID, created.PostID)

	comments := data["comments"].([]db.Comment)
	require.Len(t, comments, 1)
	assert.Equal(t, "Nice write-up", comments[0].Body)
	assert.Equal(t, service.CommentInput{}, data["form"])
}

func TestSubmitCommentRejectsInvalidInput(t *testing.T) {
	env := setupHandlerTestEnv(t)
	post := env.createPost(t, "Commented", db.StatusPublished, day(5))

	w := env.postForm(post.AbsoluteURL(), url.Values{
		"name":  {"Ada"},
		"email": {"not-an-email"},
		"body":  {"text"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	data := env.rendered(t, "post_detail.html")

	fieldErrors := data["errors"].(map[string]string)
	assert.Contains(t, fieldErrors, "email")
	assert.Nil(t, data["newComment"].(*db.Comment))
	assert.Equal(t, "not-an-email", data["form"].(service.CommentInput).Email)

	var count int64
	require.NoError(t, env.db.Model(&db.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitCommentOnDraftIsNotFound(t *testing.T) {
	env := setupHandlerTestEnv(t)
	post := env.createPost(t, "Draft", db.StatusDraft, day(5))

	w := env.postForm(post.AbsoluteURL(), url.Values{
		"name":  {"Ada"},
		"email": {"ada@example.com"},
		"body":  {"text"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShowShareForm(t *testing.T) {
	env := setupHandlerTestEnv(t)
	post := env.createPost(t, "Shareable", db.StatusPublished, day(5))
	draft := env.createPost(t, "Not yet", db.StatusDraft, day(6))

	w := env.get(fmt.Sprintf("/share/%d", post.ID))
	require.Equal(t, http.StatusOK, w.Code)
	data := env.rendered(t, "post_share.html")
	assert.Equal(t, false, data["sent"])
	assert.Equal(t, false, data["deliveryFailed"])
	assert.Equal(t, "https://blog.example.com/post/2024/3/5/shareable", data["postURL"])

	assert.Equal(t, http.StatusNotFound, env.get(fmt.Sprintf("/share/%d", draft.ID)).Code)
	assert.Equal(t, http.StatusNotFound, env.get("/share/abc").Code)
}

func TestSharePostSendsEmail(t *testing.T) {
	env := setupHandlerTestEnv(t)
	post := env.createPost(t, "Shareable", db.StatusPublished, day(5))

	w := env.postForm(fmt.Sprintf("/share/%d", post.ID), url.Values{
		"name":     {"Ada"},
		"email":    {"ada@example.com"},
		"to":       {"grace@example.com"},
		"comments": {"read this"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := env.rendered(t, "post_share.html")
	assert.Equal(t, true, data["sent"])

	require.Len(t, env.sender.sent, 1)
	msg := env.sender.sent[0]
	assert.Equal(t, "Ada (ada@example.com) recommends you read Shareable", msg.Subject)
	assert.Equal(t, []string{"grace@example.com"}, msg.To)
	assert.Equal(t, "noreply@example.com", msg.From)
	assert.True(t, strings.Contains(msg.Body, "https://blog.example.com/post/2024/3/5/shareable"))
	assert.True(t, strings.HasSuffix(msg.Body, "Ada's comments: read this"))
}

func TestSharePostInvalidDoesNotSend(t *testing.T) {
	env := setupHandlerTestEnv(t)
	post := env.createPost(t, "Shareable", db.StatusPublished, day(5))

	w := env.postForm(fmt.Sprintf("/share/%d", post.ID), url.Values{
		"name":  {"Ada"},
		"email": {"ada@example.com"},
		"to":    {"nobody"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	data := env.rendered(t, "post_share.html")
	assert.Equal(t, false, data["sent"])
	assert.Contains(t, data["errors"].(map[string]string), "to")
	assert.Empty(t, env.sender.sent)
}

func TestSharePostDeliveryFailureRendersNotSent(t *testing.T) {
	env := setupHandlerTestEnv(t)
	env.sender.err = errors.New("smtp down")
	post := env.createPost(t, "Shareable", db.StatusPublished, day(5))

	w := env.postForm(fmt.Sprintf("/share/%d", post.ID), url.Values{
		"name":  {"Ada"},
		"email": {"ada@example.com"},
		"to":    {"grace@example.com"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := env.rendered(t, "post_share.html")
	assert.Equal(t, false, data["sent"])
	assert.Equal(t, true, data["deliveryFailed"])
	assert.Equal(t, "grace@example.com", data["form"].(service.ShareInput).To)
}

func TestPublicFormsRenderHTMLOnUnreadableBody(t *testing.T) {
	env := setupHandlerTestEnv(t)
	post := env.createPost(t, "Shareable", db.StatusPublished, day(5))

	postJSON := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		return env.do(req)
	}

	w := postJSON(post.AbsoluteURL())
	require.Equal(t, http.StatusBadRequest, w.Code)
	data := env.rendered(t, "post_detail.html")
	assert.Contains(t, data["errors"].(map[string]string), "form")
	assert.Nil(t, data["newComment"].(*db.Comment))

	w = postJSON(fmt.Sprintf("/share/%d", post.ID))
	require.Equal(t, http.StatusBadRequest, w.Code)
	data = env.rendered(t, "post_share.html")
	assert.Contains(t, data["errors"].(map[string]string), "form")
	assert.Equal(t, false, data["deliveryFailed"])
	assert.Empty(t, env.sender.sent)
}
