package service

import (
	"cmp"
	"slices"

	"github.com/tagpress/internal/db"
)

// DefaultSimilarLimit is how many related posts the detail page recommends.
const DefaultSimilarLimit = 4

// SimilarPost is a recommended post with the number of tags it shares with the subject.
type SimilarPost struct {
	Post       db.Post
	SharedTags int
}

// RankSimilar 按共享标签数量降序、发布时间降序对候选文章排序，并截取前 limit 篇。
// Only published candidates sharing at least one tag are kept and the subject
// itself is never returned. SharedTags counts distinct tags.
func RankSimilar(subject db.Post, candidates []db.Post, limit int) []SimilarPost {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}

	subjectTags := make(map[uint]struct{}, len(subject.Tags))
	for _, id := range subject.TagIDs() {
		subjectTags[id] = struct{}{}
	}
	if len(subjectTags) == 0 {
		return []SimilarPost{}
	}

	seen := make(map[uint]struct{}, len(candidates))
	ranked := make([]SimilarPost, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ID == subject.ID || !candidate.IsPublished() {
			continue
		}
		if _, dup := seen[candidate.ID]; dup {
			continue
		}
		seen[candidate.ID] = struct{}{}

		shared := 0
		for _, id := range candidate.TagIDs() {
			if _, ok := subjectTags[id]; ok {
				shared++
			}
		}
		if shared == 0 {
			continue
		}
		ranked = append(ranked, SimilarPost{Post: candidate, SharedTags: shared})
	}

	slices.SortStableFunc(ranked, func(a, b SimilarPost) int {
		if diff := cmp.Compare(b.SharedTags, a.SharedTags); diff != 0 {
			return diff
		}
		if diff := b.Post.PublishedAt.Compare(a.Post.PublishedAt); diff != 0 {
			return diff
		}
		return cmp.Compare(b.Post.ID, a.Post.ID)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
