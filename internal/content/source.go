// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

// Package content reads blog posts and authors, either from the content API
// or from a directory of markdown files.
package content

import (
	"context"
	"slices"
	"sort"

	"github.com/jaspercycles/journeycache/internal/upstream"
)

// ErrNotFound reports an unknown slug or author id.
var ErrNotFound = upstream.ErrNotFound

// Source is the capability set of a content backend.
type Source interface {
	ListPosts(ctx context.Context, q Query) (*PostPage, error)
	GetPost(ctx context.Context, slug string) (*Post, error)
	ListTags(ctx context.Context) ([]string, error)
	ListAuthors(ctx context.Context) ([]Author, error)
	GetAuthor(ctx context.Context, id string) (*Author, error)
}

// SortByDate orders posts newest first. Dates are ISO 8601 strings, which
// sort lexically.
func SortByDate(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date > posts[j].Date
	})
}

// Paginate filters posts by q.Tag and returns the requested page. posts
// must already be sorted.
func Paginate(posts []Post, q Query) *PostPage {
	q = q.Normalize()

	if q.Tag != "" {
		tagged := make([]Post, 0, len(posts))
		for _, p := range posts {
			if slices.Contains(p.Tags, q.Tag) {
				tagged = append(tagged, p)
			}
		}
		posts = tagged
	}

	total := len(posts)
	page := &PostPage{
		Posts:      []Post{},
		Total:      total,
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalPages: (total + q.PerPage - 1) / q.PerPage,
	}

	start := (q.Page - 1) * q.PerPage
	if start >= total {
		return page
	}
	end := min(start+q.PerPage, total)
	page.Posts = append(page.Posts, posts[start:end]...)
	return page
}

// CollectTags returns the sorted distinct union of every post's tags.
func CollectTags(posts []Post) []string {
	seen := make(map[string]struct{})
	tags := []string{}
	for _, p := range posts {
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags
}
