// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package journey

import (
	"context"

	"github.com/jaspercycles/journeycache/internal/cache"
	"github.com/jaspercycles/journeycache/internal/content"
)

const (
	AccessorPosts   = "posts"
	AccessorPost    = "post"
	AccessorTags    = "tags"
	AccessorAuthors = "authors"
	AccessorAuthor  = "author"
)

func (s *Service) contentMocked() bool {
	return s.opts.UseMocks || s.content == nil
}

// Posts returns one page of posts, or the matching page of mock posts when
// the content source fails.
func (s *Service) Posts(ctx context.Context, q content.Query, skipCache bool) *content.PostPage {
	q = q.Normalize()
	if s.contentMocked() {
		s.skipped(ctx, AccessorPosts, true)
		return content.Paginate(content.MockPosts(), q)
	}

	key := cache.GenerateKey(cache.DomainPosts, q.Page, q.PerPage, q.Tag)
	page, out := fetch(ctx, s, AccessorPosts, key, s.opts.TTL.Content, skipCache,
		func(ctx context.Context) (*content.PostPage, error) {
			return s.content.ListPosts(ctx, q)
		})
	if out.Err != nil || page == nil {
		out.Fallback = true
		page = content.Paginate(content.MockPosts(), q)
	}
	s.observe(ctx, out)
	return page
}

// Post returns one post by slug. ok is false for an empty slug or when the
// post cannot be loaded.
func (s *Service) Post(ctx context.Context, slug string, skipCache bool) (*content.Post, bool) {
	if slug == "" {
		s.skipped(ctx, AccessorPost, false)
		return nil, false
	}
	if s.contentMocked() {
		s.skipped(ctx, AccessorPost, true)
		for _, p := range content.MockPosts() {
			if p.Slug == slug {
				return &p, true
			}
		}
		return nil, false
	}

	key := cache.GenerateKey(cache.DomainPost, slug)
	p, out := fetch(ctx, s, AccessorPost, key, s.opts.TTL.Content, skipCache,
		func(ctx context.Context) (*content.Post, error) {
			return s.content.GetPost(ctx, slug)
		})
	s.observe(ctx, out)
	if out.Err != nil || p == nil {
		return nil, false
	}
	return p, true
}

// Tags returns every tag in use, sorted.
func (s *Service) Tags(ctx context.Context, skipCache bool) []string {
	if s.contentMocked() {
		s.skipped(ctx, AccessorTags, true)
		return content.CollectTags(content.MockPosts())
	}

	key := cache.GenerateKey(cache.DomainTags)
	tags, out := fetch(ctx, s, AccessorTags, key, s.opts.TTL.Content, skipCache, s.content.ListTags)
	if out.Err != nil {
		out.Fallback = true
		tags = content.CollectTags(content.MockPosts())
	}
	s.observe(ctx, out)
	if tags == nil {
		tags = []string{}
	}
	return tags
}

// Authors returns every author, or the mock authors when the content
// source fails.
func (s *Service) Authors(ctx context.Context, skipCache bool) []content.Author {
	if s.contentMocked() {
		s.skipped(ctx, AccessorAuthors, true)
		return content.MockAuthors()
	}

	key := cache.GenerateKey(cache.DomainAuthors)
	authors, out := fetch(ctx, s, AccessorAuthors, key, s.opts.TTL.Content, skipCache, s.content.ListAuthors)
	if out.Err != nil {
		out.Fallback = true
		authors = content.MockAuthors()
	}
	s.observe(ctx, out)
	if authors == nil {
		authors = []content.Author{}
	}
	return authors
}

// Author returns one author. When the content source fails the mock
// authors are searched instead.
func (s *Service) Author(ctx context.Context, id string, skipCache bool) (*content.Author, bool) {
	if id == "" {
		s.skipped(ctx, AccessorAuthor, false)
		return nil, false
	}
	if s.contentMocked() {
		s.skipped(ctx, AccessorAuthor, true)
		return mockAuthor(id)
	}

	key := cache.GenerateKey(cache.DomainAuthor, id)
	a, out := fetch(ctx, s, AccessorAuthor, key, s.opts.TTL.Content, skipCache,
		func(ctx context.Context) (*content.Author, error) {
			return s.content.GetAuthor(ctx, id)
		})
	if out.Err != nil || a == nil {
		a, ok := mockAuthor(id)
		out.Fallback = ok
		s.observe(ctx, out)
		return a, ok
	}
	s.observe(ctx, out)
	return a, true
}

func mockAuthor(id string) (*content.Author, bool) {
	for _, a := range content.MockAuthors() {
		if a.ID == id {
			return &a, true
		}
	}
	return nil, false
}
