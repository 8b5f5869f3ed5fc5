// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	"github.com/jaspercycles/journeycache/internal/logging"
)

const (
	postsDir   = "posts"
	authorsDir = "authors"
)

var errNoFrontMatter = errors.New("missing front matter")

// frontMatter is the YAML header of a post file.
type frontMatter struct {
	Title      string   `yaml:"title"`
	Date       string   `yaml:"date"`
	Excerpt    string   `yaml:"excerpt"`
	Author     Author   `yaml:"author"`
	CoverImage string   `yaml:"coverImage"`
	Tags       []string `yaml:"tags"`
	OgImage    OgImage  `yaml:"ogImage"`
}

// FileSource serves content from a directory laid out as posts/<slug>.md
// and authors/<id>.json. Files are read on every call; the cache layer above
// keeps that off the hot path.
type FileSource struct {
	fsys fs.FS
	md   goldmark.Markdown
}

// NewFileSource reads content from fsys.
func NewFileSource(fsys fs.FS) *FileSource {
	return &FileSource{
		fsys: fsys,
		md:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

func (s *FileSource) ListPosts(ctx context.Context, q Query) (*PostPage, error) {
	posts, err := s.loadPosts(ctx)
	if err != nil {
		return nil, err
	}
	return Paginate(posts, q), nil
}

func (s *FileSource) GetPost(ctx context.Context, slug string) (*Post, error) {
	name := path.Join(postsDir, slug+".md")
	if strings.Contains(slug, "/") || !fs.ValidPath(name) {
		return nil, fmt.Errorf("post %q: %w", slug, ErrNotFound)
	}

	authors, err := s.ListAuthors(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.loadPost(name, authors)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("post %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *FileSource) ListTags(ctx context.Context) ([]string, error) {
	posts, err := s.loadPosts(ctx)
	if err != nil {
		return nil, err
	}
	return CollectTags(posts), nil
}

// ListAuthors skips author files that fail to parse.
func (s *FileSource) ListAuthors(_ context.Context) ([]Author, error) {
	names, err := fs.Glob(s.fsys, authorsDir+"/*.json")
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}

	authors := make([]Author, 0, len(names))
	for _, name := range names {
		a, err := s.loadAuthor(name)
		if err != nil {
			logging.Warn().Err(err).Str("file", name).Msg("Skipping unreadable author")
			continue
		}
		authors = append(authors, *a)
	}
	return authors, nil
}

func (s *FileSource) GetAuthor(_ context.Context, id string) (*Author, error) {
	name := path.Join(authorsDir, id+".json")
	if strings.Contains(id, "/") || !fs.ValidPath(name) {
		return nil, fmt.Errorf("author %q: %w", id, ErrNotFound)
	}

	a, err := s.loadAuthor(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("author %q: %w", id, ErrNotFound)
	}
	return a, err
}

func (s *FileSource) loadAuthor(name string) (*Author, error) {
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, err
	}
	var a Author
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return &a, nil
}

// loadPosts reads every post, newest first. Unparseable files are logged and
// skipped.
func (s *FileSource) loadPosts(ctx context.Context) ([]Post, error) {
	names, err := fs.Glob(s.fsys, postsDir+"/*.md")
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	authors, err := s.ListAuthors(ctx)
	if err != nil {
		return nil, err
	}

	posts := make([]Post, 0, len(names))
	for _, name := range names {
		p, err := s.loadPost(name, authors)
		if err != nil {
			logging.Warn().Err(err).Str("file", name).Msg("Skipping unreadable post")
			continue
		}
		posts = append(posts, *p)
	}
	SortByDate(posts)
	return posts, nil
}

func (s *FileSource) loadPost(name string, authors []Author) (*Post, error) {
	raw, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, err
	}

	header, body, err := splitFrontMatter(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	var fm frontMatter
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return nil, fmt.Errorf("%s: front matter: %w", name, err)
	}

	var html bytes.Buffer
	if err := s.md.Convert(body, &html); err != nil {
		return nil, fmt.Errorf("%s: render markdown: %w", name, err)
	}

	author := fm.Author
	if author.ID == "" && author.Name != "" {
		for _, a := range authors {
			if a.Name == author.Name {
				author = a
				break
			}
		}
	}

	date := fm.Date
	if date == "" {
		if info, err := fs.Stat(s.fsys, name); err == nil && !info.ModTime().IsZero() {
			date = info.ModTime().UTC().Format(time.RFC3339)
		}
	}

	tags := fm.Tags
	if tags == nil {
		tags = []string{}
	}

	return &Post{
		Slug:       strings.TrimSuffix(path.Base(name), ".md"),
		Title:      fm.Title,
		Content:    html.String(),
		RawContent: string(body),
		Date:       date,
		Excerpt:    fm.Excerpt,
		Author:     author,
		CoverImage: fm.CoverImage,
		Tags:       tags,
		OgImage:    fm.OgImage,
	}, nil
}

// splitFrontMatter separates a leading "---" delimited YAML block from the
// markdown body.
func splitFrontMatter(raw []byte) (header, body []byte, err error) {
	raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(raw, []byte("---\n")) {
		return nil, nil, errNoFrontMatter
	}
	rest := raw[len("---\n"):]

	var end int
	if bytes.HasPrefix(rest, []byte("---")) {
		rest = append([]byte("\n"), rest...)
	} else if end = bytes.Index(rest, []byte("\n---")); end < 0 {
		return nil, nil, errNoFrontMatter
	}
	header = rest[:end]
	body = rest[end+len("\n---"):]
	// Drop the remainder of the closing delimiter line.
	if nl := bytes.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = nil
	}
	return header, bytes.TrimLeft(body, "\n"), nil
}
