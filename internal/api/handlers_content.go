// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package api

import (
	"net/http"
	"time"

	"github.com/jaspercycles/journeycache/internal/content"
)

// Posts returns one page of posts.
func (h *Handler) Posts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := content.Query{
		Page:    getIntParam(r, "page", 1),
		PerPage: getIntParam(r, "per_page", content.DefaultPerPage),
		Tag:     r.URL.Query().Get("tag"),
	}
	if !validateRequest(w, r, &q) {
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=60")
	respondData(w, r, h.deps.Journey.Posts(r.Context(), q, getBoolParam(r, "skipCache")), start)
}

// Post returns one post by slug.
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := postRequest{Slug: urlParam(r, "slug")}
	if !validateRequest(w, r, &req) {
		return
	}

	post, ok := h.deps.Journey.Post(r.Context(), req.Slug, getBoolParam(r, "skipCache"))
	if !ok {
		respondNotFound(w, r, "post")
		return
	}
	respondData(w, r, post, start)
}

// Tags returns every tag in use.
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondData(w, r, h.deps.Journey.Tags(r.Context(), getBoolParam(r, "skipCache")), start)
}

// Authors returns every author.
func (h *Handler) Authors(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondData(w, r, h.deps.Journey.Authors(r.Context(), getBoolParam(r, "skipCache")), start)
}

// Author returns one author.
func (h *Handler) Author(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := authorRequest{ID: urlParam(r, "id")}
	if !validateRequest(w, r, &req) {
		return
	}

	author, ok := h.deps.Journey.Author(r.Context(), req.ID, getBoolParam(r, "skipCache"))
	if !ok {
		respondNotFound(w, r, "author")
		return
	}
	respondData(w, r, author, start)
}
