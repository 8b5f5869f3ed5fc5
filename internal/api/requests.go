// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// DefaultPhotoSize is the longest edge requested when size is omitted.
const DefaultPhotoSize = 2048

type activitiesRequest struct {
	StartDate string `query:"startDate" validate:"omitempty,startdate"`
}

type activityRequest struct {
	ID string `query:"id" validate:"required,resourceid"`
}

type photosRequest struct {
	ID   string `query:"id" validate:"required,resourceid"`
	Size int    `query:"size" validate:"min=1,max=5000"`
}

type postRequest struct {
	Slug string `query:"slug" validate:"required,max=128"`
}

type authorRequest struct {
	ID string `query:"id" validate:"required,resourceid"`
}

// getIntParam reads an integer query parameter, falling back to def when
// it is missing or malformed.
func getIntParam(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// getBoolParam accepts the strconv.ParseBool spellings. Anything else is false.
func getBoolParam(r *http.Request, key string) bool {
	b, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && b
}

func urlParam(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}
