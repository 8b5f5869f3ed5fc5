// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package strava

import "testing"

func TestRewritePhotoURLs(t *testing.T) {
	tests := []struct {
		name string
		base string
		in   string
		want string
	}{
		{"relative", "https://m.example.com", "a/b.jpg", "https://m.example.com/a/b.jpg"},
		{"leading slash", "https://m.example.com", "/a/b.jpg", "https://m.example.com/a/b.jpg"},
		{"trailing base slash", "https://m.example.com/", "a.jpg", "https://m.example.com/a.jpg"},
		{"https kept", "https://m.example.com", "https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"http kept", "https://m.example.com", "http://cdn.example.com/a.jpg", "http://cdn.example.com/a.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := []Photo{{URLs: map[string]string{"600": tt.in}}}
			out := RewritePhotoURLs(in, tt.base)
			if got := out[0].URLs["600"]; got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
			if in[0].URLs["600"] != tt.in {
				t.Error("input photo was modified")
			}
		})
	}
}

func TestRewritePhotoURLsNil(t *testing.T) {
	if RewritePhotoURLs(nil, "x") != nil {
		t.Error("nil input must stay nil")
	}
}
