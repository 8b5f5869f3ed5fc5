// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package strava

import "strings"

// DefaultPhotoBaseURL hosts the scraped media referenced by snapshots.
const DefaultPhotoBaseURL = "https://jaspercycles.com/content/strava_data/media"

// RewritePhotoURLs returns copies of photos whose relative URLs are joined
// onto base. Absolute http:// and https:// URLs are kept as they are. The
// input slice is not modified.
func RewritePhotoURLs(photos []Photo, base string) []Photo {
	if photos == nil {
		return nil
	}
	base = strings.TrimRight(base, "/")

	out := make([]Photo, len(photos))
	for i, p := range photos {
		if p.URLs != nil {
			urls := make(map[string]string, len(p.URLs))
			for size, u := range p.URLs {
				urls[size] = absoluteURL(base, u)
			}
			p.URLs = urls
		}
		if p.VideoURL != "" {
			p.VideoURL = absoluteURL(base, p.VideoURL)
		}
		out[i] = p
	}
	return out
}

func absoluteURL(base, u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return base + "/" + strings.TrimLeft(u, "/")
}
