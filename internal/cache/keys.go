// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package cache

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Prefix marks every key owned by the cache service.
const Prefix = "cache:"

// Key domains.
const (
	DomainActivities   = "strava:activities"
	DomainActivity     = "strava:activity"
	DomainRoute        = "strava:route"
	DomainPlannedRoute = "strava:planned-route"
	DomainPhotos       = "strava:photos"

	DomainPosts   = "content:posts"
	DomainPost    = "content:post"
	DomainTags    = "content:tags"
	DomainAuthors = "content:authors"
	DomainAuthor  = "content:author"
)

const keySeparator = ":"

// escaper keeps parameters from introducing extra separators, so
// ("a:b", "c") and ("a", "b:c") never produce the same key.
var escaper = strings.NewReplacer("%", "%25", keySeparator, "%3A")

// GenerateKey derives the storage key for a domain and its parameters.
// It is pure: equal inputs always give equal keys, and any differing
// parameter gives a different key.
//
// Parameters are rendered by type: strings verbatim, integers in base 10,
// booleans as true/false, times as RFC3339 in UTC keeping fractional
// seconds, anything else via fmt.
func GenerateKey(domain string, params ...any) string {
	var b strings.Builder
	b.WriteString(Prefix)
	b.WriteString(domain)
	b.WriteString(keySeparator)
	for i, p := range params {
		if i > 0 {
			b.WriteString(keySeparator)
		}
		b.WriteString(escaper.Replace(formatParam(p)))
	}
	return b.String()
}

func formatParam(p any) string {
	switch v := p.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// domainOf extracts the two-segment domain of a cache key for metric labels.
func domainOf(key string) string {
	rest, ok := strings.CutPrefix(key, Prefix)
	if !ok {
		return "foreign"
	}
	parts := strings.SplitN(rest, keySeparator, 3)
	if len(parts) < 2 {
		return rest
	}
	return parts[0] + keySeparator + parts[1]
}
