// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package content

const mockExcerpt = "Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore et dolore magna aliqua. Praesent elementum facilisis leo vel fringilla est ullamcorper eget."

const mockBody = `## Lorem Ipsum

Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore et dolore magna aliqua. Praesent elementum facilisis leo vel fringilla est ullamcorper eget.

## Tristique Senectus

Tristique senectus et netus et malesuada fames ac turpis. In mollis nunc sed id semper. Egestas tellus rutrum tellus pellentesque.
`

const mockBodyHTML = `<h2>Lorem Ipsum</h2>
<p>Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore et dolore magna aliqua. Praesent elementum facilisis leo vel fringilla est ullamcorper eget.</p>
<h2>Tristique Senectus</h2>
<p>Tristique senectus et netus et malesuada fames ac turpis. In mollis nunc sed id semper. Egestas tellus rutrum tellus pellentesque.</p>
`

// MockAuthors returns the authors served when the content API is down.
func MockAuthors() []Author {
	bio := func(s string) *string { return &s }
	return []Author{
		{
			ID:      "jasper-williams",
			Name:    "Jasper Williams",
			Picture: "/assets/images/authors/jasper.jpeg",
			Bio:     bio("Lifelong cyclist and former software engineer who decided to trade the keyboard for a map and the office for the open road."),
		},
		{
			ID:      "sofia-mendez",
			Name:    "Sofia Mendez",
			Picture: "/assets/images/authors/sofia.jpeg",
			Bio:     bio("Adventure photographer and occasional cyclist based in Barcelona."),
		},
	}
}

// MockPosts returns the posts served when the content API is down, newest
// first.
func MockPosts() []Post {
	post := func(slug, title, author, picture string) Post {
		return Post{
			Slug:       slug,
			Title:      title,
			Content:    mockBodyHTML,
			RawContent: mockBody,
			Date:       "2020-03-16T05:35:07.322Z",
			Excerpt:    mockExcerpt,
			Author:     Author{Name: author, Picture: picture},
			CoverImage: "/assets/blog/" + slug + "/cover.jpg",
			Tags:       []string{},
			OgImage:    OgImage{URL: "/assets/blog/" + slug + "/cover.jpg"},
		}
	}
	return []Post{
		post("dynamic-routing", "Dynamic Routing and Static Generation", "JJ Kasper", "/assets/blog/authors/jj.jpeg"),
		post("hello-world", "Learn How to Pre-render Pages Using Static Generation with Next.js", "Tim Neutkens", "/assets/blog/authors/tim.jpeg"),
		post("preview", "Preview Mode for Static Generation", "Joe Haddad", "/assets/blog/authors/joe.jpeg"),
	}
}
