package mcpserver

// PostFormatContract describes the markdown post format the vault follows.
// Served as the ansuz://post-format resource so clients can understand what
// a post looks like before reading any.
const PostFormatContract = `# Ansuz Post Format

Posts are markdown files with optional YAML frontmatter:

` + "```markdown" + `
---
title: "My Post Title"
date: "2024-03-15"
topics:
  - painting
  - process
published: true
author: "Jane Doe"
excerpt: "A short teaser shown in list views."
---

Post body in markdown. Link to other posts with [[wikilinks]],
optionally aliased: [[target-post|display text]]. Inline #hashtags
also become topics.
` + "```" + `

## Field semantics

- title: falls back to the filename (without extension) when absent.
- date: "YYYY-MM-DD" string; falls back to the file modification date.
- topics: merged with inline #hashtags from the body, deduplicated
  case-insensitively, frontmatter order first. The "tags" key is
  accepted as an alias.
- published: defaults to true. Unpublished posts are hidden in
  production and visible in development.
- excerpt: falls back to the first non-heading paragraph of the body,
  cut to 160 characters.

## Slugs

A post's slug is its filename without the .md extension, normalized to
lowercase-hyphenated form. Wikilink targets are normalized the same way,
so [[My First Post]] resolves to the post my-first-post.md.
`
