// Package importer loads posts in bulk from files.
//
// Two source formats are understood. Documents are Markdown or HTML files
// that start with YAML front matter:
//
//	---
//	title: Best Keyboards of the Year
//	author: Ann
//	cover_image: /covers/keyboards.jpg
//	---
//	Our favourites:
//
//	{{block name="Top Picks" products="SKU123, SKU789"}}
//
// JSONL files hold one JSON post per line, using the API field names
// (title, author, content, shortSnippet, coverImage, format).
//
// Every post is validated and its block tags are parsed before it is
// stored, so a post with a malformed tag is rejected rather than stored
// unrenderable. One bad post does not stop the rest of an import.
package importer
