// Package excerpt derives short plain-text views of post content: snippets
// for listing cards and reading-time estimates.
//
// Post content is HTML (or Markdown) with embedded {{block ...}} tags.
// PlainText drops the tags and the markup and collapses whitespace:
//
//	excerpt.PlainText(`<p>Hello <b>world</b></p>{{block name="Top Picks"}}`)
//	// "Hello world"
//
// Snippet cuts that text down to a word budget at a word boundary:
//
//	excerpt.Snippet(post.Content, excerpt.DefaultSnippetWords)
//
// # Truncation
//
// A Truncator keeps the start of a text within a limit measured by its
// Counter and appends a marker. Words and Runes return the two common
// configurations. Cuts fall between words and never split a character.
package excerpt
