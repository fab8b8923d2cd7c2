package importer

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/blogkit/blog"
)

const frontMatterDelim = "---"

// ParseFile reads a document with YAML front matter from path.
func ParseFile(path string) (blog.NewPost, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return blog.NewPost{}, fmt.Errorf("read %s: %w", path, err)
	}
	post, err := ParseDocument(data, filepath.Ext(path))
	if err != nil {
		return blog.NewPost{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return post, nil
}

// ParseDocument parses front matter and body from data. The body becomes
// the post content. When the front matter sets no format, it is inferred
// from ext: .md and .markdown are Markdown, anything else HTML.
func ParseDocument(data []byte, ext string) (blog.NewPost, error) {
	if !bytes.HasPrefix(data, []byte(frontMatterDelim)) {
		return blog.NewPost{}, fmt.Errorf("%w: document must start with %s", ErrFrontMatter, frontMatterDelim)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)

	var (
		frontLines []string
		bodyLines  []string
		inFront    bool
		foundEnd   bool
		lineNum    int
	)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		lineNum++

		switch {
		case lineNum == 1 && line == frontMatterDelim:
			inFront = true
		case inFront && line == frontMatterDelim:
			inFront = false
			foundEnd = true
		case inFront:
			frontLines = append(frontLines, line)
		case foundEnd:
			bodyLines = append(bodyLines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return blog.NewPost{}, fmt.Errorf("scan document: %w", err)
	}
	if !foundEnd {
		return blog.NewPost{}, fmt.Errorf("%w: not closed (missing %s)", ErrFrontMatter, frontMatterDelim)
	}

	var post blog.NewPost
	if err := yaml.Unmarshal([]byte(strings.Join(frontLines, "\n")), &post); err != nil {
		return blog.NewPost{}, fmt.Errorf("parse front matter: %w", err)
	}

	post.Content = strings.TrimSpace(strings.Join(bodyLines, "\n"))
	if post.Format == "" {
		post.Format = formatForExt(ext)
	}
	return post, nil
}

func formatForExt(ext string) blog.Format {
	switch strings.ToLower(ext) {
	case ".md", ".markdown":
		return blog.FormatMarkdown
	default:
		return blog.FormatHTML
	}
}
