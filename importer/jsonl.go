package importer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/randalmurphal/blogkit/blog"
)

// Record is one decoded JSONL line.
type Record struct {
	Line int
	Post blog.NewPost
}

// ReadJSONL decodes one post per line from r. Blank lines are skipped.
// Malformed lines are skipped too and reported together in the returned
// error as *LineError values; the records that did decode are still
// returned.
func ReadJSONL(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)

	var (
		records []Record
		errs    []error
		lineNum int
	)
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var post blog.NewPost
		if err := json.Unmarshal(line, &post); err != nil {
			errs = append(errs, &LineError{Line: lineNum, Err: err})
			continue
		}
		records = append(records, Record{Line: lineNum, Post: post})
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("scan jsonl: %w", err)
	}

	return records, errors.Join(errs...)
}
