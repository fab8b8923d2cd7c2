package template

import (
	"html/template"
	"reflect"
	"strings"

	"github.com/randalmurphal/blogkit/excerpt"
)

// builtinFuncs are available to every template an Engine compiles.
func builtinFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": truncate,
		"words":    truncateWords,
		"upper":    strings.ToUpper,
		"lower":    strings.ToLower,
		"trim":     strings.TrimSpace,
		"join":     strings.Join,
		"default":  orDefault,
		"count":    count,
	}
}

// truncate shortens s to at most n runes plus "...", cutting at a word
// boundary where one exists.
func truncate(s string, n int) string {
	out, _ := excerpt.Runes().Truncate(s, n)
	return out
}

// truncateWords shortens s to at most n words plus "...".
func truncateWords(s string, n int) string {
	out, _ := excerpt.Words().Truncate(s, n)
	return out
}

// orDefault returns def when v is nil or an empty string.
func orDefault(v, def any) any {
	if v == nil {
		return def
	}
	if s, ok := v.(string); ok && s == "" {
		return def
	}
	return v
}

// count returns the length of a slice, array, map or string, and 0 for
// anything else.
func count(v any) int {
	if v == nil {
		return 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return rv.Len()
	}
	return 0
}
