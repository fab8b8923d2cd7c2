package template

import (
	"regexp"
	"strings"
)

// actionPattern matches one {{...}} action. Actions cannot contain braces.
var actionPattern = regexp.MustCompile(`\{\{\s*([^{}]*?)\s*\}\}`)

// keywords are html/template words that are never variable names.
var keywords = map[string]bool{
	"if": true, "else": true, "end": true, "range": true, "with": true,
	"define": true, "template": true, "block": true, "break": true,
	"continue": true, "nil": true, "true": true, "false": true,
}

// sections maps block helpers to the html/template action they open.
var sections = map[string]string{
	"if":     "if",
	"unless": "if not",
	"each":   "range",
	"with":   "with",
}

// convertSyntax rewrites the Handlebars dialect into html/template syntax
// one action at a time. isFunc reports whether a name is a registered
// function; its arguments are converted like variables. Anything already
// in html/template form is left alone.
func convertSyntax(src string, isFunc func(string) bool) string {
	return actionPattern.ReplaceAllStringFunc(src, func(m string) string {
		inner := actionPattern.FindStringSubmatch(m)[1]
		return "{{" + convertAction(inner, isFunc) + "}}"
	})
}

func convertAction(a string, isFunc func(string) bool) string {
	switch {
	case a == "else":
		return a
	case strings.HasPrefix(a, "/"):
		if _, ok := sections[a[1:]]; ok {
			return "end"
		}
		return a
	case strings.HasPrefix(a, "#"):
		kw, rest, _ := strings.Cut(a[1:], " ")
		open, ok := sections[kw]
		if !ok {
			return a
		}
		return open + " " + convertArgs(splitArgs(strings.TrimSpace(rest)))
	}

	args := splitArgs(a)
	switch {
	case len(args) == 1 && isVariable(args[0]):
		return "." + args[0]
	case len(args) > 1 && isFunc(args[0]):
		return args[0] + " " + convertArgs(args[1:])
	}
	return a
}

func convertArgs(args []string) string {
	out := make([]string, len(args))
	for i, arg := range args {
		if isVariable(arg) {
			out[i] = "." + arg
		} else {
			out[i] = arg
		}
	}
	return strings.Join(out, " ")
}

// splitArgs splits on spaces outside quoted strings.
func splitArgs(s string) []string {
	var (
		args  []string
		cur   strings.Builder
		quote rune
	)
	flush := func() {
		if cur.Len() > 0 {
			args = append(args, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'' || r == '`':
			quote = r
			cur.WriteRune(r)
		case r == ' ' || r == '\t':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return args
}

// isVariable reports whether s is a bare identifier that names a variable.
func isVariable(s string) bool {
	if s == "" || keywords[s] {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// extractVariables returns the variable names src references, in order of
// first appearance. Names inside #each bodies are included; the dialect
// has no scoping.
func extractVariables(src string, isFunc func(string) bool) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(args []string) {
		for _, a := range args {
			if isVariable(a) && !isFunc(a) && !seen[a] {
				seen[a] = true
				out = append(out, a)
			}
		}
	}

	for _, m := range actionPattern.FindAllStringSubmatch(src, -1) {
		a := m[1]
		switch {
		case strings.HasPrefix(a, "#"):
			kw, rest, _ := strings.Cut(a[1:], " ")
			if _, ok := sections[kw]; ok {
				add(splitArgs(rest))
			}
		case strings.HasPrefix(a, "/"):
		default:
			args := splitArgs(a)
			if len(args) > 1 && isFunc(args[0]) {
				add(args[1:])
			} else if len(args) == 1 {
				add(args)
			}
		}
	}
	return out
}
