package template

import (
	"errors"
	"html/template"
	"reflect"
	"strings"
	"sync"
	"testing"
)

var products = []map[string]any{
	{"sku": "SKU123", "name": "Mechanical Keyboard", "price": "$99"},
	{"sku": "SKU456", "name": "Gaming Mouse", "price": "$49"},
}

func TestEngine_Render(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name string
		src  string
		vars map[string]any
		want template.HTML
	}{
		{"variable", "<b>{{name}}</b>", map[string]any{"name": "Top Picks"}, "<b>Top Picks</b>"},
		{"spaces inside braces", "<b>{{ name }}</b>", map[string]any{"name": "x"}, "<b>x</b>"},
		{"markup is escaped", "<h3>{{name}}</h3>", map[string]any{"name": "<i>&</i>"}, "<h3>&lt;i&gt;&amp;&lt;/i&gt;</h3>"},
		{"attribute", `<img alt="{{alt}}">`, map[string]any{"alt": `say "hi"`}, `<img alt="say &#34;hi&#34;">`},
		{"safe url", `<img src="{{image}}">`, map[string]any{"image": "/a b.png"}, `<img src="/a%20b.png">`},
		{"unsafe url", `<a href="{{link}}">x</a>`, map[string]any{"link": "javascript:alert(1)"}, `<a href="#ZgotmplZ">x</a>`},
		{"native syntax", "{{.name}}{{range .list}}[{{.}}]{{end}}", map[string]any{"name": "n", "list": []string{"a", "b"}}, "n[a][b]"},
		{"if", "{{#if image}}img{{/if}}", map[string]any{"image": "/x.png"}, "img"},
		{"if else", "{{#if image}}img{{else}}none{{/if}}", map[string]any{"image": ""}, "none"},
		{"unless", "{{#unless products}}empty{{/unless}}", map[string]any{"products": []map[string]any{}}, "empty"},
		{"each", "{{#each products}}<li data-sku=\"{{sku}}\">{{name}}</li>{{/each}}", map[string]any{"products": products},
			`<li data-sku="SKU123">Mechanical Keyboard</li><li data-sku="SKU456">Gaming Mouse</li>`},
		{"each empty", "<ul>{{#each products}}<li>{{name}}</li>{{/each}}</ul>", map[string]any{"products": nil}, "<ul></ul>"},
		{"nested sections", "{{#if products}}{{#each products}}{{#if price}}{{price}} {{/if}}{{/each}}{{/if}}", map[string]any{"products": products}, "$99 $49 "},
		{"with", "{{#with product}}{{name}}{{/with}}", map[string]any{"product": products[1]}, "Gaming Mouse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Render(tt.src, tt.vars)
			if err != nil {
				t.Fatalf("Render(%q): %v", tt.src, err)
			}
			if got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestEngine_RenderFuncs(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		src  string
		vars map[string]any
		want template.HTML
	}{
		{"{{truncate caption 10}}", map[string]any{"caption": "This is a very long caption"}, "This is a..."},
		{"{{truncate caption 100}}", map[string]any{"caption": "Short"}, "Short"},
		{"{{words caption 3}}", map[string]any{"caption": "one two three four"}, "one two three..."},
		{"{{upper name}}", map[string]any{"name": "picks"}, "PICKS"},
		{"{{lower name}}", map[string]any{"name": "PICKS"}, "picks"},
		{"[{{trim name}}]", map[string]any{"name": "  x "}, "[x]"},
		{`{{join skus ", "}}`, map[string]any{"skus": []string{"A", "B"}}, "A, B"},
		{`{{join skus "|"}}`, map[string]any{"skus": []string{"A", "B"}}, "A|B"},
		{"{{count skus}}", map[string]any{"skus": []string{"A", "B", "C"}}, "3"},
		{`{{default title "Untitled"}}`, map[string]any{"title": ""}, "Untitled"},
		{`{{default title "Untitled"}}`, map[string]any{"title": "Set"}, "Set"},
		{"{{truncate caption 5}}", map[string]any{"caption": "<script>"}, "&lt;scri..."},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := e.Render(tt.src, tt.vars)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_Errors(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name    string
		src     string
		vars    map[string]any
		wantErr error
	}{
		{"empty", "", nil, ErrEmpty},
		{"blank", " \n", nil, ErrEmpty},
		{"unclosed if", "{{#if x}}open", nil, ErrParse},
		{"stray close", "{{/each}}", nil, ErrParse},
		{"unknown function", "{{shout name}}", nil, ErrParse},
		{"wrong arity", "{{truncate name}}", map[string]any{"name": "x"}, ErrExecute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Render(tt.src, tt.vars)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEngine_CompileAndLookup(t *testing.T) {
	e := NewEngine()

	tmpl, err := e.Compile("figure", `<figure><img src="{{image}}" alt="{{name}}"></figure>`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if tmpl.Name() != "figure" {
		t.Errorf("Name() = %q", tmpl.Name())
	}
	if got, ok := e.Lookup("figure"); !ok || got != tmpl {
		t.Fatal("Lookup did not return the compiled template")
	}

	out, err := e.RenderNamed("figure", map[string]any{"image": "/a.png", "name": "A & B"})
	if err != nil {
		t.Fatalf("RenderNamed: %v", err)
	}
	if want := template.HTML(`<figure><img src="/a.png" alt="A &amp; B"></figure>`); out != want {
		t.Errorf("got %q, want %q", out, want)
	}

	replaced := e.MustCompile("figure", "<hr>")
	if got, _ := e.Lookup("figure"); got != replaced {
		t.Error("Compile did not replace the template of the same name")
	}

	if _, err := e.RenderNamed("missing", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("RenderNamed(missing): got %v, want ErrNotFound", err)
	}
	if _, err := e.Compile("bad", "{{#each x}}"); !errors.Is(err, ErrParse) {
		t.Errorf("Compile(bad): got %v, want ErrParse", err)
	}
	if _, ok := e.Lookup("bad"); ok {
		t.Error("failed compile must not be stored")
	}
}

func TestEngine_MustCompilePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewEngine().MustCompile("bad", "{{#unless x}}")
}

func TestEngine_AddFunc(t *testing.T) {
	e := NewEngine()
	e.AddFunc("currency", func(code, amount string) string { return amount + " " + code })

	got, err := e.Render(`{{currency "EUR" price}}`, map[string]any{"price": "12"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "12 EUR" {
		t.Errorf("got %q, want %q", got, "12 EUR")
	}
}

func TestTemplate_Variables(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		src  string
		want []string
	}{
		{`{{#if image}}<img src="{{image}}">{{/if}}{{name}}{{truncate caption 5}}`, []string{"image", "name", "caption"}},
		{"{{#each products}}{{sku}}{{/each}}{{#unless products}}none{{/unless}}", []string{"products", "sku"}},
		{`{{join tags ", "}}{{.native}}`, []string{"tags"}},
		{"plain", nil},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := e.MustCompile("v", tt.src).Variables()
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Variables() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTemplate_ConcurrentRender(t *testing.T) {
	tmpl := NewEngine().MustCompile("c", "{{#each products}}{{name}};{{/each}}")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := tmpl.Render(map[string]any{"products": products})
			if err != nil || !strings.HasPrefix(string(out), "Mechanical Keyboard;") {
				t.Errorf("Render() = %q, %v", out, err)
			}
		}()
	}
	wg.Wait()
}

func TestConvertSyntax(t *testing.T) {
	isFunc := func(s string) bool { return s == "upper" }

	tests := []struct {
		in   string
		want string
	}{
		{"{{name}}", "{{.name}}"},
		{"{{#if a}}x{{else}}y{{/if}}", "{{if .a}}x{{else}}y{{end}}"},
		{"{{#unless a}}x{{/unless}}", "{{if not .a}}x{{end}}"},
		{"{{#each a}}x{{/each}}", "{{range .a}}x{{end}}"},
		{`{{upper "lit" name 3}}`, `{{upper "lit" .name 3}}`},
		{"{{end}}{{.x}}", "{{end}}{{.x}}"},
		{"{{#custom a}}", "{{#custom a}}"},
		{"no actions", "no actions"},
	}

	for _, tt := range tests {
		if got := convertSyntax(tt.in, isFunc); got != tt.want {
			t.Errorf("convertSyntax(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
