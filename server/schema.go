package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/randalmurphal/blogkit/blog"
)

// schemaTypes maps schema names to the payloads they describe.
var schemaTypes = map[string]any{
	"post":        &blog.Post{},
	"new-post":    &blog.NewPost{},
	"post-update": &blog.PostUpdate{},
	"comment":     &blog.Comment{},
	"new-comment": &blog.NewComment{},
}

var (
	schemaOnce  sync.Once
	schemaCache map[string]json.RawMessage
	schemaErr   error
)

// schemas reflects every payload schema once.
func schemas() (map[string]json.RawMessage, error) {
	schemaOnce.Do(func() {
		r := &jsonschema.Reflector{ExpandedStruct: true}
		schemaCache = make(map[string]json.RawMessage, len(schemaTypes))
		for name, v := range schemaTypes {
			data, err := json.Marshal(r.Reflect(v))
			if err != nil {
				schemaErr = err
				return
			}
			schemaCache[name] = data
		}
	})
	return schemaCache, schemaErr
}

// SchemaNames returns the names served under /api/schema, sorted.
func SchemaNames() []string {
	names := make([]string, 0, len(schemaTypes))
	for name := range schemaTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Server) handleSchemaIndex(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"schemas": SchemaNames()})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	all, err := schemas()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, ok := all[r.PathValue("name")]
	if !ok {
		s.writeMessage(w, http.StatusNotFound, msgUnknownSchema)
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
