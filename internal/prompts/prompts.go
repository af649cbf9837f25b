// Package prompts holds the prompt text sent to the generation provider.
// Wording lives in the embedded template files; callers look it up by key.
package prompts

import (
	"embed"
	"fmt"
	"path"
	"strings"
	"text/template"
)

//go:embed templates
var files embed.FS

var tmpl = template.Must(
	template.New("prompts").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(files, "templates/agents/*.tmpl", "templates/chat/*.tmpl", "templates/admin/*.tmpl"),
)

// Document returns the brief for one strategy document type.
func Document(key string) (string, error) {
	b, err := files.ReadFile(path.Join("templates/documents", key+".md"))
	if err != nil {
		return "", fmt.Errorf("prompts: no document template %q: %w", key, err)
	}
	return strings.TrimSpace(string(b)), nil
}

// DocumentPreamble is the consultant instruction shared by every document.
func DocumentPreamble() string {
	s, err := Document("preamble")
	if err != nil {
		panic(err)
	}
	return s
}

// Render executes the named template, e.g. "ad-creative.system" or "persona".
func Render(name string, data any) (string, error) {
	t := tmpl.Lookup(name + ".tmpl")
	if t == nil {
		return "", fmt.Errorf("prompts: unknown template %q", name)
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("prompts: render %q: %w", name, err)
	}
	return strings.TrimSpace(b.String()), nil
}

func Has(name string) bool {
	return tmpl.Lookup(name+".tmpl") != nil
}
