// Package prompts holds the model prompt templates used by the model-assisted paths.
// Templates live in embedded JSON files mapping a key to the template text.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"sync"
)

// Enhancement is the template file for classification and assembly.
const Enhancement = "enhancement.json"

//go:embed *.json
var promptFiles embed.FS

// library is every embedded file parsed once: filename -> key -> template.
var library = sync.OnceValues(func() (map[string]map[string]string, error) {
	names, err := fs.Glob(promptFiles, "*.json")
	if err != nil {
		return nil, err
	}
	files := make(map[string]map[string]string, len(names))
	for _, name := range names {
		data, err := promptFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", name, err)
		}
		var templates map[string]string
		if err := json.Unmarshal(data, &templates); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", name, err)
		}
		files[name] = templates
	}
	return files, nil
})

func file(filename string) (map[string]string, error) {
	files, err := library()
	if err != nil {
		return nil, err
	}
	templates, ok := files[filename]
	if !ok {
		return nil, fmt.Errorf("unknown prompt file %s", filename)
	}
	return templates, nil
}

// Get returns the template stored under key in filename.
func Get(filename, key string) (string, error) {
	templates, err := file(filename)
	if err != nil {
		return "", err
	}
	template, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return template, nil
}

// MustGet is Get for templates that must exist; it panics otherwise.
func MustGet(filename, key string) string {
	template, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return template
}

// Render loads a template and fills its placeholders.
func Render(filename, key string, data map[string]string) (string, error) {
	template, err := Get(filename, key)
	if err != nil {
		return "", err
	}
	return Format(template, data), nil
}

// Format replaces placeholders of the form {{.Key}} with values from data.
// Unknown placeholders are left in place.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	pairs := make([]string, 0, len(data)*2)
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	// one pass, so values containing placeholder syntax are not expanded again
	return strings.NewReplacer(pairs...).Replace(template)
}

// List returns the template keys in filename, sorted.
func List(filename string) ([]string, error) {
	templates, err := file(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(templates))
	for key := range templates {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}
