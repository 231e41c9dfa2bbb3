package nlp

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"stormsense/app/preprocess"
)

var wsRe = regexp.MustCompile(`\s+`)

// Taxonomy maps category names to diacritics-free phrases. Categories keep
// file order; matching is plain substring search with no word boundaries.
type Taxonomy struct {
	categories []string
	phrases    map[string][]string
}

// LoadTaxonomy reads one category map from a YAML file. The document has a
// single root key, category keys below it and phrase lists per category:
//
//	damage_types:
//	  Nhà cửa hư hỏng:
//	    - "nhà sập"
//
// Phrases are normalized like post text (lowercase, diacritics stripped) but
// not URL/mention-stripped, since phrases never contain those.
func LoadTaxonomy(path, rootKey string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy YAML: %w", err)
	}

	root := findMappingValue(&doc, rootKey)
	if root == nil {
		return nil, fmt.Errorf("root key %q not found in %s", rootKey, path)
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("root key %q must hold a category map", rootKey)
	}

	t := &Taxonomy{phrases: make(map[string][]string)}
	for i := 0; i+1 < len(root.Content); i += 2 {
		category := root.Content[i].Value
		value := root.Content[i+1]
		if value.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("category %q must hold a phrase list", category)
		}

		var phrases []string
		for _, p := range value.Content {
			phrase := normalizePhrase(p.Value)
			if phrase != "" {
				phrases = append(phrases, phrase)
			}
		}
		t.categories = append(t.categories, category)
		t.phrases[category] = phrases
	}

	slog.Info("Taxonomy loaded", "path", path, "root", rootKey, "categories", len(t.categories))

	return t, nil
}

// Match returns every category with at least one phrase contained in
// textNorm. Categories are non-exclusive; the first matching phrase settles
// a category and the scan moves on.
func (t *Taxonomy) Match(textNorm string) []string {
	var out []string
	if strings.TrimSpace(textNorm) == "" {
		return out
	}
	for _, category := range t.categories {
		for _, phrase := range t.phrases[category] {
			if strings.Contains(textNorm, phrase) {
				out = append(out, category)
				break
			}
		}
	}
	return out
}

// Categories returns category names in file order.
func (t *Taxonomy) Categories() []string {
	return t.categories
}

func normalizePhrase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = preprocess.StripDiacritics(s)
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}

func findMappingValue(n *yaml.Node, key string) *yaml.Node {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}
