package nlp

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func loadTestTaxonomy(t *testing.T, content, rootKey string) *Taxonomy {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write taxonomy file: %v", err)
	}

	tax, err := LoadTaxonomy(path, rootKey)
	if err != nil {
		t.Fatalf("failed to load taxonomy: %v", err)
	}
	return tax
}

const damageYAML = `damage_types:
  Nhà cửa hư hỏng:
    - "nhà sập"
    - "tốc mái"
  Ngập lụt:
    - "ngập sâu"
  Hạ tầng giao thông:
    - "sập cầu"
`

func TestLoadTaxonomyKeepsFileOrder(t *testing.T) {
	tax := loadTestTaxonomy(t, damageYAML, "damage_types")

	want := []string{"Nhà cửa hư hỏng", "Ngập lụt", "Hạ tầng giao thông"}
	if !reflect.DeepEqual(tax.Categories(), want) {
		t.Errorf("expected categories %v, got %v", want, tax.Categories())
	}
}

func TestLoadTaxonomyMissingRootKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	if err := os.WriteFile(path, []byte(damageYAML), 0644); err != nil {
		t.Fatalf("failed to write taxonomy file: %v", err)
	}

	if _, err := LoadTaxonomy(path, "relief_items"); err == nil {
		t.Error("expected an error for a missing root key")
	}
}

func TestMatchNormalizesPhrases(t *testing.T) {
	tax := loadTestTaxonomy(t, damageYAML, "damage_types")

	// Phrases carry diacritics in the file; matching input is plain.
	got := tax.Match("toan bo khu pho ngap sau trong nuoc")
	if !reflect.DeepEqual(got, []string{"Ngập lụt"}) {
		t.Errorf("expected Ngập lụt, got %v", got)
	}
}

func TestMatchIsNonExclusive(t *testing.T) {
	tax := loadTestTaxonomy(t, damageYAML, "damage_types")

	got := tax.Match("nha sap va ngap sau khap noi")
	want := []string{"Nhà cửa hư hỏng", "Ngập lụt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMatchIsSubstringBased(t *testing.T) {
	tax := loadTestTaxonomy(t, damageYAML, "damage_types")

	// No word boundaries: the phrase may sit inside a longer run of text.
	got := tax.Match("tin khan sap cau treo qua song")
	if !reflect.DeepEqual(got, []string{"Hạ tầng giao thông"}) {
		t.Errorf("expected Hạ tầng giao thông, got %v", got)
	}
}

func TestMatchBlankText(t *testing.T) {
	tax := loadTestTaxonomy(t, damageYAML, "damage_types")

	if got := tax.Match("   "); got != nil {
		t.Errorf("expected no matches for blank text, got %v", got)
	}
}
