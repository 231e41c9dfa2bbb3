package nlp

import (
	"math"
	"reflect"
	"strings"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreBlankTextIsNeutral(t *testing.T) {
	lx := NewLexicon([]string{"tot"}, []string{"te"})

	for _, input := range []string{"", "   "} {
		label, score := lx.Score(input)
		if label != LabelNeu || score != 0 {
			t.Errorf("expected neutral zero for %q, got %q %f", input, label, score)
		}
	}
}

func TestScoreSingleVotes(t *testing.T) {
	lx := NewLexicon([]string{"an toan"}, []string{"nguy hiem"})

	label, score := lx.Score("khu vuc nay an toan")
	if label != LabelPos || !almostEqual(score, 1.0/3.0) {
		t.Errorf("expected pos 0.333, got %q %f", label, score)
	}

	label, score = lx.Score("khu vuc nay nguy hiem")
	if label != LabelNeg || !almostEqual(score, -1.0/3.0) {
		t.Errorf("expected neg -0.333, got %q %f", label, score)
	}
}

func TestScoreNegationFlips(t *testing.T) {
	lx := NewLexicon([]string{"an toan"}, nil)

	label, score := lx.Score("khong an toan")
	if label != LabelNeg {
		t.Errorf("expected negated phrase to score neg, got %q (%f)", label, score)
	}
}

func TestScoreNegationWindow(t *testing.T) {
	lx := NewLexicon([]string{"an toan"}, nil)

	// Negator four tokens back is outside the window.
	label, _ := lx.Score("khong ai o vung nay an toan")
	if label != LabelPos {
		t.Errorf("expected distant negator to be ignored, got %q", label)
	}
}

func TestScoreLongestPhraseWins(t *testing.T) {
	lx := NewLexicon([]string{"cam on"}, []string{"cam"})

	label, _ := lx.Score("cam on doan cuu tro")
	if label != LabelPos {
		t.Errorf("expected phrase to beat shorter entry, got %q", label)
	}
}

func TestScorePhraseConsumesTokens(t *testing.T) {
	// "on" alone is positive too; the phrase match must consume it so a
	// single thank-you yields one vote, not two.
	lx := NewLexicon([]string{"cam on", "on"}, nil)

	_, score := lx.Score("cam on")
	if !almostEqual(score, 1.0/3.0) {
		t.Errorf("expected a single vote worth 0.333, got %f", score)
	}
}

func TestBoosterNeverShrinksContribution(t *testing.T) {
	lx := NewLexicon([]string{"an toan"}, nil)

	_, plain := lx.Score("vung nay an toan")
	_, boosted := lx.Score("vung nay rat an toan")
	if math.Abs(boosted) < math.Abs(plain) {
		t.Errorf("expected booster not to shrink magnitude: %f vs %f", plain, boosted)
	}
}

func TestScoreExclamationAmplifies(t *testing.T) {
	lx := NewLexicon([]string{"tot"}, nil)

	_, plain := lx.Score("tot")
	_, excited := lx.Score("tot!")
	if excited <= plain {
		t.Errorf("expected exclamation to raise the score: %f vs %f", plain, excited)
	}

	// The multiplier caps at +50% no matter how many marks.
	_, capped := lx.Score("tot " + strings.Repeat("!", 20))
	if !almostEqual(capped, 1.5/3.0) {
		t.Errorf("expected capped score 0.5, got %f", capped)
	}
}

func TestScoreEmojiOnly(t *testing.T) {
	lx := NewLexicon(nil, nil)

	// A single positive emoji lands exactly on the threshold, which is not
	// enough to tip the label.
	label, score := lx.Score("da den noi 🙂")
	if label != LabelNeu || !almostEqual(score, 0.05) {
		t.Errorf("expected neu 0.05, got %q %f", label, score)
	}

	label, score = lx.Score("nha ngap het 💔")
	if label != LabelNeg || !almostEqual(score, -0.2/3.0) {
		t.Errorf("expected neg -0.0667, got %q %f", label, score)
	}
}

func TestScoreEmojiDeltaIsCapped(t *testing.T) {
	lx := NewLexicon(nil, nil)

	_, one := lx.Score("🙂")
	_, many := lx.Score("🙂 ❤️ 👍 💪")
	if !almostEqual(one, many) {
		t.Errorf("expected positive emoji delta capped: %f vs %f", one, many)
	}
}

func TestScoreClampsToUnitRange(t *testing.T) {
	lx := NewLexicon(nil, []string{"te"})

	_, score := lx.Score(strings.Repeat("te ", 10) + "!!!")
	if score < -1.0 {
		t.Errorf("expected score clamped to -1, got %f", score)
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("nha sap, can #hotro ngay!")
	want := []string{"nha", "sap", "can", "#hotro", "ngay"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestLoadLexiconFallsBackWhenMissing(t *testing.T) {
	lx, err := LoadLexicon(t.TempDir())
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}

	label, _ := lx.Score("cam on doi cuu ho")
	if label != LabelPos {
		t.Errorf("expected built-in entries to score pos, got %q", label)
	}
}
