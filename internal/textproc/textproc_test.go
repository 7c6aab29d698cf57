package textproc

import "testing"

func TestFixLetters(t *testing.T) {
	t.Run("replaces Latin confusables", func(t *testing.T) {
		// Latin c/a/e/p/o inside a Cyrillic word, as OCR produces them.
		got := FixLetters("пpоцеcc")
		if got != "процесс" {
			t.Errorf("got %q, want %q", got, "процесс")
		}
	})

	t.Run("replaces OCR digit confusions", func(t *testing.T) {
		if got := FixLetters("з0на"); got != "зона" {
			t.Errorf("got %q, want %q", got, "зона")
		}
	})

	t.Run("idempotent on clean text", func(t *testing.T) {
		clean := FixLetters("пpоцеcc")
		if FixLetters(clean) != clean {
			t.Errorf("second pass changed text: %q", FixLetters(clean))
		}
	})

	t.Run("leaves non-confusable input alone", func(t *testing.T) {
		in := "теория множеств, глава 3-я: дžфи"
		fixed := FixLetters(in)
		if FixLetters(fixed) != fixed {
			t.Error("FixLetters must be a pure character substitution")
		}
	})
}

func TestFilterLetters(t *testing.T) {
	got := FilterLetters("Graph Theory: Граф №7 (обзор)")
	// Symbol stripping does not collapse whitespace; that is the
	// cleanup pipeline's job.
	want := "graph theory граф  обзор"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFilterKeywords(t *testing.T) {
	got := FilterKeywords([]string{"Граф!", "", "B-Tree"})
	if len(got) != 2 {
		t.Fatalf("expected 2 keywords, got %v", got)
	}
	if got[0] != "граф" || got[1] != "b-tree" {
		t.Errorf("unexpected keywords: %v", got)
	}
}

func TestCleanup(t *testing.T) {
	t.Run("strips non-target characters", func(t *testing.T) {
		got := Cleanup("теория 123 multigraph множеств")
		if got != "теория множеств" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("keeps short connective words", func(t *testing.T) {
		got := Cleanup("кошки и собаки в доме")
		if got != "кошки и собаки в доме" {
			t.Errorf("connectives should survive, got %q", got)
		}
	})

	t.Run("drops isolated stray letters", func(t *testing.T) {
		got := Cleanup("слово ж слово")
		if got != "слово слово" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("spaces commas and periods", func(t *testing.T) {
		got := Cleanup("один,два.три")
		if got != "один, два. три" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("collapses punctuation runs and whitespace", func(t *testing.T) {
		got := Cleanup("слово .,: слово   слово")
		if got != "слово слово слово" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("letter exposed by punctuation collapse survives", func(t *testing.T) {
		// The single-letter pass runs before punctuation collapse, so a
		// letter freed by the collapse stays in the text.
		got := Cleanup("слово,,,х,,,слово")
		if got != "слово х слово" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		inputs := []string{
			"теория 123 multigraph множеств",
			"один,два.три",
			"кошки и собаки в доме",
			"граф - это пара множеств: вершины, рёбра.",
		}
		for _, in := range inputs {
			once := Cleanup(in)
			if twice := Cleanup(once); twice != once {
				t.Errorf("Cleanup(Cleanup(%q)) = %q, want %q", in, twice, once)
			}
		}
	})
}
