package document

import "testing"

func TestNew(t *testing.T) {
	d := New("teoriya-mnozhestv")

	if d.ArticleSlug != "teoriya-mnozhestv" {
		t.Errorf("expected slug to be set, got %q", d.ArticleSlug)
	}
	if d.ParseStatus != StatusWaiting || d.ProcessStatus != StatusWaiting || d.LemmaStatus != StatusWaiting {
		t.Errorf("all statuses should start waiting, got %s/%s/%s",
			d.ParseStatus, d.ProcessStatus, d.LemmaStatus)
	}
	if d.Lemmas == nil {
		t.Error("Lemmas map should be initialized")
	}
}

func TestStatusCanAdvanceTo(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusWaiting, StatusInProgress, true},
		{StatusWaiting, StatusDelete, true},
		{StatusWaiting, StatusCompleted, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusError, true},
		{StatusInProgress, StatusDelete, true},
		{StatusInProgress, StatusWaiting, true}, // explicit retry back-off
		{StatusCompleted, StatusWaiting, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusError, StatusInProgress, false},
		{StatusDelete, StatusWaiting, false},
	}
	for _, c := range cases {
		if got := c.from.CanAdvanceTo(c.to); got != c.want {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusError, StatusDelete} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusWaiting, StatusInProgress} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestStageGating(t *testing.T) {
	t.Run("processing requires completed parse", func(t *testing.T) {
		d := New("a")
		if d.CanProcess() {
			t.Error("processing must not start before parse completes")
		}
		d.ParseStatus = StatusCompleted
		if !d.CanProcess() {
			t.Error("processing should be allowed once parse completes")
		}
	})

	t.Run("lemmatization requires both prior stages", func(t *testing.T) {
		d := New("a")
		d.ParseStatus = StatusCompleted
		if d.CanLemmatize() {
			t.Error("lemmatization must not start before processing completes")
		}
		d.ProcessStatus = StatusCompleted
		if !d.CanLemmatize() {
			t.Error("lemmatization should be allowed once both stages complete")
		}
	})

	t.Run("fully processed", func(t *testing.T) {
		d := New("a")
		d.ParseStatus = StatusCompleted
		d.ProcessStatus = StatusCompleted
		if d.FullyProcessed() {
			t.Error("not fully processed until lemmatization completes")
		}
		d.LemmaStatus = StatusCompleted
		if !d.FullyProcessed() {
			t.Error("should be fully processed")
		}
	})
}

func TestSetLemmas(t *testing.T) {
	d := New("a")

	if err := d.SetLemmas("abstract", "теория множество"); err != nil {
		t.Fatalf("SetLemmas failed: %v", err)
	}
	if d.Lemmas["abstract"] != "теория множество" {
		t.Errorf("unexpected lemmas: %q", d.Lemmas["abstract"])
	}

	if err := d.SetLemmas("reference", "x"); err == nil {
		t.Error("expected error for non-lemmatizable field")
	}
}

func TestLemmaText(t *testing.T) {
	d := New("a")
	d.Lemmas = map[string]string{
		"title":    "граф",
		"text":     "теория граф",
		"keywords": "",
	}

	got := d.LemmaText([]string{"text", "abstract", "keywords", "title"})
	if got != "теория граф граф" {
		t.Errorf("unexpected lemma text: %q", got)
	}
}

func TestFieldValue(t *testing.T) {
	d := New("a")
	d.Title = "Теория графов"
	d.Keywords = []string{"граф", "", "дерево"}

	if got := d.FieldValue("title"); got != "Теория графов" {
		t.Errorf("title: %q", got)
	}
	if got := d.FieldValue("keywords"); got != "граф дерево" {
		t.Errorf("keywords should be space-joined with empties skipped: %q", got)
	}
	if got := d.FieldValue("reference"); got != "" {
		t.Errorf("unknown field should be empty, got %q", got)
	}
}
