// Package document defines the scraped-article record and its
// status-driven processing state machine.
package document

import "fmt"

// Status is a progress marker for one pipeline stage of a record.
type Status string

// Status values shared by all three status fields.
const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
	StatusDelete     Status = "delete"
)

// Valid reports whether s is one of the known status values.
func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusInProgress, StatusCompleted, StatusError, StatusDelete:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
// completed, error and delete are terminal for a status field; a record
// is never silently reset except by explicit back-off logic in the
// lifecycle controller.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusDelete
}

// CanAdvanceTo reports whether the forward-only transition s -> next is
// legal: waiting -> in_progress -> {completed | error | delete}. The
// single allowed backward step, in_progress -> waiting, is the explicit
// retry back-off used after a fetch timeout or an anti-bot block.
func (s Status) CanAdvanceTo(next Status) bool {
	switch s {
	case StatusWaiting:
		return next == StatusInProgress || next == StatusDelete
	case StatusInProgress:
		return next == StatusCompleted || next == StatusError ||
			next == StatusDelete || next == StatusWaiting
	default:
		return false
	}
}

// LemmaFields lists the only field names permitted as keys of
// ArticleDocument.Lemmas, in the order the lemmatization stage
// processes them.
var LemmaFields = []string{"text", "abstract", "keywords", "title"}

// ArticleDocument is one scraped and processed article record.
//
// It is created by link discovery with only the slug set, mutated in
// place by each pipeline stage, and never physically deleted: a delete
// status marks a record whose source disappeared.
type ArticleDocument struct {
	ID              string            `json:"id"`
	ArticleSlug     string            `json:"article_slug"`
	Authors         []string          `json:"authors"`
	Title           string            `json:"title"`
	Year            string            `json:"year"`
	Magazine        string            `json:"magazine"`
	MagazineIssue   string            `json:"magazine_issue"`
	MagazineVolume  string            `json:"magazine_volume"`
	Keywords        []string          `json:"keywords"`
	Abstract        string            `json:"abstract"`
	Scopus          string            `json:"scopus"`
	VAK             string            `json:"vak"`
	Reference       string            `json:"reference"`
	Text            string            `json:"text"`
	Language        string            `json:"language"`
	ParseStatus     Status            `json:"parse_status"`
	ProcessStatus   Status            `json:"processing_status"`
	LemmaStatus     Status            `json:"lemmatization_status"`
	Lemmas          map[string]string `json:"lemmas"`
}

// New creates a freshly discovered record: slug only, every status
// waiting.
func New(slug string) *ArticleDocument {
	return &ArticleDocument{
		ArticleSlug:   slug,
		ParseStatus:   StatusWaiting,
		ProcessStatus: StatusWaiting,
		LemmaStatus:   StatusWaiting,
		Lemmas:        map[string]string{},
	}
}

// CanProcess reports whether the cleanup/translation stage may pick up
// the record: parsing must have completed first.
func (d *ArticleDocument) CanProcess() bool {
	return d.ParseStatus == StatusCompleted && d.ProcessStatus == StatusWaiting
}

// CanLemmatize reports whether the lemmatization stage may pick up the
// record: both prior stages must have completed.
func (d *ArticleDocument) CanLemmatize() bool {
	return d.ParseStatus == StatusCompleted &&
		d.ProcessStatus == StatusCompleted &&
		d.LemmaStatus == StatusWaiting
}

// FullyProcessed reports whether all three stages completed; only such
// records enter the vector index.
func (d *ArticleDocument) FullyProcessed() bool {
	return d.ParseStatus == StatusCompleted &&
		d.ProcessStatus == StatusCompleted &&
		d.LemmaStatus == StatusCompleted
}

// SetLemmas records a lemmatization result for one of the permitted
// lemma fields.
func (d *ArticleDocument) SetLemmas(field, lemmas string) error {
	ok := false
	for _, f := range LemmaFields {
		if f == field {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("field %q is not lemmatizable", field)
	}
	if d.Lemmas == nil {
		d.Lemmas = map[string]string{}
	}
	d.Lemmas[field] = lemmas
	return nil
}

// LemmaText joins the lemma strings of the given fields (missing or
// empty fields are skipped) in field order. This is the text a record
// contributes to the vector index corpus.
func (d *ArticleDocument) LemmaText(fields []string) string {
	out := ""
	for _, f := range fields {
		v := d.Lemmas[f]
		if v == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += v
	}
	return out
}

// FieldValue returns the raw value of a lemmatizable field, with list
// fields joined by spaces.
func (d *ArticleDocument) FieldValue(field string) string {
	switch field {
	case "text":
		return d.Text
	case "abstract":
		return d.Abstract
	case "title":
		return d.Title
	case "keywords":
		out := ""
		for _, k := range d.Keywords {
			if k == "" {
				continue
			}
			if out != "" {
				out += " "
			}
			out += k
		}
		return out
	}
	return ""
}
