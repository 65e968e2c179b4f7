// Package features turns pull request attributes into the fixed-width vectors the
// anomaly model consumes. The same code path runs at encode, train and score time
package features

import "strings"

const (
	// NumericFields is the width of the numeric block that leads every vector
	NumericFields = 5

	// DefaultVocabSize caps the number of text terms
	DefaultVocabSize = 1000

	// DefaultLabelThreshold is the additions+deletions size above which the weak label is 1
	DefaultLabelThreshold = 5000
)

// NumericColumns names the numeric block in vector order
var NumericColumns = [NumericFields]string{
	"additions",
	"deletions",
	"changed_files",
	"assignees_count",
	"commits_count",
}

// Record is the encoder's view of a pull request. The zero value is a valid record:
// numerics default to 0, text to "", labels to empty
type Record struct {
	Additions         int64    `json:"additions"`
	Deletions         int64    `json:"deletions"`
	ChangedFiles      int64    `json:"changed_files"`
	AssigneesCount    int64    `json:"assignees_count"`
	CommitsCount      int64    `json:"commits_count"`
	AuthorAssociation string   `json:"author_association"`
	Labels            []string `json:"labels"`
	Title             string   `json:"title"`
	Body              string   `json:"body"`
}

// Numeric returns the numeric block in NumericColumns order
func (r Record) Numeric() [NumericFields]float64 {
	return [NumericFields]float64{
		float64(r.Additions),
		float64(r.Deletions),
		float64(r.ChangedFiles),
		float64(r.AssigneesCount),
		float64(r.CommitsCount),
	}
}

// Text is the document the vocabulary is fitted on and applied to:
// title, body, joined label names and author association separated by spaces
func (r Record) Text() string {
	return r.Title + " " + r.Body + " " + strings.Join(r.Labels, " ") + " " + r.AuthorAssociation
}

// WeakLabel is 1 when the change size exceeds threshold, else 0
func WeakLabel(r Record, threshold int64) int {
	if r.Additions+r.Deletions > threshold {
		return 1
	}
	return 0
}

// Clamp replaces negative counts with 0 and a nil label slice with an empty one
func (r Record) Clamp() Record {
	r.Additions = max(r.Additions, 0)
	r.Deletions = max(r.Deletions, 0)
	r.ChangedFiles = max(r.ChangedFiles, 0)
	r.AssigneesCount = max(r.AssigneesCount, 0)
	r.CommitsCount = max(r.CommitsCount, 0)
	if r.Labels == nil {
		r.Labels = []string{}
	}
	return r
}
