// Package snapshot reads and writes encoded training runs in the blob store.
// A run lives under preprocess-runs/<run_id>/ as parquet partitions, the vocabulary
// used to encode it and a _SUCCESS marker written last
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"prsentinel/internal/core/features"
	"prsentinel/internal/platform/blob"
	perr "prsentinel/internal/platform/errors"

	"github.com/parquet-go/parquet-go"
)

const (
	// Root is the prefix every run lives under
	Root = "preprocess-runs"

	// VocabularyFile and SuccessFile sit next to the partitions
	VocabularyFile = "vocabulary.json"
	SuccessFile    = "_SUCCESS"

	// RunIDLayout formats default run ids
	RunIDLayout = "20060102_150405"

	// DefaultPartitionRows caps rows per parquet file
	DefaultPartitionRows = 50000
)

var runIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,127}$`)

// NewRunID returns the UTC timestamp id for t
func NewRunID(t time.Time) string { return t.UTC().Format(RunIDLayout) }

// ValidateRunID rejects ids that would escape or collide in the key space
func ValidateRunID(id string) error {
	if !runIDPattern.MatchString(id) {
		return perr.WithField(perr.InvalidArgf("snapshot: invalid run id %q", id), "run_id")
	}
	return nil
}

// Prefix is the key prefix of one run, with a trailing slash
func Prefix(runID string) string { return Root + "/" + runID + "/" }

// Row is one encoded record as stored in parquet
type Row struct {
	Additions         int64    `parquet:"additions"`
	Deletions         int64    `parquet:"deletions"`
	ChangedFiles      int64    `parquet:"changed_files"`
	AssigneesCount    int64    `parquet:"assignees_count"`
	CommitsCount      int64    `parquet:"commits_count"`
	AuthorAssociation string   `parquet:"author_association"`
	Labels            []string `parquet:"labels,list"`
	Title             string   `parquet:"title"`
	Body              string   `parquet:"body"`
	Label             int32    `parquet:"label"`
}

// FromRecord builds the stored row of r with its weak label
func FromRecord(r features.Record, label int) Row {
	return Row{
		Additions:         r.Additions,
		Deletions:         r.Deletions,
		ChangedFiles:      r.ChangedFiles,
		AssigneesCount:    r.AssigneesCount,
		CommitsCount:      r.CommitsCount,
		AuthorAssociation: r.AuthorAssociation,
		Labels:            r.Labels,
		Title:             r.Title,
		Body:              r.Body,
		Label:             int32(label),
	}
}

// Record is the encoder view of the row
func (r Row) Record() features.Record {
	labels := r.Labels
	if labels == nil {
		labels = []string{}
	}
	return features.Record{
		Additions:         r.Additions,
		Deletions:         r.Deletions,
		ChangedFiles:      r.ChangedFiles,
		AssigneesCount:    r.AssigneesCount,
		CommitsCount:      r.CommitsCount,
		AuthorAssociation: r.AuthorAssociation,
		Labels:            labels,
		Title:             r.Title,
		Body:              r.Body,
	}
}

// Manifest describes a written run
type Manifest struct {
	RunID      string
	Rows       int
	Partitions []string
	VocabSize  int
}

// partitionKey names partition i of a run
func partitionKey(runID string, i int) string {
	return fmt.Sprintf("%spart-%05d.parquet", Prefix(runID), i)
}

// Write stores rows as parquet partitions, then the vocabulary, then the success marker
func Write(ctx context.Context, s blob.Store, runID string, rows []Row, vocab *features.Vocabulary, partitionRows int) (Manifest, error) {
	if err := ValidateRunID(runID); err != nil {
		return Manifest{}, err
	}
	if partitionRows <= 0 {
		partitionRows = DefaultPartitionRows
	}
	m := Manifest{RunID: runID, Rows: len(rows), VocabSize: vocab.Size()}

	for i, start := 0, 0; start < len(rows); i, start = i+1, start+partitionRows {
		end := min(start+partitionRows, len(rows))
		var buf bytes.Buffer
		if err := parquet.Write(&buf, rows[start:end], parquet.Compression(&parquet.Snappy)); err != nil {
			return m, perr.Wrapf(err, perr.ErrorCodeUnknown, "snapshot: encode partition %d", i)
		}
		key := partitionKey(runID, i)
		if err := blob.PutBytes(ctx, s, key, buf.Bytes()); err != nil {
			return m, perr.Wrapf(err, perr.CodeOf(err), "snapshot: put %s", key)
		}
		m.Partitions = append(m.Partitions, key)
	}

	vb, err := json.Marshal(vocab)
	if err != nil {
		return m, perr.Wrap(err, perr.ErrorCodeJSON, "snapshot: encode vocabulary")
	}
	if err := blob.PutBytes(ctx, s, Prefix(runID)+VocabularyFile, vb); err != nil {
		return m, err
	}
	marker := fmt.Appendf(nil, `{"rows":%d,"partitions":%d,"vocab_size":%d}`, m.Rows, len(m.Partitions), m.VocabSize)
	if err := blob.PutBytes(ctx, s, Prefix(runID)+SuccessFile, marker); err != nil {
		return m, err
	}
	return m, nil
}

// Partitions lists the parquet files of a run in name order
func Partitions(ctx context.Context, s blob.Store, runID string) ([]string, error) {
	keys, err := s.List(ctx, Prefix(runID))
	if err != nil {
		return nil, err
	}
	out := keys[:0]
	for _, k := range keys {
		if strings.HasSuffix(k, ".parquet") {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ReadPartition decodes one parquet file
func ReadPartition(ctx context.Context, s blob.Store, key string) ([]Row, error) {
	b, err := blob.ReadAll(ctx, s, key)
	if err != nil {
		return nil, err
	}
	rows, err := parquet.Read[Row](bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "snapshot: decode %s", key)
	}
	return rows, nil
}

// ReadAll concatenates every partition of a run in name order
func ReadAll(ctx context.Context, s blob.Store, keys []string) ([]Row, error) {
	var out []Row
	for _, k := range keys {
		rows, err := ReadPartition(ctx, s, k)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

// ReadVocabulary loads the vocabulary of a run. ok is false when the run has none
func ReadVocabulary(ctx context.Context, s blob.Store, runID string) (*features.Vocabulary, bool, error) {
	b, err := blob.ReadAll(ctx, s, Prefix(runID)+VocabularyFile)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var v features.Vocabulary
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "snapshot: decode vocabulary")
	}
	return &v, true, nil
}

// RunInfo summarises a run found in the store
type RunInfo struct {
	RunID      string
	Partitions int
	Complete   bool
}

// ListRuns walks the run prefix. Runs are returned newest id first
func ListRuns(ctx context.Context, s blob.Store) ([]RunInfo, error) {
	keys, err := s.List(ctx, Root+"/")
	if err != nil {
		return nil, err
	}
	byRun := map[string]*RunInfo{}
	for _, k := range keys {
		rest := strings.TrimPrefix(k, Root+"/")
		id, file, ok := strings.Cut(rest, "/")
		if !ok || id == "" {
			continue
		}
		ri := byRun[id]
		if ri == nil {
			ri = &RunInfo{RunID: id}
			byRun[id] = ri
		}
		switch {
		case path.Ext(file) == ".parquet":
			ri.Partitions++
		case file == SuccessFile:
			ri.Complete = true
		}
	}
	out := make([]RunInfo, 0, len(byRun))
	for _, ri := range byRun {
		out = append(out, *ri)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RunID > out[j].RunID })
	return out, nil
}
