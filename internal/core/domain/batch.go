package domain

import (
	"path/filepath"
	"time"
)

// BatchRun is one invocation processing a directory of documents.
type BatchRun struct {
	ID        string
	SourceDir string

	// Root is the timestamped directory that holds every per-document folder.
	Root      string
	StartedAt time.Time
}

// FolderFor returns the per-document folder for doc inside the batch root.
// PDFs get <root>/<stem>; other types are partitioned into <root>/<ext>_files/<stem>.
func (b BatchRun) FolderFor(doc Document) string {
	if doc.MediaType.IsPDF() {
		return filepath.Join(b.Root, doc.Stem())
	}
	return filepath.Join(b.Root, doc.Ext()+"_files", doc.Stem())
}

// FileOutcome records what happened to one input of a batch.
type FileOutcome struct {
	Input     string
	MediaType MediaType
	Folder    string
	Output    string
	Chunks    int
	Degraded  bool
	Err       error
	Duration  time.Duration
}

// Succeeded reports whether the file's session finished.
func (o FileOutcome) Succeeded() bool {
	return o.Err == nil
}

// BatchReport is the per-file outcome report of a batch run.
type BatchReport struct {
	Run        BatchRun
	FinishedAt time.Time
	Outcomes   []FileOutcome
}

// Succeeded returns the number of files that finished.
func (r *BatchReport) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Succeeded() {
			n++
		}
	}
	return n
}

// Failed returns the number of files whose session failed.
func (r *BatchReport) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}

// Failures returns the failed outcomes in report order.
func (r *BatchReport) Failures() []FileOutcome {
	var failed []FileOutcome
	for _, o := range r.Outcomes {
		if !o.Succeeded() {
			failed = append(failed, o)
		}
	}
	return failed
}

// CountByType groups outcomes by file extension.
func (r *BatchReport) CountByType() map[string]int {
	counts := make(map[string]int)
	for _, o := range r.Outcomes {
		counts[Document{Path: o.Input}.Ext()]++
	}
	return counts
}
