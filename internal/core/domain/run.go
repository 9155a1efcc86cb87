package domain

import "time"

// RunKind distinguishes history records.
type RunKind string

// Recorded run kinds.
const (
	RunKindOCR   RunKind = "ocr"
	RunKindBatch RunKind = "batch"
)

// RunRecord is a persisted summary of one session or batch.
type RunRecord struct {
	ID         string
	Kind       RunKind
	Input      string
	Location   string
	StartedAt  time.Time
	FinishedAt time.Time
	Succeeded  int
	Failed     int
	Error      string
	Files      []RunFile
}

// RunFile is one input within a recorded run.
type RunFile struct {
	Input  string
	Output string
	Error  string
}

// Duration returns how long the run took.
func (r RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RecordFromSession builds a history record for a single session.
func RecordFromSession(result *SessionResult, err error) RunRecord {
	rec := RunRecord{
		ID:         result.RunID,
		Kind:       RunKindOCR,
		Input:      result.Input.Path,
		Location:   result.Folder.Path,
		StartedAt:  result.StartedAt,
		FinishedAt: result.StartedAt.Add(result.Duration),
	}
	file := RunFile{Input: result.Input.Path, Output: result.Output}
	if err != nil {
		rec.Failed = 1
		rec.Error = err.Error()
		file.Error = err.Error()
	} else {
		rec.Succeeded = 1
	}
	rec.Files = []RunFile{file}
	return rec
}

// RecordFromBatch builds a history record for a batch report.
func RecordFromBatch(report *BatchReport) RunRecord {
	rec := RunRecord{
		ID:         report.Run.ID,
		Kind:       RunKindBatch,
		Input:      report.Run.SourceDir,
		Location:   report.Run.Root,
		StartedAt:  report.Run.StartedAt,
		FinishedAt: report.FinishedAt,
		Succeeded:  report.Succeeded(),
		Failed:     report.Failed(),
	}
	for _, o := range report.Outcomes {
		f := RunFile{Input: o.Input, Output: o.Output}
		if o.Err != nil {
			f.Error = o.Err.Error()
		}
		rec.Files = append(rec.Files, f)
	}
	return rec
}
