package submission

import "time"

// Status is the judge verdict for a submission.
type Status string

const (
	StatusAccepted         Status = "accepted"
	StatusWrongAnswer      Status = "wrong answer"
	StatusTimeLimit        Status = "time limit exceeded"
	StatusRuntimeError     Status = "runtime error"
	StatusCompilationError Status = "compilation error"
	StatusOther            Status = "other"
)

// ProblemRef identifies the problem a submission belongs to.
type ProblemRef struct {
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Difficulty string `json:"difficulty"`
}

// Submission is created server-side when code is judged. The client may
// attach or update the note; judge-produced fields are read-only.
type Submission struct {
	ID          string     `json:"id"`
	Problem     ProblemRef `json:"problem"`
	Language    string     `json:"language"`
	Status      Status     `json:"status"`
	RuntimeMS   *int       `json:"runtimeMs"`
	MemoryKB    *int       `json:"memoryKb"`
	SubmittedAt time.Time  `json:"submittedAt"`
	Note        string     `json:"note,omitempty"`
	TimeTaken   string     `json:"timeTaken,omitempty"`
}
