package models

// Issue statuses a faculty member can move a dispute through.
const (
	IssueOpen     = "open"
	IssueAccepted = "accepted"
	IssueResolved = "resolved"
	IssueRejected = "rejected"
)

// ValidIssueStatus reports whether the status is one of the known states.
func ValidIssueStatus(status string) bool {
	switch status {
	case IssueOpen, IssueAccepted, IssueResolved, IssueRejected:
		return true
	}
	return false
}

// Issue is a student-raised attendance dispute.
type Issue struct {
	ID          string   `json:"id"`
	StudentID   string   `json:"studentId"`
	StudentName string   `json:"studentName"`
	Subject     string   `json:"subject"`
	Dates       []string `json:"dates"`
	Description string   `json:"description"`
	CreatedAt   string   `json:"createdAt"`
	Status      string   `json:"status"`
	FacultyNote string   `json:"facultyNote,omitempty"`
}

// IssueDoc is the persisted issues collection.
type IssueDoc struct {
	Issues []Issue `json:"issues"`
}

// NewIssueDoc returns the empty default.
func NewIssueDoc() IssueDoc {
	return IssueDoc{Issues: []Issue{}}
}
