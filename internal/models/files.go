package models

// FileRef points at a stored blob. StoredFilename is the name inside the
// blob store; URL is what clients fetch.
type FileRef struct {
	Filename       string `json:"filename"`
	URL            string `json:"url"`
	StoredFilename string `json:"storedFilename,omitempty"`
}

// UploaderInfo stamps who uploaded or remarked on an item.
type UploaderInfo struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Certificate is an admin-uploaded document attached to one student.
type Certificate struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Filename       string       `json:"filename"`
	URL            string       `json:"url"`
	StoredFilename string       `json:"storedFilename,omitempty"`
	UploadedAt     string       `json:"uploadedAt"`
	UploadedBy     UploaderInfo `json:"uploadedBy"`
}

// CertificateDoc is the persisted certificates collection, keyed by student.
type CertificateDoc struct {
	ByStudent map[string][]Certificate `json:"byStudent"`
}

// NewCertificateDoc returns the empty default.
func NewCertificateDoc() CertificateDoc {
	return CertificateDoc{ByStudent: map[string][]Certificate{}}
}

// Note is course material uploaded under a subject.
type Note struct {
	ID          string       `json:"id"`
	Subject     string       `json:"subject"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	File        FileRef      `json:"file"`
	UploadedAt  string       `json:"uploadedAt"`
	UploadedBy  UploaderInfo `json:"uploadedBy"`
}

// StudentNote is the reduced projection served to students: uploader
// identity is stripped down to the display name.
type StudentNote struct {
	ID          string  `json:"id"`
	Subject     string  `json:"subject"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	File        FileRef `json:"file"`
	UploadedAt  string  `json:"uploadedAt"`
	UploadedBy  struct {
		Name string `json:"name"`
	} `json:"uploadedBy"`
}

// NoteDoc is the persisted notes collection, keyed by subject.
type NoteDoc struct {
	BySubject map[string][]Note `json:"bySubject"`
}

// NewNoteDoc returns the empty default.
func NewNoteDoc() NoteDoc {
	return NoteDoc{BySubject: map[string][]Note{}}
}

// Scrutiny request statuses follow the faculty review flow; the initial
// state is "pending".
const ScrutinyPending = "pending"

// ScrutinyRequest is a student-submitted document awaiting verification.
type ScrutinyRequest struct {
	ID          string        `json:"id"`
	StudentID   string        `json:"studentId"`
	StudentName string        `json:"studentName"`
	Description string        `json:"description"`
	File        FileRef       `json:"file"`
	Status      string        `json:"status"`
	Remark      string        `json:"remark"`
	SubmittedAt string        `json:"submittedAt"`
	RemarkedAt  string        `json:"remarkedAt,omitempty"`
	RemarkedBy  *UploaderInfo `json:"remarkedBy,omitempty"`
}

// ScrutinyDoc is the persisted scrutiny collection.
type ScrutinyDoc struct {
	Requests []ScrutinyRequest `json:"requests"`
}

// NewScrutinyDoc returns the empty default.
func NewScrutinyDoc() ScrutinyDoc {
	return ScrutinyDoc{Requests: []ScrutinyRequest{}}
}
