package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/section-portal-api/internal/models"
)

// Collection kinds, one JSON document of each per scope.
const (
	KindStudents     = "students"
	KindActivities   = "activities"
	KindAdmins       = "secondary_admin"
	KindAttendance   = "attendance"
	KindIssues       = "attendance_issue"
	KindChat         = "chat"
	KindThreads      = "messages"
	KindCertificates = "certificates"
	KindScrutiny     = "scrutiny"
	KindNotes        = "notes"
)

// fileNames maps a collection kind to its document file. The issue file
// keeps the capitalised name the portal has always written.
var fileNames = map[string]string{
	KindStudents:     "students.json",
	KindActivities:   "activities.json",
	KindAdmins:       "secondary_admin.json",
	KindAttendance:   "attendance.json",
	KindIssues:       "Attendance_issue.json",
	KindChat:         "chat.json",
	KindThreads:      "messages.json",
	KindCertificates: "certificates.json",
	KindScrutiny:     "scrutiny.json",
	KindNotes:        "notes.json",
}

// Store is the namespace resolver and the root of every per-scope
// collection document. It owns the lock table serialising load-mutate-save
// cycles per (collection kind, scope): two writers to the same document
// queue up, while different kinds or scopes proceed in parallel.
type Store struct {
	root   string
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	Students     *Document[[]models.Student]
	Activities   *Document[[]models.Activity]
	Admins       *Document[[]models.SecondaryAdmin]
	Attendance   *Document[models.Ledger]
	Issues       *Document[models.IssueDoc]
	Chat         *Document[models.ChatDoc]
	Threads      *Document[models.ThreadDoc]
	Certificates *Document[models.CertificateDoc]
	Scrutiny     *Document[models.ScrutinyDoc]
	Notes        *Document[models.NoteDoc]
}

// NewStore creates the data root if needed and wires every collection.
func NewStore(root string, logger *zap.Logger) (*Store, error) {
	if root == "" {
		root = "./data"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	s := &Store{root: root, logger: logger, locks: map[string]*sync.Mutex{}}
	s.Students = newDocument(s, KindStudents, func() []models.Student { return []models.Student{} })
	s.Activities = newDocument(s, KindActivities, func() []models.Activity { return []models.Activity{} })
	s.Admins = newDocument(s, KindAdmins, func() []models.SecondaryAdmin { return []models.SecondaryAdmin{} })
	s.Attendance = newDocument(s, KindAttendance, models.NewLedger)
	s.Issues = newDocument(s, KindIssues, models.NewIssueDoc)
	s.Chat = newDocument(s, KindChat, models.NewChatDoc)
	s.Threads = newDocument(s, KindThreads, models.NewThreadDoc)
	s.Certificates = newDocument(s, KindCertificates, models.NewCertificateDoc)
	s.Scrutiny = newDocument(s, KindScrutiny, models.NewScrutinyDoc)
	s.Notes = newDocument(s, KindNotes, models.NewNoteDoc)
	return s, nil
}

// lock returns the mutex guarding one (kind, scope) document.
func (s *Store) lock(kind string, scope models.Scope) *sync.Mutex {
	key := kind + "|" + scope.Key()
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.locks[key]; ok {
		return m
	}
	m := &sync.Mutex{}
	s.locks[key] = m
	return m
}

func (s *Store) scopeDir(scope models.Scope) string {
	return filepath.Join(s.root, scope.Course, scope.Year, scope.Section)
}

// ListCourses enumerates course directories under the root.
func (s *Store) ListCourses() ([]string, error) {
	return listDirs(s.root)
}

// ListYears enumerates year directories under a course.
func (s *Store) ListYears(course string) ([]string, error) {
	return listDirs(filepath.Join(s.root, course))
}

// ListSections enumerates section directories under a course/year.
func (s *Store) ListSections(course, year string) ([]string, error) {
	return listDirs(filepath.Join(s.root, course, year))
}

// CourseExists reports whether the course directory is present.
func (s *Store) CourseExists(course string) bool {
	return dirExists(filepath.Join(s.root, course))
}

// YearExists reports whether the year directory is present.
func (s *Store) YearExists(course, year string) bool {
	return dirExists(filepath.Join(s.root, course, year))
}

// ScopeExists reports whether the full scope directory is present.
func (s *Store) ScopeExists(scope models.Scope) bool {
	return dirExists(s.scopeDir(scope))
}

// EnsureCourse creates a course directory. Returns false when it already
// existed.
func (s *Store) EnsureCourse(course string) (bool, error) {
	return ensureDir(filepath.Join(s.root, course))
}

// EnsureYear creates a year directory. Returns false when it already
// existed.
func (s *Store) EnsureYear(course, year string) (bool, error) {
	return ensureDir(filepath.Join(s.root, course, year))
}

// EnsureScope creates the section directory and seeds every collection with
// its empty default. Returns false when the scope already existed.
func (s *Store) EnsureScope(scope models.Scope) (bool, error) {
	dir := s.scopeDir(scope)
	if dirExists(dir) {
		return false, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create scope %s: %w", scope.Key(), err)
	}
	if err := s.seedScope(scope); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) seedScope(scope models.Scope) error {
	seeds := []func() error{
		func() error { return s.Students.Save(scope, s.Students.defaults()) },
		func() error { return s.Activities.Save(scope, s.Activities.defaults()) },
		func() error { return s.Admins.Save(scope, s.Admins.defaults()) },
		func() error { return s.Attendance.Save(scope, s.Attendance.defaults()) },
		func() error { return s.Issues.Save(scope, s.Issues.defaults()) },
		func() error { return s.Chat.Save(scope, s.Chat.defaults()) },
		func() error { return s.Threads.Save(scope, s.Threads.defaults()) },
		func() error { return s.Certificates.Save(scope, s.Certificates.defaults()) },
		func() error { return s.Scrutiny.Save(scope, s.Scrutiny.defaults()) },
		func() error { return s.Notes.Save(scope, s.Notes.defaults()) },
	}
	for _, seed := range seeds {
		if err := seed(); err != nil {
			return err
		}
	}
	return nil
}

// DeleteCourse removes a course and everything beneath it. Irreversible;
// blobs referenced by deleted entities are not reclaimed.
func (s *Store) DeleteCourse(course string) error {
	return removeTree(filepath.Join(s.root, course))
}

// DeleteYear removes one year subtree.
func (s *Store) DeleteYear(course, year string) error {
	return removeTree(filepath.Join(s.root, course, year))
}

// DeleteScope removes one section and all of its collections.
func (s *Store) DeleteScope(scope models.Scope) error {
	return removeTree(s.scopeDir(scope))
}

func listDirs(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func ensureDir(path string) (bool, error) {
	if dirExists(path) {
		return false, nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return false, fmt.Errorf("create %s: %w", path, err)
	}
	return true, nil
}

func removeTree(path string) error {
	if !dirExists(path) {
		return os.ErrNotExist
	}
	return os.RemoveAll(path)
}
