package models

import (
	"encoding/json"
	"sort"
)

// Ledger is the per-scope attendance document: the subject set plus counted
// present/absent records per (subject, student).
type Ledger struct {
	Subjects []string                     `json:"subjects"`
	Records  map[string]map[string]Record `json:"records"`
}

// NewLedger returns the empty ledger default.
func NewLedger() Ledger {
	return Ledger{Subjects: []string{}, Records: map[string]map[string]Record{}}
}

// HasSubject reports whether the subject is registered.
func (l *Ledger) HasSubject(subject string) bool {
	for _, s := range l.Subjects {
		if s == subject {
			return true
		}
	}
	return false
}

// EnsureSubject registers a subject and its empty record bucket. Subjects
// are only ever removed by explicit deletion.
func (l *Ledger) EnsureSubject(subject string) {
	if !l.HasSubject(subject) {
		l.Subjects = append(l.Subjects, subject)
	}
	if l.Records == nil {
		l.Records = map[string]map[string]Record{}
	}
	if _, ok := l.Records[subject]; !ok {
		l.Records[subject] = map[string]Record{}
	}
}

// RemoveSubject drops a subject and purges all of its records. Returns
// false when the subject was not registered.
func (l *Ledger) RemoveSubject(subject string) bool {
	if !l.HasSubject(subject) {
		return false
	}
	kept := l.Subjects[:0]
	for _, s := range l.Subjects {
		if s != subject {
			kept = append(kept, s)
		}
	}
	l.Subjects = kept
	delete(l.Records, subject)
	return true
}

// Entry holds the present/absent counts for one (subject, student) pair.
// A date key never carries a zero count in persisted form.
type Entry struct {
	Present map[string]int `json:"present"`
	Absent  map[string]int `json:"absent"`
}

// NewEntry returns an empty entry.
func NewEntry() Entry {
	return Entry{Present: map[string]int{}, Absent: map[string]int{}}
}

// Counts returns the map for the given status ("present" or "absent").
func (e *Entry) Counts(status string) map[string]int {
	if status == StatusAbsent {
		return e.Absent
	}
	return e.Present
}

// Pruned returns a copy with all zero or negative counts removed, ready for
// persistence.
func (e Entry) Pruned() Entry {
	out := NewEntry()
	for d, c := range e.Present {
		if c > 0 {
			out.Present[d] = c
		}
	}
	for d, c := range e.Absent {
		if c > 0 {
			out.Absent[d] = c
		}
	}
	return out
}

// Attendance statuses and operations accepted by the record write path.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"

	OpSet       = "set"
	OpIncrement = "increment"
	OpDecrement = "decrement"
)

// Record is one student's stored attendance under a subject. The wire shape
// is either the counted Entry object or the legacy flat list of date
// strings (each occurrence meaning one present period). The variant is
// resolved here, once, at decode time; records are always written back in
// the counted shape.
type Record struct {
	Entry
}

// UnmarshalJSON accepts both the counted object and the legacy date list.
func (r *Record) UnmarshalJSON(data []byte) error {
	var dates []string
	if err := json.Unmarshal(data, &dates); err == nil {
		entry := NewEntry()
		for _, d := range dates {
			entry.Present[DayKey(d)]++
		}
		r.Entry = entry
		return nil
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return err
	}
	if entry.Present == nil {
		entry.Present = map[string]int{}
	}
	if entry.Absent == nil {
		entry.Absent = map[string]int{}
	}
	r.Entry = entry
	return nil
}

// MarshalJSON always emits the counted shape.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Entry)
}

// DayKey truncates a date-time string to its calendar day.
func DayKey(raw string) string {
	if len(raw) > 10 {
		return raw[:10]
	}
	return raw
}

// ExpandCounts flattens a counts-by-day map into the legacy sorted list,
// repeating each date count times.
func ExpandCounts(counts map[string]int) []string {
	out := make([]string, 0, len(counts))
	for d, c := range counts {
		for i := 0; i < c; i++ {
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out
}
