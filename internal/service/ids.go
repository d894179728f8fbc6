package service

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// shortID builds ids like issue_1a2b3c4d: a prefix plus the first eight hex
// characters of a fresh UUID.
func shortID(prefix string) string {
	id := uuid.New()
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(id[:])[:8])
}

// sequentialID builds zero-padded roster ids like student_007.
func sequentialID(prefix string, next int) string {
	return fmt.Sprintf("%s_%03d", prefix, next)
}

// nowStamp is the timestamp format written into every collection.
func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
