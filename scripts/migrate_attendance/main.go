package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/noah-isme/section-portal-api/internal/models"
)

// Walks a data tree and rewrites every attendance document in the counted
// shape. Legacy flat date lists are folded into per-day counts; files
// already counted are rewritten unchanged. Run with -dry-run first.

func main() {
	var (
		dataDir string
		dryRun  bool
	)
	flag.StringVar(&dataDir, "data", "./data", "Data directory root")
	flag.BoolVar(&dryRun, "dry-run", false, "Report without writing")
	flag.Parse()

	var converted, skipped, failed int
	err := filepath.Walk(dataDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || info.Name() != "attendance.json" {
			return nil
		}
		switch migrate(path, dryRun) {
		case nil:
			converted++
		case errSkip:
			skipped++
		default:
			failed++
			log.Printf("failed: %s", path)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("walk %s: %v", dataDir, err)
	}
	fmt.Printf("converted %d, skipped %d, failed %d\n", converted, skipped, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

var errSkip = fmt.Errorf("skip")

func migrate(path string, dryRun bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return errSkip
	}

	var ledger models.Ledger
	if err := json.Unmarshal(raw, &ledger); err != nil {
		log.Printf("unreadable document, leaving as is: %s (%v)", path, err)
		return errSkip
	}

	out, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return err
	}
	if string(out) == string(raw) {
		return errSkip
	}
	if dryRun {
		log.Printf("would rewrite %s", path)
		return nil
	}
	return os.WriteFile(path, out, 0o644)
}
