package upload

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/gradepoint/internal/extract"
	"github.com/claude/gradepoint/internal/gpa"
	"github.com/claude/gradepoint/internal/transcript"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	CoursesParsed int
	WarningsSeen  int
}

// Uploader walks a directory of transcript PDFs and POSTs each new one to the
// GradePoint server. The state database keeps re-runs idempotent.
type Uploader struct {
	client *Client
	state  *StateDB
	root   string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates an Uploader rooted at dir.
func New(client *Client, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		root:   dir,
		dryRun: dryRun,
		log:    log,
	}
}

// Run walks the root directory and processes every .pdf file under it.
func (u *Uploader) Run() (*Stats, error) {
	if !u.dryRun {
		if err := u.client.Ping(); err != nil {
			return &u.stats, err
		}
	}

	err := filepath.WalkDir(u.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}
		u.processFile(path)
		return nil
	})
	if err != nil {
		return &u.stats, fmt.Errorf("walking %s: %w", u.root, err)
	}

	return &u.stats, nil
}

// processFile uploads a single PDF, skipping it when the state database
// already has it with the same size and hash. Per-file failures are counted
// and logged, not fatal.
func (u *Uploader) processFile(path string) {
	u.stats.FilesTotal++

	relPath, err := filepath.Rel(u.root, path)
	if err != nil {
		relPath = path
	}

	info, err := os.Stat(path)
	if err != nil {
		u.log.Warn("stat failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return
	}

	hash, err := HashFile(path)
	if err != nil {
		u.log.Warn("hash failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return
	}

	uploaded, err := u.state.IsUploaded(relPath, info.Size(), hash)
	if err != nil {
		u.log.Warn("state check failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return
	}
	if uploaded {
		u.stats.FilesSkipped++
		return
	}

	var res *transcript.Result
	if u.dryRun {
		res, err = u.parseLocally(path)
	} else {
		res, err = u.client.SendTranscript(path)
	}
	if err != nil {
		u.log.Warn("upload failed", "file", relPath, "error", err)
		u.stats.FilesErrored++
		return
	}

	u.stats.CoursesParsed += len(res.Courses)
	u.stats.WarningsSeen += len(res.Warnings)

	snapshot := gpa.Calculate(res.Courses)
	attrs := []any{
		"file", relPath,
		"courses", len(res.Courses),
		"warnings", len(res.Warnings),
	}
	if snapshot.GPA != nil {
		attrs = append(attrs, "gpa", *snapshot.GPA)
	}
	if u.dryRun {
		u.log.Info("dry-run: parsed transcript", attrs...)
		u.stats.FilesUploaded++
		return
	}

	if err := u.state.MarkUploaded(relPath, info.Size(), hash, len(res.Courses)); err != nil {
		u.log.Warn("failed to mark uploaded", "file", relPath, "error", err)
	}
	u.stats.FilesUploaded++
	u.log.Info("uploaded transcript", attrs...)
}

// parseLocally runs the same extract-and-parse pipeline the server runs,
// without touching the network or the state database.
func (u *Uploader) parseLocally(path string) (*transcript.Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	text, _, err := extract.Text(content)
	if err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}
	return transcript.Parse(text)
}
