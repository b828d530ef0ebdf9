package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/claude/gradepoint/internal/extract"
	"github.com/claude/gradepoint/internal/gpa"
	"github.com/claude/gradepoint/internal/grades"
	"github.com/claude/gradepoint/internal/storage"
	"github.com/claude/gradepoint/internal/transcript"
)

// multipartOverhead is headroom on top of the file size cap for multipart
// boundaries and form fields.
const multipartOverhead = 1 << 20

func (s *Server) handleUploadTranscript(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.validator.MaxBytes+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "file size exceeds maximum limit")
			return
		}
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	if err := s.validator.CheckUpload(header.Filename, header.Header.Get("Content-Type")); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "error reading file")
		return
	}
	if err := s.validator.CheckContent(content); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, extract.ErrTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, err.Error())
		return
	}

	text, pages, err := extract.Text(content)
	if err != nil {
		s.log.Warn("pdf extraction failed", "filename", header.Filename, "error", err)
		writeError(w, http.StatusBadRequest, "pdf file is corrupted or contains no text")
		return
	}

	res, err := transcript.Parse(text)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to parse transcript: "+err.Error())
		return
	}

	s.recordParse(r, header.Filename, content, pages, res)

	s.log.Info("transcript processed",
		"filename", header.Filename,
		"pages", pages,
		"courses", len(res.Courses),
		"warnings", len(res.Warnings),
	)
	writeJSON(w, http.StatusOK, res)
}

// recordParse writes a metadata row to the audit log. Failures are logged
// and do not affect the response.
func (s *Server) recordParse(r *http.Request, filename string, content []byte, pages int, res *transcript.Result) {
	if s.db == nil {
		return
	}

	sum := sha256.Sum256(content)
	snapshot := gpa.Calculate(res.Courses)

	entry := &storage.ParseLog{
		Filename:       filename,
		SHA256:         hex.EncodeToString(sum[:]),
		Pages:          pages,
		CourseCount:    len(res.Courses),
		WarningCount:   len(res.Warnings),
		GPA:            snapshot.GPA,
		UnitsAttempted: snapshot.UnitsAttempted,
		QualityPoints:  snapshot.QualityPoints,
	}
	if err := s.db.InsertParseLog(r.Context(), entry); err != nil {
		s.log.Warn("parse log insert failed", "error", err)
	}
}

func (s *Server) handleParseText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.validator.MaxBytes)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body exceeds maximum size")
			return
		}
		writeError(w, http.StatusBadRequest, "error reading request body")
		return
	}

	res, err := transcript.Parse(string(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to parse transcript: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCalculateGPA(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Courses []transcript.Course `json:"courses"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	result := gpa.Calculate(req.Courses)
	if len(result.UnrecognizedGrades) > 0 {
		s.log.Warn("unrecognized grades in calculation", "grades", result.UnrecognizedGrades)
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGradeScale(w http.ResponseWriter, r *http.Request) {
	nonGPA := make([]string, 0, len(grades.NonGPA))
	for g := range grades.NonGPA {
		nonGPA = append(nonGPA, g)
	}
	sort.Strings(nonGPA)

	writeJSON(w, http.StatusOK, map[string]any{
		"points":            grades.Points,
		"non_gpa":           nonGPA,
		"transfer_grade":    grades.TransferCredit,
		"in_progress_grade": grades.InProgress,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusNotFound, "parse history is not enabled")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	logs, err := s.db.RecentParseLogs(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if logs == nil {
		logs = []storage.ParseLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "gradepoint",
		"version": s.version,
	})
}
