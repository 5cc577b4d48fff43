// Package upload implements admission control for corpus files: filename
// and size validation, collision-safe writes into the input directory, and
// the status ledger ("pending" / "indexed" / "error") joined against the
// most recent indexing outcome.
package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/localgraph/backend/pkg/apperr"
)

const maxContentLength = 10 * 1024 * 1024 // 10 MiB

var allowedExtensions = map[string]bool{
	".txt": true,
	".csv": true,
}

// Status is the lifecycle state of an uploaded file.
type Status string

const (
	StatusPending Status = "pending"
	StatusIndexed Status = "indexed"
	StatusError   Status = "error"
)

// File is the public shape of an uploaded file.
type File struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	UploadDate time.Time `json:"upload_date"`
	Status     Status    `json:"status"`
}

// Intake validates and admits uploads into dir, maintaining a JSON ledger of
// file metadata alongside the actual file contents (the indexer only reads
// the input directory's file contents; the ledger exists purely for this
// service's own bookkeeping).
type Intake struct {
	dir        string
	ledgerPath string
	onAdmitted func()

	mu    sync.Mutex
	files []File
}

// New returns an Intake rooted at dir, creating it if necessary and loading
// any existing ledger. onAdmitted, if non-nil, is called after every
// successful upload to trigger asynchronous indexing; it must not block.
func New(dir string, onAdmitted func()) (*Intake, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create input directory: %w", err)
	}
	in := &Intake{
		dir:        dir,
		ledgerPath: filepath.Join(dir, ".ledger.json"),
		onAdmitted: onAdmitted,
	}
	if err := in.loadLedger(); err != nil {
		return nil, err
	}
	return in, nil
}

// Upload validates filename and content, writes it to disk under a
// collision-safe name, and records it in the ledger.
func (in *Intake) Upload(ctx context.Context, filename string, content []byte) (File, error) {
	if err := validateFilename(filename); err != nil {
		return File{}, err
	}
	contentLength := int64(len(content))
	if contentLength <= 0 {
		return File{}, apperr.Validationf("uploaded file is empty")
	}
	if contentLength > maxContentLength {
		return File{}, apperr.Validationf("uploaded file exceeds the 10 MiB limit")
	}

	id, err := gonanoid.New()
	if err != nil {
		return File{}, apperr.Wrap(apperr.Internal, "failed to generate file id", err)
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	name := in.resolveCollision(filename)
	if err := os.WriteFile(filepath.Join(in.dir, name), content, 0o644); err != nil {
		return File{}, apperr.Wrap(apperr.Internal, "failed to write uploaded file", err)
	}

	f := File{
		ID:         id,
		Name:       name,
		Size:       contentLength,
		UploadDate: time.Now().UTC(),
		Status:     StatusPending,
	}
	in.files = append(in.files, f)
	if err := in.saveLedgerLocked(); err != nil {
		return File{}, err
	}

	if in.onAdmitted != nil {
		in.onAdmitted()
	}

	return f, nil
}

// List returns all uploaded files, most recently uploaded first.
func (in *Intake) List(ctx context.Context) ([]File, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	out := make([]File, len(in.files))
	copy(out, in.files)
	sort.SliceStable(out, func(i, j int) bool { return out[i].UploadDate.After(out[j].UploadDate) })
	return out, nil
}

// Delete removes the file named by id from disk and the ledger. It does not
// trigger re-indexing.
func (in *Intake) Delete(ctx context.Context, id string) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	idx := -1
	for i, f := range in.files {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apperr.NotFoundf("uploaded file %q not found", id)
	}

	name := in.files[idx].Name
	if err := os.Remove(filepath.Join(in.dir, name)); err != nil && !os.IsNotExist(err) {
		return apperr.Wrap(apperr.Internal, "failed to remove uploaded file", err)
	}

	in.files = append(in.files[:idx], in.files[idx+1:]...)
	return in.saveLedgerLocked()
}

// MarkAllIndexed transitions every pending file to indexed. Called by the
// supervisor after a successful run.
func (in *Intake) MarkAllIndexed(ctx context.Context) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	for i := range in.files {
		if in.files[i].Status == StatusPending {
			in.files[i].Status = StatusIndexed
		}
	}
	return in.saveLedgerLocked()
}

// MarkAllError transitions every pending file to error. Called by the
// supervisor after a failed run. reason is not stored; the ledger only
// tracks status, not a per-file reason.
func (in *Intake) MarkAllError(ctx context.Context, reason string) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	for i := range in.files {
		if in.files[i].Status == StatusPending {
			in.files[i].Status = StatusError
		}
	}
	return in.saveLedgerLocked()
}

// resolveCollision returns filename unchanged if it's not already present on
// disk, or with a "_<unix_timestamp>" suffix inserted before the extension
// otherwise.
func (in *Intake) resolveCollision(filename string) string {
	if _, err := os.Stat(filepath.Join(in.dir, filename)); os.IsNotExist(err) {
		return filename
	}
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	return fmt.Sprintf("%s_%d%s", base, time.Now().Unix(), ext)
}

func validateFilename(filename string) error {
	if filename == "" {
		return apperr.Validationf("filename is required")
	}
	if strings.ContainsRune(filename, 0) {
		return apperr.Validationf("filename contains a null byte")
	}
	if strings.ContainsAny(filename, "/\\") {
		return apperr.Validationf("filename must not contain path separators")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return apperr.Validationf("unsupported file extension %q", ext)
	}
	return nil
}

func (in *Intake) loadLedger() error {
	data, err := os.ReadFile(in.ledgerPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read upload ledger: %w", err)
	}
	var files []File
	if err := json.Unmarshal(data, &files); err != nil {
		return fmt.Errorf("parse upload ledger: %w", err)
	}
	in.files = files
	return nil
}

// saveLedgerLocked writes the ledger atomically (temp file + rename) so a
// crash mid-write never leaves a half-written ledger behind. Caller must
// hold in.mu.
func (in *Intake) saveLedgerLocked() error {
	data, err := json.MarshalIndent(in.files, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal upload ledger: %w", err)
	}
	tmp := in.ledgerPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write upload ledger: %w", err)
	}
	if err := os.Rename(tmp, in.ledgerPath); err != nil {
		return fmt.Errorf("commit upload ledger: %w", err)
	}
	return nil
}
