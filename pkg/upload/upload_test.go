package upload

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestUpload_HappyPath(t *testing.T) {
	dir := t.TempDir()
	admitted := 0
	in, err := New(dir, func() { admitted++ })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := in.Upload(context.Background(), "a.txt", []byte("hello world!"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Name != "a.txt" || f.Status != StatusPending {
		t.Fatalf("unexpected file: %+v", f)
	}
	if admitted != 1 {
		t.Fatalf("expected onAdmitted to fire once, got %d", admitted)
	}

	body, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
	if !bytes.Equal(body, []byte("hello world!")) {
		t.Fatalf("on-disk content mismatch")
	}
}

func TestUpload_RejectsBadExtension(t *testing.T) {
	dir := t.TempDir()
	in, _ := New(dir, nil)

	_, err := in.Upload(context.Background(), "a.pdf", []byte("x"))
	if err == nil {
		t.Fatalf("expected rejection for disallowed extension")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "a.pdf")); !os.IsNotExist(statErr) {
		t.Fatalf("rejected upload should not be written to disk")
	}
}

func TestUpload_RejectsEmptyBody(t *testing.T) {
	dir := t.TempDir()
	in, _ := New(dir, nil)

	_, err := in.Upload(context.Background(), "a.txt", []byte{})
	if err == nil {
		t.Fatalf("expected rejection for empty body")
	}
}

func TestUpload_RejectsOversizedBody(t *testing.T) {
	dir := t.TempDir()
	in, _ := New(dir, nil)

	big := bytes.Repeat([]byte("x"), maxContentLength+1)
	_, err := in.Upload(context.Background(), "a.txt", big)
	if err == nil {
		t.Fatalf("expected rejection for oversized body")
	}
}

func TestUpload_RejectsPathSeparators(t *testing.T) {
	dir := t.TempDir()
	in, _ := New(dir, nil)

	_, err := in.Upload(context.Background(), "../escape.txt", []byte("x"))
	if err == nil {
		t.Fatalf("expected rejection for path separator in filename")
	}
}

func TestUpload_CollisionAppendsTimestamp(t *testing.T) {
	dir := t.TempDir()
	in, _ := New(dir, nil)

	first, err := in.Upload(context.Background(), "doc.txt", []byte("one"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := in.Upload(context.Background(), "doc.txt", []byte("two"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Name != "doc.txt" {
		t.Fatalf("expected first upload to keep the original name, got %s", first.Name)
	}
	if second.Name == "doc.txt" {
		t.Fatalf("expected second upload to get a renamed path")
	}
	if !strings.HasPrefix(second.Name, "doc_") || !strings.HasSuffix(second.Name, ".txt") {
		t.Fatalf("expected doc_<timestamp>.txt pattern, got %s", second.Name)
	}

	if _, err := os.Stat(filepath.Join(dir, first.Name)); err != nil {
		t.Fatalf("expected first file on disk: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, second.Name)); err != nil {
		t.Fatalf("expected second file on disk: %v", err)
	}
}

func TestDelete_RemovesFromLedgerAndDisk(t *testing.T) {
	dir := t.TempDir()
	in, _ := New(dir, nil)

	f, err := in.Upload(context.Background(), "a.txt", []byte("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := in.Delete(context.Background(), f.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	files, err := in.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files after delete, got %d", len(files))
	}
	if _, statErr := os.Stat(filepath.Join(dir, "a.txt")); !os.IsNotExist(statErr) {
		t.Fatalf("expected file removed from disk")
	}
}

func TestDelete_UnknownIDNotFound(t *testing.T) {
	dir := t.TempDir()
	in, _ := New(dir, nil)

	if err := in.Delete(context.Background(), "missing"); err == nil {
		t.Fatalf("expected not-found error")
	}
}

func TestMarkAllIndexedAndError(t *testing.T) {
	dir := t.TempDir()
	in, _ := New(dir, nil)

	if _, err := in.Upload(context.Background(), "a.txt", []byte("x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := in.MarkAllIndexed(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	files, _ := in.List(context.Background())
	if files[0].Status != StatusIndexed {
		t.Fatalf("expected indexed status, got %s", files[0].Status)
	}

	if _, err := in.Upload(context.Background(), "b.txt", []byte("x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := in.MarkAllError(context.Background(), "boom"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	files, _ = in.List(context.Background())
	var gotError bool
	for _, f := range files {
		if f.Name == "b.txt" && f.Status == StatusError {
			gotError = true
		}
	}
	if !gotError {
		t.Fatalf("expected b.txt marked error")
	}
}

func TestLedgerPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	in, _ := New(dir, nil)
	if _, err := in.Upload(context.Background(), "a.txt", []byte("x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reopened, err := New(dir, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	files, err := reopened.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || files[0].Name != "a.txt" {
		t.Fatalf("expected ledger to persist across instances, got %+v", files)
	}
}
