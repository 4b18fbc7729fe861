package storage

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"testing"
)

func TestSaveAndRead(t *testing.T) {
	s := New(t.TempDir())

	path, err := s.SaveFile("nested/report.txt", []byte("hello"))
	if err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}
	if path != filepath.Join(s.Dir, "nested", "report.txt") {
		t.Errorf("SaveFile() path = %q", path)
	}

	data, err := s.ReadFile("nested/report.txt")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("ReadFile() = %q, want hello", data)
	}

	stats, err := s.GetFileStats("nested/report.txt")
	if err != nil {
		t.Fatalf("GetFileStats() error = %v", err)
	}
	if stats.SizeBytes != 5 {
		t.Errorf("stats.SizeBytes = %d, want 5", stats.SizeBytes)
	}
}

func TestRender(t *testing.T) {
	s := New(t.TempDir())

	if _, err := s.Render("ok.txt", func(w io.Writer) error {
		_, err := fmt.Fprint(w, "rendered")
		return err
	}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !s.HasFile("ok.txt") {
		t.Error("HasFile(ok.txt) = false, want true")
	}

	boom := errors.New("boom")
	_, err := s.Render("bad.txt", func(io.Writer) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("Render() error = %v, want wrapped boom", err)
	}
	if s.HasFile("bad.txt") {
		t.Error("Render() wrote a file after a failed render")
	}
}
