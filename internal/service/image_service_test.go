package service

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codista-cms/internal/repository"
	"codista-cms/internal/testutil"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00}

func newTestImageService(t *testing.T) (*ImageService, string, string) {
	t.Helper()
	uploads := t.TempDir()
	fixtures := t.TempDir()
	return NewImageService(repository.NewImageRepository(testutil.NewDB(t)), uploads, fixtures), uploads, fixtures
}

func writeFixture(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
}

func TestImageService_ImportFixture(t *testing.T) {
	svc, uploads, fixtures := newTestImageService(t)
	writeFixture(t, fixtures, "Max Böck.png", pngHeader)

	image, err := svc.ImportFixture("Max Böck.png")
	if err != nil {
		t.Fatalf("ImportFixture returned error: %v", err)
	}
	if image.Title != "Max Böck.png" {
		t.Fatalf("unexpected title %q", image.Title)
	}
	if !strings.HasPrefix(image.File, "original_images/max-boeck-") || !strings.HasSuffix(image.File, ".png") {
		t.Fatalf("unexpected stored file %q", image.File)
	}
	if _, err := os.Stat(filepath.Join(uploads, filepath.FromSlash(image.File))); err != nil {
		t.Fatalf("expected copied file: %v", err)
	}
	if url := svc.URL(image); url != "/uploads/"+image.File {
		t.Fatalf("unexpected url %q", url)
	}

	again, err := svc.ImportFixture("Max Böck.png")
	if err != nil {
		t.Fatalf("ImportFixture returned error: %v", err)
	}
	if again.ID != image.ID {
		t.Fatalf("expected image %d to be reused, got %d", image.ID, again.ID)
	}
}

func TestImageService_ImportFixtureErrors(t *testing.T) {
	svc, _, fixtures := newTestImageService(t)

	if _, err := svc.ImportFixture("missing.jpg"); !errors.Is(err, ErrFixtureNotFound) {
		t.Fatalf("expected ErrFixtureNotFound, got %v", err)
	}

	writeFixture(t, fixtures, "notes.txt", []byte("hello"))
	if _, err := svc.ImportFixture("notes.txt"); err == nil {
		t.Fatalf("expected error for disallowed extension")
	}

	writeFixture(t, fixtures, "fake.jpg", []byte("definitely not a jpeg"))
	if _, err := svc.ImportFixture("fake.jpg"); err == nil {
		t.Fatalf("expected error for non image content")
	}

	if _, err := svc.ImportFixture(" "); err == nil {
		t.Fatalf("expected error for blank name")
	}
}
