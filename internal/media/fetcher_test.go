package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

const testBase = "https://bot.example.com"

type fakeDownloader struct {
	mu    sync.Mutex
	body  string
	err   error
	calls []string
}

func (d *fakeDownloader) Content(_ context.Context, id string) (io.ReadCloser, error) {
	d.mu.Lock()
	d.calls = append(d.calls, id)
	d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	return io.NopCloser(strings.NewReader(d.body)), nil
}

// copyTranscoder writes a marker file instead of shelling out.
type copyTranscoder struct {
	err error
}

func (c copyTranscoder) ImagePreview(_ context.Context, src, dst string) error {
	return c.write(src, dst, "image-preview")
}

func (c copyTranscoder) VideoPreview(_ context.Context, src, dst string) error {
	return c.write(src, dst, "video-preview")
}

func (c copyTranscoder) write(src, dst, marker string) error {
	if c.err != nil {
		return c.err
	}
	if _, err := os.Stat(src); err != nil {
		return err
	}
	return os.WriteFile(dst, []byte(marker), 0o600)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestFetcher(t *testing.T, d Downloader, tr Transcoder) *Fetcher {
	t.Helper()
	f, err := NewFetcher(Config{
		Dir:        filepath.Join(t.TempDir(), "downloaded"),
		BaseURL:    testBase + "/",
		Downloader: d,
		Transcoder: tr,
		Logger:     discardLogger(),
	})
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	return f
}

func TestFetcher_Image(t *testing.T) {
	t.Parallel()

	d := &fakeDownloader{body: "jpeg-bytes"}
	f := newTestFetcher(t, d, copyTranscoder{})

	got, err := f.Image(context.Background(), "100")
	if err != nil {
		t.Fatalf("Image: %v", err)
	}

	if got.LocalPath != filepath.Join(f.Dir(), "100.jpg") {
		t.Errorf("LocalPath = %q", got.LocalPath)
	}
	if got.PreviewLocalPath != filepath.Join(f.Dir(), "100-preview.jpg") {
		t.Errorf("PreviewLocalPath = %q", got.PreviewLocalPath)
	}
	if got.OriginalURL != testBase+"/downloaded/100.jpg" {
		t.Errorf("OriginalURL = %q", got.OriginalURL)
	}
	if got.PreviewURL != testBase+"/downloaded/100-preview.jpg" {
		t.Errorf("PreviewURL = %q", got.PreviewURL)
	}

	data, err := os.ReadFile(got.LocalPath)
	if err != nil || string(data) != "jpeg-bytes" {
		t.Errorf("original file = %q, %v", data, err)
	}
	if _, err := os.Stat(got.PreviewLocalPath); err != nil {
		t.Errorf("preview file missing: %v", err)
	}
}

func TestFetcher_Video(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(t, &fakeDownloader{body: "mp4"}, copyTranscoder{})

	got, err := f.Video(context.Background(), "200")
	if err != nil {
		t.Fatalf("Video: %v", err)
	}
	if filepath.Base(got.LocalPath) != "200.mp4" {
		t.Errorf("LocalPath = %q", got.LocalPath)
	}
	data, _ := os.ReadFile(got.PreviewLocalPath)
	if string(data) != "video-preview" {
		t.Errorf("preview = %q, want video-preview", data)
	}
}

func TestFetcher_Audio_NoPreview(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(t, &fakeDownloader{body: "m4a"}, copyTranscoder{err: errors.New("must not run")})

	got, err := f.Audio(context.Background(), "300")
	if err != nil {
		t.Fatalf("Audio: %v", err)
	}
	if got.OriginalURL != testBase+"/downloaded/300.m4a" {
		t.Errorf("OriginalURL = %q", got.OriginalURL)
	}
	if got.PreviewLocalPath != "" || got.PreviewURL != "" {
		t.Errorf("audio should have no preview: %+v", got)
	}
}

func TestFetcher_DownloadError(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(t, &fakeDownloader{err: errors.New("boom")}, copyTranscoder{})

	if _, err := f.Image(context.Background(), "1"); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("error = %v, want wrapped download error", err)
	}
}

func TestFetcher_PreviewErrorKeepsOriginal(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(t, &fakeDownloader{body: "x"}, copyTranscoder{err: errors.New("convert failed")})

	_, err := f.Image(context.Background(), "7")
	if err == nil {
		t.Fatal("expected preview error")
	}
	if _, statErr := os.Stat(filepath.Join(f.Dir(), "7.jpg")); statErr != nil {
		t.Errorf("original should be left on disk: %v", statErr)
	}
}

func TestFetcher_InvalidContentID(t *testing.T) {
	t.Parallel()

	d := &fakeDownloader{body: "x"}
	f := newTestFetcher(t, d, copyTranscoder{})

	for _, id := range []string{"", "../escape", "a/b", ".hidden"} {
		if _, err := f.Image(context.Background(), id); !errors.Is(err, ErrInvalidContentID) {
			t.Errorf("Image(%q) error = %v, want ErrInvalidContentID", id, err)
		}
	}
	if len(d.calls) != 0 {
		t.Errorf("downloader called %d times, want 0", len(d.calls))
	}
}

func TestNewFetcher_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewFetcher(Config{Downloader: &fakeDownloader{}}); err == nil {
		t.Error("expected error without dir")
	}
	if _, err := NewFetcher(Config{Dir: t.TempDir()}); err == nil {
		t.Error("expected error without downloader")
	}
}

func TestPurge(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	now := time.Now()
	old := filepath.Join(dir, "old.jpg")
	fresh := filepath.Join(dir, "fresh.jpg")
	for _, p := range []string{old, fresh} {
		if err := os.WriteFile(p, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Chtimes(old, now.Add(-48*time.Hour), now.Add(-48*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	n, err := purgeDir(dir, 24*time.Hour, now)
	if err != nil {
		t.Fatalf("purgeDir: %v", err)
	}
	if n != 1 {
		t.Errorf("removed = %d, want 1", n)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("old file should be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh file should be kept")
	}
	if _, err := os.Stat(filepath.Join(dir, "sub")); err != nil {
		t.Error("directories should be kept")
	}
}

func TestPurge_ZeroMaxAgeDisabled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := filepath.Join(dir, "a.jpg")
	if err := os.WriteFile(p, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour * 1000)
	_ = os.Chtimes(p, old, old)

	n, err := purgeDir(dir, 0, time.Now())
	if err != nil || n != 0 {
		t.Fatalf("purgeDir = %d, %v; want 0, nil", n, err)
	}
}

func TestExecTranscoder_MissingBinary(t *testing.T) {
	t.Parallel()

	tr := NewExecTranscoder(filepath.Join(t.TempDir(), "no-such-convert"))
	if err := tr.ImagePreview(context.Background(), "a", "b"); err == nil {
		t.Fatal("expected error for missing binary")
	}
}
