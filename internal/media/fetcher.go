// Package media downloads platform-hosted message content to a local
// directory, derives preview images, and maps the files to public URLs
// served under /downloaded.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// PublicPrefix is the URL path the download directory is served under.
const PublicPrefix = "/downloaded/"

// File suffixes per content kind.
const (
	imageExt      = ".jpg"
	videoExt      = ".mp4"
	audioExt      = ".m4a"
	previewSuffix = "-preview.jpg"
)

// ErrInvalidContentID is returned for content ids that cannot be used as a
// file name.
var ErrInvalidContentID = errors.New("media: invalid content id")

// Downloader streams the bytes of a platform-hosted message.
type Downloader interface {
	Content(ctx context.Context, messageID string) (io.ReadCloser, error)
}

// Transcoder derives preview images from downloaded files.
type Transcoder interface {
	// ImagePreview writes a resized copy of the image at src to dst.
	ImagePreview(ctx context.Context, src, dst string) error
	// VideoPreview writes the first frame of the video at src to dst.
	VideoPreview(ctx context.Context, src, dst string) error
}

// Downloaded describes a fetched item. Preview fields are empty for audio.
type Downloaded struct {
	LocalPath        string
	PreviewLocalPath string
	OriginalURL      string
	PreviewURL       string
}

// Config configures a Fetcher.
type Config struct {
	// Dir is the download directory. Created if missing.
	Dir        string
	BaseURL    string
	Downloader Downloader
	Transcoder Transcoder
	Logger     *slog.Logger
}

// Fetcher retrieves platform content. It holds no mutable state.
type Fetcher struct {
	dir        string
	baseURL    string
	downloader Downloader
	transcoder Transcoder
	logger     *slog.Logger
}

// NewFetcher validates cfg and prepares the download directory.
func NewFetcher(cfg Config) (*Fetcher, error) {
	if cfg.Dir == "" {
		return nil, errors.New("media: download dir is required")
	}
	if cfg.Downloader == nil {
		return nil, errors.New("media: downloader is required")
	}
	if cfg.Transcoder == nil {
		cfg.Transcoder = NewExecTranscoder("")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: creating %s: %w", cfg.Dir, err)
	}
	return &Fetcher{
		dir:        cfg.Dir,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		downloader: cfg.Downloader,
		transcoder: cfg.Transcoder,
		logger:     cfg.Logger,
	}, nil
}

// Dir returns the download directory.
func (f *Fetcher) Dir() string { return f.dir }

// Fetch streams the content of messageID into dest and returns dest. A
// partially written file is left in place on error.
func (f *Fetcher) Fetch(ctx context.Context, messageID, dest string) (string, error) {
	body, err := f.downloader.Content(ctx, messageID)
	if err != nil {
		return "", fmt.Errorf("media: downloading %s: %w", messageID, err)
	}
	defer body.Close()

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("media: creating %s: %w", dest, err)
	}
	if _, err := io.Copy(out, body); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("media: writing %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("media: closing %s: %w", dest, err)
	}
	return dest, nil
}

// Image downloads an image and writes a 240px wide preview next to it.
func (f *Fetcher) Image(ctx context.Context, messageID string) (Downloaded, error) {
	return f.withPreview(ctx, messageID, imageExt, f.transcoder.ImagePreview)
}

// Video downloads a video and writes its first frame as the preview.
func (f *Fetcher) Video(ctx context.Context, messageID string) (Downloaded, error) {
	return f.withPreview(ctx, messageID, videoExt, f.transcoder.VideoPreview)
}

// Audio downloads an audio clip. No preview is produced.
func (f *Fetcher) Audio(ctx context.Context, messageID string) (Downloaded, error) {
	src, err := f.path(messageID, audioExt)
	if err != nil {
		return Downloaded{}, err
	}
	if _, err := f.Fetch(ctx, messageID, src); err != nil {
		return Downloaded{}, err
	}
	return Downloaded{LocalPath: src, OriginalURL: f.publicURL(src)}, nil
}

func (f *Fetcher) withPreview(
	ctx context.Context,
	messageID, ext string,
	preview func(ctx context.Context, src, dst string) error,
) (Downloaded, error) {
	src, err := f.path(messageID, ext)
	if err != nil {
		return Downloaded{}, err
	}
	dst, err := f.path(messageID, previewSuffix)
	if err != nil {
		return Downloaded{}, err
	}
	if _, err := f.Fetch(ctx, messageID, src); err != nil {
		return Downloaded{}, err
	}
	if err := preview(ctx, src, dst); err != nil {
		return Downloaded{}, fmt.Errorf("media: preview for %s: %w", messageID, err)
	}
	f.logger.Debug("media: fetched", "message_id", messageID, "path", src)
	return Downloaded{
		LocalPath:        src,
		PreviewLocalPath: dst,
		OriginalURL:      f.publicURL(src),
		PreviewURL:       f.publicURL(dst),
	}, nil
}

func (f *Fetcher) path(messageID, suffix string) (string, error) {
	if messageID == "" || messageID != filepath.Base(messageID) || strings.ContainsAny(messageID, `/\`) || strings.HasPrefix(messageID, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidContentID, messageID)
	}
	return filepath.Join(f.dir, messageID+suffix), nil
}

func (f *Fetcher) publicURL(local string) string {
	return f.baseURL + PublicPrefix + filepath.Base(local)
}
