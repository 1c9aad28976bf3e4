package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultConverter is the ImageMagick binary used for previews.
const DefaultConverter = "convert"

// ExecTranscoder runs ImageMagick to produce previews. Video previews also
// need an FFmpeg delegate installed for ImageMagick.
type ExecTranscoder struct {
	bin string
}

var _ Transcoder = (*ExecTranscoder)(nil)

// NewExecTranscoder returns a transcoder invoking bin, or DefaultConverter
// when bin is empty.
func NewExecTranscoder(bin string) *ExecTranscoder {
	if bin == "" {
		bin = DefaultConverter
	}
	return &ExecTranscoder{bin: bin}
}

// ImagePreview implements Transcoder.
func (t *ExecTranscoder) ImagePreview(ctx context.Context, src, dst string) error {
	return t.run(ctx, "-resize", "240x", "jpeg:"+src, "jpeg:"+dst)
}

// VideoPreview implements Transcoder.
func (t *ExecTranscoder) VideoPreview(ctx context.Context, src, dst string) error {
	return t.run(ctx, "mp4:"+src+"[0]", "jpeg:"+dst)
}

func (t *ExecTranscoder) run(ctx context.Context, args ...string) error {
	var stderr bytes.Buffer
	//nolint:gosec // paths are built by the fetcher from validated content ids.
	cmd := exec.CommandContext(ctx, t.bin, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("%s: %w", t.bin, err)
		}
		return fmt.Errorf("%s: %w: %s", t.bin, err, msg)
	}
	return nil
}
