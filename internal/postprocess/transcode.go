package postprocess

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Transcoder converts downloaded video into a browser-playable MP4.
type Transcoder interface {
	// Check verifies the encoder can run.
	Check(ctx context.Context) error
	// Convert writes a browser-compatible copy of in to out.
	Convert(ctx context.Context, in, out string) error
}

// stderrTailLines is how much ffmpeg output is kept in a failure error.
const stderrTailLines = 10

// FFmpeg is a Transcoder backed by the ffmpeg and ffprobe binaries.
type FFmpeg struct {
	FFmpegPath  string
	FFprobePath string
	logger      *slog.Logger
}

// NewFFmpeg creates a transcoder. Empty paths default to binaries on PATH.
func NewFFmpeg(ffmpegPath, ffprobePath string, logger *slog.Logger) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpeg{
		FFmpegPath:  ffmpegPath,
		FFprobePath: ffprobePath,
		logger:      logger.With("component", "ffmpeg"),
	}
}

// Check runs "ffmpeg -version".
func (f *FFmpeg) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := exec.CommandContext(ctx, f.FFmpegPath, "-version").Run(); err != nil {
		return fmt.Errorf("%w: %v", ErrEncoderUnavailable, err)
	}
	return nil
}

// ProbeResult is the subset of ffprobe's JSON output used to decide on re-encoding.
type ProbeResult struct {
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
	} `json:"format"`
	Streams []ProbeStream `json:"streams"`
}

// ProbeStream describes one stream of a probed file.
type ProbeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Channels  int    `json:"channels"`
}

// BrowserCompatibleAudio reports whether every audio stream is AAC with at most two channels.
func (p *ProbeResult) BrowserCompatibleAudio() bool {
	found := false
	for _, s := range p.Streams {
		if s.CodecType != "audio" {
			continue
		}
		found = true
		if s.CodecName != "aac" || s.Channels > 2 {
			return false
		}
	}
	return found
}

// Probe runs ffprobe against a media file.
func (f *FFmpeg) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	cmd := exec.CommandContext(ctx, f.FFprobePath, "-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", path)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	var result ProbeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &result, nil
}

// Convert copies the video stream and re-encodes audio to stereo AAC.
// An MP4 whose audio is already compatible is copied as-is.
func (f *FFmpeg) Convert(ctx context.Context, in, out string) error {
	if _, err := os.Stat(in); err != nil {
		return fmt.Errorf("input %s: %w", in, err)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if strings.EqualFold(filepath.Ext(in), ".mp4") {
		if probe, err := f.Probe(ctx, in); err == nil && probe.BrowserCompatibleAudio() {
			f.logger.Info("input already browser compatible, copying", "input", in)
			_, err := CopyFile(in, out)
			return err
		} else if err != nil {
			f.logger.Warn("probe failed, transcoding anyway", "input", in, "error", err)
		}
	}

	args := []string{
		"-i", in,
		"-c:v", "copy",
		"-c:a", "aac",
		"-ac", "2",
		"-b:a", "192k",
		"-movflags", "+faststart",
		"-y", out,
	}
	f.logger.Info("transcoding", "input", in, "output", out)
	start := time.Now()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.FFmpegPath, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		_ = os.Remove(out)
		return fmt.Errorf("%w: %v\n%s", ErrTranscodeFailed, err, tailLines(stderr.String(), stderrTailLines))
	}

	f.logger.Info("transcode complete", "output", out, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// TranscodeVideo converts in to out and optionally removes the source afterwards.
func TranscodeVideo(ctx context.Context, t Transcoder, in, out string, deleteSource bool) error {
	if err := t.Convert(ctx, in, out); err != nil {
		return err
	}
	if deleteSource && filepath.Clean(in) != filepath.Clean(out) {
		if err := os.Remove(in); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove source: %w", err)
		}
	}
	return nil
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
