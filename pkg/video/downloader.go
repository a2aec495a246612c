// Package video downloads post videos through an external yt-dlp
// binary so they can be attached to chat messages directly.
package video

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/postwing/postwing/pkg/logger"
)

const componentName = "video"

// Downloader wraps a yt-dlp binary. Each download runs in its own
// subprocess bounded by the configured timeout.
type Downloader struct {
	binPath string
	timeout time.Duration
}

func NewDownloader(binPath string, timeout time.Duration) *Downloader {
	return &Downloader{binPath: binPath, timeout: timeout}
}

// Available reports whether the configured binary can be found.
func (d *Downloader) Available() bool {
	_, err := exec.LookPath(d.binPath)
	return err == nil
}

// Download fetches the video at url into a fresh temp directory and
// returns the path of the downloaded file. The caller owns cleanup of
// the returned file's directory.
func (d *Downloader) Download(ctx context.Context, url string) (string, error) {
	dir, err := os.MkdirTemp("", "postwing-video-*")
	if err != nil {
		return "", fmt.Errorf("create video dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.binPath,
		"--no-playlist",
		"--print", "after_move:filepath",
		"--output", filepath.Join(dir, "%(id)s.%(ext)s"),
		url,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.DebugCF(componentName, "downloading video", map[string]any{"url": url})
	if err := cmd.Run(); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("yt-dlp failed for %s: %w\n%s", url, err, stderr.String())
	}

	path := strings.TrimSpace(stdout.String())
	if path == "" {
		os.RemoveAll(dir)
		return "", fmt.Errorf("yt-dlp produced no file for %s", url)
	}
	return path, nil
}
