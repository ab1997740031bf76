// Package download fetches model archives and extracts them into the
// models directory, reporting progress as text lines suitable for a
// streamed response.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/voiceops/speechadmin/internal/catalog"
)

const chunkSize = 10 * 1024

// LineFunc receives one progress line at a time (no trailing newline).
type LineFunc func(line string)

// Downloader downloads and extracts model archives.
type Downloader struct {
	ModelsDir string
	Client    *http.Client

	// ReportInterval throttles progress lines. Zero means one second.
	ReportInterval time.Duration
}

func New(modelsDir string) *Downloader {
	return &Downloader{
		ModelsDir: modelsDir,
		Client:    &http.Client{Timeout: 30 * time.Minute},
	}
}

// Download fetches the model archive and extracts it into ModelsDir,
// emitting progress lines along the way. The archive is staged in a
// temp directory so a failed download never leaves a partial model.
func (d *Downloader) Download(ctx context.Context, model catalog.Model, logf LineFunc) error {
	interval := d.ReportInterval
	if interval == 0 {
		interval = time.Second
	}
	client := d.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Minute}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, model.URL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch model: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("download failed (%d) for %s: %s", resp.StatusCode, model.URL, strings.TrimSpace(string(body)))
	}

	totalBytes := resp.ContentLength
	if totalBytes > 0 {
		logf(fmt.Sprintf("Expecting %d byte(s)", totalBytes))
	}

	tmpDir, err := os.MkdirTemp("", "speechadmin-download-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	archivePath := filepath.Join(tmpDir, "model.tar.gz")
	out, err := os.Create(archivePath)
	if err != nil {
		return err
	}

	var bytesDownloaded int64
	lastReport := time.Now()
	buf := make([]byte, chunkSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				out.Close()
				return fmt.Errorf("write archive: %w", err)
			}
			bytesDownloaded += int64(n)
			if time.Since(lastReport) > interval {
				if totalBytes > 0 {
					logf(fmt.Sprintf("%d%%", int(float64(bytesDownloaded)/float64(totalBytes)*100)))
				} else {
					logf(fmt.Sprintf("Bytes downloaded: %d", bytesDownloaded))
				}
				lastReport = time.Now()
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			out.Close()
			return fmt.Errorf("read model archive: %w", readErr)
		}
	}
	if err := out.Close(); err != nil {
		return err
	}

	logf("Download complete")

	if err := os.MkdirAll(d.ModelsDir, 0755); err != nil {
		return fmt.Errorf("create models directory: %w", err)
	}
	if err := extractArchive(archivePath, d.ModelsDir); err != nil {
		return fmt.Errorf("extract model: %w", err)
	}

	logf("Model extracted")
	logf("Return to models page to continue")
	return nil
}
