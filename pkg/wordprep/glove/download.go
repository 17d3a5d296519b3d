package glove

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cognicore/wordprep/pkg/wordprep/internalerr"
)

// DownloadOptions configures Download.
type DownloadOptions struct {
	Client *http.Client // Optional, uses http.DefaultClient if nil

	// Progress, if set, receives bytes written so far and the expected total
	// (-1 when the server does not send a length).
	Progress func(written, total int64)

	Logger *slog.Logger // Optional, uses slog.Default() if nil
}

// Download makes sure the embedding archive at url is present in dir and
// extracted. The archive is fetched only if missing, and its first .txt
// member is extracted only if not already on disk. It returns the path of
// the extracted text file.
func Download(ctx context.Context, url, dir string, opts DownloadOptions) (string, error) {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	zipPath := filepath.Join(dir, path.Base(url))
	if _, err := os.Stat(zipPath); os.IsNotExist(err) {
		opts.Logger.Info("downloading embeddings", "url", url, "dest", zipPath)
		if err := fetch(ctx, opts, url, zipPath); err != nil {
			return "", fmt.Errorf("download %s: %w", url, err)
		}
	} else if err != nil {
		return "", err
	}

	return extractText(zipPath, dir, opts.Logger)
}

func fetch(ctx context.Context, opts DownloadOptions, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := opts.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	// dest only ever holds a complete archive.
	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	var w io.Writer = f
	if opts.Progress != nil {
		w = &progressWriter{w: f, total: resp.ContentLength, fn: opts.Progress}
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}

type progressWriter struct {
	w       io.Writer
	written int64
	total   int64
	fn      func(written, total int64)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	p.fn(p.written, p.total)
	return n, err
}

func extractText(zipPath, dir string, logger *slog.Logger) (string, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", zipPath, err)
	}
	defer zr.Close()

	var member *zip.File
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, ".txt") {
			member = f
			break
		}
	}
	if member == nil {
		return "", fmt.Errorf("%w: no .txt file in %s", internalerr.ErrNotFound, zipPath)
	}

	// Only the member's base name is used.
	txtPath := filepath.Join(dir, filepath.Base(member.Name))
	if _, err := os.Stat(txtPath); err == nil {
		logger.Info("already extracted", "path", txtPath)
		return txtPath, nil
	}

	logger.Info("extracting", "member", member.Name, "dest", txtPath)
	rc, err := member.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	out, err := os.Create(txtPath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		os.Remove(txtPath)
		return "", err
	}
	return txtPath, out.Close()
}
