// Package importer downloads catalog dumps and loads them into the
// internal database.
package importer

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"resty.dev/v3"

	"github.com/askiada/go-linker/pkg/catalog"
)

// Downloader fetches catalog dumps into the shared dumps folder,
// skipping files the origin has not modified since the last run.
type Downloader struct {
	http *resty.Client
	log  *slog.Logger
}

// NewDownloader builds a dump downloader.
func NewDownloader(log *slog.Logger) *Downloader {
	httpClient := resty.New().
		SetHeader("User-Agent", catalog.HTTPUserAgent).
		SetDoNotParseResponse(true)

	return &Downloader{http: httpClient, log: log}
}

// Close releases the underlying HTTP resources.
func (d *Downloader) Close() error {
	return d.http.Close()
}

func (d *Downloader) remoteLastModified(url string) (time.Time, error) {
	res, err := d.http.R().Head(url)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "unable to HEAD %s", url)
	}
	defer res.Body.Close()

	if res.IsError() {
		return time.Time{}, errors.Errorf("HEAD %s failed with status %s", url, res.Status())
	}

	header := res.Header().Get("Last-Modified")
	if header == "" {
		return time.Time{}, nil
	}

	lastModified, err := time.Parse(time.RFC1123, header)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "unable to parse Last-Modified of %s", url)
	}

	return lastModified, nil
}

// Fetch downloads a dump URL into destPath. When the local copy is at
// least as recent as the origin the download is skipped.
func (d *Downloader) Fetch(url, destPath string) error {
	if info, err := os.Stat(destPath); err == nil {
		lastModified, lmErr := d.remoteLastModified(url)
		if lmErr == nil && !lastModified.IsZero() && !info.ModTime().Before(lastModified) {
			d.log.Info("dump is up to date, skipping download", "url", url, "path", destPath)

			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return errors.Wrapf(err, "unable to create dump folder for %s", destPath)
	}

	d.log.Info("downloading dump", "url", url, "path", destPath)

	res, err := d.http.R().Get(url)
	if err != nil {
		return errors.Wrapf(err, "unable to GET %s", url)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.Errorf("GET %s failed with status %s", url, res.Status())
	}

	tmpPath := destPath + ".part"
	out, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", tmpPath)
	}

	if _, err := io.Copy(out, res.Body); err != nil {
		out.Close()
		os.Remove(tmpPath)

		return errors.Wrapf(err, "unable to write %s", tmpPath)
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, "unable to close %s", tmpPath)
	}

	return errors.Wrapf(os.Rename(tmpPath, destPath), "unable to move %s in place", tmpPath)
}
