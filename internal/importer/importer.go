package importer

import (
	"context"
	"log/slog"
	"path"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/askiada/go-linker/internal/db"
	"github.com/askiada/go-linker/pkg/catalog"
)

// DumpExtractor turns downloaded dump files into populated catalog
// tables.
type DumpExtractor interface {
	// Catalog is the catalog the extractor populates.
	Catalog() *catalog.Catalog
	// DumpURLs lists the dump files the extractor consumes, in the
	// order ExtractAndPopulate expects them.
	DumpURLs() []string
	// ExtractAndPopulate loads the downloaded dumps into the catalog
	// tables.
	ExtractAndPopulate(ctx context.Context, mgr *db.Manager, dumpPaths []string) error
}

// extractors indexes the available extractors per catalog name.
var extractors = map[string]func(sharedDir string, log *slog.Logger) DumpExtractor{
	catalog.IMDb: func(sharedDir string, log *slog.Logger) DumpExtractor {
		return NewIMDbExtractor(sharedDir, log)
	},
}

// ExtractorFor returns the dump extractor of a catalog.
func ExtractorFor(catalogName, sharedDir string, log *slog.Logger) (DumpExtractor, error) {
	build, ok := extractors[catalogName]
	if !ok {
		return nil, errors.Errorf("no dump extractor available for catalog %s", catalogName)
	}

	return build(sharedDir, log), nil
}

// Importer drives a full catalog import: download the dumps, then
// extract and populate.
type Importer struct {
	mgr        *db.Manager
	downloader *Downloader
	sharedDir  string
	log        *slog.Logger
}

// New builds an importer writing dumps under the shared directory.
func New(mgr *db.Manager, downloader *Downloader, sharedDir string, log *slog.Logger) *Importer {
	return &Importer{mgr: mgr, downloader: downloader, sharedDir: sharedDir, log: log}
}

// Import refreshes the dumps of the extractor's catalog and loads them.
func (i *Importer) Import(ctx context.Context, extractor DumpExtractor) error {
	runID := uuid.New()
	catalogName := extractor.Catalog().Name
	log := i.log.With("run_id", runID.String(), "catalog", catalogName)
	log.Info("starting import")

	dumpPaths := make([]string, 0, len(extractor.DumpURLs()))
	for _, url := range extractor.DumpURLs() {
		destPath := catalog.DumpPath(i.sharedDir, catalogName, path.Base(url))
		if err := i.downloader.Fetch(url, destPath); err != nil {
			return errors.Wrapf(err, "unable to refresh dump %s", url)
		}
		dumpPaths = append(dumpPaths, destPath)
	}

	if err := extractor.ExtractAndPopulate(ctx, i.mgr, dumpPaths); err != nil {
		return errors.Wrapf(err, "unable to extract %s dumps", catalogName)
	}

	log.Info("import complete")

	return nil
}
