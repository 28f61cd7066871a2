package importer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-linker/internal/db"
	"github.com/askiada/go-linker/internal/textutil"
	"github.com/askiada/go-linker/pkg/catalog"
	"github.com/askiada/go-linker/pkg/pipeline"
	"github.com/askiada/go-linker/pkg/pipeline/drawer"
	"github.com/askiada/go-linker/pkg/pipeline/measure"
)

const (
	imdbTitleDumpURL = "https://datasets.imdbws.com/title.basics.tsv.gz"
	imdbNameDumpURL  = "https://datasets.imdbws.com/name.basics.tsv.gz"
)

// professionKinds fans an IMDb profession out to the entity kinds it
// belongs to.
var professionKinds = map[string][]string{
	"actor":            {catalog.Actor},
	"actress":          {catalog.Actor},
	"director":         {catalog.Director},
	"producer":         {catalog.Producer},
	"writer":           {catalog.Writer},
	"composer":         {catalog.Musician},
	"music_department": {catalog.Musician},
	"soundtrack":       {catalog.Musician},
	"sound_department": {catalog.Musician},
}

var personKinds = []string{
	catalog.Actor,
	catalog.Director,
	catalog.Musician,
	catalog.Producer,
	catalog.Writer,
}

// IMDbExtractor loads the IMDb name and title dumps.
type IMDbExtractor struct {
	sharedDir string
	log       *slog.Logger
	counters  map[string]int
}

// NewIMDbExtractor builds the IMDb dump extractor. Pipeline graphs land
// under the shared logs folder.
func NewIMDbExtractor(sharedDir string, log *slog.Logger) *IMDbExtractor {
	return &IMDbExtractor{
		sharedDir: sharedDir,
		log:       log,
		counters:  map[string]int{},
	}
}

// newPipeline builds a measured pipeline drawing its execution graph to
// an SVG file named after the loading stage.
func (e *IMDbExtractor) newPipeline(ctx context.Context, name string) (*pipeline.Pipeline, error) {
	msr := measure.NewDefaultMeasure()
	svg := drawer.NewSVGDrawer(filepath.Join(e.sharedDir, catalog.LogsFolder, name+"_pipeline.svg"))

	return pipeline.New(ctx,
		drawer.PipelineDrawer(svg, msr),
		measure.PipelineMeasure(msr),
	)
}

// Catalog returns the IMDb catalog.
func (e *IMDbExtractor) Catalog() *catalog.Catalog {
	cat, err := catalog.Get(catalog.IMDb)
	if err != nil {
		panic(err)
	}

	return cat
}

// DumpURLs lists the title dump first, then the name dump.
func (e *IMDbExtractor) DumpURLs() []string {
	return []string{imdbTitleDumpURL, imdbNameDumpURL}
}

// ExtractAndPopulate re-creates the IMDb tables and loads both dumps.
func (e *IMDbExtractor) ExtractAndPopulate(ctx context.Context, mgr *db.Manager, dumpPaths []string) error {
	if len(dumpPaths) != 2 {
		return errors.Errorf("expected 2 dump paths, got %d", len(dumpPaths))
	}

	cat := e.Catalog()
	for _, kind := range cat.EntityKinds() {
		entity, err := cat.Entity(kind)
		if err != nil {
			return err
		}
		if err := mgr.CreateTables(ctx, cat, entity); err != nil {
			return err
		}
	}

	if err := e.importWorks(ctx, mgr, cat, dumpPaths[0]); err != nil {
		return err
	}
	if err := e.importPeople(ctx, mgr, cat, dumpPaths[1]); err != nil {
		return err
	}

	for kind, count := range e.counters {
		e.log.Info("imported rows", "kind", kind, "count", count)
	}

	return nil
}

func yearToDate(year string) (*string, *int) {
	if year == "" {
		return nil, nil
	}

	date := fmt.Sprintf("%s-01-01", year)
	precision := catalog.YearPrecision

	return &date, &precision
}

func (e *IMDbExtractor) importWorks(ctx context.Context, mgr *db.Manager, cat *catalog.Catalog, dumpPath string) error {
	reader, err := OpenTSV(dumpPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	pipe, err := e.newPipeline(ctx, "imdb_works")
	if err != nil {
		return err
	}

	records, err := pipeline.AddRootStep(pipe, "read title dump", func(ctx context.Context, output chan<- []string) error {
		return readAll(ctx, reader, output)
	})
	if err != nil {
		return err
	}

	works, err := pipeline.AddStepOneToMany(pipe, "parse works", records, func(_ context.Context, record []string) ([]db.EntityRow, error) {
		title := reader.Field(record, "primaryTitle")
		if title == "" {
			return nil, nil
		}

		names := title
		if original := reader.Field(record, "originalTitle"); original != "" && original != title {
			names += " " + original
		}

		released, precision := yearToDate(reader.Field(record, "startYear"))

		return []db.EntityRow{{
			CatalogID:     reader.Field(record, "tconst"),
			Name:          title,
			NameTokens:    textutil.JoinTokens(textutil.Tokenize(names)),
			Born:          released,
			BornPrecision: precision,
		}}, nil
	})
	if err != nil {
		return err
	}

	table := db.BaseTable(cat.Name, catalog.AudiovisualWork)
	err = pipeline.AddSinkFromChan(pipe, "insert works", works, func(ctx context.Context, input <-chan db.EntityRow) error {
		batch := make([]db.EntityRow, 0, db.InsertBatchSize)
		for row := range input {
			batch = append(batch, row)
			if len(batch) == db.InsertBatchSize {
				if err := mgr.InsertEntities(ctx, table, batch); err != nil {
					return err
				}
				e.counters[catalog.AudiovisualWork] += len(batch)
				batch = batch[:0]
			}
		}
		if err := mgr.InsertEntities(ctx, table, batch); err != nil {
			return err
		}
		e.counters[catalog.AudiovisualWork] += len(batch)

		return nil
	})
	if err != nil {
		return err
	}

	return pipe.Run()
}

// person is one parsed name dump record, fanned out to the tables its
// professions select.
type person struct {
	kinds []string
	row   db.EntityRow
	rels  []db.RelationshipRow
}

func (e *IMDbExtractor) parsePerson(reader *TSVReader, record []string) *person {
	name := reader.Field(record, "primaryName")
	if name == "" {
		return nil
	}

	professionField := reader.Field(record, "primaryProfession")
	if professionField == "" {
		return nil
	}
	professions := strings.Split(professionField, ",")

	kindSet := map[string]struct{}{}
	gender := ""
	miscellaneous := false
	occupations := make([]string, 0, len(professions))
	for _, profession := range professions {
		profession = strings.TrimSpace(profession)
		for _, kind := range professionKinds[profession] {
			kindSet[kind] = struct{}{}
		}
		switch profession {
		case "actor":
			gender = "male"
		case "actress":
			gender = "female"
		case "miscellaneous":
			miscellaneous = true
		}
		if qid, ok := catalog.IMDbProfessionQIDs[profession]; ok {
			occupations = append(occupations, qid)
		}
	}

	// Only people known for miscellaneous work may belong anywhere, so
	// they land in every person table. Other professions outside the
	// mapping select no table at all.
	if len(kindSet) == 0 {
		if !miscellaneous {
			return nil
		}
		for _, kind := range personKinds {
			kindSet[kind] = struct{}{}
		}
	}

	kinds := make([]string, 0, len(kindSet))
	for _, kind := range personKinds {
		if _, ok := kindSet[kind]; ok {
			kinds = append(kinds, kind)
		}
	}

	nconst := reader.Field(record, "nconst")
	born, bornPrecision := yearToDate(reader.Field(record, "birthYear"))
	died, diedPrecision := yearToDate(reader.Field(record, "deathYear"))

	var rels []db.RelationshipRow
	if knownFor := reader.Field(record, "knownForTitles"); knownFor != "" {
		for _, tconst := range strings.Split(knownFor, ",") {
			rels = append(rels, db.RelationshipRow{FromCatalogID: nconst, ToCatalogID: tconst})
		}
	}

	return &person{
		kinds: kinds,
		row: db.EntityRow{
			CatalogID:     nconst,
			Name:          name,
			NameTokens:    textutil.JoinTokens(textutil.Tokenize(name)),
			Born:          born,
			BornPrecision: bornPrecision,
			Died:          died,
			DiedPrecision: diedPrecision,
			Gender:        gender,
			Occupations:   strings.Join(occupations, " "),
		},
		rels: rels,
	}
}

func (e *IMDbExtractor) importPeople(ctx context.Context, mgr *db.Manager, cat *catalog.Catalog, dumpPath string) error {
	reader, err := OpenTSV(dumpPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	pipe, err := e.newPipeline(ctx, "imdb_people")
	if err != nil {
		return err
	}

	records, err := pipeline.AddRootStep(pipe, "read name dump", func(ctx context.Context, output chan<- []string) error {
		return readAll(ctx, reader, output)
	})
	if err != nil {
		return err
	}

	people, err := pipeline.AddStepOneToMany(pipe, "parse people", records, func(_ context.Context, record []string) ([]*person, error) {
		parsed := e.parsePerson(reader, record)
		if parsed == nil {
			return nil, nil
		}

		return []*person{parsed}, nil
	})
	if err != nil {
		return err
	}

	relTable := db.RelationshipTable(cat.Name)
	err = pipeline.AddSinkFromChan(pipe, "insert people", people, func(ctx context.Context, input <-chan *person) error {
		batches := map[string][]db.EntityRow{}
		var rels []db.RelationshipRow

		flush := func(kind string) error {
			table := db.BaseTable(cat.Name, kind)
			if err := mgr.InsertEntities(ctx, table, batches[kind]); err != nil {
				return err
			}
			e.counters[kind] += len(batches[kind])
			batches[kind] = batches[kind][:0]

			return nil
		}

		for parsed := range input {
			for _, kind := range parsed.kinds {
				batches[kind] = append(batches[kind], parsed.row)
				if len(batches[kind]) == db.InsertBatchSize {
					if err := flush(kind); err != nil {
						return err
					}
				}
			}

			rels = append(rels, parsed.rels...)
			if len(rels) >= db.InsertBatchSize {
				if err := mgr.InsertRelationships(ctx, relTable, rels); err != nil {
					return err
				}
				rels = rels[:0]
			}
		}

		for kind := range batches {
			if err := flush(kind); err != nil {
				return err
			}
		}

		return mgr.InsertRelationships(ctx, relTable, rels)
	})
	if err != nil {
		return err
	}

	return pipe.Run()
}
