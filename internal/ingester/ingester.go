// Package ingester sends the linker's output to Wikidata, either through
// the write API or, in no-upload mode, to CSV files under the shared
// results folder.
package ingester

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/askiada/go-linker/internal/wikidata"
	"github.com/askiada/go-linker/pkg/catalog"
)

// Statement is one pending Wikidata edit. DatePrecision is set when
// Value is a calendar date bound for a time-datatype property.
type Statement struct {
	QID           string
	PID           string
	Value         string
	DatePrecision *int
}

// Invalid maps a dead or wrong catalog identifier to the items carrying
// it.
type Invalid map[string][]string

// Ingester applies statements. With a nil editor (no-upload mode) every
// edit is dumped to CSV instead.
type Ingester struct {
	editor    *wikidata.Editor
	sharedDir string
	log       *slog.Logger
}

// New builds an ingester. Pass a nil editor to run in no-upload mode.
func New(editor *wikidata.Editor, sharedDir string, log *slog.Logger) *Ingester {
	return &Ingester{editor: editor, sharedDir: sharedDir, log: log}
}

func (i *Ingester) dump(cat *catalog.Catalog, entity *catalog.Entity, kind string, rows [][]string) error {
	path := catalog.StatementsPath(i.sharedDir, cat.Name, entity.Kind, kind)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "unable to create results folder for %s", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create statements file %s", path)
	}

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		file.Close()

		return errors.Wrapf(err, "unable to write statements to %s", path)
	}
	if err := file.Close(); err != nil {
		return errors.Wrapf(err, "unable to close statements file %s", path)
	}

	i.log.Info("dumped statements", "kind", kind, "count", len(rows), "path", path)

	return nil
}

// AddIdentifiers claims the catalog identifier on every matched item,
// sourcing each claim with the catalog item and today's date.
func (i *Ingester) AddIdentifiers(ctx context.Context, cat *catalog.Catalog, entity *catalog.Entity, identifiers map[string]string) error {
	if i.editor == nil {
		rows := make([][]string, 0, len(identifiers)+1)
		rows = append(rows, []string{"qid", "pid", "tid"})
		for qid, tid := range identifiers {
			rows = append(rows, []string{qid, entity.PID, tid})
		}

		return i.dump(cat, entity, "identifiers", rows)
	}

	for qid, tid := range identifiers {
		err := i.editor.AddStatement(ctx, qid, entity.PID, wikidata.StringValue(tid), cat.QID)
		if err != nil {
			return errors.Wrapf(err, "unable to add identifier %s to %s", tid, qid)
		}
		i.log.Info("added identifier", "qid", qid, "pid", entity.PID, "tid", tid)
	}

	return nil
}

// AddStatements claims arbitrary (subject, predicate, value) triples,
// the shape the validator emits for extra catalog facts.
func (i *Ingester) AddStatements(ctx context.Context, cat *catalog.Catalog, entity *catalog.Entity, statements []Statement) error {
	if i.editor == nil {
		rows := make([][]string, 0, len(statements)+1)
		rows = append(rows, []string{"qid", "pid", "value", "precision"})
		for _, statement := range statements {
			precision := ""
			if statement.DatePrecision != nil {
				precision = strconv.Itoa(*statement.DatePrecision)
			}
			rows = append(rows, []string{statement.QID, statement.PID, statement.Value, precision})
		}

		return i.dump(cat, entity, "statements", rows)
	}

	for _, statement := range statements {
		value := statementValue(statement)
		err := i.editor.AddStatement(ctx, statement.QID, statement.PID, value, cat.QID)
		if err != nil {
			return errors.Wrapf(err, "unable to add statement %s %s %s",
				statement.QID, statement.PID, statement.Value)
		}
	}

	i.log.Info("added statements", "count", len(statements))

	return nil
}

// statementValue picks the datavalue shape from the statement content:
// dates become time values carrying their precision, QIDs become item
// values, everything else stays a string.
func statementValue(statement Statement) any {
	if statement.DatePrecision != nil {
		return wikidata.TimeValue(statement.Value, *statement.DatePrecision)
	}
	if catalog.QIDPattern.MatchString(statement.Value) {
		return wikidata.ItemValue(statement.Value)
	}

	return wikidata.StringValue(statement.Value)
}

// WorkStatement relates a work item to a person item, traced back to
// the catalog person record behind the relation.
type WorkStatement struct {
	WorkQID   string
	PID       string
	PersonQID string
	PersonTID string
}

// AddWorks claims person relations on work items, e.g. (musical work,
// performer, musician).
func (i *Ingester) AddWorks(ctx context.Context, cat *catalog.Catalog, entity *catalog.Entity, works []WorkStatement) error {
	if i.editor == nil {
		rows := make([][]string, 0, len(works)+1)
		rows = append(rows, []string{"work_qid", "pid", "person_qid", "person_tid"})
		for _, work := range works {
			rows = append(rows, []string{work.WorkQID, work.PID, work.PersonQID, work.PersonTID})
		}

		return i.dump(cat, entity, "works", rows)
	}

	for _, work := range works {
		err := i.editor.AddStatement(ctx, work.WorkQID, work.PID, wikidata.ItemValue(work.PersonQID), cat.QID)
		if err != nil {
			return errors.Wrapf(err, "unable to relate work %s to person %s", work.WorkQID, work.PersonQID)
		}
	}

	i.log.Info("added work statements", "count", len(works))

	return nil
}

// DeleteIdentifiers removes dead identifiers from the items carrying
// them.
func (i *Ingester) DeleteIdentifiers(ctx context.Context, cat *catalog.Catalog, entity *catalog.Entity, invalid Invalid) error {
	if i.editor == nil {
		return i.dumpInvalid(cat, entity, "deleted", invalid)
	}

	for tid, qids := range invalid {
		for _, qid := range qids {
			if err := i.editor.DeleteStatement(ctx, qid, entity.PID, tid); err != nil {
				return errors.Wrapf(err, "unable to delete identifier %s from %s", tid, qid)
			}
			i.log.Info("deleted identifier", "qid", qid, "pid", entity.PID, "tid", tid)
		}
	}

	return nil
}

// DeprecateIdentifiers lowers wrong identifiers to deprecated rank.
func (i *Ingester) DeprecateIdentifiers(ctx context.Context, cat *catalog.Catalog, entity *catalog.Entity, invalid Invalid) error {
	if i.editor == nil {
		return i.dumpInvalid(cat, entity, "deprecated", invalid)
	}

	for tid, qids := range invalid {
		for _, qid := range qids {
			if err := i.editor.DeprecateStatement(ctx, qid, entity.PID, tid); err != nil {
				return errors.Wrapf(err, "unable to deprecate identifier %s on %s", tid, qid)
			}
			i.log.Info("deprecated identifier", "qid", qid, "pid", entity.PID, "tid", tid)
		}
	}

	return nil
}

func (i *Ingester) dumpInvalid(cat *catalog.Catalog, entity *catalog.Entity, kind string, invalid Invalid) error {
	rows := [][]string{{"tid", "qid", "pid"}}
	for tid, qids := range invalid {
		for _, qid := range qids {
			rows = append(rows, []string{tid, qid, entity.PID})
		}
	}

	return i.dump(cat, entity, fmt.Sprintf("%s_identifiers", kind), rows)
}
