// Package db manages the internal catalog database: schema lifecycle,
// batched imports, and the gathering queries feeding the linker and the
// validator.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// MySQL driver, resolved through dburl.
	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/xo/dburl"

	"github.com/askiada/go-linker/internal/config"
	"github.com/askiada/go-linker/pkg/catalog"
)

// InsertBatchSize is how many rows are grouped per INSERT statement.
const InsertBatchSize = 700

// Manager wraps the catalog database connection.
type Manager struct {
	db *sql.DB
}

// Connect opens the catalog database described by the credentials and
// pings it.
func Connect(ctx context.Context, creds config.Credentials) (*Manager, error) {
	rawURL := fmt.Sprintf("%s://%s:%s@%s/%s",
		creds.DBEngine, creds.DBUser, creds.DBPassword, creds.DBHost, creds.DBName)

	sqlDB, err := dburl.Open(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open catalog database")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "unable to ping catalog database")
	}

	return &Manager{db: sqlDB}, nil
}

// NewManager wraps an already opened database, for tests.
func NewManager(sqlDB *sql.DB) *Manager {
	return &Manager{db: sqlDB}
}

// Close closes the underlying connection pool.
func (m *Manager) Close() error {
	return m.db.Close()
}

// BaseTable is the main table of a catalog entity.
func BaseTable(catalogName, entityKind string) string {
	return fmt.Sprintf("%s_%s", catalogName, entityKind)
}

// LinkTable holds the URLs of a catalog entity.
func LinkTable(catalogName, entityKind string) string {
	return BaseTable(catalogName, entityKind) + "_link"
}

// NLPTable holds the textual descriptions of a catalog entity.
func NLPTable(catalogName, entityKind string) string {
	return BaseTable(catalogName, entityKind) + "_nlp"
}

// RelationshipTable relates people to works inside one catalog.
func RelationshipTable(catalogName string) string {
	return fmt.Sprintf("%s_relationship", catalogName)
}

func tablesFor(cat *catalog.Catalog, entity *catalog.Entity) []string {
	tables := []string{BaseTable(cat.Name, entity.Kind)}
	if entity.HasLinks {
		tables = append(tables, LinkTable(cat.Name, entity.Kind))
	}
	if entity.HasNLP {
		tables = append(tables, NLPTable(cat.Name, entity.Kind))
	}

	return tables
}

var baseDDL = `CREATE TABLE %s (
	internal_id INT UNSIGNED NOT NULL AUTO_INCREMENT,
	catalog_id VARCHAR(50) NOT NULL,
	name TEXT,
	name_tokens TEXT,
	born DATE,
	born_precision INT,
	died DATE,
	died_precision INT,
	gender VARCHAR(10),
	birth_place TEXT,
	death_place TEXT,
	occupations TEXT,
	PRIMARY KEY (internal_id),
	INDEX (catalog_id),
	FULLTEXT INDEX (name_tokens)
)`

var linkDDL = `CREATE TABLE %s (
	internal_id INT UNSIGNED NOT NULL AUTO_INCREMENT,
	catalog_id VARCHAR(50) NOT NULL,
	url TEXT,
	url_tokens TEXT,
	PRIMARY KEY (internal_id),
	INDEX (catalog_id),
	FULLTEXT INDEX (url_tokens)
)`

var nlpDDL = `CREATE TABLE %s (
	internal_id INT UNSIGNED NOT NULL AUTO_INCREMENT,
	catalog_id VARCHAR(50) NOT NULL,
	description TEXT,
	description_tokens TEXT,
	PRIMARY KEY (internal_id),
	INDEX (catalog_id),
	FULLTEXT INDEX (description_tokens)
)`

var relationshipDDL = `CREATE TABLE %s (
	internal_id INT UNSIGNED NOT NULL AUTO_INCREMENT,
	from_catalog_id VARCHAR(50) NOT NULL,
	to_catalog_id VARCHAR(50) NOT NULL,
	PRIMARY KEY (internal_id),
	INDEX (from_catalog_id),
	INDEX (to_catalog_id)
)`

// CreateTables drops and re-creates the tables of a catalog entity, plus
// the catalog relationship table.
func (m *Manager) CreateTables(ctx context.Context, cat *catalog.Catalog, entity *catalog.Entity) error {
	if err := m.DropTables(ctx, cat, entity); err != nil {
		return err
	}

	ddls := map[string]string{
		BaseTable(cat.Name, entity.Kind): baseDDL,
	}
	if entity.HasLinks {
		ddls[LinkTable(cat.Name, entity.Kind)] = linkDDL
	}
	if entity.HasNLP {
		ddls[NLPTable(cat.Name, entity.Kind)] = nlpDDL
	}
	ddls[RelationshipTable(cat.Name)] = relationshipDDL

	for table, ddl := range ddls {
		if _, err := m.db.ExecContext(ctx, fmt.Sprintf(ddl, table)); err != nil {
			return errors.Wrapf(err, "unable to create table %s", table)
		}
	}

	return nil
}

// DropTables drops the tables of a catalog entity when they exist.
func (m *Manager) DropTables(ctx context.Context, cat *catalog.Catalog, entity *catalog.Entity) error {
	tables := append(tablesFor(cat, entity), RelationshipTable(cat.Name))
	for _, table := range tables {
		if _, err := m.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return errors.Wrapf(err, "unable to drop table %s", table)
		}
	}

	return nil
}

// InsertEntities writes base rows in one multi-row statement.
func (m *Manager) InsertEntities(ctx context.Context, table string, rows []EntityRow) error {
	if len(rows) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(rows))
	args := make([]any, 0, len(rows)*11)
	for _, row := range rows {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, row.CatalogID, row.Name, row.NameTokens,
			row.Born, row.BornPrecision, row.Died, row.DiedPrecision,
			row.Gender, row.BirthPlace, row.DeathPlace, row.Occupations)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (catalog_id, name, name_tokens, born, born_precision, died, died_precision, gender, birth_place, death_place, occupations) VALUES %s",
		table, strings.Join(placeholders, ", "))

	if _, err := m.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "unable to insert %d rows into %s", len(rows), table)
	}

	return nil
}

// InsertLinks writes link rows in one multi-row statement.
func (m *Manager) InsertLinks(ctx context.Context, table string, rows []LinkRow) error {
	if len(rows) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(rows))
	args := make([]any, 0, len(rows)*3)
	for _, row := range rows {
		placeholders = append(placeholders, "(?, ?, ?)")
		args = append(args, row.CatalogID, row.URL, row.URLTokens)
	}

	query := fmt.Sprintf("INSERT INTO %s (catalog_id, url, url_tokens) VALUES %s",
		table, strings.Join(placeholders, ", "))

	if _, err := m.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "unable to insert %d rows into %s", len(rows), table)
	}

	return nil
}

// InsertNLP writes textual rows in one multi-row statement.
func (m *Manager) InsertNLP(ctx context.Context, table string, rows []NLPRow) error {
	if len(rows) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(rows))
	args := make([]any, 0, len(rows)*3)
	for _, row := range rows {
		placeholders = append(placeholders, "(?, ?, ?)")
		args = append(args, row.CatalogID, row.Description, row.DescriptionTokens)
	}

	query := fmt.Sprintf("INSERT INTO %s (catalog_id, description, description_tokens) VALUES %s",
		table, strings.Join(placeholders, ", "))

	if _, err := m.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "unable to insert %d rows into %s", len(rows), table)
	}

	return nil
}

// InsertRelationships writes relationship rows in one multi-row
// statement.
func (m *Manager) InsertRelationships(ctx context.Context, table string, rows []RelationshipRow) error {
	if len(rows) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(rows))
	args := make([]any, 0, len(rows)*2)
	for _, row := range rows {
		placeholders = append(placeholders, "(?, ?)")
		args = append(args, row.FromCatalogID, row.ToCatalogID)
	}

	query := fmt.Sprintf("INSERT INTO %s (from_catalog_id, to_catalog_id) VALUES %s",
		table, strings.Join(placeholders, ", "))

	if _, err := m.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "unable to insert %d rows into %s", len(rows), table)
	}

	return nil
}
