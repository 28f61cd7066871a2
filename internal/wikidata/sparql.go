package wikidata

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-linker/pkg/catalog"
)

// SPARQLPageSize caps how many bindings one query service call returns.
const SPARQLPageSize = 1000

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

func (c *Client) runSelect(ctx context.Context, query string) ([]map[string]string, error) {
	var res sparqlResponse
	err := c.get(ctx, sparqlURL, map[string]string{
		"query":  query,
		"format": "json",
	}, &res)
	if err != nil {
		return nil, errors.Wrap(err, "unable to run SPARQL query")
	}

	rows := make([]map[string]string, 0, len(res.Results.Bindings))
	for _, binding := range res.Results.Bindings {
		row := make(map[string]string, len(binding))
		for name, cell := range binding {
			row[name] = strings.TrimPrefix(cell.Value, "http://www.wikidata.org/entity/")
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func (c *Client) paged(ctx context.Context, query string, fn func(rows []map[string]string) error) error {
	for offset := 0; ; offset += SPARQLPageSize {
		paged := fmt.Sprintf("%s LIMIT %d OFFSET %d", query, SPARQLPageSize, offset)
		rows, err := c.runSelect(ctx, paged)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		if err := fn(rows); err != nil {
			return err
		}
	}
}

func classConstraint(entity *catalog.Entity) string {
	if entity.RequireOccupation {
		return fmt.Sprintf("?item wdt:%s wd:%s .", catalog.OccupationPID, entity.ClassQID)
	}

	return fmt.Sprintf("?item wdt:P31/wdt:P279* wd:%s .", entity.ClassQID)
}

// identifierQuery selects the items already carrying the catalog
// identifier property, together with their identifiers.
func identifierQuery(entity *catalog.Entity) string {
	return fmt.Sprintf("SELECT DISTINCT ?item ?tid WHERE { %s ?item wdt:%s ?tid . }",
		classConstraint(entity), entity.PID)
}

// subjectQuery selects the items of the class that do NOT carry the
// catalog identifier property yet.
func subjectQuery(entity *catalog.Entity) string {
	return fmt.Sprintf(
		"SELECT DISTINCT ?item WHERE { %s FILTER NOT EXISTS { ?item wdt:%s ?tid . } }",
		classConstraint(entity), entity.PID)
}

// IdentifierPairs streams the (QID, catalog identifier) pairs of the
// items already linked to the catalog. One item may carry several
// identifiers.
func (c *Client) IdentifierPairs(ctx context.Context, entity *catalog.Entity, fn func(pairs map[string][]string) error) error {
	return c.paged(ctx, identifierQuery(entity), func(rows []map[string]string) error {
		pairs := make(map[string][]string, len(rows))
		for _, row := range rows {
			pairs[row["item"]] = append(pairs[row["item"]], row["tid"])
		}

		return fn(pairs)
	})
}

// Subjects streams the QIDs of the items that still lack the catalog
// identifier, the input of a classification run.
func (c *Client) Subjects(ctx context.Context, entity *catalog.Entity, fn func(qids []string) error) error {
	return c.paged(ctx, subjectQuery(entity), func(rows []map[string]string) error {
		qids := make([]string, 0, len(rows))
		for _, row := range rows {
			qids = append(qids, row["item"])
		}

		return fn(qids)
	})
}

// URLProperties returns every Wikidata property of datatype URL.
func (c *Client) URLProperties(ctx context.Context) ([]string, error) {
	rows, err := c.runSelect(ctx,
		"SELECT ?property WHERE { ?property a wikibase:Property ; wikibase:propertyType wikibase:Url . }")
	if err != nil {
		return nil, err
	}

	pids := make([]string, 0, len(rows))
	for _, row := range rows {
		pids = append(pids, row["property"])
	}

	return pids, nil
}

// Formatter is the URL shape of an external identifier property.
type Formatter struct {
	PID string
	// URLPattern is the formatter URL with the $1 placeholder.
	URLPattern string
	// IDRegex validates the extracted identifier; empty when the
	// property declares none.
	IDRegex string
}

// ExternalIDFormatters returns the formatter URL and identifier regex of
// every external-ID property, the raw material of URL resolution.
func (c *Client) ExternalIDFormatters(ctx context.Context) ([]Formatter, error) {
	query := `SELECT ?property ?formatter ?regex WHERE {
	?property a wikibase:Property ;
		wikibase:propertyType wikibase:ExternalId ;
		wdt:P1630 ?formatter .
	OPTIONAL { ?property wdt:P1793 ?regex . }
}`

	rows, err := c.runSelect(ctx, query)
	if err != nil {
		return nil, err
	}

	formatters := make([]Formatter, 0, len(rows))
	for _, row := range rows {
		formatters = append(formatters, Formatter{
			PID:        row["property"],
			URLPattern: row["formatter"],
			IDRegex:    row["regex"],
		})
	}

	return formatters, nil
}
