package wikidata

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-linker/pkg/catalog"
)

// Record is the Wikidata side of a linking dataset: one item flattened
// into the fields the feature extractors consume.
type Record struct {
	QID           string   `json:"qid"`
	Names         []string `json:"names,omitempty"`
	Born          *string  `json:"born,omitempty"`
	BornPrecision *int     `json:"born_precision,omitempty"`
	Died          *string  `json:"died,omitempty"`
	DiedPrecision *int     `json:"died_precision,omitempty"`
	Gender        string   `json:"gender,omitempty"`
	URLs          []string `json:"urls,omitempty"`
	Description   string   `json:"description,omitempty"`
	// TIDs carries the known catalog identifiers in training sets.
	TIDs []string `json:"tids,omitempty"`
}

type entitiesResponse struct {
	Entities map[string]entityData `json:"entities"`
	Error    *apiError             `json:"error"`
}

type entityData struct {
	ID           string                   `json:"id"`
	Labels       map[string]monolingual   `json:"labels"`
	Aliases      map[string][]monolingual `json:"aliases"`
	Descriptions map[string]monolingual   `json:"descriptions"`
	Claims       map[string][]claim       `json:"claims"`
}

type monolingual struct {
	Value string `json:"value"`
}

type claim struct {
	MainSnak snak   `json:"mainsnak"`
	Rank     string `json:"rank"`
	ID       string `json:"id"`
}

type snak struct {
	DataValue struct {
		Type  string `json:"type"`
		Value any    `json:"value"`
	} `json:"datavalue"`
}

func (s snak) stringValue() string {
	v, _ := s.DataValue.Value.(string)

	return v
}

func (s snak) entityID() string {
	m, ok := s.DataValue.Value.(map[string]any)
	if !ok {
		return ""
	}
	id, _ := m["id"].(string)

	return id
}

func (s snak) timeValue() (*string, *int) {
	m, ok := s.DataValue.Value.(map[string]any)
	if !ok {
		return nil, nil
	}
	raw, _ := m["time"].(string)
	if raw == "" {
		return nil, nil
	}

	// "+1882-01-01T00:00:00Z" -> "1882-01-01".
	date := strings.TrimPrefix(raw, "+")
	if idx := strings.Index(date, "T"); idx > 0 {
		date = date[:idx]
	}

	precision := catalog.YearPrecision
	if p, ok := m["precision"].(float64); ok {
		precision = int(p)
	}

	return &date, &precision
}

var genderQIDs = map[string]string{
	"Q6581097": "male",
	"Q6581072": "female",
	"Q1097630": "intersex",
	"Q1052281": "trans woman",
	"Q2449503": "trans man",
}

func (e entityData) toRecord(resolver *Resolver) Record {
	rec := Record{QID: e.ID}

	if label, ok := e.Labels["en"]; ok && label.Value != "" {
		rec.Names = append(rec.Names, label.Value)
	}
	for _, alias := range e.Aliases["en"] {
		if alias.Value != "" {
			rec.Names = append(rec.Names, alias.Value)
		}
	}
	if desc, ok := e.Descriptions["en"]; ok {
		rec.Description = desc.Value
	}

	if claims := e.Claims[catalog.DateOfBirthPID]; len(claims) > 0 {
		rec.Born, rec.BornPrecision = claims[0].MainSnak.timeValue()
	}
	if claims := e.Claims[catalog.DateOfDeathPID]; len(claims) > 0 {
		rec.Died, rec.DiedPrecision = claims[0].MainSnak.timeValue()
	}
	if claims := e.Claims[catalog.SexOrGenderPID]; len(claims) > 0 {
		rec.Gender = genderQIDs[claims[0].MainSnak.entityID()]
	}
	for _, cl := range e.Claims[catalog.DescribedAtURLPID] {
		if url := cl.MainSnak.stringValue(); url != "" {
			rec.URLs = append(rec.URLs, url)
		}
	}

	// External identifiers expand to URLs through their formatters, and
	// URL-datatype claims are kept as-is, so the URL features can
	// compare them against catalog links.
	if resolver != nil {
		for pid, claims := range e.Claims {
			if pid == catalog.DescribedAtURLPID {
				continue
			}
			pattern, expand := resolver.formatterOf(pid)
			if !expand && !resolver.isURLProperty(pid) {
				continue
			}
			for _, cl := range claims {
				value := cl.MainSnak.stringValue()
				if value == "" {
					continue
				}
				if expand {
					value = strings.Replace(pattern, "$1", value, 1)
				}
				rec.URLs = append(rec.URLs, value)
			}
		}
	}

	return rec
}

// Records fetches the given items in batches and hands each batch of
// flattened records to the callback. A nil resolver skips external-ID
// URL expansion.
func (c *Client) Records(ctx context.Context, qids []string, resolver *Resolver, fn func(records []Record) error) error {
	for start := 0; start < len(qids); start += EntityBatchSize {
		end := start + EntityBatchSize
		if end > len(qids) {
			end = len(qids)
		}

		var res entitiesResponse
		err := c.get(ctx, apiURL, map[string]string{
			"action": "wbgetentities",
			"ids":    strings.Join(qids[start:end], "|"),
			"props":  "labels|aliases|descriptions|claims",
			"format": "json",
			"maxlag": maxLag,
		}, &res)
		if err != nil {
			return err
		}
		if res.Error != nil {
			return errors.Errorf("wbgetentities failed: %s: %s", res.Error.Code, res.Error.Info)
		}

		records := make([]Record, 0, len(res.Entities))
		for _, entity := range res.Entities {
			records = append(records, entity.toRecord(resolver))
		}

		if err := fn(records); err != nil {
			return err
		}
	}

	return nil
}
