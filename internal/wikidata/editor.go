package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-linker/pkg/catalog"
)

// Editor writes statements to Wikidata through a logged-in client. In
// sandbox mode every edit lands on the sandbox item instead of the real
// subject.
type Editor struct {
	client  *Client
	sandbox bool
}

// NewEditor wraps a logged-in client. Login must have been called.
func NewEditor(client *Client, sandbox bool) (*Editor, error) {
	if client.csrfToken == "" {
		return nil, errors.New("client is not logged in")
	}

	return &Editor{client: client, sandbox: sandbox}, nil
}

func (e *Editor) subject(qid string) string {
	if e.sandbox {
		return catalog.SandboxQID
	}

	return qid
}

type claimResponse struct {
	Claim struct {
		ID string `json:"id"`
	} `json:"claim"`
	Error *apiError `json:"error"`
}

type genericResponse struct {
	Success int       `json:"success"`
	Error   *apiError `json:"error"`
}

// AddStatement sources a (subject, property, value) claim with a
// (stated in, catalog) plus (retrieved, today) reference, creating the
// claim first unless the subject already holds it. The value must be
// the datavalue JSON of the property's datatype.
func (e *Editor) AddStatement(ctx context.Context, qid, pid string, value any, catalogQID string) error {
	claims, err := e.findClaims(ctx, e.subject(qid), pid)
	if err != nil {
		return err
	}
	for _, raw := range claims {
		var parsed struct {
			ID       string `json:"id"`
			MainSnak snak   `json:"mainsnak"`
		}
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return errors.Wrap(err, "unable to decode claim")
		}
		if matchesValue(parsed.MainSnak, value) {
			return e.addReference(ctx, parsed.ID, catalogQID)
		}
	}

	rawValue, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "unable to marshal claim value")
	}

	var created claimResponse
	err = e.client.post(ctx, map[string]string{
		"action":   "wbcreateclaim",
		"entity":   e.subject(qid),
		"property": pid,
		"snaktype": "value",
		"value":    string(rawValue),
		"token":    e.client.csrfToken,
		"bot":      "1",
	}, &created)
	if err != nil {
		return err
	}
	if created.Error != nil {
		return errors.Errorf("wbcreateclaim failed on %s %s: %s: %s",
			qid, pid, created.Error.Code, created.Error.Info)
	}

	return e.addReference(ctx, created.Claim.ID, catalogQID)
}

// StringValue wraps a plain string for AddStatement.
func StringValue(v string) any {
	return v
}

// ItemValue wraps a QID for AddStatement.
func ItemValue(qid string) any {
	return map[string]any{
		"entity-type": "item",
		"id":          qid,
	}
}

// TimeValue wraps a date and its precision for AddStatement.
func TimeValue(date string, precision int) any {
	return map[string]any{
		"time":          fmt.Sprintf("+%sT00:00:00Z", date),
		"precision":     precision,
		"timezone":      0,
		"before":        0,
		"after":         0,
		"calendarmodel": "http://www.wikidata.org/entity/Q1985727",
	}
}

// matchesValue reports whether a claim main snak already holds the
// given datavalue.
func matchesValue(s snak, value any) bool {
	switch v := value.(type) {
	case string:
		return s.stringValue() == v
	case map[string]any:
		if qid, ok := v["id"].(string); ok {
			return s.entityID() == qid
		}
		if wantTime, ok := v["time"].(string); ok {
			date, precision := s.timeValue()
			if date == nil || precision == nil {
				return false
			}
			wantPrecision, ok := v["precision"].(int)

			return ok && wantTime == fmt.Sprintf("+%sT00:00:00Z", *date) && wantPrecision == *precision
		}
	}

	return false
}

func (e *Editor) addReference(ctx context.Context, claimID, catalogQID string) error {
	today := time.Now().UTC().Format("2006-01-02")
	snaks := map[string]any{
		catalog.StatedInPID: []any{
			map[string]any{
				"snaktype": "value",
				"property": catalog.StatedInPID,
				"datavalue": map[string]any{
					"type":  "wikibase-entityid",
					"value": ItemValue(catalogQID),
				},
			},
		},
		catalog.RetrievedPID: []any{
			map[string]any{
				"snaktype": "value",
				"property": catalog.RetrievedPID,
				"datavalue": map[string]any{
					"type":  "time",
					"value": TimeValue(today, catalog.DayPrecision),
				},
			},
		},
	}

	rawSnaks, err := json.Marshal(snaks)
	if err != nil {
		return errors.Wrap(err, "unable to marshal reference snaks")
	}

	var res genericResponse
	err = e.client.post(ctx, map[string]string{
		"action":    "wbsetreference",
		"statement": claimID,
		"snaks":     string(rawSnaks),
		"token":     e.client.csrfToken,
		"bot":       "1",
	}, &res)
	if err != nil {
		return err
	}
	if res.Error != nil {
		return errors.Errorf("wbsetreference failed on %s: %s: %s",
			claimID, res.Error.Code, res.Error.Info)
	}

	return nil
}

type claimsResponse struct {
	Claims map[string][]json.RawMessage `json:"claims"`
	Error  *apiError                    `json:"error"`
}

func (e *Editor) findClaims(ctx context.Context, qid, pid string) ([]json.RawMessage, error) {
	var res claimsResponse
	err := e.client.get(ctx, apiURL, map[string]string{
		"action":   "wbgetclaims",
		"entity":   qid,
		"property": pid,
		"format":   "json",
	}, &res)
	if err != nil {
		return nil, err
	}
	if res.Error != nil {
		return nil, errors.Errorf("wbgetclaims failed on %s %s: %s: %s",
			qid, pid, res.Error.Code, res.Error.Info)
	}

	return res.Claims[pid], nil
}

// DeleteStatement removes the claims holding the given identifier value
// on the subject.
func (e *Editor) DeleteStatement(ctx context.Context, qid, pid, value string) error {
	claims, err := e.findClaims(ctx, e.subject(qid), pid)
	if err != nil {
		return err
	}

	for _, raw := range claims {
		var parsed struct {
			ID       string `json:"id"`
			MainSnak snak   `json:"mainsnak"`
		}
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return errors.Wrap(err, "unable to decode claim")
		}
		if parsed.MainSnak.stringValue() != value {
			continue
		}

		var res genericResponse
		err = e.client.post(ctx, map[string]string{
			"action": "wbremoveclaims",
			"claim":  parsed.ID,
			"token":  e.client.csrfToken,
			"bot":    "1",
		}, &res)
		if err != nil {
			return err
		}
		if res.Error != nil {
			return errors.Errorf("wbremoveclaims failed on %s: %s: %s",
				parsed.ID, res.Error.Code, res.Error.Info)
		}
	}

	return nil
}

// DeprecateStatement lowers to deprecated rank the claims holding the
// given identifier value on the subject.
func (e *Editor) DeprecateStatement(ctx context.Context, qid, pid, value string) error {
	claims, err := e.findClaims(ctx, e.subject(qid), pid)
	if err != nil {
		return err
	}

	for _, raw := range claims {
		var parsed map[string]any
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return errors.Wrap(err, "unable to decode claim")
		}

		var mainSnak struct {
			MainSnak snak `json:"mainsnak"`
		}
		if err := json.Unmarshal(raw, &mainSnak); err != nil {
			return errors.Wrap(err, "unable to decode claim snak")
		}
		if mainSnak.MainSnak.stringValue() != value {
			continue
		}

		parsed["rank"] = "deprecated"
		updated, err := json.Marshal(parsed)
		if err != nil {
			return errors.Wrap(err, "unable to marshal deprecated claim")
		}

		var res genericResponse
		err = e.client.post(ctx, map[string]string{
			"action": "wbsetclaim",
			"claim":  string(updated),
			"token":  e.client.csrfToken,
			"bot":    "1",
		}, &res)
		if err != nil {
			return err
		}
		if res.Error != nil {
			return errors.Errorf("wbsetclaim failed: %s: %s", res.Error.Code, res.Error.Info)
		}
	}

	return nil
}
