package wikidata

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Resolver extracts (property, identifier) pairs out of third-party
// URLs, using the formatter URLs declared on Wikidata.
type Resolver struct {
	patterns []resolverPattern
	// urlPatterns indexes the raw formatter URLs per property, for the
	// reverse direction: expanding an identifier into a URL.
	urlPatterns map[string]string
	// urlPIDs holds the properties of datatype URL, whose claim values
	// are URLs as-is.
	urlPIDs map[string]struct{}
}

type resolverPattern struct {
	pid string
	re  *regexp.Regexp
	// idIndex is the submatch index of the identifier group. The
	// identifier regex may carry groups of its own, so the index is
	// looked up by name instead of assuming a position.
	idIndex int
}

// NewResolver compiles the formatter URLs into matching patterns and
// records the URL-datatype properties. Formatters that cannot be
// compiled are skipped, not fatal.
func NewResolver(formatters []Formatter, urlPIDs []string, log *slog.Logger) *Resolver {
	resolver := &Resolver{
		urlPatterns: make(map[string]string, len(formatters)),
		urlPIDs:     make(map[string]struct{}, len(urlPIDs)),
	}
	for _, pid := range urlPIDs {
		resolver.urlPIDs[pid] = struct{}{}
	}
	for _, formatter := range formatters {
		re, err := compileFormatter(formatter)
		if err != nil {
			log.Debug("skipping formatter", "pid", formatter.PID, "error", err)

			continue
		}
		resolver.patterns = append(resolver.patterns, resolverPattern{
			pid:     formatter.PID,
			re:      re,
			idIndex: re.SubexpIndex("id"),
		})
		resolver.urlPatterns[formatter.PID] = formatter.URLPattern
	}

	return resolver
}

// formatterOf returns the raw formatter URL of a property.
func (r *Resolver) formatterOf(pid string) (string, bool) {
	pattern, ok := r.urlPatterns[pid]

	return pattern, ok
}

// isURLProperty tells whether a property holds URLs directly.
func (r *Resolver) isURLProperty(pid string) bool {
	_, ok := r.urlPIDs[pid]

	return ok
}

func compileFormatter(formatter Formatter) (*regexp.Regexp, error) {
	idPattern := formatter.IDRegex
	if idPattern == "" {
		idPattern = `[^/?&#]+`
	}

	pattern := regexp.QuoteMeta(formatter.URLPattern)
	if !strings.Contains(pattern, `\$1`) {
		return nil, errors.Errorf("formatter of %s has no placeholder: %s", formatter.PID, formatter.URLPattern)
	}
	pattern = strings.Replace(pattern, `\$1`, "(?P<id>"+idPattern+")", 1)

	// Tolerate scheme and www variations plus a trailing slash.
	pattern = strings.TrimPrefix(pattern, `https://`)
	pattern = strings.TrimPrefix(pattern, `http://`)
	pattern = strings.TrimPrefix(pattern, `www\.`)
	pattern = `^https?://(www\.)?` + pattern + `/?$`

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to compile formatter of %s", formatter.PID)
	}

	return re, nil
}

// Resolve returns the external-ID property and identifier a URL stands
// for, or ok=false when no formatter matches.
func (r *Resolver) Resolve(url string) (pid, id string, ok bool) {
	url = strings.TrimSpace(url)
	for _, pattern := range r.patterns {
		match := pattern.re.FindStringSubmatch(url)
		if match == nil {
			continue
		}

		return pattern.pid, match[pattern.idIndex], true
	}

	return "", "", false
}

