// Package catalog is the registry of target catalogs the linker can work
// against, together with the Wikidata vocabulary binding them: which
// entity kinds each catalog holds, the Wikidata class behind each kind,
// and the identifier property pointing at the catalog.
package catalog

import (
	"sort"

	"github.com/pkg/errors"
)

// Supported catalog names.
const (
	Discogs     = "discogs"
	IMDb        = "imdb"
	MusicBrainz = "musicbrainz"
)

// Supported entity kinds.
const (
	Actor           = "actor"
	AudiovisualWork = "audiovisual_work"
	Band            = "band"
	Director        = "director"
	Musician        = "musician"
	MusicalWork     = "musical_work"
	Producer        = "producer"
	Writer          = "writer"
)

// Entity describes one entity kind inside a catalog.
type Entity struct {
	Kind     string
	ClassQID string
	// PID is the Wikidata identifier property for this kind, e.g.
	// P1953 (Discogs artist ID) for discogs musicians.
	PID string
	// HasLinks and HasNLP tell whether the catalog DB carries link and
	// textual tables for this kind.
	HasLinks bool
	HasNLP   bool
	// WorkType is the related work kind, empty when the kind is itself
	// a work.
	WorkType string
	// RequireOccupation marks kinds whose Wikidata items are selected by
	// occupation rather than by class.
	RequireOccupation bool
}

// Catalog is a supported target catalog.
type Catalog struct {
	Name     string
	QID      string
	entities map[string]*Entity
}

// Entity returns the given entity kind of the catalog.
func (c *Catalog) Entity(kind string) (*Entity, error) {
	entity, ok := c.entities[kind]
	if !ok {
		return nil, errors.Errorf("bad entity kind: %s. It should be one of %v for catalog %s", kind, c.EntityKinds(), c.Name)
	}

	return entity, nil
}

// EntityKinds returns the entity kinds of the catalog, sorted.
func (c *Catalog) EntityKinds() []string {
	kinds := make([]string, 0, len(c.entities))
	for kind := range c.entities {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	return kinds
}

var registry = map[string]*Catalog{
	Discogs: {
		Name: Discogs,
		QID:  DiscogsQID,
		entities: map[string]*Entity{
			Musician: {
				Kind:     Musician,
				ClassQID: MusicianQID,
				PID:      DiscogsArtistPID,
				HasLinks: true,
				HasNLP:   true,
				WorkType: MusicalWork,
			},
			Band: {
				Kind:     Band,
				ClassQID: BandQID,
				PID:      DiscogsArtistPID,
				HasLinks: true,
				HasNLP:   true,
				WorkType: MusicalWork,
			},
			MusicalWork: {
				Kind:     MusicalWork,
				ClassQID: MusicalWorkQID,
				PID:      DiscogsMasterPID,
			},
		},
	},
	IMDb: {
		Name: IMDb,
		QID:  IMDbQID,
		entities: map[string]*Entity{
			Actor: {
				Kind:              Actor,
				ClassQID:          ActorQID,
				PID:               IMDbIDPID,
				WorkType:          AudiovisualWork,
				RequireOccupation: true,
			},
			Director: {
				Kind:              Director,
				ClassQID:          FilmDirectorQID,
				PID:               IMDbIDPID,
				WorkType:          AudiovisualWork,
				RequireOccupation: true,
			},
			Musician: {
				Kind:              Musician,
				ClassQID:          MusicianQID,
				PID:               IMDbIDPID,
				WorkType:          AudiovisualWork,
				RequireOccupation: true,
			},
			Producer: {
				Kind:              Producer,
				ClassQID:          FilmProducerQID,
				PID:               IMDbIDPID,
				WorkType:          AudiovisualWork,
				RequireOccupation: true,
			},
			Writer: {
				Kind:              Writer,
				ClassQID:          ScreenwriterQID,
				PID:               IMDbIDPID,
				WorkType:          AudiovisualWork,
				RequireOccupation: true,
			},
			AudiovisualWork: {
				Kind:     AudiovisualWork,
				ClassQID: AudiovisualWorkQID,
				PID:      IMDbIDPID,
			},
		},
	},
	MusicBrainz: {
		Name: MusicBrainz,
		QID:  MusicBrainzQID,
		entities: map[string]*Entity{
			Musician: {
				Kind:     Musician,
				ClassQID: MusicianQID,
				PID:      MusicBrainzArtistPID,
				HasLinks: true,
				WorkType: MusicalWork,
			},
			Band: {
				Kind:     Band,
				ClassQID: BandQID,
				PID:      MusicBrainzArtistPID,
				HasLinks: true,
				WorkType: MusicalWork,
			},
			MusicalWork: {
				Kind:     MusicalWork,
				ClassQID: MusicalWorkQID,
				PID:      MusicBrainzReleaseGroupPID,
				HasLinks: true,
			},
		},
	},
}

// Get returns a supported catalog by name.
func Get(name string) (*Catalog, error) {
	cat, ok := registry[name]
	if !ok {
		return nil, errors.Errorf("bad catalog: %s. It should be one of %v", name, Supported())
	}

	return cat, nil
}

// Supported returns the supported catalog names, sorted.
func Supported() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// SupportedEntities returns every entity kind any catalog supports.
func SupportedEntities() []string {
	seen := map[string]struct{}{}
	for _, cat := range registry {
		for kind := range cat.entities {
			seen[kind] = struct{}{}
		}
	}
	kinds := make([]string, 0, len(seen))
	for kind := range seen {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	return kinds
}

const (
	// ConfidenceThreshold is the minimum classification probability for
	// a candidate pair to become a link.
	ConfidenceThreshold = 0.5
	// FeatureMissingValue fills feature cells whose inputs are missing.
	FeatureMissingValue = 0.0
)
