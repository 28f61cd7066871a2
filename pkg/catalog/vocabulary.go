package catalog

import "regexp"

// Wikidata items.
const (
	DiscogsQID     = "Q504063"
	IMDbQID        = "Q37312"
	MusicBrainzQID = "Q14005"

	ActorQID           = "Q33999"
	AudiovisualWorkQID = "Q2431196"
	BandQID            = "Q215380"
	FilmDirectorQID    = "Q2526255"
	FilmProducerQID    = "Q3282637"
	MusicalWorkQID     = "Q2188189"
	MusicianQID        = "Q639669"
	ScreenwriterQID    = "Q28389"

	// SandboxQID is the Wikidata sandbox item edits are redirected to in
	// sandbox mode.
	SandboxQID = "Q4115189"
)

// Wikidata properties.
const (
	DiscogsArtistPID           = "P1953"
	DiscogsMasterPID           = "P1954"
	IMDbIDPID                  = "P345"
	MusicBrainzArtistPID       = "P434"
	MusicBrainzReleaseGroupPID = "P436"

	CastMemberPID     = "P161"
	DateOfBirthPID    = "P569"
	DateOfDeathPID    = "P570"
	DescribedAtURLPID = "P973"
	MemberOfPID       = "P463"
	OccupationPID     = "P106"
	PerformerPID      = "P175"
	PlaceOfBirthPID   = "P19"
	PlaceOfDeathPID   = "P20"
	RetrievedPID      = "P813"
	SexOrGenderPID    = "P21"
	StatedInPID       = "P248"
)

// Wikidata date precisions, per the data model: 9 means the year is
// reliable, 10 the month, 11 the day.
const (
	YearPrecision   = 9
	MonthPrecision  = 10
	DayPrecision    = 11
	HourPrecision   = 12
	MinutePrecision = 13
	SecondPrecision = 14
)

// QIDRegex and PIDRegex match Wikidata item and property identifiers.
const (
	QIDRegex = `Q\d+`
	PIDRegex = `P\d+`
)

// QIDPattern and PIDPattern match full identifier strings.
var (
	QIDPattern = regexp.MustCompile(`^` + QIDRegex + `$`)
	PIDPattern = regexp.MustCompile(`^` + PIDRegex + `$`)
)

// HTTPUserAgent identifies the linker against the Wikimedia APIs, as per
// https://meta.wikimedia.org/wiki/User-Agent_policy.
const HTTPUserAgent = "go-linker/1.0 (https://github.com/askiada/go-linker)"

// WorkRelationPIDs maps a work kind to the property relating it to the
// people behind it: performer for musical works, cast member for
// audiovisual ones.
var WorkRelationPIDs = map[string]string{
	AudiovisualWork: CastMemberPID,
	MusicalWork:     PerformerPID,
}

// IMDbProfessionQIDs maps IMDb profession strings to occupation QIDs.
// Unmappable professions are absent on purpose.
var IMDbProfessionQIDs = map[string]string{
	"actor":            ActorQID,
	"actress":          ActorQID,
	"composer":         "Q36834",
	"director":         FilmDirectorQID,
	"music_department": MusicianQID,
	"producer":         FilmProducerQID,
	"sound_department": "Q128124",
	"soundtrack":       MusicianQID,
	"writer":           ScreenwriterQID,
}
