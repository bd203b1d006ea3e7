// internal/snapshot/manifest.go
package snapshot

// Kind names one snapshot file family.
type Kind string

const (
	KindSurveys   Kind = "surveys"
	KindUsers     Kind = "users"
	KindResponses Kind = "responses"
)

// Kinds lists every kind in the order they are written and seeded.
var Kinds = []Kind{KindSurveys, KindUsers, KindResponses}

const (
	manifestVersion = "1"
	manifestFile    = "latest.json"
	mappingFile     = "survey_mapping.json"
	timestampLayout = "20060102_150405"
)

// Manifest points at the files of the most recent generation run.
type Manifest struct {
	Version   string          `json:"version"`
	RunID     string          `json:"runId"`
	CreatedAt string          `json:"createdAt"`
	Seed      int64           `json:"seed,omitempty"`
	Files     map[Kind]string `json:"files"`
	Counts    map[Kind]int    `json:"counts"`
}

func aliasName(kind Kind) string {
	return string(kind) + "_latest.json"
}
