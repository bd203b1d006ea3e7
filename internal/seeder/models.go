package seeder

// Phase names a seeding stage; values double as metric labels.
type Phase string

const (
	PhaseSurveys   Phase = "surveys"
	PhaseUsers     Phase = "users"
	PhaseResponses Phase = "responses"
)

// Counts is the outcome of one phase.
type Counts struct {
	Created int
	Failed  int
}

func (c Counts) Attempted() int { return c.Created + c.Failed }

// Tally accumulates the results of a seeding run.
type Tally struct {
	Surveys   Counts
	Users     Counts
	Responses Counts

	// SurveyIDs maps survey name to platform id.
	SurveyIDs map[string]string
	// UserIDs maps email to platform id.
	UserIDs map[string]string

	MappingPath string
}

func newTally() *Tally {
	return &Tally{
		SurveyIDs: make(map[string]string),
		UserIDs:   make(map[string]string),
	}
}

func (t *Tally) counts(p Phase) *Counts {
	switch p {
	case PhaseSurveys:
		return &t.Surveys
	case PhaseUsers:
		return &t.Users
	default:
		return &t.Responses
	}
}

// Row is one line of the summary table.
type Row struct {
	Resource    string
	Created     int
	Failed      int
	SuccessRate float64
}

// Rows returns one row per phase with at least one attempt. SuccessRate is
// a percentage.
func (t *Tally) Rows() []Row {
	var rows []Row
	for _, p := range []struct {
		name string
		c    Counts
	}{
		{"Surveys", t.Surveys},
		{"Users", t.Users},
		{"Responses", t.Responses},
	} {
		if p.c.Attempted() == 0 {
			continue
		}
		rows = append(rows, Row{
			Resource:    p.name,
			Created:     p.c.Created,
			Failed:      p.c.Failed,
			SuccessRate: float64(p.c.Created) / float64(p.c.Attempted()) * 100,
		})
	}
	return rows
}

// Reporter receives per-item outcomes as they happen.
type Reporter interface {
	PhaseStarted(phase Phase, total int)
	ItemCreated(phase Phase, label, id string)
	ItemFailed(phase Phase, label, reason string)
	PhaseSkipped(phase Phase, reason string)
}

type nopReporter struct{}

func (nopReporter) PhaseStarted(Phase, int)           {}
func (nopReporter) ItemCreated(Phase, string, string) {}
func (nopReporter) ItemFailed(Phase, string, string)  {}
func (nopReporter) PhaseSkipped(Phase, string)        {}
