package seeder

import (
	"time"

	"formbricks-seeder/internal/common/config"
)

// Pacing is the pause between two submissions of the same phase.
type Pacing struct {
	Survey   time.Duration
	User     time.Duration
	Response time.Duration
}

func DefaultPacing() Pacing {
	return Pacing{
		Survey:   time.Second,
		User:     500 * time.Millisecond,
		Response: 300 * time.Millisecond,
	}
}

func PacingFromConfig(cfg config.SeedingConfig) Pacing {
	return Pacing{
		Survey:   config.GetMillis(cfg.SurveyPacing),
		User:     config.GetMillis(cfg.UserPacing),
		Response: config.GetMillis(cfg.ResponsePacing),
	}
}

// Options selects what one seeding run submits.
type Options struct {
	DataDir       string
	APIKey        string
	BaseURL       string
	SkipUsers     bool
	SkipResponses bool
}
