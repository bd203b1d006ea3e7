// Package seeder submits a generated snapshot to a Formbricks instance.
package seeder

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	apperrors "formbricks-seeder/internal/common/errors"
	"formbricks-seeder/internal/common/logger"
	"formbricks-seeder/internal/common/retry"
	"formbricks-seeder/internal/formbricks"
	"formbricks-seeder/internal/models"
	"formbricks-seeder/internal/snapshot"
)

// PlatformAPI is the subset of *formbricks.Client the pipeline needs.
type PlatformAPI interface {
	CreateSurvey(ctx context.Context, payload formbricks.SurveyPayload) (formbricks.Result, error)
	InviteUser(ctx context.Context, payload formbricks.InvitePayload) (formbricks.Result, error)
	SubmitResponse(ctx context.Context, surveyID string, payload formbricks.ResponsePayload) (formbricks.Result, error)
}

// Connector builds a platform client for one run.
type Connector func(baseURL, apiKey string) PlatformAPI

// Metrics is implemented by *metrics.Registry.
type Metrics interface {
	RecordResource(resource string, created bool)
	ObservePhase(phase string, d time.Duration)
}

type ServiceDependencies struct {
	Connect  Connector
	Logger   logger.Logger
	Reporter Reporter
	Metrics  Metrics
}

type Service struct {
	connect  Connector
	logger   logger.Logger
	reporter Reporter
	metrics  Metrics
	pacing   Pacing
	sleep    retry.SleepFunc
	now      func() time.Time
}

func NewService(deps ServiceDependencies, pacing Pacing) *Service {
	s := &Service{
		connect:  deps.Connect,
		logger:   deps.Logger,
		reporter: deps.Reporter,
		metrics:  deps.Metrics,
		pacing:   pacing,
		sleep:    retry.ContextSleep,
		now:      time.Now,
	}
	if s.reporter == nil {
		s.reporter = nopReporter{}
	}
	return s
}

// SetSleep replaces the pacing sleep, for tests.
func (s *Service) SetSleep(fn retry.SleepFunc) { s.sleep = fn }

// Run loads the latest snapshot from opts.DataDir and submits surveys, users
// and responses in that order. Item failures are tallied and the run goes on;
// an authentication failure or cancellation stops it and returns the partial
// tally alongside the error. The survey mapping is written only after every
// phase has finished.
func (s *Service) Run(ctx context.Context, opts Options) (*Tally, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, apperrors.NewConfigInvalidError("FORMBRICKS_API_KEY is required for seeding")
	}

	kinds := []snapshot.Kind{snapshot.KindSurveys}
	if !opts.SkipUsers {
		kinds = append(kinds, snapshot.KindUsers)
	}
	if !opts.SkipResponses {
		kinds = append(kinds, snapshot.KindResponses)
	}
	store := snapshot.NewStore(opts.DataDir)
	snap, err := store.Load(kinds...)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Seeding Formbricks", map[string]interface{}{
		"baseUrl":   opts.BaseURL,
		"dataDir":   opts.DataDir,
		"surveys":   len(snap.Dataset.Surveys),
		"users":     len(snap.Dataset.Users),
		"responses": len(snap.Dataset.Responses),
	})

	api := s.connect(opts.BaseURL, opts.APIKey)
	tally := newTally()

	if err := s.timed(PhaseSurveys, func() error {
		return s.seedSurveys(ctx, api, snap.Dataset.Surveys, tally)
	}); err != nil {
		return tally, err
	}

	if opts.SkipUsers {
		s.reporter.PhaseSkipped(PhaseUsers, "--skip-users")
	} else if err := s.timed(PhaseUsers, func() error {
		return s.seedUsers(ctx, api, snap.Dataset.Users, tally)
	}); err != nil {
		return tally, err
	}

	switch {
	case opts.SkipResponses:
		s.reporter.PhaseSkipped(PhaseResponses, "--skip-responses")
	case len(tally.SurveyIDs) == 0:
		s.reporter.PhaseSkipped(PhaseResponses, "no surveys were created")
	default:
		if err := s.timed(PhaseResponses, func() error {
			return s.seedResponses(ctx, api, snap.Dataset.Responses, tally)
		}); err != nil {
			return tally, err
		}
	}

	if len(tally.SurveyIDs) > 0 {
		path, err := store.WriteMapping(tally.SurveyIDs)
		if err != nil {
			return tally, err
		}
		tally.MappingPath = path
	}

	s.logger.Info("Seeding complete", map[string]interface{}{
		"surveysCreated":   tally.Surveys.Created,
		"usersCreated":     tally.Users.Created,
		"responsesCreated": tally.Responses.Created,
	})
	return tally, nil
}

func (s *Service) timed(phase Phase, fn func() error) error {
	start := s.now()
	err := fn()
	if s.metrics != nil {
		s.metrics.ObservePhase(string(phase), s.now().Sub(start))
	}
	return err
}

func (s *Service) seedSurveys(ctx context.Context, api PlatformAPI, surveys []models.Survey, tally *Tally) error {
	s.reporter.PhaseStarted(PhaseSurveys, len(surveys))
	for i, survey := range surveys {
		payload := formbricks.NewSurveyPayload(survey)
		result, err := api.CreateSurvey(ctx, payload)
		id, ok, err := s.outcome(ctx, PhaseSurveys, payload.Name, result, err, true, "")
		if err != nil {
			return err
		}
		if ok {
			tally.SurveyIDs[payload.Name] = id
		}
		s.count(tally, PhaseSurveys, ok)

		if err := s.pause(ctx, s.pacing.Survey, i, len(surveys)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) seedUsers(ctx context.Context, api PlatformAPI, users []models.User, tally *Tally) error {
	s.reporter.PhaseStarted(PhaseUsers, len(users))
	for i, user := range users {
		result, err := api.InviteUser(ctx, formbricks.NewInvitePayload(user))
		id, ok, err := s.outcome(ctx, PhaseUsers, user.Email, result, err, false, "needs manual invitation")
		if err != nil {
			return err
		}
		if id != "" {
			tally.UserIDs[user.Email] = id
		}
		s.count(tally, PhaseUsers, ok)

		if err := s.pause(ctx, s.pacing.User, i, len(users)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) seedResponses(ctx context.Context, api PlatformAPI, responses []models.Response, tally *Tally) error {
	s.reporter.PhaseStarted(PhaseResponses, len(responses))
	for i, response := range responses {
		surveyID, ok := tally.SurveyIDs[response.SurveyName]
		if !ok {
			s.reporter.ItemFailed(PhaseResponses, response.SurveyName, "survey was not created")
			s.count(tally, PhaseResponses, false)
			continue
		}

		result, err := api.SubmitResponse(ctx, surveyID, formbricks.NewResponsePayload(surveyID, response))
		_, ok, err = s.outcome(ctx, PhaseResponses, response.SurveyName, result, err, false, "")
		if err != nil {
			return err
		}
		s.count(tally, PhaseResponses, ok)

		if err := s.pause(ctx, s.pacing.Response, i, len(responses)); err != nil {
			return err
		}
	}
	return nil
}

// outcome classifies one API call. An empty result body counts as failed, as
// does a missing id when requireID is set. The error is non-nil only when the
// run must stop.
func (s *Service) outcome(ctx context.Context, phase Phase, label string, result formbricks.Result, err error, requireID bool, hint string) (string, bool, error) {
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", false, ctxErr
		}
		if stderrors.Is(err, apperrors.ErrAuthenticationFailed) {
			s.logger.Error("Authentication failed, aborting seeding", map[string]interface{}{
				"phase": string(phase),
				"error": err.Error(),
			})
			return "", false, err
		}
		s.logger.Warn("Submission failed", map[string]interface{}{
			"phase": string(phase),
			"item":  label,
			"error": err.Error(),
		})
		s.reporter.ItemFailed(phase, label, failureReason(err, hint))
		return "", false, nil
	}

	id := formbricks.ResultID(result)
	if len(result) == 0 || (requireID && id == "") {
		reason := "no id in response"
		if hint != "" {
			reason = hint
		}
		s.reporter.ItemFailed(phase, label, reason)
		return "", false, nil
	}
	s.reporter.ItemCreated(phase, label, id)
	return id, true, nil
}

func failureReason(err error, hint string) string {
	reason := err.Error()
	var se *apperrors.StandardError
	if stderrors.As(err, &se) {
		reason = se.Message
	}
	if hint != "" {
		return reason + " (" + hint + ")"
	}
	return reason
}

func (s *Service) count(tally *Tally, phase Phase, created bool) {
	c := tally.counts(phase)
	if created {
		c.Created++
	} else {
		c.Failed++
	}
	if s.metrics != nil {
		s.metrics.RecordResource(string(phase), created)
	}
}

func (s *Service) pause(ctx context.Context, d time.Duration, i, total int) error {
	if i >= total-1 || d <= 0 {
		return nil
	}
	return s.sleep(ctx, d)
}
