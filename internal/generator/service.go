// Package generator synthesizes surveys, users and responses for seeding.
package generator

import (
	"context"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	apperrors "formbricks-seeder/internal/common/errors"
	"formbricks-seeder/internal/common/logger"
	"formbricks-seeder/internal/common/retry"
	"formbricks-seeder/internal/models"
)

// Survey sources reported in events and metrics.
const (
	SourceLLM      = "llm"
	SourceCache    = "cache"
	SourceFallback = "fallback"
)

// ChatClient is the text-generation backend. *ollama.Client implements it.
type ChatClient interface {
	Chat(ctx context.Context, system, prompt string) (string, error)
	ResolveModel(ctx context.Context) (string, error)
	Model() string
}

// SurveyCache stores raw model output. *cache.LLMCache implements it.
type SurveyCache interface {
	Get(ctx context.Context, model, archetype string) (string, bool, error)
	Put(ctx context.Context, model, archetype, raw string) error
}

// Recorder receives per-survey timings. *observability.Observability implements it.
type Recorder interface {
	RecordSurvey(ctx context.Context, archetype, source string, duration time.Duration)
}

// SurveyEvent describes one synthesized survey, for progress output.
type SurveyEvent struct {
	Index     int
	Total     int
	Archetype string
	Name      string
	Source    string
}

type Service struct {
	chat     ChatClient
	cache    SurveyCache
	recorder Recorder
	log      logger.Logger

	pacing   time.Duration
	seed     int64
	sleep    retry.SleepFunc
	now      func() time.Time
	newID    func() string
	progress func(SurveyEvent)
}

type Option func(*Service)

func WithCache(c SurveyCache) Option { return func(s *Service) { s.cache = c } }

func WithRecorder(r Recorder) Option { return func(s *Service) { s.recorder = r } }

func WithProgress(fn func(SurveyEvent)) Option { return func(s *Service) { s.progress = fn } }

func WithSleep(fn retry.SleepFunc) Option { return func(s *Service) { s.sleep = fn } }

func WithClock(fn func() time.Time) Option { return func(s *Service) { s.now = fn } }

func WithIDGenerator(fn func() string) Option { return func(s *Service) { s.newID = fn } }

// NewService builds a generator. chat may be nil, in which case every survey
// comes from the fallback templates.
func NewService(cfg Config, chat ChatClient, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		chat:   chat,
		log:    log,
		pacing: cfg.Pacing,
		seed:   cfg.Seed,
		sleep:  retry.ContextSleep,
		now:    time.Now,
		newID:  newUUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize produces numSurveys surveys, numUsers users and responses for
// each survey. Text-generation failures degrade to fallback templates; only
// context cancellation aborts.
func (s *Service) Synthesize(ctx context.Context, numSurveys, numUsers int) (*models.Dataset, error) {
	if numSurveys < 0 || numUsers < 0 {
		return nil, apperrors.NewConfigInvalidError("survey and user counts must not be negative")
	}

	rng, seed := NewSeededRNG(s.seed)
	s.log.Debug("Generation seed", map[string]interface{}{"seed": seed})

	llmAvailable := s.prepareModel(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	surveys, err := s.generateSurveys(ctx, numSurveys, llmAvailable)
	if err != nil {
		return nil, err
	}

	faker := gofakeit.New(uint64(rng.Int63()))
	users := generateUsers(numUsers, rng, faker)
	responses := generateResponses(surveys, users, rng, s.now())

	s.log.Info("Generation complete", map[string]interface{}{
		"surveys":   len(surveys),
		"users":     len(users),
		"responses": len(responses),
	})

	return &models.Dataset{Surveys: surveys, Users: users, Responses: responses}, nil
}

func (s *Service) prepareModel(ctx context.Context) bool {
	if s.chat == nil {
		return false
	}
	model, err := s.chat.ResolveModel(ctx)
	if err != nil {
		s.log.Warn("Text generation unavailable, using fallback templates", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}
	s.log.Info("Using model", map[string]interface{}{"model": model})
	return true
}

func (s *Service) generateSurveys(ctx context.Context, n int, llmAvailable bool) ([]models.Survey, error) {
	archetypes := selectArchetypes(n)
	surveys := make([]models.Survey, 0, n)

	for i, archetype := range archetypes {
		start := s.now()
		survey, source, err := s.synthesizeSurvey(ctx, archetype, llmAvailable)
		if err != nil {
			return nil, err
		}
		surveys = append(surveys, survey)

		if s.recorder != nil {
			s.recorder.RecordSurvey(ctx, archetype, source, s.now().Sub(start))
		}
		if s.progress != nil {
			s.progress(SurveyEvent{Index: i + 1, Total: len(archetypes), Archetype: archetype, Name: survey.Name, Source: source})
		}

		if source == SourceLLM && i < len(archetypes)-1 {
			if err := s.sleep(ctx, s.pacing); err != nil {
				return nil, err
			}
		}
	}

	produced := len(surveys)
	for produced > 0 && len(surveys) < n {
		dup := surveys[len(surveys)%produced].Clone()
		dup.Name = paddedName(dup.Name, len(surveys)+1)
		surveys = append(surveys, dup)
	}
	return surveys, nil
}

// synthesizeSurvey tries the cache, then the model, then the fallback template.
func (s *Service) synthesizeSurvey(ctx context.Context, archetype string, llmAvailable bool) (models.Survey, string, error) {
	if !llmAvailable {
		return FallbackSurvey(archetype, s.newID), SourceFallback, nil
	}
	model := s.chat.Model()
	fields := map[string]interface{}{"archetype": archetype, "model": model}

	if s.cache != nil {
		raw, ok, err := s.cache.Get(ctx, model, archetype)
		if err != nil {
			s.log.Warn("LLM cache lookup failed", map[string]interface{}{"archetype": archetype, "error": err.Error()})
		}
		if ok {
			if survey, err := parseSurvey(raw, archetype, s.newID); err == nil {
				return survey, SourceCache, nil
			}
		}
	}

	raw, err := s.chat.Chat(ctx, systemPrompt, surveyPrompt(archetype))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.Survey{}, "", ctxErr
		}
		s.log.Warn("Survey generation failed, using fallback", withError(fields, err))
		return FallbackSurvey(archetype, s.newID), SourceFallback, nil
	}

	survey, err := parseSurvey(raw, archetype, s.newID)
	if err != nil {
		s.log.Warn("Model output rejected, using fallback", withError(fields, err))
		return FallbackSurvey(archetype, s.newID), SourceFallback, nil
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, model, archetype, raw); err != nil {
			s.log.Warn("LLM cache store failed", map[string]interface{}{"archetype": archetype, "error": err.Error()})
		}
	}
	return survey, SourceLLM, nil
}

func withError(fields map[string]interface{}, err error) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["error"] = err.Error()
	return out
}
