package generator

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formbricks-seeder/internal/common/cache"
	"formbricks-seeder/internal/common/config"
	apperrors "formbricks-seeder/internal/common/errors"
	"formbricks-seeder/internal/common/logger"
	"formbricks-seeder/internal/models"
)

// ==========================
// Test doubles
// ==========================

type fakeChat struct {
	model      string
	resolveErr error
	reply      func(call int, prompt string) (string, error)
	calls      int
}

func (f *fakeChat) Chat(ctx context.Context, system, prompt string) (string, error) {
	f.calls++
	return f.reply(f.calls, prompt)
}

func (f *fakeChat) ResolveModel(ctx context.Context) (string, error) {
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return f.model, nil
}

func (f *fakeChat) Model() string { return f.model }

func validSurveyJSON(name string) string {
	return fmt.Sprintf(`{"name":%q,"questions":[
		{"type":"rating","headline":"Overall?","required":true},
		{"type":"dropdown","headline":"Channel?","choices":["Web","Phone","Store"]},
		{"type":"openText","headline":"Anything else?"}
	]}`, name)
}

// echoChat answers every prompt with a valid survey named after the archetype.
func echoChat() *fakeChat {
	return &fakeChat{
		model: "llama2:latest",
		reply: func(call int, prompt string) (string, error) {
			for _, a := range Archetypes {
				if strings.Contains(prompt, "realistic "+a+" survey") {
					return "Here you go:\n```json\n" + validSurveyJSON(a+" Pulse") + "\n```", nil
				}
			}
			return "", stderrors.New("unexpected prompt")
		},
	}
}

type sleepRecorder struct{ waits []time.Duration }

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("q-%d", n)
	}
}

func newTestService(t *testing.T, chat ChatClient, seed int64, opts ...Option) (*Service, *sleepRecorder) {
	t.Helper()
	rec := &sleepRecorder{}
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	base := []Option{
		WithSleep(rec.sleep),
		WithClock(func() time.Time { return fixed }),
		WithIDGenerator(sequentialIDs()),
	}
	svc := NewService(Config{Pacing: time.Second, Seed: seed}, chat, logger.NewTestLogger(t), append(base, opts...)...)
	return svc, rec
}

// ==========================
// Survey count and padding
// ==========================

func TestSynthesize_SurveyCountWithinRotation(t *testing.T) {
	for n := 0; n <= len(Archetypes); n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			svc, rec := newTestService(t, echoChat(), 42)

			ds, err := svc.Synthesize(context.Background(), n, 7)
			require.NoError(t, err)
			require.Len(t, ds.Surveys, n)
			for i, s := range ds.Surveys {
				assert.NotEmpty(t, s.Name)
				assert.NotEmpty(t, s.Questions)
				assert.Equal(t, models.ArchetypeSlug(Archetypes[i]), s.Type)
			}
			if n > 0 {
				assert.Len(t, rec.waits, n-1, "pacing between LLM calls only")
			}
		})
	}
}

func TestSynthesize_PadsBeyondRotation(t *testing.T) {
	svc, _ := newTestService(t, echoChat(), 42)

	ds, err := svc.Synthesize(context.Background(), 10, 7)
	require.NoError(t, err)
	require.Len(t, ds.Surveys, 10)

	assert.Equal(t, "Customer Satisfaction Pulse 8", ds.Surveys[7].Name)
	assert.Equal(t, "Product Feedback Pulse 9", ds.Surveys[8].Name)
	assert.Equal(t, "Employee Engagement Pulse 10", ds.Surveys[9].Name)

	ds.Surveys[7].Questions[0].Headline = "mutated"
	assert.Equal(t, "Overall?", ds.Surveys[0].Questions[0].Headline, "duplicates are deep copies")
}

// ==========================
// Degradation
// ==========================

func TestSynthesize_LLMUnavailable(t *testing.T) {
	chat := &fakeChat{
		model:      "llama2",
		resolveErr: apperrors.NewServiceUnavailableError("ollama", stderrors.New("connection refused")),
	}
	svc, rec := newTestService(t, chat, 7)

	ds, err := svc.Synthesize(context.Background(), 3, 10)
	require.NoError(t, err)

	require.Len(t, ds.Surveys, 3)
	assert.Equal(t, "Customer Satisfaction Survey", ds.Surveys[0].Name)
	assert.Equal(t, "Product Feedback Survey", ds.Surveys[1].Name)
	assert.Equal(t, "Employee Engagement Survey", ds.Surveys[2].Name)
	for _, s := range ds.Surveys {
		assert.Len(t, s.Questions, 3)
	}
	assert.Equal(t, 0, chat.calls)
	assert.Empty(t, rec.waits)

	assert.Equal(t, map[models.Role]int{
		models.RoleOwner: 2, models.RoleManager: 3, models.RoleAdmin: 2, models.RoleViewer: 3,
	}, models.RoleCounts(ds.Users))
	assert.NotEmpty(t, ds.Responses)
}

func TestSynthesize_NilChatUsesFallback(t *testing.T) {
	svc, _ := newTestService(t, nil, 1)

	ds, err := svc.Synthesize(context.Background(), 7, 7)
	require.NoError(t, err)
	assert.Equal(t, "Website Feedback Survey", ds.Surveys[5].Name)
	assert.Equal(t, "Welcome to our Event Feedback Survey", ds.Surveys[6].WelcomeCard.Headline)
}

func TestSynthesize_RejectedOutputFallsBackPerSurvey(t *testing.T) {
	chat := &fakeChat{
		model: "llama2",
		reply: func(call int, prompt string) (string, error) {
			switch call {
			case 1:
				return "Sorry, I cannot help with that.", nil
			case 2:
				return `{"name":"Empty","questions":[]}`, nil
			case 3:
				return "", apperrors.NewServiceUnavailableError("ollama", stderrors.New("boom"))
			default:
				return validSurveyJSON("Good"), nil
			}
		},
	}
	var events []SurveyEvent
	svc, _ := newTestService(t, chat, 3, WithProgress(func(e SurveyEvent) { events = append(events, e) }))

	ds, err := svc.Synthesize(context.Background(), 4, 7)
	require.NoError(t, err)

	assert.Equal(t, "Customer Satisfaction Survey", ds.Surveys[0].Name)
	assert.Equal(t, "Product Feedback Survey", ds.Surveys[1].Name)
	assert.Equal(t, "Employee Engagement Survey", ds.Surveys[2].Name)
	assert.Equal(t, "Good", ds.Surveys[3].Name)

	require.Len(t, events, 4)
	assert.Equal(t, []string{SourceFallback, SourceFallback, SourceFallback, SourceLLM},
		[]string{events[0].Source, events[1].Source, events[2].Source, events[3].Source})
}

func TestSynthesize_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	chat := &fakeChat{
		model: "llama2",
		reply: func(call int, prompt string) (string, error) {
			cancel()
			return "", context.Canceled
		},
	}
	svc, _ := newTestService(t, chat, 1)

	_, err := svc.Synthesize(ctx, 3, 7)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSynthesize_NegativeCounts(t *testing.T) {
	svc, _ := newTestService(t, nil, 1)
	_, err := svc.Synthesize(context.Background(), -1, 7)
	assert.True(t, stderrors.Is(err, apperrors.ErrConfigInvalid))
}

// ==========================
// Cache
// ==========================

func TestSynthesize_UsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := cache.NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer rdb.Close()
	llmCache := cache.NewLLMCache(rdb.Client, time.Hour)

	first := echoChat()
	svc, _ := newTestService(t, first, 1, WithCache(llmCache))
	_, err := svc.Synthesize(context.Background(), 2, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, first.calls)
	assert.True(t, mr.Exists(cache.Key("llama2:latest", "Customer Satisfaction")))

	second := echoChat()
	var sources []string
	svc, rec := newTestService(t, second, 1, WithCache(llmCache),
		WithProgress(func(e SurveyEvent) { sources = append(sources, e.Source) }))
	ds, err := svc.Synthesize(context.Background(), 2, 7)
	require.NoError(t, err)

	assert.Equal(t, 0, second.calls)
	assert.Equal(t, []string{SourceCache, SourceCache}, sources)
	assert.Equal(t, "Product Feedback Pulse", ds.Surveys[1].Name)
	assert.Empty(t, rec.waits, "no pacing without LLM calls")
}

// ==========================
// Determinism
// ==========================

func TestSynthesize_SameSeedSameDataset(t *testing.T) {
	a, _ := newTestService(t, nil, 99)
	b, _ := newTestService(t, nil, 99)

	dsA, err := a.Synthesize(context.Background(), 3, 12)
	require.NoError(t, err)
	dsB, err := b.Synthesize(context.Background(), 3, 12)
	require.NoError(t, err)

	if diff := cmp.Diff(dsA, dsB); diff != "" {
		t.Fatalf("datasets differ (-a +b):\n%s", diff)
	}
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
