package generator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formbricks-seeder/internal/common/validation"
	"formbricks-seeder/internal/models"
)

func TestGenerateAnswer(t *testing.T) {
	rng := newRand(1)

	tests := []struct {
		name  string
		q     models.Question
		check func(t *testing.T, v interface{})
	}{
		{
			name: "rating within range",
			q:    models.Question{Type: models.QuestionRating, Range: 10},
			check: func(t *testing.T, v interface{}) {
				n, ok := v.(int)
				require.True(t, ok)
				assert.GreaterOrEqual(t, n, 1)
				assert.LessOrEqual(t, n, 10)
			},
		},
		{
			name: "choice from list",
			q:    models.Question{Type: models.QuestionDropdown, Choices: []string{"A", "B", "C", "D", "E"}},
			check: func(t *testing.T, v interface{}) {
				assert.Contains(t, []string{"A", "B", "C", "D", "E"}, v)
			},
		},
		{
			name:  "choice without options",
			q:     models.Question{Type: models.QuestionMultipleChoice},
			check: func(t *testing.T, v interface{}) { assert.Equal(t, "Option 1", v) },
		},
		{
			name:  "open text",
			q:     models.Question{Type: models.QuestionOpenText},
			check: func(t *testing.T, v interface{}) { assert.Contains(t, openTextAnswers, v) },
		},
		{
			name:  "unknown kind",
			q:     models.Question{Type: models.QuestionMatrix},
			check: func(t *testing.T, v interface{}) { assert.Equal(t, "Response", v) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 50; i++ {
				tt.check(t, generateAnswer(tt.q, rng))
			}
		})
	}
}

func TestRatingAnswer_SkewsHigh(t *testing.T) {
	rng := newRand(11)
	counts := make(map[int]int)
	for i := 0; i < 20000; i++ {
		counts[ratingAnswer(5, rng)]++
	}
	assert.Greater(t, counts[5], counts[4])
	assert.Greater(t, counts[4], counts[3])
	assert.Greater(t, counts[3], counts[1])
	assert.InDelta(t, 0.40, float64(counts[5])/20000, 0.02)
}

func TestRatingAnswer_ClampsOversizedScale(t *testing.T) {
	rng := newRand(3)
	for i := 0; i < 200; i++ {
		n := ratingAnswer(1_000_000_000, rng)
		assert.GreaterOrEqual(t, n, 1)
		assert.LessOrEqual(t, n, validation.MaxRatingRange)
	}
}

func TestChoiceAnswer_PrefersMiddle(t *testing.T) {
	rng := newRand(12)
	q := models.Question{Type: models.QuestionMultipleChoice, Choices: []string{"first", "mid", "last"}}
	counts := make(map[interface{}]int)
	for i := 0; i < 20000; i++ {
		counts[generateAnswer(q, rng)]++
	}
	assert.Greater(t, counts["mid"], counts["first"])
	assert.Greater(t, counts["mid"], counts["last"])
}

func TestGenerateResponses(t *testing.T) {
	rng := newRand(3)
	surveys := []models.Survey{
		FallbackSurvey("Customer Satisfaction", sequentialIDs()),
		FallbackSurvey("Event Feedback", sequentialIDs()),
	}
	users := []models.User{{Email: "a@company.com"}, {Email: "b@business.io"}}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	responses := generateResponses(surveys, users, rng, now)

	perSurvey := map[string]int{}
	for _, r := range responses {
		perSurvey[r.SurveyName]++
		assert.Contains(t, []string{"a@company.com", "b@business.io"}, r.UserID)
		assert.True(t, r.Completed)
		assert.Len(t, r.Answers, 3)
		assert.Equal(t, models.SourceGenerated, r.Meta.Source)
		assert.Equal(t, "2026-01-02T03:04:05Z", r.Meta.Timestamp)
	}
	for _, s := range surveys {
		assert.GreaterOrEqual(t, perSurvey[s.Name], 1)
		assert.LessOrEqual(t, perSurvey[s.Name], 3)
	}

	assert.Nil(t, generateResponses(surveys, nil, rng, now), "no users, no responses")
}
