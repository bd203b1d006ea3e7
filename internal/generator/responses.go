package generator

import (
	"math/rand"
	"time"

	"formbricks-seeder/internal/common/validation"
	"formbricks-seeder/internal/models"
)

var ratingWeights5 = []float64{0.05, 0.10, 0.15, 0.30, 0.40}

var openTextAnswers = []string{
	"This was a great experience overall.",
	"I found the service to be satisfactory.",
	"Could use some improvements in certain areas.",
	"Very helpful and informative experience.",
	"Looking forward to seeing future updates.",
}

const (
	minRespondents = 1
	maxRespondents = 3
)

// generateResponses draws 1-3 random respondents per survey and answers
// every question.
func generateResponses(surveys []models.Survey, users []models.User, rng *rand.Rand, now time.Time) []models.Response {
	if len(users) == 0 {
		return nil
	}

	timestamp := now.UTC().Format(time.RFC3339)
	var responses []models.Response
	for _, survey := range surveys {
		name := survey.Name
		if name == "" {
			name = "Unknown Survey"
		}
		count := minRespondents + rng.Intn(maxRespondents-minRespondents+1)
		for i := 0; i < count; i++ {
			user := users[rng.Intn(len(users))]
			answers := make(map[string]interface{}, len(survey.Questions))
			for _, q := range survey.Questions {
				headline := q.Headline
				if headline == "" {
					headline = "question"
				}
				answers[headline] = generateAnswer(q, rng)
			}
			responses = append(responses, models.Response{
				SurveyName: name,
				UserID:     user.Email,
				Answers:    answers,
				Completed:  true,
				Meta: models.ResponseMeta{
					Timestamp: timestamp,
					Source:    models.SourceGenerated,
				},
			})
		}
	}
	return responses
}

func generateAnswer(q models.Question, rng *rand.Rand) interface{} {
	switch q.Type {
	case models.QuestionRating:
		return ratingAnswer(q.Range, rng)
	case models.QuestionMultipleChoice, models.QuestionDropdown:
		if len(q.Choices) == 0 {
			return "Option 1"
		}
		if len(q.Choices) < 3 {
			return q.Choices[rng.Intn(len(q.Choices))]
		}
		return q.Choices[weightedIndex(rng, middleWeights(len(q.Choices)))]
	case models.QuestionOpenText:
		return openTextAnswers[rng.Intn(len(openTextAnswers))]
	default:
		return "Response"
	}
}

// ratingAnswer skews toward high scores. A 5-point scale uses fixed weights;
// other scales weight each score by its value. Scales above
// validation.MaxRatingRange are clamped.
func ratingAnswer(scale int, rng *rand.Rand) int {
	if scale <= 0 {
		scale = 5
	}
	if scale > validation.MaxRatingRange {
		scale = validation.MaxRatingRange
	}
	if scale == 5 {
		return weightedIndex(rng, ratingWeights5) + 1
	}
	weights := make([]float64, scale)
	for i := range weights {
		weights[i] = float64(i + 1)
	}
	return weightedIndex(rng, weights) + 1
}

// middleWeights favours inner options: ends weigh 2, the rest 3.
func middleWeights(n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 3
	}
	weights[0], weights[n-1] = 2, 2
	return weights
}

func weightedIndex(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	for i, w := range weights {
		if r < w {
			return i
		}
		r -= w
	}
	return len(weights) - 1
}
