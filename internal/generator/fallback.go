package generator

import (
	"fmt"
	"strings"

	"formbricks-seeder/internal/models"
)

// knownTemplates are matched as substrings of the lower-cased archetype.
var knownTemplates = []struct {
	key  string
	name string
}{
	{key: "customer satisfaction", name: "Customer Satisfaction Survey"},
	{key: "product feedback", name: "Product Feedback Survey"},
	{key: "employee engagement", name: "Employee Engagement Survey"},
	{key: "market research", name: "Market Research Survey"},
	{key: "user experience", name: "User Experience Survey"},
}

const (
	welcomeHTML  = "<p>Thank you for participating. Your feedback helps us improve.</p>"
	thankYouHTML = "<p>Your response has been recorded. We appreciate your time.</p>"
)

// FallbackSurvey returns a static three-question survey for archetype.
func FallbackSurvey(archetype string, newID func() string) models.Survey {
	lower := strings.ToLower(archetype)
	for _, tpl := range knownTemplates {
		if strings.Contains(lower, tpl.key) {
			return templateSurvey(
				tpl.name,
				archetype,
				fmt.Sprintf("How would you rate your experience with our %s?", tpl.key),
				"What aspect was most valuable?",
				[]string{"Quality", "Service", "Features", "Price"},
				newID,
			)
		}
	}
	return templateSurvey(
		archetype+" Survey",
		archetype,
		fmt.Sprintf("How would you rate your overall experience with our %s?", lower),
		"What was the most valuable aspect?",
		[]string{"Quality", "Support", "Features", "Price"},
		newID,
	)
}

func templateSurvey(name, archetype, ratingHeadline, choiceHeadline string, choices []string, newID func() string) models.Survey {
	return models.Survey{
		Name: name,
		Type: models.ArchetypeSlug(archetype),
		Questions: []models.Question{
			{
				ID:       newID(),
				Type:     models.QuestionRating,
				Headline: ratingHeadline,
				Required: true,
				Range:    5,
				Scale:    "number",
			},
			{
				ID:            newID(),
				Type:          models.QuestionMultipleChoice,
				Headline:      choiceHeadline,
				Required:      false,
				Choices:       choices,
				ShuffleOption: true,
			},
			{
				ID:          newID(),
				Type:        models.QuestionOpenText,
				Headline:    "Any additional comments or suggestions?",
				Required:    false,
				Placeholder: "Share your thoughts...",
			},
		},
		WelcomeCard: &models.Card{
			Enabled:  true,
			Headline: "Welcome to our " + name,
			HTML:     welcomeHTML,
		},
		ThankYouCard: &models.Card{
			Enabled:  true,
			Headline: "Thank You!",
			HTML:     thankYouHTML,
		},
	}
}
