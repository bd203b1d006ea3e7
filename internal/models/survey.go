package models

import "strings"

// QuestionType is the Formbricks question kind.
type QuestionType string

const (
	QuestionRating         QuestionType = "rating"
	QuestionMultipleChoice QuestionType = "multipleChoice"
	QuestionOpenText       QuestionType = "openText"
	QuestionDropdown       QuestionType = "dropdown"
	QuestionMatrix         QuestionType = "matrix"
)

// Survey is a generated survey document as stored in snapshots.
// Type carries the archetype slug until the survey is submitted.
type Survey struct {
	Name         string     `json:"name"`
	Type         string     `json:"type,omitempty"`
	Questions    []Question `json:"questions"`
	WelcomeCard  *Card      `json:"welcomeCard,omitempty"`
	ThankYouCard *Card      `json:"thankYouCard,omitempty"`
	Status       string     `json:"status,omitempty"`
	Language     string     `json:"language,omitempty"`
}

type Question struct {
	ID            string       `json:"id,omitempty"`
	Type          QuestionType `json:"type"`
	Headline      string       `json:"headline"`
	Required      bool         `json:"required"`
	Choices       []string     `json:"choices,omitempty"`
	Range         int          `json:"range,omitempty"`
	Scale         string       `json:"scale,omitempty"`
	Placeholder   string       `json:"placeholder,omitempty"`
	ShuffleOption bool         `json:"shuffleOption,omitempty"`
}

// Card is a welcome or thank-you card.
type Card struct {
	Enabled  bool   `json:"enabled"`
	Headline string `json:"headline"`
	HTML     string `json:"html"`
}

// Clone returns a deep copy, so padded duplicates never share slices.
func (s Survey) Clone() Survey {
	out := s
	out.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		q.Choices = append([]string(nil), q.Choices...)
		out.Questions[i] = q
	}
	if s.WelcomeCard != nil {
		c := *s.WelcomeCard
		out.WelcomeCard = &c
	}
	if s.ThankYouCard != nil {
		c := *s.ThankYouCard
		out.ThankYouCard = &c
	}
	return out
}

// ArchetypeSlug turns "Customer Satisfaction" into "customer_satisfaction".
func ArchetypeSlug(archetype string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(archetype), " ", "_"))
}
