package formbricks

import "formbricks-seeder/internal/models"

// Result is a decoded JSON object returned by the platform.
type Result map[string]interface{}

// ResultID extracts the resource id from either {"id": ...} or {"data": {"id": ...}}.
func ResultID(r Result) string {
	if r == nil {
		return ""
	}
	if id, ok := r["id"].(string); ok && id != "" {
		return id
	}
	if data, ok := r["data"].(map[string]interface{}); ok {
		if id, ok := data["id"].(string); ok {
			return id
		}
	}
	return ""
}

// SurveyPayload is the management API create-survey body.
type SurveyPayload struct {
	Name         string            `json:"name"`
	Type         string            `json:"type"`
	Questions    []models.Question `json:"questions"`
	WelcomeCard  *models.Card      `json:"welcomeCard,omitempty"`
	ThankYouCard *models.Card      `json:"thankYouCard,omitempty"`
	Status       string            `json:"status"`
	Language     string            `json:"language"`
}

// NewSurveyPayload reshapes a generated survey into a link survey that is
// immediately in progress.
func NewSurveyPayload(s models.Survey) SurveyPayload {
	name := s.Name
	if name == "" {
		name = "Unnamed Survey"
	}
	questions := s.Questions
	if questions == nil {
		questions = []models.Question{}
	}
	return SurveyPayload{
		Name:         name,
		Type:         "link",
		Questions:    questions,
		WelcomeCard:  s.WelcomeCard,
		ThankYouCard: s.ThankYouCard,
		Status:       "inProgress",
		Language:     "en",
	}
}

// InvitePayload is the management API user-invite body.
type InvitePayload struct {
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  models.Role `json:"role"`
}

func NewInvitePayload(u models.User) InvitePayload {
	return InvitePayload{Email: u.Email, Name: u.Name, Role: u.Role}
}

// ResponsePayload is the client API submit-response body.
type ResponsePayload struct {
	SurveyID  string                 `json:"surveyId"`
	Responses map[string]interface{} `json:"responses"`
	Finished  bool                   `json:"finished"`
	UserID    string                 `json:"userId,omitempty"`
	Meta      models.ResponseMeta    `json:"meta"`
}

func NewResponsePayload(surveyID string, r models.Response) ResponsePayload {
	answers := r.Answers
	if answers == nil {
		answers = map[string]interface{}{}
	}
	return ResponsePayload{
		SurveyID:  surveyID,
		Responses: answers,
		Finished:  r.Completed,
		UserID:    r.UserID,
		Meta:      r.Meta,
	}
}

type apiKeyRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
