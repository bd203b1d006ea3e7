package models

// SourceGenerated tags responses produced by the generator.
const SourceGenerated = "ollama_generated"

// Response references its survey by name; the seeder resolves the id.
type Response struct {
	SurveyName string                 `json:"survey_name"`
	UserID     string                 `json:"user_id"`
	Answers    map[string]interface{} `json:"answers"`
	Completed  bool                   `json:"completed"`
	Meta       ResponseMeta           `json:"meta"`
}

type ResponseMeta struct {
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}
