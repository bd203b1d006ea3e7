package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "formbricks-seeder/internal/common/errors"
	"formbricks-seeder/internal/common/validation"
	"formbricks-seeder/internal/models"
)

// ExtractJSONObject returns the first balanced {...} block in text that is
// valid JSON. Models often wrap their answer in prose or code fences.
func ExtractJSONObject(text string) (string, bool) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchingBrace(text, start); end > 0 {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchingBrace returns the index of the brace closing the one at start, or -1.
func matchingBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseSurvey turns raw model output into a survey for archetype.
func parseSurvey(raw, archetype string, newID func() string) (models.Survey, error) {
	obj, ok := ExtractJSONObject(raw)
	if !ok {
		return models.Survey{}, apperrors.NewMalformedContentError("no JSON object in model output", nil)
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(obj), &doc); err != nil {
		return models.Survey{}, apperrors.NewMalformedContentError("invalid JSON", err)
	}
	if m, ok := doc.(map[string]interface{}); ok {
		if _, has := m["questions"]; !has {
			m["questions"] = []interface{}{}
		}
	}
	result, err := validation.ValidateSurveyShape(doc)
	if err != nil {
		return models.Survey{}, apperrors.NewMalformedContentError("schema check failed", err)
	}
	if !result.Valid {
		return models.Survey{}, apperrors.NewMalformedContentError(
			fmt.Sprintf("survey shape mismatch: %s", strings.Join(result.GetErrorMessages(), "; ")), nil)
	}

	var survey models.Survey
	if err := json.Unmarshal([]byte(obj), &survey); err != nil {
		return models.Survey{}, apperrors.NewMalformedContentError("survey decode failed", err)
	}
	if len(survey.Questions) == 0 {
		return models.Survey{}, apperrors.NewMalformedContentError("survey has no questions", nil)
	}

	survey.Type = models.ArchetypeSlug(archetype)
	if strings.TrimSpace(survey.Name) == "" {
		survey.Name = archetype + " Survey"
	}
	for i := range survey.Questions {
		q := &survey.Questions[i]
		if q.ID == "" {
			q.ID = newID()
		}
		if q.Type == models.QuestionRating {
			if q.Range == 0 {
				q.Range = 5
			}
			if q.Scale == "" {
				q.Scale = "number"
			}
		}
	}
	return survey, nil
}

func newUUID() string {
	return uuid.New().String()
}
