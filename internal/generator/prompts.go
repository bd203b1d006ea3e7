package generator

import "fmt"

const systemPrompt = "You are a survey design expert. Generate realistic, professional survey questions in valid JSON format only. Return ONLY JSON, no explanations."

func surveyPrompt(archetype string) string {
	return fmt.Sprintf(`Create a realistic %[1]s survey in JSON format that can be used with Formbricks API.

Requirements:
1. Survey name should be descriptive
2. Include 3-5 questions of different types (rating, multiple choice, open text)
3. Questions should be relevant to %[1]s
4. Format must be valid JSON

Survey structure:
{
    "name": "Survey name",
    "questions": [
        {
            "type": "rating|multipleChoice|openText|dropdown|matrix",
            "headline": "Question text",
            "required": true,
            "choices": ["Option1", "Option2"]
        }
    ],
    "welcomeCard": {
        "enabled": true,
        "headline": "Welcome message",
        "html": "Welcome description"
    },
    "thankYouCard": {
        "enabled": true,
        "headline": "Thank you message",
        "html": "Thank you description"
    }
}

"choices" is only used by multipleChoice and dropdown questions.
Generate the survey now. Return ONLY the JSON, no other text:`, archetype)
}
