package snapshot

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "formbricks-seeder/internal/common/errors"
	"formbricks-seeder/internal/models"
)

func sampleDataset() *models.Dataset {
	return &models.Dataset{
		Surveys: []models.Survey{{
			Name: "Customer Satisfaction Survey",
			Type: "customer_satisfaction",
			Questions: []models.Question{
				{ID: "q1", Type: models.QuestionRating, Headline: "How likely?", Required: true, Range: 5, Scale: "number"},
				{ID: "q2", Type: models.QuestionDropdown, Headline: "Channel?", Choices: []string{"Web", "Store"}},
			},
			WelcomeCard:  &models.Card{Enabled: true, Headline: "Hi", HTML: "<p>Hi</p>"},
			ThankYouCard: &models.Card{Enabled: true, Headline: "Thanks"},
		}},
		Users: []models.User{
			{Name: "Jane Doe", Email: "jane.doe@company.com", Role: models.RoleOwner, Organization: "Acme"},
		},
		Responses: []models.Response{{
			SurveyName: "Customer Satisfaction Survey",
			UserID:     "jane.doe@company.com",
			Answers:    map[string]interface{}{"How likely?": 4.0, "Channel?": "Web"},
			Completed:  true,
			Meta:       models.ResponseMeta{Timestamp: "2026-03-01T12:00:00Z", Source: models.SourceGenerated},
		}},
	}
}

func fixedStore(dir string, at time.Time) *Store {
	return NewStore(dir,
		WithClock(func() time.Time { return at }),
		WithRunID(func() string { return "run-1" }),
	)
}

func writeJSON(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

// ==========================
// Save / Load
// ==========================

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := fixedStore(dir, time.Date(2026, 3, 1, 12, 30, 45, 0, time.UTC))
	ds := sampleDataset()

	manifest, err := store.Save(ds, 42)
	require.NoError(t, err)

	assert.Equal(t, "run-1", manifest.RunID)
	assert.Equal(t, int64(42), manifest.Seed)
	assert.Equal(t, "surveys_20260301_123045.json", manifest.Files[KindSurveys])
	assert.Equal(t, map[Kind]int{KindSurveys: 1, KindUsers: 1, KindResponses: 1}, manifest.Counts)
	for _, name := range []string{"users_20260301_123045.json", "responses_latest.json", "latest.json"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "run-1", snap.RunID)
	assert.Equal(t, filepath.Join(dir, "responses_20260301_123045.json"), snap.Files[KindResponses])

	if diff := cmp.Diff(ds, snap.Dataset); diff != "" {
		t.Fatalf("round trip mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestSave_EmptyKindsWrittenAsArrays(t *testing.T) {
	dir := t.TempDir()
	store := fixedStore(dir, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	_, err := store.Save(&models.Dataset{Surveys: sampleDataset().Surveys}, 0)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "users_latest.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp", "temp files are renamed away")
	}
}

// ==========================
// Resolution order
// ==========================

func TestLoad_ManifestPreferredOverAlias(t *testing.T) {
	dir := t.TempDir()
	store := fixedStore(dir, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	_, err := store.Save(sampleDataset(), 0)
	require.NoError(t, err)

	writeJSON(t, filepath.Join(dir, "surveys_latest.json"), `[{"name":"Stale"}]`)

	snap, err := store.Load(KindSurveys)
	require.NoError(t, err)
	assert.Equal(t, "Customer Satisfaction Survey", snap.Dataset.Surveys[0].Name)
}

func TestLoad_AliasWithoutManifest(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "surveys_latest.json"), `[{"name":"From Alias","questions":[]}]`)
	writeJSON(t, filepath.Join(dir, "surveys_20990101_000000.json"), `[{"name":"Newer File"}]`)

	snap, err := NewStore(dir).Load(KindSurveys)
	require.NoError(t, err)
	assert.Equal(t, "From Alias", snap.Dataset.Surveys[0].Name)
	assert.Empty(t, snap.RunID)
}

func TestLoad_LexicographicallyLastTimestamp(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "users_20250101_000000.json"), `[{"email":"old@company.com"}]`)
	writeJSON(t, filepath.Join(dir, "users_20260215_093000.json"), `[{"email":"new@company.com"}]`)
	writeJSON(t, filepath.Join(dir, "users_20251231_235959.json"), `[{"email":"mid@company.com"}]`)

	snap, err := NewStore(dir).Load(KindUsers)
	require.NoError(t, err)
	assert.Equal(t, "new@company.com", snap.Dataset.Users[0].Email)
}

func TestLoad_MissingKindsNamed(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "surveys_latest.json"), `[]`)

	_, err := NewStore(dir).Load()
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrSnapshotNotFound))

	var se *apperrors.StandardError
	require.True(t, stderrors.As(err, &se))
	assert.Contains(t, se.Details, "users, responses")
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "surveys_latest.json"), `{not json`)

	_, err := NewStore(dir).Load(KindSurveys)
	assert.True(t, stderrors.Is(err, apperrors.ErrMalformedContent))
}

// ==========================
// Mapping
// ==========================

func TestMapping_WriteRead(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	store := NewStore(dir)

	got, err := store.ReadMapping()
	require.NoError(t, err)
	assert.Nil(t, got)

	path, err := store.WriteMapping(map[string]string{"Customer Satisfaction Survey": "clx1"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "survey_mapping.json"), path)

	got, err = store.ReadMapping()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Customer Satisfaction Survey": "clx1"}, got)
}
