package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	reply   string
	err     error
	model   string
	prompt  string
	configs []*genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.configs = append(f.configs, config)
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.reply}}},
		}},
	}, nil
}

func TestGeminiGenerate(t *testing.T) {
	models := &fakeModels{reply: "  Mitochondria make ATP.  "}
	g := newGemini(models, "", nil)

	got, err := g.Generate(context.Background(), "What do mitochondria do?")
	require.NoError(t, err)
	assert.Equal(t, "Mitochondria make ATP.", got)
	assert.Equal(t, DefaultModel, models.model)
	assert.Equal(t, "What do mitochondria do?", models.prompt)
	assert.Empty(t, models.configs[0].ResponseMIMEType)
}

func TestGeminiGenerateJSON(t *testing.T) {
	models := &fakeModels{reply: `{"questions": []}`}
	g := newGemini(models, "gemini-test", nil)

	got, err := g.GenerateJSON(context.Background(), "quiz")
	require.NoError(t, err)
	assert.Equal(t, `{"questions": []}`, got)
	assert.Equal(t, "gemini-test", models.model)
	assert.Equal(t, "application/json", models.configs[0].ResponseMIMEType)
}

func TestGeminiErrors(t *testing.T) {
	g := newGemini(&fakeModels{reply: "   "}, "", nil)
	_, err := g.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	failure := errors.New("quota exceeded")
	g = newGemini(&fakeModels{err: failure}, "", nil)
	_, err = g.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, failure)
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "", nil)
	assert.Error(t, err)
}
