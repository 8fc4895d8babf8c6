package ai_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/safesignal/internal/ai"
	"github.com/nhle/safesignal/internal/model"
)

type stubService struct {
	text   string
	err    error
	prompt string
}

func (s *stubService) GenerateText(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.text, s.err
}

func TestGenerateTrimsServiceText(t *testing.T) {
	svc := &stubService{text: "  All good here, love you all!  \n"}
	g := ai.NewGenerator(svc, nil)

	res := g.Generate(context.Background(), "Alex", nil)

	assert.Equal(t, "All good here, love you all!", res.Text)
	assert.False(t, res.Fallback)
	assert.NoError(t, res.Err)
	assert.Contains(t, svc.prompt, "My name is Alex.")
}

func TestGenerateFallsBackOnError(t *testing.T) {
	svc := &stubService{err: errors.New("connection refused")}
	g := ai.NewGenerator(svc, nil)
	loc := &model.Location{Lat: 40.712776, Lng: -74.005974}

	res := g.Generate(context.Background(), "Alex", loc)

	require.True(t, res.Fallback)
	assert.Error(t, res.Err)
	assert.Contains(t, res.Text, "Alex")
	assert.Contains(t, res.Text, "lat: 40.71, lng: -74.01")
}

func TestGenerateTreatsBlankTextAsFailure(t *testing.T) {
	g := ai.NewGenerator(&stubService{text: " \n\t "}, nil)

	res := g.Generate(context.Background(), "Alex", nil)

	require.True(t, res.Fallback)
	assert.ErrorIs(t, res.Err, ai.ErrEmptyResponse)
	assert.Contains(t, res.Text, "not recorded")
}

func TestGenerateWithoutServiceUsesFallback(t *testing.T) {
	g := ai.NewGenerator(nil, nil)
	assert.False(t, g.Available())

	res := g.Generate(context.Background(), "Alex", nil)

	assert.True(t, res.Fallback)
	assert.ErrorIs(t, res.Err, ai.ErrNoService)
	assert.NotEmpty(t, res.Text)
}

func TestBuildPromptLocation(t *testing.T) {
	loc := &model.Location{Lat: 51.507351, Lng: -0.127758}

	prompt := ai.BuildPrompt("Sam", loc)
	assert.Contains(t, prompt, "latitude 51.5074 and longitude -0.1278")

	prompt = ai.BuildPrompt("Sam", nil)
	assert.Contains(t, prompt, "My location is currently not available.")
}

func TestFallbackMessageNeverEmpty(t *testing.T) {
	for _, name := range []string{"", "  ", "Emily Jones"} {
		msg := ai.FallbackMessage(name, nil)
		assert.NotEmpty(t, msg)
		assert.True(t, strings.HasPrefix(msg, "Hi family"))
		assert.True(t, strings.HasSuffix(msg, "was not recorded."))
	}
	assert.Contains(t, ai.FallbackMessage("Emily Jones", nil), "Emily Jones")
}
