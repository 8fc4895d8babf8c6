package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nhle/safesignal/internal/model"
)

// ErrEmptyResponse is returned when the service answers without any text.
var ErrEmptyResponse = errors.New("empty response from text generation service")

// ErrNoService is reported when no text generation service is configured.
var ErrNoService = errors.New("no text generation service configured")

// APIError is a non-200 answer from a text generation service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// TextService turns a prompt into free text. Implementations perform a
// single network round trip and never retry.
type TextService interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Result is the outcome of a safety message request. Text is never empty.
type Result struct {
	Text string

	// Fallback is true when Text is the canned message because the
	// service could not be used; Err then holds the cause.
	Fallback bool
	Err      error
}

// Generator writes short reassurance messages for the family.
type Generator struct {
	service TextService
	logger  *slog.Logger
}

// NewGenerator creates a generator backed by service. A nil service makes
// every call return the fallback message.
func NewGenerator(service TextService, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{service: service, logger: logger}
}

// Available reports whether a text generation service is configured.
func (g *Generator) Available() bool {
	return g.service != nil
}

// Generate asks the service for a message from name, mentioning loc when
// known. Any failure yields the deterministic fallback text instead.
func (g *Generator) Generate(
	ctx context.Context,
	name string,
	loc *model.Location,
) Result {
	if g.service == nil {
		return Result{Text: FallbackMessage(name, loc), Fallback: true, Err: ErrNoService}
	}

	text, err := g.service.GenerateText(ctx, BuildPrompt(name, loc))
	if err == nil {
		text = strings.TrimSpace(text)
		if text == "" {
			err = ErrEmptyResponse
		}
	}
	if err != nil {
		g.logger.Error("safety message generation failed", "error", err)
		return Result{Text: FallbackMessage(name, loc), Fallback: true, Err: err}
	}

	return Result{Text: text}
}

// BuildPrompt returns the instruction sent to the text generation service.
func BuildPrompt(name string, loc *model.Location) string {
	locationInfo := "My location is currently not available."
	if loc != nil {
		locationInfo = fmt.Sprintf(
			"My last known location was around latitude %.4f and longitude %.4f.",
			loc.Lat, loc.Lng,
		)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("My name is %s. I was just offline, but I'm back online now and safe.\n", name))
	sb.WriteString("Generate a short, friendly, and reassuring message for my family.\n")
	sb.WriteString("Keep it under 40 words.\n")
	sb.WriteString("Include the fact that I'm okay.\n")
	sb.WriteString(fmt.Sprintf("Mention my last location information: %q.\n", locationInfo))
	sb.WriteString("Do not use markdown or special formatting.")
	return sb.String()
}

// FallbackMessage is the message used whenever generation fails.
func FallbackMessage(name string, loc *model.Location) string {
	where := "not recorded"
	if loc != nil {
		where = fmt.Sprintf("lat: %.2f, lng: %.2f", loc.Lat, loc.Lng)
	}
	greeting := "Hi family"
	if strings.TrimSpace(name) != "" {
		greeting = fmt.Sprintf("Hi family, it's %s", strings.TrimSpace(name))
	}
	return fmt.Sprintf(
		"%s, just letting you know I'm back online and safe. "+
			"My connection was down for a bit. My last known location was %s.",
		greeting, where,
	)
}
