package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dailycheer/cheer-notifier/internal/biz/domain"
	"github.com/dailycheer/cheer-notifier/internal/biz/repo"
	"github.com/dailycheer/cheer-notifier/internal/logging"
)

const (
	// MaxDisplayLength is the longest text shown in a notification, in characters
	MaxDisplayLength = 45
	truncatedLength  = 42
	ellipsis         = "…"

	defaultGenerationTimeout = 30 * time.Second
)

// RemoteContentUsecase asks the text-generation service for a message.
// It never fails: every problem resolves to the character's fallback text.
type RemoteContentUsecase struct {
	generator repo.GeneratorRepo // nil disables generation
	timeout   time.Duration
	logger    logging.Logger
}

// NewRemoteContentUsecase creates a remote content usecase
func NewRemoteContentUsecase(generator repo.GeneratorRepo, timeout time.Duration, logger logging.Logger) *RemoteContentUsecase {
	if timeout <= 0 {
		timeout = defaultGenerationTimeout
	}
	return &RemoteContentUsecase{
		generator: generator,
		timeout:   timeout,
		logger:    logging.Component(logger, "generator"),
	}
}

// PromptInput is the context a prompt is built from
type PromptInput struct {
	Character  *domain.Character
	Weather    *domain.WeatherCategory // nil when weather is not used
	TimeBucket domain.TimeBucket
	SpecialDay string // "" on ordinary days
	Season     domain.SeasonBucket
}

// Generate returns display-ready text and whether it is the fallback string
func (uc *RemoteContentUsecase) Generate(ctx context.Context, in PromptInput) (string, bool) {
	fallback := in.Character.FallbackMessage
	if uc.generator == nil {
		uc.logger.Debug("generation disabled, using fallback")
		return fallback, true
	}

	prompt := BuildPrompt(in)

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	text, err := uc.generator.Generate(ctx, prompt)
	if err != nil {
		uc.logger.WithError(err).WithField("character", in.Character.ID).Warn("generation failed, using fallback")
		return fallback, true
	}

	text = strings.TrimSpace(text)
	if text == "" {
		uc.logger.WithField("character", in.Character.ID).Warn("generation returned empty text, using fallback")
		return fallback, true
	}
	return TruncateForDisplay(text), false
}

// BuildPrompt assembles the generation prompt.
// Unknown or absent weather is left out and the model is told to avoid the topic.
func BuildPrompt(in PromptInput) string {
	var sb strings.Builder

	sb.WriteString(in.Character.PersonalityPrompt)
	sb.WriteString("\nThe current situation is:\n")
	sb.WriteString(fmt.Sprintf("- Season: %s\n", in.Season))
	sb.WriteString(fmt.Sprintf("- Time of day: %s\n", in.TimeBucket))

	if in.Weather != nil && in.Weather.Known() {
		sb.WriteString(fmt.Sprintf("- Weather: %s\n", *in.Weather))
	} else {
		sb.WriteString(WeatherOmittedInstruction + "\n")
	}

	if in.SpecialDay != "" {
		sb.WriteString(fmt.Sprintf("- Special day: %s\n", in.SpecialDay))
		sb.WriteString("Include the celebratory mood of this special day in the message.\n")
	}

	sb.WriteString("Given the situation above, write one upbeat message of at most 40 characters that cheers the user up.")
	return sb.String()
}

// WeatherOmittedInstruction replaces the weather line when weather is unknown
const WeatherOmittedInstruction = "(The weather is unknown. Do not mention the weather.)"

// TruncateForDisplay shortens text longer than MaxDisplayLength characters and marks it with an ellipsis
func TruncateForDisplay(text string) string {
	if utf8.RuneCountInString(text) <= MaxDisplayLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:truncatedLength]) + ellipsis
}
