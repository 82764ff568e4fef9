package usecase

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/dailycheer/cheer-notifier/internal/biz/domain"
	"github.com/dailycheer/cheer-notifier/internal/logging"
)

func TestRemoteGenerate_FailureReturnsFallbackVerbatim(t *testing.T) {
	gen := &mockGenerator{err: errUpstream}
	uc := NewRemoteContentUsecase(gen, time.Second, logging.Discard())
	char := testCharacter()

	text, fallback := uc.Generate(context.Background(), PromptInput{Character: char, TimeBucket: domain.TimeMorning, Season: domain.SeasonSpring})
	if !fallback {
		t.Error("Expected fallback flag")
	}
	if text != char.FallbackMessage {
		t.Errorf("Expected fallback %q, got %q", char.FallbackMessage, text)
	}
}

func TestRemoteGenerate_EmptyTextReturnsFallback(t *testing.T) {
	uc := NewRemoteContentUsecase(&mockGenerator{text: "   \n"}, time.Second, logging.Discard())
	char := testCharacter()

	text, fallback := uc.Generate(context.Background(), PromptInput{Character: char})
	if !fallback || text != char.FallbackMessage {
		t.Errorf("Expected fallback, got %q (fallback=%v)", text, fallback)
	}
}

func TestRemoteGenerate_NoGeneratorReturnsFallback(t *testing.T) {
	uc := NewRemoteContentUsecase(nil, 0, nil)
	char := testCharacter()

	text, fallback := uc.Generate(context.Background(), PromptInput{Character: char})
	if !fallback || text != char.FallbackMessage {
		t.Errorf("Expected fallback, got %q", text)
	}
}

func TestRemoteGenerate_TruncatesLongText(t *testing.T) {
	long := strings.Repeat("あ", 60)
	uc := NewRemoteContentUsecase(&mockGenerator{text: long}, time.Second, logging.Discard())

	text, fallback := uc.Generate(context.Background(), PromptInput{Character: testCharacter()})
	if fallback {
		t.Fatal("Expected generated text")
	}
	if n := utf8.RuneCountInString(text); n > MaxDisplayLength {
		t.Errorf("Expected at most %d characters, got %d", MaxDisplayLength, n)
	}
	if !strings.HasSuffix(text, "…") {
		t.Errorf("Expected ellipsis marker, got %q", text)
	}
}

func TestRemoteGenerate_ShortTextUnchanged(t *testing.T) {
	uc := NewRemoteContentUsecase(&mockGenerator{text: "  Good morning, you got this!  "}, time.Second, logging.Discard())

	text, _ := uc.Generate(context.Background(), PromptInput{Character: testCharacter()})
	if text != "Good morning, you got this!" {
		t.Errorf("Unexpected text %q", text)
	}
}

func TestTruncateForDisplay_Boundary(t *testing.T) {
	exact := strings.Repeat("x", MaxDisplayLength)
	if got := TruncateForDisplay(exact); got != exact {
		t.Errorf("Expected %d-character text unchanged", MaxDisplayLength)
	}
	over := exact + "y"
	got := TruncateForDisplay(over)
	if got != strings.Repeat("x", 42)+"…" {
		t.Errorf("Unexpected truncation %q", got)
	}
}

func TestBuildPrompt_UnknownWeatherOmitted(t *testing.T) {
	unknown := domain.WeatherUnknown
	for _, w := range []*domain.WeatherCategory{nil, &unknown} {
		prompt := BuildPrompt(PromptInput{
			Character:  testCharacter(),
			Weather:    w,
			TimeBucket: domain.TimeMorning,
			Season:     domain.SeasonSpring,
		})
		if strings.Contains(prompt, "- Weather:") {
			t.Errorf("Expected weather line omitted, got:\n%s", prompt)
		}
		if !strings.Contains(prompt, WeatherOmittedInstruction) {
			t.Errorf("Expected do-not-mention-weather instruction, got:\n%s", prompt)
		}
	}
}

func TestBuildPrompt_KnownWeatherAndSpecialDay(t *testing.T) {
	rain := domain.WeatherRain
	prompt := BuildPrompt(PromptInput{
		Character:  testCharacter(),
		Weather:    &rain,
		TimeBucket: domain.TimeEvening,
		SpecialDay: "Christmas",
		Season:     domain.SeasonWinter,
	})

	for _, want := range []string{"You are Friend A", "- Season: winter", "- Time of day: evening", "- Weather: rain", "- Special day: Christmas", "celebratory"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q, got:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, WeatherOmittedInstruction) {
		t.Error("Expected no weather omission instruction when weather is known")
	}
}
