package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"artcreator/internal/domain"
	"artcreator/internal/providers/prompt"
)

type fixture struct {
	profiles *fakeProfiles
	gallery  *fakeGallery
	usage    *fakeUsage
	images   *fakeImages
}

func newFixture(credits int) *fixture {
	return &fixture{
		profiles: &fakeProfiles{profile: domain.Profile{DailyCredits: credits}},
		gallery:  &fakeGallery{},
		usage:    &fakeUsage{},
		images:   &fakeImages{},
	}
}

func (f *fixture) orchestrator(t *testing.T, ai bool, analyzer prompt.Analyzer, enhancer prompt.Enhancer) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(Dependencies{
		Profiles:  f.profiles,
		Gallery:   f.gallery,
		Usage:     f.usage,
		Analyzer:  analyzer,
		Enhancer:  enhancer,
		Images:    f.images,
		AIEnabled: ai,
		Logger:    zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewOrchestrator returned error: %v", err)
	}
	return o
}

func TestRunFullPipeline(t *testing.T) {
	f := newFixture(3)
	o := f.orchestrator(t, true,
		fakeAnalyzer{analysis: prompt.Analysis{IsAppropriate: true, Category: "nature"}},
		fakeEnhancer{prompt: "a misty forest at dawn"})
	size, _ := domain.LookupImageSize("Facebook Post")

	var steps []Progress
	res, err := o.Run(context.Background(), Request{GenerationID: "g-1", UserID: "u-1", Prompt: " forest ", Size: size, Enhance: true, Country: "BD"}, func(p Progress) {
		steps = append(steps, p)
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	wantPercents := []int{5, 15, 60, 80, 100}
	if len(steps) != len(wantPercents) {
		t.Fatalf("steps = %+v", steps)
	}
	for i, p := range steps {
		if p.Percent != wantPercents[i] || p.TotalSteps != TotalSteps {
			t.Fatalf("step %d = %+v", i, p)
		}
	}
	if res.Prompt != "a misty forest at dawn" || res.OriginalPrompt != "forest" {
		t.Fatalf("prompts = %q / %q", res.Prompt, res.OriginalPrompt)
	}
	if len(res.Images) != 4 || f.images.last.Prompt != "a misty forest at dawn" {
		t.Fatalf("images = %d, generator prompt %q", len(res.Images), f.images.last.Prompt)
	}
	if res.Saved != 4 || len(f.gallery.entries) != 4 {
		t.Fatalf("saved = %d", res.Saved)
	}
	entry := f.gallery.entries[0]
	if entry.ImageSize != "1200x630" || !entry.IsPublic || entry.Category != "nature" || entry.GenerationID != "g-1" {
		t.Fatalf("entry = %+v", entry)
	}
	if !res.CreditConsumed || *res.CreditsLeft != 2 || f.profiles.consumed != 1 {
		t.Fatalf("credit not consumed: %+v", res)
	}
	if len(f.usage.events) != 1 || !f.usage.events[0].Success || f.usage.events[0].Country != "BD" {
		t.Fatalf("usage = %+v", f.usage.events)
	}
}

func TestRunRefusesWithoutCredits(t *testing.T) {
	f := newFixture(0)
	o := f.orchestrator(t, false, nil, nil)
	_, err := o.Run(context.Background(), Request{UserID: "u-1", Prompt: "cat"}, nil)
	if !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("err = %v, want ErrInsufficientCredits", err)
	}
	if f.images.last.Prompt != "" || len(f.gallery.entries) != 0 {
		t.Fatal("nothing should be generated or saved")
	}
}

func TestRunRefusesBlankPrompt(t *testing.T) {
	f := newFixture(5)
	o := f.orchestrator(t, false, nil, nil)
	if _, err := o.Run(context.Background(), Request{UserID: "u-1", Prompt: "   "}, nil); !errors.Is(err, domain.ErrInvalidPrompt) {
		t.Fatalf("err = %v, want ErrInvalidPrompt", err)
	}
}

func TestRunRefusesBlockedAccount(t *testing.T) {
	f := newFixture(5)
	f.profiles.profile.IsBlocked = true
	o := f.orchestrator(t, false, nil, nil)
	if _, err := o.Run(context.Background(), Request{UserID: "u-1", Prompt: "cat"}, nil); !errors.Is(err, domain.ErrAccountBlocked) {
		t.Fatalf("err = %v, want ErrAccountBlocked", err)
	}
}

func TestRunRejectedPromptSpendsNothing(t *testing.T) {
	f := newFixture(5)
	o := f.orchestrator(t, true,
		fakeAnalyzer{analysis: prompt.Analysis{IsAppropriate: false, Suggestions: "be kinder", Category: "art"}},
		fakeEnhancer{prompt: "unused"})
	_, err := o.Run(context.Background(), Request{UserID: "u-1", Prompt: "something rude", Enhance: true}, nil)
	var rejection *domain.RejectionError
	if !errors.As(err, &rejection) || rejection.Suggestions != "be kinder" {
		t.Fatalf("err = %v, want RejectionError", err)
	}
	if !errors.Is(err, domain.ErrPromptRejected) {
		t.Fatal("rejection should match ErrPromptRejected")
	}
	if f.profiles.consumed != 0 || len(f.gallery.entries) != 0 {
		t.Fatal("rejected prompt must not consume credits or save images")
	}
	if len(f.usage.events) != 1 || f.usage.events[0].Success {
		t.Fatalf("usage = %+v", f.usage.events)
	}
}

func TestRunEnhancementFailureKeepsOriginal(t *testing.T) {
	f := newFixture(5)
	o := f.orchestrator(t, true,
		fakeAnalyzer{analysis: prompt.Analysis{IsAppropriate: true, Category: prompt.CategoryGeneral}},
		fakeEnhancer{err: errors.New("boom")})
	res, err := o.Run(context.Background(), Request{UserID: "u-1", Prompt: "a robot", Enhance: true}, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Prompt != "a robot" {
		t.Fatalf("Prompt = %q", res.Prompt)
	}
	if res.Category != "technology" {
		t.Fatalf("Category = %q, want keyword fallback", res.Category)
	}
}

func TestRunSkipsAIWhenDisabled(t *testing.T) {
	f := newFixture(5)
	o := f.orchestrator(t, false,
		fakeAnalyzer{analysis: prompt.Analysis{IsAppropriate: false}},
		fakeEnhancer{prompt: "unused"})
	var steps []Progress
	res, err := o.Run(context.Background(), Request{UserID: "u-1", Prompt: "a cat", Enhance: true}, func(p Progress) {
		steps = append(steps, p)
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Prompt != "a cat" || steps[0].Step != StepGenerating {
		t.Fatalf("res = %+v, steps = %+v", res, steps)
	}
}

func TestRunGenerationFailure(t *testing.T) {
	f := newFixture(5)
	f.images.err = errors.New("upstream down")
	o := f.orchestrator(t, false, nil, nil)
	_, err := o.Run(context.Background(), Request{UserID: "u-1", Prompt: "a cat"}, nil)
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
	if f.profiles.consumed != 0 {
		t.Fatal("failed generation must not consume credits")
	}
}

func TestRunIgnoresSaveAndCreditFailures(t *testing.T) {
	f := newFixture(5)
	f.gallery.err = errors.New("insert failed")
	f.profiles.consumeErr = errors.New("update failed")
	o := f.orchestrator(t, false, nil, nil)
	res, err := o.Run(context.Background(), Request{UserID: "u-1", Prompt: "a cat"}, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Saved != 0 || res.CreditConsumed || len(res.Images) != 4 {
		t.Fatalf("res = %+v", res)
	}
}
