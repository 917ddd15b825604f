package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"artcreator/internal/domain"
	"artcreator/internal/providers/image"
	"artcreator/internal/providers/prompt"
)

// Request is a single submission.
type Request struct {
	GenerationID string
	UserID       string
	Email        string
	Prompt       string
	Size         domain.ImageSize
	Seed         *int64
	Enhance      bool
	Country      string
}

// Result is what a finished generation hands back.
type Result struct {
	GenerationID   string                  `json:"generation_id"`
	Prompt         string                  `json:"prompt"`
	OriginalPrompt string                  `json:"original_prompt"`
	Category       string                  `json:"category"`
	Size           domain.ImageSize        `json:"size"`
	Images         []domain.GeneratedImage `json:"images"`
	Saved          int                     `json:"saved"`
	CreditConsumed bool                    `json:"credit_consumed"`
	CreditsLeft    *int                    `json:"credits_left,omitempty"`
	Analysis       *prompt.Analysis        `json:"analysis,omitempty"`
	Enhancement    *prompt.Enhancement     `json:"enhancement,omitempty"`
}

type Dependencies struct {
	Profiles domain.ProfileRepository
	Gallery  domain.GalleryRepository
	Usage    domain.UsageRepository
	Analyzer prompt.Analyzer
	Enhancer prompt.Enhancer
	Images   image.Generator

	// AIEnabled gates the analysis and enhancement steps.
	AIEnabled        bool
	ImagesPerRequest int
	Logger           zerolog.Logger
	Now              func() time.Time
}

// Orchestrator runs analyze, enhance, generate, save and charge in order.
type Orchestrator struct {
	deps Dependencies
}

func NewOrchestrator(deps Dependencies) (*Orchestrator, error) {
	if deps.Profiles == nil || deps.Gallery == nil || deps.Images == nil {
		return nil, errors.New("generation: profiles, gallery and image generator are required")
	}
	if deps.Analyzer == nil {
		deps.Analyzer = prompt.NewStaticAnalyzer()
	}
	if deps.Enhancer == nil {
		deps.Enhancer = prompt.NewStaticEnhancer()
	}
	if deps.ImagesPerRequest <= 0 {
		deps.ImagesPerRequest = image.DefaultCount
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Orchestrator{deps: deps}, nil
}

// Precheck loads (or creates) the caller's profile and refuses blank prompts,
// exhausted credits and blocked accounts, in that order.
func (o *Orchestrator) Precheck(ctx context.Context, userID, email, text string) (*domain.Profile, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrInvalidPrompt
	}
	profile, err := o.deps.Profiles.Ensure(ctx, userID, email)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if err := profile.CanGenerate(); err != nil {
		return profile, err
	}
	return profile, nil
}

// Run executes the whole pipeline. report may be nil.
func (o *Orchestrator) Run(ctx context.Context, req Request, report func(Progress)) (*Result, error) {
	if report == nil {
		report = func(Progress) {}
	}
	started := o.deps.Now()
	logger := o.deps.Logger.With().Str("generation_id", req.GenerationID).Str("user_id", req.UserID).Logger()

	if _, err := o.Precheck(ctx, req.UserID, req.Email, req.Prompt); err != nil {
		return nil, err
	}

	res, err := o.run(ctx, req, report, logger)
	o.recordUsage(req, res, err, started, logger)
	return res, err
}

func (o *Orchestrator) run(ctx context.Context, req Request, report func(Progress), logger zerolog.Logger) (*Result, error) {
	original := strings.TrimSpace(req.Prompt)
	size := req.Size
	if size.Width <= 0 || size.Height <= 0 {
		size = domain.DefaultImageSize()
	}
	res := &Result{
		GenerationID:   req.GenerationID,
		Prompt:         original,
		OriginalPrompt: original,
		Size:           size,
	}

	if o.deps.AIEnabled && req.Enhance {
		report(ProgressFor(StepAnalyzing))
		analysis, err := o.deps.Analyzer.Analyze(ctx, original)
		if err != nil {
			logger.Warn().Err(err).Msg("prompt analysis failed, continuing")
		} else {
			res.Analysis = analysis
			if !analysis.IsAppropriate {
				return res, &domain.RejectionError{Suggestions: analysis.Suggestions, Category: analysis.Category}
			}
		}

		report(ProgressFor(StepEnhancing))
		enhancement, err := o.deps.Enhancer.Enhance(ctx, original)
		if err != nil {
			logger.Warn().Err(err).Msg("prompt enhancement failed, using original prompt")
		} else if p := strings.TrimSpace(enhancement.Prompt); p != "" {
			res.Enhancement = enhancement
			res.Prompt = p
		}
	}

	res.Category = o.category(res)

	report(ProgressFor(StepGenerating))
	images, err := o.deps.Images.Generate(ctx, image.Request{
		Prompt: res.Prompt,
		Size:   size,
		Count:  o.deps.ImagesPerRequest,
		Seed:   req.Seed,
	})
	if err != nil {
		logger.Error().Err(err).Msg("image generation failed")
		if errors.Is(err, domain.ErrGenerationFailed) {
			return res, err
		}
		return res, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	res.Images = images

	if req.UserID != "" && len(images) > 0 {
		report(ProgressFor(StepSaving))
		res.Saved = o.saveGallery(ctx, req, res, logger)

		profile, err := o.deps.Profiles.ConsumeCredit(ctx, req.UserID)
		if err != nil {
			logger.Error().Err(err).Msg("credit update failed")
		} else {
			res.CreditConsumed = true
			left := profile.DailyCredits
			res.CreditsLeft = &left
		}
	}

	report(ProgressFor(StepComplete))
	return res, nil
}

func (o *Orchestrator) category(res *Result) string {
	if res.Analysis != nil && res.Analysis.Category != "" && res.Analysis.Category != prompt.CategoryGeneral {
		return res.Analysis.Category
	}
	return prompt.Categorize(res.OriginalPrompt)
}

func (o *Orchestrator) saveGallery(ctx context.Context, req Request, res *Result, logger zerolog.Logger) int {
	saved := 0
	for _, img := range res.Images {
		entry := &domain.GalleryEntry{
			UserID:         req.UserID,
			GenerationID:   req.GenerationID,
			Prompt:         res.Prompt,
			OriginalPrompt: res.OriginalPrompt,
			ImageURL:       img.URL,
			ImageSize:      res.Size.Label(),
			Seed:           img.Seed,
			Category:       res.Category,
			IsPublic:       true,
		}
		if err := o.deps.Gallery.Save(ctx, entry); err != nil {
			logger.Error().Err(err).Str("image_id", img.ID).Msg("gallery save failed")
			continue
		}
		saved++
	}
	return saved
}

func (o *Orchestrator) recordUsage(req Request, res *Result, runErr error, started time.Time, logger zerolog.Logger) {
	if o.deps.Usage == nil {
		return
	}
	props := map[string]any{
		"size":    req.Size.Label(),
		"enhance": req.Enhance,
	}
	if res != nil {
		props["images"] = len(res.Images)
		props["saved"] = res.Saved
		props["category"] = res.Category
		props["credit_consumed"] = res.CreditConsumed
	}
	if runErr != nil {
		props["error"] = runErr.Error()
	}
	event := domain.UsageEvent{
		UserID:       req.UserID,
		GenerationID: req.GenerationID,
		Type:         domain.UsageGeneration,
		Success:      runErr == nil,
		LatencyMS:    int(o.deps.Now().Sub(started).Milliseconds()),
		Country:      req.Country,
		Properties:   props,
	}
	// The request context may already be done; the event is best effort.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.deps.Usage.Record(ctx, event); err != nil {
		logger.Warn().Err(err).Msg("usage event not recorded")
	}
}
