package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
	"github.com/hongminglow/lateral-entry-be/internal/models"
	"github.com/hongminglow/lateral-entry-be/internal/storage"
)

// Token budgets per feature. The same figure is recorded as usage.
const (
	BioTokens     = 300
	ImproveTokens = 500
)

var instructions = map[string]string{
	"bio":              "make it more professional and concise",
	"achievements":     "make it more impactful and quantifiable",
	"responsibilities": "make it clearer and more structured",
	"general":          "improve clarity and professionalism",
}

// Completer produces text for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// BioContext is what the caller knows about the profile the bio is for.
type BioContext struct {
	Position   string `json:"position,omitempty"`
	Department string `json:"department,omitempty"`
	Expertise  string `json:"expertise,omitempty"`
}

// Improvement is the outcome of ImproveText.
type Improvement struct {
	Original     string `json:"original"`
	Improved     string `json:"improved"`
	SuggestionID int64  `json:"suggestion_id"`
}

// Service generates and tracks suggestions.
type Service struct {
	completer Completer
	store     storage.AIStore
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires the service.
func NewService(completer Completer, store storage.AIStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{completer: completer, store: store, logger: logger, now: time.Now}
}

// SuggestBio drafts a professional bio.
func (s *Service) SuggestBio(ctx context.Context, userID int64, bc BioContext) (models.AISuggestion, error) {
	parts := []string{"Generate a professional bio for a lateral entry officer"}
	if bc.Position != "" {
		parts = append(parts, "Position: "+bc.Position)
	}
	if bc.Department != "" {
		parts = append(parts, "Department: "+bc.Department)
	}
	if bc.Expertise != "" {
		parts = append(parts, "Areas of expertise: "+bc.Expertise)
	}
	prompt := strings.Join(parts, ". ") + ".\n\nProfessional bio:"

	input, err := json.Marshal(bc)
	if err != nil {
		return models.AISuggestion{}, err
	}
	return s.generate(ctx, userID, models.SuggestionBio, prompt, string(input), BioTokens)
}

// ImproveText rewrites text with an instruction chosen by fieldType.
func (s *Service) ImproveText(ctx context.Context, userID int64, text, fieldType string) (Improvement, error) {
	if strings.TrimSpace(text) == "" {
		return Improvement{}, apperr.New(apperr.ErrValidation, "Text is required")
	}
	instruction, ok := instructions[fieldType]
	if !ok {
		instruction = instructions["general"]
	}
	prompt := fmt.Sprintf("Improve the following text (%s):\n\n%s\n\nImproved version:", instruction, text)

	sg, err := s.generate(ctx, userID, models.SuggestionImproveText, prompt, text, ImproveTokens)
	if err != nil {
		return Improvement{}, err
	}
	return Improvement{Original: text, Improved: sg.OutputData, SuggestionID: sg.ID}, nil
}

func (s *Service) generate(ctx context.Context, userID int64, kind, prompt, input string, maxTokens int) (models.AISuggestion, error) {
	text, err := s.completer.Complete(ctx, prompt, maxTokens)
	if err != nil {
		s.logger.Warn("ai completion failed", zap.String("feature", kind), zap.Error(err))
		return models.AISuggestion{}, err
	}
	sg, err := s.store.CreateSuggestion(ctx, models.AISuggestion{
		UserID:         userID,
		SuggestionType: kind,
		InputData:      input,
		OutputData:     text,
	}, maxTokens)
	if err != nil {
		return models.AISuggestion{}, fmt.Errorf("store suggestion: %w", err)
	}
	return sg, nil
}

// Accept marks the caller's own suggestion as used.
func (s *Service) Accept(ctx context.Context, userID, id int64) error {
	sg, err := s.store.GetSuggestion(ctx, id)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && sg.UserID != userID) {
		return apperr.New(apperr.ErrNotFound, "Suggestion not found")
	}
	if err != nil {
		return err
	}
	return s.store.AcceptSuggestion(ctx, id, s.now())
}

// UsageStats aggregates the caller's usage per feature.
func (s *Service) UsageStats(ctx context.Context, userID int64) ([]models.AIUsageStat, error) {
	return s.store.AIUsageStats(ctx, userID)
}
