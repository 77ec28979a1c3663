package classify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/civix/backend/internal/models"
)

// WithFallback wraps a primary classifier and degrades to the keyword
// classifier when the primary fails for any reason. Callers never see a
// classification error, only the method tag on the result.
type WithFallback struct {
	Primary Classifier
	Logger  zerolog.Logger
}

func (w WithFallback) Classify(ctx context.Context, title, description string) (models.Classification, error) {
	result, err := w.Primary.Classify(ctx, title, description)
	if err == nil {
		return result, nil
	}
	w.Logger.Warn().Err(err).Msg("primary classifier failed, using keyword fallback")
	return KeywordClassifier{}.Classify(ctx, title, description)
}
