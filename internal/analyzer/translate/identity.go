package translate

import (
	"github.com/crisislens/analyzer/internal/domain"
	"github.com/crisislens/analyzer/internal/stage"
)

// ImplementationIdentity marks a translation that is the identity function.
// The orchestrator takes this path when the detected language is already
// English; it is a real result, not a degraded one.
const ImplementationIdentity = "identity"

// Identity returns the identity-translation output for English text.
func Identity(text string) stage.Output {
	return stage.Output{
		Stage:            domain.StageTranslation,
		ImplementationID: ImplementationIdentity,
		Translated:       text,
		Confidence:       1,
	}
}
