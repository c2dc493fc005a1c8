package domain

import (
	"fmt"

	apperrors "siav/internal/platform/errors"
)

// Engine errors wrap the platform sentinels so transports can classify them
// without knowing the engine.
var (
	ErrInvalidRhythmKind = fmt.Errorf("%w: invalid rhythm kind", apperrors.ErrInvalidInput)
	ErrUnknownDrug       = fmt.Errorf("%w: unknown drug", apperrors.ErrInvalidInput)
	ErrUnknownPhase      = fmt.Errorf("%w: unknown phase", apperrors.ErrInvalidInput)
	ErrInvalidEnergy     = fmt.Errorf("%w: invalid shock energy", apperrors.ErrInvalidInput)
	ErrInvalidVitals     = fmt.Errorf("%w: invalid vitals", apperrors.ErrInvalidInput)
	ErrInvalidGlasgow    = fmt.Errorf("%w: invalid glasgow score", apperrors.ErrInvalidInput)
	ErrInvalidPatient    = fmt.Errorf("%w: invalid patient", apperrors.ErrInvalidInput)
	ErrIllegalTransition = fmt.Errorf("%w: illegal phase transition", apperrors.ErrConflict)
)
