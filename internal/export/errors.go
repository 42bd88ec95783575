package export

import (
	"errors"

	"github.com/qrv0/svmgen/internal/scaler"
	"github.com/qrv0/svmgen/internal/svm"
)

// Error categories reported by the exporters. Every export either returns
// nil or an error matching one of these (or wrapping an *fs.PathError for
// plain I/O failures).
var (
	// ErrMissingTemplate is returned before anything is written when the
	// template file does not exist.
	ErrMissingTemplate = errors.New("export: template file missing")

	// ErrTemplatePlaceholder is returned when a template lacks one of the
	// placeholder tokens it must carry.
	ErrTemplatePlaceholder = errors.New("export: template placeholder missing")

	// ErrEmptyModel is returned for models without support vectors or
	// without any stored feature (D = 0).
	ErrEmptyModel = errors.New("export: empty model")

	// ErrDimensionMismatch is returned when the dimensionality inferred from
	// the support vectors disagrees with the input scaler.
	ErrDimensionMismatch = errors.New("export: dimension mismatch")

	// ErrInvalidName is returned for artifact names that cannot be used as a
	// file base name or as an identifier in the target language.
	ErrInvalidName = errors.New("export: invalid artifact name")

	// ErrParse is returned when a generated artifact cannot be read back.
	ErrParse = errors.New("export: cannot parse artifact")

	ErrInvalidModel      = svm.ErrInvalidModel
	ErrUnsupportedKernel = svm.ErrUnsupportedKernel
	ErrInvalidScaler     = scaler.ErrInvalidScaler
)
