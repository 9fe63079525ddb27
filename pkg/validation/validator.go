package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid marks every validation failure.
var ErrInvalid = errors.New("invalid value")

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Lattice kinds and export formats accepted on the command line
	LatticeKinds  = []string{"ring", "square", "diamond"}
	ExportFormats = []string{"xyz", "mdview", "json"}

	// Log settings accepted in the run configuration
	LogLevels  = []string{"debug", "info", "warn", "warning", "error"}
	LogFormats = []string{"text", "json"}
)

// MaxPercent is the highest doping level, in percent of sites, accepted for a run.
const MaxPercent = 50

func init() {
	validate = validator.New()
}

// LatticeRequest describes a lattice to build.
type LatticeRequest struct {
	Kind string `json:"kind" validate:"required,oneof=ring square diamond"`
	Size int    `json:"size" validate:"required,min=1,max=4096"`
	Out  string `json:"out" validate:"required"`
}

// DopeRequest describes a doping run.
type DopeRequest struct {
	In      string  `json:"in" validate:"required"`
	Out     string  `json:"out" validate:"required,nefield=In"`
	Percent float64 `json:"percent" validate:"gte=0,lte=50"`
}

// DiffuseRequest describes a diffusion run.
type DiffuseRequest struct {
	In    string `json:"in" validate:"required"`
	Out   string `json:"out" validate:"required"`
	Moves int    `json:"moves" validate:"gte=0"`
}

// EnsembleRequest describes a batch of independent replicas.
type EnsembleRequest struct {
	In       string  `json:"in" validate:"required"`
	OutDir   string  `json:"outDir" validate:"required"`
	Percent  float64 `json:"percent" validate:"gte=0,lte=50"`
	Moves    int     `json:"moves" validate:"gte=0"`
	Replicas int     `json:"replicas" validate:"min=1,max=100000"`
	Workers  int     `json:"workers" validate:"gte=0,max=1024"`
}

// ExportRequest describes a point-cloud export.
type ExportRequest struct {
	In     string `json:"in" validate:"required"`
	Format string `json:"format" validate:"required,oneof=xyz mdview json"`
}

// ValidateStruct checks the struct tags of v and reports every failing field.
func ValidateStruct(v any) error {
	if v == nil {
		return fmt.Errorf("request cannot be nil: %w", ErrInvalid)
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	errs := make([]error, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := e.Namespace()
		param := e.Param()

		var msg string
		switch e.Tag() {
		case "required":
			msg = "field is required"
		case "min", "gte":
			msg = "must be at least " + param
		case "max", "lte":
			msg = "must not exceed " + param
		case "oneof":
			msg = "must be one of [" + param + "]"
		case "nefield":
			msg = "must differ from " + param
		default:
			msg = fmt.Sprintf("validation failed (%s)", e.Tag())
		}
		errs = append(errs, fmt.Errorf("%s: %s: %w", field, msg, ErrInvalid))
	}
	return errors.Join(errs...)
}
