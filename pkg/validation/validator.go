package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Parameter limits
	MinTopN              = 1
	MaxTopN              = 500
	DefaultTopN          = 10
	MinMaxHops           = 0
	MaxMaxHops           = 100
	DefaultMaxHops       = 3
	MaxContributionItems = 10000
)

func init() {
	validate = validator.New()
}

// CriticalNodesParams are the query parameters of the critical-nodes
// endpoint.
type CriticalNodesParams struct {
	FolderID           string `validate:"required"`
	TopN               int    `validate:"min=1,max=500"`
	IncludeBlastRadius bool
}

// BlastRadiusRequest is the body of the blast-radius endpoint.
type BlastRadiusRequest struct {
	FolderID             string   `json:"folder_id" validate:"required"`
	SourceNodeID         string   `json:"source_node_id" validate:"required"`
	MaxHops              int      `json:"max_hops" validate:"min=0,max=100"`
	PropagationThreshold float64  `json:"propagation_threshold" validate:"min=0,max=1"`
	DecayFactor          *float64 `json:"decay_factor" validate:"omitempty,gt=0,lte=1"`
}

// ContributionItem is one entry of a concentration request.
type ContributionItem struct {
	ID    string  `json:"id" validate:"required"`
	Value float64 `json:"value" validate:"min=0"`
}

// ConcentrationRequest is the body of the concentration endpoint.
type ConcentrationRequest struct {
	Contributions []ContributionItem `json:"contributions" validate:"required,min=1,dive"`
}

// ValidateCriticalNodesParams validates the critical-nodes parameters.
func ValidateCriticalNodesParams(p *CriticalNodesParams) error {
	if p == nil {
		return errors.New("parameters cannot be nil")
	}
	if err := validate.Struct(p); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateBlastRadiusRequest validates a blast-radius request body.
func ValidateBlastRadiusRequest(req *BlastRadiusRequest) error {
	if req == nil {
		return errors.New("request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateConcentrationRequest validates a concentration request body.
func ValidateConcentrationRequest(req *ConcentrationRequest) error {
	if req == nil {
		return errors.New("request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if len(req.Contributions) > MaxContributionItems {
		return fmt.Errorf("Contributions: maximum %d items allowed, got %d",
			MaxContributionItems, len(req.Contributions))
	}
	return nil
}

// formatValidationError converts validator errors into readable messages.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param()))
		case "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
