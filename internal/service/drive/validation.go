package drive

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"clouddrive/internal/config"
	"clouddrive/internal/domain"
	models "clouddrive/internal/domain/models/drive"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var noSlash = validation.Match(regexp.MustCompile(`^[^/]+$`)).Error("name cannot contain slashes")

// nameRules validates a trimmed item name
func nameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.RuneLength(1, config.MaxItemNameLength),
		noSlash,
	}
}

// invalid wraps a validation failure as ErrValidation
func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}

// normalizeParentID maps "" to the root
func normalizeParentID(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	return id
}

// validateBatch checks a list of item ids from a batch toggle
func validateBatch(userID string, ids []string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	return invalid(validation.Validate(ids,
		validation.Required.Error("at least one item id is required"),
		validation.Length(1, config.MaxBatchItems),
		validation.Each(validation.Required),
	))
}

// validateFlow checks one flow step against the closed field x operator table
func validateFlow(step *models.FlowStep) error {
	f := &step.Filter
	err := validation.ValidateStruct(f,
		validation.Field(&f.Field, validation.Required, validation.In(models.ValidFilterFields...)),
		validation.Field(&f.Operator, validation.Required),
		validation.Field(&f.Value, validation.Required),
	)
	if err != nil {
		return err
	}
	if !f.Field.SupportsOperator(f.Operator) {
		return fmt.Errorf("operator %q is not supported for field %q", f.Operator, f.Field)
	}
	if f.Field == models.FieldSize {
		mb, err := strconv.ParseFloat(strings.TrimSpace(f.Value), 64)
		if err != nil || mb < 0 {
			return fmt.Errorf("size filter value %q must be a non-negative number of megabytes", f.Value)
		}
	}

	if len(step.Actions) > config.MaxActionsPerFlow {
		return fmt.Errorf("a flow can hold at most %d actions", config.MaxActionsPerFlow)
	}
	for i, action := range step.Actions {
		if strings.TrimSpace(action.Type) == "" {
			return fmt.Errorf("action %d: type is required", i)
		}
		if len(action.Settings) > 0 && !json.Valid(action.Settings) {
			return fmt.Errorf("action %d: settings must be valid JSON", i)
		}
	}
	return nil
}

// validateFlows validates every flow, prefixing errors with the flow index
func validateFlows(flows []models.FlowStep) error {
	if len(flows) > config.MaxFlowSteps {
		return fmt.Errorf("a rule can hold at most %d flows", config.MaxFlowSteps)
	}
	var errs []error
	for i := range flows {
		if err := validateFlow(&flows[i]); err != nil {
			errs = append(errs, fmt.Errorf("flow %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
