// ABOUTME: Report request type and its validation
// ABOUTME: Uses go-playground/validator with custom tags for report types and timeframes
package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/harperreed/salesreport/analytics"
)

// Request asks for one report on behalf of a viewer.
type Request struct {
	ViewerID  string `json:"viewerId" validate:"required"`
	Type      Kind   `json:"reportType" validate:"required,report_kind"`
	Timeframe string `json:"timeframe" validate:"required,timeframe"`
	StartDate string `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	SubjectID string `json:"subjectId,omitempty"`
}

// Custom returns the custom bounds, or nil for named timeframes.
func (r Request) Custom() *analytics.CustomRange {
	if analytics.Timeframe(r.Timeframe) != analytics.TimeframeCustom {
		return nil
	}
	return &analytics.CustomRange{StartDate: r.StartDate, EndDate: r.EndDate}
}

// ValidationError lists every problem found in a request.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + strings.Join(e.Problems, "; ")
}

// NewValidator returns a validator with the report tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("report_kind", validateKind)
	_ = v.RegisterValidation("timeframe", validateTimeframe)
	return v
}

func validateKind(fl validator.FieldLevel) bool {
	_, err := ParseKind(fl.Field().String())
	return err == nil
}

func validateTimeframe(fl validator.FieldLevel) bool {
	_, err := analytics.ParseTimeframe(fl.Field().String())
	return err == nil
}

// Validate checks req and returns a *ValidationError describing every failed field.
func Validate(v *validator.Validate, req Request) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate request: %w", err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}
	return &ValidationError{Problems: problems}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "report_kind":
		return fmt.Sprintf("unknown report type %q", fe.Value())
	case "timeframe":
		return fmt.Sprintf("unknown timeframe %q", fe.Value())
	case "datetime":
		return fmt.Sprintf("%s must be YYYY-MM-DD, got %q", fe.Field(), fe.Value())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}
