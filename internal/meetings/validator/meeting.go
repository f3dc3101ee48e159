package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"roombook/pkg/logger"
	"roombook/pkg/model"

	"github.com/go-playground/validator/v10"
)

var (
	userIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._@-]{0,63}$`)
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details renders the errors as a field to message map for API responses.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

type MeetingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
	now      func() time.Time
}

func NewMeetingValidator(log *logger.Logger) *MeetingValidator {
	v := validator.New()

	if err := v.RegisterValidation("user_id", validateUserID); err != nil {
		log.Fatal("Failed to register 'user_id' validator",
			"error", err,
		)
	}

	log.Info("Meeting validator initialized successfully")

	return &MeetingValidator{
		validate: v,
		logger:   log,
		now:      time.Now,
	}
}

// WithClock replaces the clock used for the "not in the past" rule.
func (v *MeetingValidator) WithClock(now func() time.Time) *MeetingValidator {
	v.now = now
	return v
}

func validateUserID(fl validator.FieldLevel) bool {
	return userIDRegex.MatchString(fl.Field().String())
}

func (v *MeetingValidator) Validate(meeting *model.Meeting) error {
	if err := v.validate.Struct(meeting); err != nil {
		return v.translate(err)
	}

	if meeting.StartDate.Before(v.now()) {
		return ValidationErrors{
			ValidationError{
				Field:   "StartDate",
				Message: "start_date cannot be in the past",
			},
		}
	}

	return nil
}

func (v *MeetingValidator) ValidateUpdate(update *model.MeetingUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		return v.translate(err)
	}

	if update.StartDate != nil && update.StartDate.Before(v.now()) {
		return ValidationErrors{
			ValidationError{
				Field:   "StartDate",
				Message: "start_date cannot be in the past",
			},
		}
	}

	return nil
}

func (v *MeetingValidator) ValidateRecommendation(req *model.RecommendationRequest) error {
	if err := v.validate.Struct(req); err != nil {
		return v.translate(err)
	}

	if len(req.RequiredUserIDs)+len(req.OptionalUserIDs) == 0 {
		return ValidationErrors{
			ValidationError{
				Field:   "RequiredUserIDs",
				Message: "at least one participant is required",
			},
		}
	}

	return nil
}

func (v *MeetingValidator) translate(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	var out ValidationErrors
	for _, fe := range validationErrs {
		message := fe.Error()

		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", fe.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", fe.Field())
		case "user_id":
			message = fmt.Sprintf("%s must be a valid user ID", fe.Field())
		case "unique":
			message = fmt.Sprintf("%s must not contain duplicates", fe.Field())
		}

		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: message,
		})
	}

	return out
}
