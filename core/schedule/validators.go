package schedule

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/campushq/backoffice/core"
)

var (
	eventTypeTag  = "eventtype"
	eventTypeText = "must be one of: lesson, practice, test, project, other"

	// like uuid4 but "" passes; used on clearable *string fields
	allowEmptyUUIDTag  = "allowempty_uuid4"
	allowEmptyUUIDText = "must be a valid UUID or empty"

	errRoomAndClassroomText = "room_id and classroom_id are mutually exclusive"
)

// RegisterValidators registers the schedule-specific validation tags.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(eventTypeTag, eventTypeValidation)
	core.RegisterCustomTranslation(validate, translator, eventTypeTag, eventTypeText)

	_ = validate.RegisterValidation(allowEmptyUUIDTag, allowEmptyUUIDValidation)
	core.RegisterCustomTranslation(validate, translator, allowEmptyUUIDTag, allowEmptyUUIDText)
}

// eventTypeValidation checks that the value is one of the closed event type set.
func eventTypeValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, t := range EventTypes {
		if val == t {
			return true
		}
	}
	return false
}

func allowEmptyUUIDValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	_, err := uuid.Parse(val)
	return err == nil
}
