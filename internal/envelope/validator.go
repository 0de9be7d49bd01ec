package envelope

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ============================================
// Validator Capability
// ============================================

// Validator проверяет данные-кандидаты конверта. Пустой (или nil)
// результат означает, что данные валидны.
//
// Это capability, а не конкретный тип: конверту не важно,
// чем именно реализована валидация.
type Validator interface {
	Validate(data any) map[string][]string
}

// ValidatorFunc адаптирует функцию к интерфейсу Validator.
type ValidatorFunc func(data any) map[string][]string

// Validate реализует Validator.
func (f ValidatorFunc) Validate(data any) map[string][]string {
	return f(data)
}

// ============================================
// Rules Validator
// ============================================

// RulesValidator валидирует объектные данные по декларативным правилам
// go-playground/validator (теги вида "required,email").
//
// Не-объектные данные (списки, скаляры) пропускаются без ошибок:
// правила применимы только к объектам.
type RulesValidator struct {
	rules    map[string]any
	validate *validator.Validate
}

// NewRulesValidator создаёт валидатор с правилами поле -> тег.
func NewRulesValidator(rules map[string]any) *RulesValidator {
	copied := make(map[string]any, len(rules))
	for field, rule := range rules {
		copied[field] = rule
	}
	return &RulesValidator{
		rules:    copied,
		validate: validator.New(),
	}
}

// Validate реализует Validator.
func (r *RulesValidator) Validate(data any) map[string][]string {
	object, ok := data.(map[string]any)
	if !ok {
		return nil
	}

	failures := r.validate.ValidateMap(object, r.rules)
	if len(failures) == 0 {
		return nil
	}

	out := make(map[string][]string, len(failures))
	for field, failure := range failures {
		switch errs := failure.(type) {
		case validator.ValidationErrors:
			for _, fe := range errs {
				out[field] = append(out[field], messageForTag(fe))
			}
		case error:
			out[field] = append(out[field], errs.Error())
		}
	}
	return out
}

// messageForTag возвращает человекочитаемое сообщение для правила.
func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "uuid":
		return "Invalid UUID format"
	case "min":
		return "Value is too short (minimum: " + fe.Param() + ")"
	case "max":
		return "Value is too long (maximum: " + fe.Param() + ")"
	case "len":
		return "Value must be exactly " + fe.Param() + " characters"
	case "oneof":
		return "Value must be one of: " + fe.Param()
	case "numeric":
		return "Value must be numeric"
	default:
		return fmt.Sprintf("Failed validation rule: %s", fe.Tag())
	}
}
