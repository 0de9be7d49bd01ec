// Package envelope реализует пост-обработку JSON ответов API в единый
// формат {meta, data}: статус, ошибки и пагинация уходят в meta,
// полезная нагрузка - в data.
//
// Все ошибки представляются как данные (meta.errors), а не как Go errors:
// компонент всегда возвращает корректно сформированный ответ.
package envelope

import "net/http"

// AllField - зарезервированный ключ для ошибок категории в целом
// (не привязанных к конкретному полю).
const AllField = "__all__"

// ============================================
// Error Model
// ============================================

// FieldErrors - ошибки по полям: имя поля -> список сообщений.
type FieldErrors map[string][]string

// clone возвращает глубокую копию, чтобы не алиасить структуры вызывающего.
func (f FieldErrors) clone() FieldErrors {
	if f == nil {
		return nil
	}
	out := make(FieldErrors, len(f))
	for field, messages := range f {
		out[field] = append([]string(nil), messages...)
	}
	return out
}

// Errors - накопленные ошибки конверта: категория -> ошибки полей.
//
// Категории по соглашению:
// - "api": сообщения, сгенерированные по статус-коду
// - "form": ошибки валидации данных
type Errors map[string]FieldErrors

// AddMessage добавляет сообщение в bucket __all__ указанной категории.
// Повторное добавление того же сообщения игнорируется.
func (e Errors) AddMessage(category, message string) {
	fields := e[category]
	if fields == nil {
		fields = FieldErrors{}
		e[category] = fields
	}
	for _, existing := range fields[AllField] {
		if existing == message {
			return
		}
	}
	fields[AllField] = append(fields[AllField], message)
}

// SetFields заменяет содержимое категории копией переданных ошибок полей.
func (e Errors) SetFields(category string, fields FieldErrors) {
	if len(fields) == 0 {
		return
	}
	e[category] = fields.clone()
}

// IsEmpty возвращает true, если ошибок нет.
func (e Errors) IsEmpty() bool {
	return len(e) == 0
}

// clone возвращает глубокую копию.
func (e Errors) clone() Errors {
	out := make(Errors, len(e))
	for category, fields := range e {
		out[category] = fields.clone()
	}
	return out
}

// ============================================
// Status Taxonomy
// ============================================

// Фиксированная таксономия статус-кодов. Прочие коды проходят
// без автоматического сообщения.
var statusMessages = map[int]string{
	http.StatusBadRequest:       "Invalid API request",
	http.StatusUnauthorized:     "Unauthorized",
	http.StatusForbidden:        "Forbidden",
	http.StatusNotFound:         "Not found",
	http.StatusMethodNotAllowed: "Method not allowed",
}

// MessageForStatus возвращает фиксированное сообщение для известных
// статус-кодов (400, 401, 403, 404, 405 и все >= 500).
func MessageForStatus(code int) (string, bool) {
	if msg, ok := statusMessages[code]; ok {
		return msg, true
	}
	if code >= http.StatusInternalServerError {
		return "System error occurred", true
	}
	return "", false
}
