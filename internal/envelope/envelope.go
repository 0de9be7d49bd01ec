package envelope

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ============================================
// Envelope
// ============================================

// Envelope - изменяемое состояние одного ответа. Создаётся один раз
// на ответ, обрабатывается ровно один раз (Process), финализируется
// и сериализуется в Transform. Не переживает границу запроса.
//
// Инварианты:
// - errors не пусты => data пуст и status >= 400
// - status == 200 => errors пусты
type Envelope struct {
	status     int
	errors     Errors
	data       any
	pagination map[string]any

	processed bool
	modified  bool

	resp      *Captured
	content   map[string]any
	validator Validator
	logger    *slog.Logger
}

// Option настраивает конверт при создании.
type Option func(*Envelope)

// WithValidator добавляет валидатор, который будет применён к данным
// во время Process.
func WithValidator(v Validator) Option {
	return func(e *Envelope) { e.validator = v }
}

// WithLogger задаёт логгер для диагностики обработки.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Envelope) { e.logger = logger }
}

func newEnvelope(opts ...Option) *Envelope {
	e := &Envelope{
		status: http.StatusOK,
		errors: Errors{},
		data:   map[string]any{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// FromResponse создаёт конверт поверх снимка ответа handler'а.
func FromResponse(resp *Captured, opts ...Option) *Envelope {
	e := newEnvelope(opts...)
	e.resp = resp
	return e
}

// FromContent создаёт конверт поверх сырого структурированного
// содержимого. Содержимое копируется.
func FromContent(content map[string]any, opts ...Option) *Envelope {
	e := newEnvelope(opts...)
	if content != nil {
		e.content = copyObject(content)
	}
	return e
}

// New создаёт конверт без входных данных. Transform такого конверта
// деградирует в 500 ответ с ошибкой категории api.
func New(opts ...Option) *Envelope {
	return newEnvelope(opts...)
}

// ============================================
// Accessors
// ============================================

// Status возвращает текущий статус-код конверта.
func (e *Envelope) Status() int { return e.status }

// Errors возвращает копию накопленных ошибок.
func (e *Envelope) Errors() Errors { return e.errors.clone() }

// Data возвращает текущие данные конверта.
func (e *Envelope) Data() any { return e.data }

// Modified возвращает true, если конверт был успешно построен.
func (e *Envelope) Modified() bool { return e.modified }

// ============================================
// Mutations
// ============================================

// AddError добавляет сообщение в bucket __all__ категории, с
// дедупликацией одинаковых сообщений.
func (e *Envelope) AddError(category, message string) {
	e.errors.AddMessage(category, message)
}

// SetFieldErrors заменяет ошибки полей категории копией переданных.
func (e *Envelope) SetFieldErrors(category string, fields FieldErrors) {
	e.errors.SetFields(category, fields)
}

// SetStatus устанавливает статус-код. Для известных кодов
// (400, 401, 403, 404, 405, >= 500) добавляет фиксированное
// сообщение в категорию api - ровно одно на вызов.
func (e *Envelope) SetStatus(code int) {
	e.status = code
	if msg, ok := MessageForStatus(code); ok {
		e.errors.AddMessage("api", msg)
	}
}

// ClearData сбрасывает данные в пустой объект. Вызывается при наличии
// ошибок: данные и ошибки взаимно исключены.
func (e *Envelope) ClearData() {
	e.data = map[string]any{}
}

// ============================================
// Processing
// ============================================

// Process строит конверт из входных данных. Идемпотентен: выполняется
// только один раз, повторные вызовы - no-op.
//
// Вход отклоняется (конверт остаётся немодифицированным), если:
// - входа нет вовсе (ни ответа, ни содержимого)
// - тело ответа не JSON объект
// - вход уже в форме конверта (верхнеуровневые meta и data)
func (e *Envelope) Process() {
	if e.processed {
		e.logger.Debug("envelope already processed, skipping")
		return
	}
	e.processed = true

	content, ok := e.payload()
	if !ok {
		e.logger.Warn("envelope has no processable input")
		return
	}

	if _, hasMeta := content["meta"]; hasMeta {
		if _, hasData := content["data"]; hasData {
			e.logger.Warn("payload already in envelope form, skipping")
			return
		}
	}

	if e.resp != nil {
		e.SetStatus(e.resp.StatusCode)
	}

	// Списочный ответ (пара meta + objects) против детального:
	// форма определяется по содержимому, без внешнего признака.
	meta, hasMeta := content["meta"].(map[string]any)
	objects, hasObjects := content["objects"]
	if hasMeta && hasObjects {
		e.pagination = meta
		e.data = objects
	} else {
		e.data = content
	}

	if e.validator != nil {
		if fields := e.validator.Validate(e.data); len(fields) > 0 {
			e.errors.SetFields("form", FieldErrors(fields))
			e.SetStatus(http.StatusBadRequest)
		}
	}

	if !e.errors.IsEmpty() || e.status >= http.StatusBadRequest {
		if e.status < http.StatusBadRequest {
			e.SetStatus(http.StatusBadRequest)
		}
		e.ClearData()
	}

	e.modified = true
}

// payload возвращает содержимое для обработки: сырое содержимое,
// если оно задано, иначе - разобранное тело JSON ответа.
func (e *Envelope) payload() (map[string]any, bool) {
	if e.content != nil {
		return e.content, true
	}
	if e.resp == nil {
		return nil, false
	}
	if !e.resp.IsJSON() {
		e.logger.Debug("response is not JSON, leaving as-is",
			slog.String("content_type", e.resp.ContentType()))
		return nil, false
	}
	return e.resp.DecodeObject()
}

// ============================================
// Serialization
// ============================================

type metaSection struct {
	Status     int            `json:"status"`
	Errors     Errors         `json:"errors"`
	Pagination map[string]any `json:"pagination,omitempty"`
}

type body struct {
	Meta metaSection `json:"meta"`
	Data any         `json:"data"`
}

// Transform финализирует конверт и сериализует его в снимок ответа.
// Запускает Process, если он ещё не выполнялся. Идемпотентен:
// повторный вызов даёт тот же результат.
//
// - Конверт построен: досогласование статуса с ошибками и сериализация.
// - Конверт не построен, но исходный ответ есть: исходный ответ как есть.
// - Ни того, ни другого: 500 конверт с ошибкой категории api.
func (e *Envelope) Transform() *Captured {
	if !e.processed {
		e.Process()
	}

	if !e.modified {
		if e.resp != nil {
			return e.resp
		}
		e.SetStatus(http.StatusInternalServerError)
		e.ClearData()
		e.modified = true
	}

	if !e.errors.IsEmpty() && e.status < http.StatusBadRequest {
		e.SetStatus(http.StatusBadRequest)
	}

	payload := body{
		Meta: metaSection{
			Status:     e.status,
			Errors:     e.errors,
			Pagination: e.pagination,
		},
		Data: e.data,
	}

	serialized, err := json.Marshal(payload)
	if err != nil {
		// Несериализуемые данные - деградируем в 500 конверт.
		e.logger.Error("failed to serialize envelope", slog.String("error", err.Error()))
		e.SetStatus(http.StatusInternalServerError)
		e.ClearData()
		payload.Meta.Status = e.status
		payload.Meta.Errors = e.errors
		payload.Data = e.data
		serialized, _ = json.Marshal(payload)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json; charset=utf-8")
	return &Captured{
		StatusCode: e.status,
		Header:     header,
		Body:       serialized,
	}
}

// ============================================
// Value Copying
// ============================================

// copyObject глубоко копирует JSON-совместимый объект.
func copyObject(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = copyValue(value)
	}
	return out
}

func copyValue(src any) any {
	switch v := src.(type) {
	case map[string]any:
		return copyObject(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
