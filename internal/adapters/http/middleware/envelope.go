// Package middleware - Envelope middleware.
//
// Перехватывает ответ handler'а до отправки клиенту и пересобирает его
// в единый формат {meta, data}. Handler'ы пишут обычные JSON ответы
// (включая tastypie-style списки meta+objects), middleware приводит их
// к конверту.
package middleware

import (
	"bytes"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/WiserTogether/api-envelope/internal/envelope"
)

// ValidatorContextKey - ключ gin контекста, по которому middleware
// забирает валидатор, назначенный маршруту.
const ValidatorContextKey = "envelope.validator"

// ============================================
// Configuration
// ============================================

// EnvelopeConfig - конфигурация envelope middleware.
type EnvelopeConfig struct {
	// Logger для диагностики обработки
	Logger *slog.Logger
	// SkipPaths - пути, которые не оборачиваются в конверт
	// (health checks, метрики)
	SkipPaths []string
}

// DefaultEnvelopeConfig - конфигурация по умолчанию.
func DefaultEnvelopeConfig() *EnvelopeConfig {
	return &EnvelopeConfig{
		Logger:    slog.Default(),
		SkipPaths: []string{"/health", "/live", "/ready", "/metrics"},
	}
}

// ============================================
// Route Validator
// ============================================

// RouteValidator назначает маршруту валидатор данных ответа.
// Envelope middleware применит его во время обработки конверта.
//
// Использование:
//
//	v1.POST("/contacts", middleware.RouteValidator(rules), handler.Create)
func RouteValidator(v envelope.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ValidatorContextKey, v)
		c.Next()
	}
}

// routeValidator извлекает валидатор маршрута из контекста, если он есть.
func routeValidator(c *gin.Context) (envelope.Validator, bool) {
	raw, exists := c.Get(ValidatorContextKey)
	if !exists {
		return nil, false
	}
	v, ok := raw.(envelope.Validator)
	return v, ok
}

// ============================================
// Envelope Middleware
// ============================================

// Envelope оборачивает JSON ответы handler'ов в формат {meta, data}.
//
// Как это работает:
// 1. Writer подменяется на буферизующий: ответ handler'а не уходит клиенту
// 2. После цепочки handler'ов снимок ответа отдаётся в envelope core
// 3. Результат Transform записывается в настоящий writer
//
// Не-JSON ответы и ответы, уже имеющие форму конверта, проходят без
// изменений байт-в-байт.
func Envelope(config *EnvelopeConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultEnvelopeConfig()
	}

	skipMap := make(map[string]bool, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skipMap[path] = true
	}

	return func(c *gin.Context) {
		if skipMap[c.Request.URL.Path] {
			c.Next()
			return
		}

		cw := newCaptureWriter(c.Writer)
		c.Writer = cw

		c.Next()

		captured := envelope.NewCaptured(cw.Status(), cw.Header(), cw.buffered())

		opts := []envelope.Option{envelope.WithLogger(config.Logger)}
		if v, ok := routeValidator(c); ok {
			opts = append(opts, envelope.WithValidator(v))
		}

		env := envelope.FromResponse(captured, opts...)
		out := env.Transform()

		switch {
		case out == captured:
			recordEnvelopeOutcome(envelopeOutcomePassthrough)
			cw.flush(cw.Status(), cw.buffered())
		case env.Modified():
			recordEnvelopeOutcome(envelopeOutcomeEnveloped)
			cw.writeTransformed(out)
		default:
			recordEnvelopeOutcome(envelopeOutcomeDegraded)
			cw.writeTransformed(out)
		}
	}
}

// ============================================
// Capture Writer
// ============================================

// captureWriter - gin.ResponseWriter, который буферизует статус и тело
// до явного flush. Заголовки живут в нижележащем writer'е и не
// отправляются, пока не вызван его WriteHeader.
type captureWriter struct {
	gin.ResponseWriter
	body   bytes.Buffer
	status int
	wrote  bool
}

func newCaptureWriter(w gin.ResponseWriter) *captureWriter {
	return &captureWriter{
		ResponseWriter: w,
		status:         200,
	}
}

// WriteHeader запоминает статус, не отправляя его.
func (w *captureWriter) WriteHeader(code int) {
	if code > 0 {
		w.status = code
		w.wrote = true
	}
}

// WriteHeaderNow подавляет ранний сброс заголовков gin'ом.
func (w *captureWriter) WriteHeaderNow() {}

// Write буферизует тело ответа.
func (w *captureWriter) Write(b []byte) (int, error) {
	w.wrote = true
	return w.body.Write(b)
}

// WriteString буферизует строковое тело ответа.
func (w *captureWriter) WriteString(s string) (int, error) {
	w.wrote = true
	return w.body.WriteString(s)
}

// Status возвращает записанный статус.
func (w *captureWriter) Status() int { return w.status }

// Size возвращает размер буферизованного (или уже отправленного) тела.
func (w *captureWriter) Size() int {
	if written := w.ResponseWriter.Size(); written >= 0 {
		return written
	}
	return w.body.Len()
}

// Written возвращает true, если handler что-то записал.
func (w *captureWriter) Written() bool { return w.wrote }

func (w *captureWriter) buffered() []byte { return w.body.Bytes() }

// flush отправляет статус и тело в нижележащий writer как есть.
func (w *captureWriter) flush(status int, body []byte) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
	if len(body) > 0 {
		w.ResponseWriter.Write(body) //nolint:errcheck
	}
}

// writeTransformed отправляет преобразованный конверт, корректируя
// заголовки, выставленные handler'ом под исходное тело.
func (w *captureWriter) writeTransformed(out *envelope.Captured) {
	header := w.ResponseWriter.Header()
	header.Set("Content-Type", out.Header.Get("Content-Type"))
	header.Set("Content-Length", strconv.Itoa(len(out.Body)))
	w.flush(out.StatusCode, out.Body)
}
