package envelope

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ============================================
// Response Abstraction
// ============================================

// Captured - снимок HTTP ответа: статус, заголовки и тело.
// Служит и входом (ответ handler'а до обработки), и выходом
// (сериализованный конверт).
type Captured struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// NewCaptured создаёт снимок ответа. Заголовки и тело копируются,
// чтобы не алиасить буферы вызывающего.
func NewCaptured(statusCode int, header http.Header, body []byte) *Captured {
	c := &Captured{
		StatusCode: statusCode,
		Header:     make(http.Header, len(header)),
		Body:       append([]byte(nil), body...),
	}
	for key, values := range header {
		c.Header[key] = append([]string(nil), values...)
	}
	return c
}

// ContentType возвращает значение заголовка Content-Type.
func (c *Captured) ContentType() string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get("Content-Type")
}

// IsJSON проверяет, является ли тело ответа JSON документом.
func (c *Captured) IsJSON() bool {
	return strings.Contains(c.ContentType(), "application/json")
}

// DecodeObject разбирает тело как JSON объект. Возвращает false,
// если тело - не объект (массив, скаляр, пустое тело, не-JSON).
func (c *Captured) DecodeObject() (map[string]any, bool) {
	if len(c.Body) == 0 {
		return nil, false
	}
	var content map[string]any
	if err := json.Unmarshal(c.Body, &content); err != nil {
		return nil, false
	}
	return content, true
}
