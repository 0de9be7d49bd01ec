// Package handlers содержит HTTP handlers демонстрационного API.
//
// Handler'ы намеренно пишут "сырые" JSON ответы - детальные объекты и
// tastypie-style списки {meta, objects}. Приведение к единому формату
// {meta, data} выполняет envelope middleware, а не handler.
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
)

// ============================================
// Contact Resource
// ============================================

// Contact - демонстрационный ресурс.
type Contact struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ContactHandler обрабатывает запросы к ресурсу contacts.
// Хранение - in-memory, состояние не переживает перезапуск.
type ContactHandler struct {
	mu       sync.RWMutex
	contacts []Contact
	nextID   int
	logger   *slog.Logger
}

// NewContactHandler создаёт handler с фикстурными данными.
func NewContactHandler(logger *slog.Logger) *ContactHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactHandler{
		contacts: []Contact{
			{ID: 1, Name: "Ada Lovelace", Email: "ada@example.com"},
			{ID: 2, Name: "Grace Hopper", Email: "grace@example.com"},
			{ID: 3, Name: "Alan Turing", Email: "alan@example.com"},
		},
		nextID: 4,
		logger: logger,
	}
}

// RegisterRoutes регистрирует маршруты ресурса в группе.
func (h *ContactHandler) RegisterRoutes(group *gin.RouterGroup, routeMiddleware ...gin.HandlerFunc) {
	contacts := group.Group("/contacts")
	{
		contacts.GET("", h.List)
		contacts.GET("/:id", h.Get)
		contacts.POST("", append(append([]gin.HandlerFunc{}, routeMiddleware...), h.Create)...)
	}
}

// ============================================
// Request Types
// ============================================

// CreateContactRequest - тело запроса на создание контакта.
// Структурных binding-ограничений нет: валидацию выполняет
// валидатор конверта над данными ответа.
type CreateContactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ============================================
// HTTP Handlers
// ============================================

// List возвращает страницу контактов в tastypie-style формате
// {meta: {limit, offset, total_count}, objects: [...]}.
// Envelope middleware поднимет meta в pagination.
func (h *ContactHandler) List(c *gin.Context) {
	limit := parseQueryInt(c, "limit", 20)
	offset := parseQueryInt(c, "offset", 0)

	h.mu.RLock()
	total := len(h.contacts)
	page := make([]Contact, 0, limit)
	for i := offset; i < total && len(page) < limit; i++ {
		page = append(page, h.contacts[i])
	}
	h.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"meta": gin.H{
			"limit":       limit,
			"offset":      offset,
			"total_count": total,
		},
		"objects": page,
	})
}

// Get возвращает детальный объект контакта.
func (h *ContactHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, contact := range h.contacts {
		if contact.ID == id {
			c.JSON(http.StatusOK, contact)
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
}

// Create добавляет контакт и возвращает созданный объект.
// Ошибки валидации данных всплывут как errors.form в конверте.
func (h *ContactHandler) Create(c *gin.Context) {
	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.mu.Lock()
	contact := Contact{ID: h.nextID, Name: req.Name, Email: req.Email}
	h.nextID++
	h.contacts = append(h.contacts, contact)
	h.mu.Unlock()

	h.logger.Info("contact created", slog.Int("id", contact.ID))

	c.JSON(http.StatusCreated, contact)
}

// parseQueryInt парсит числовой query параметр с дефолтом.
func parseQueryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
