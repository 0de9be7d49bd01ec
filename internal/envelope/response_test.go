package envelope

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptured_IsJSON(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		expected    bool
	}{
		{"plain json", "application/json", true},
		{"json with charset", "application/json; charset=utf-8", true},
		{"html", "text/html", false},
		{"missing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.contentType != "" {
				header.Set("Content-Type", tt.contentType)
			}
			c := NewCaptured(http.StatusOK, header, nil)
			assert.Equal(t, tt.expected, c.IsJSON())
		})
	}
}

func TestCaptured_DecodeObject(t *testing.T) {
	t.Run("Object", func(t *testing.T) {
		c := NewCaptured(http.StatusOK, nil, []byte(`{"id":1}`))
		content, ok := c.DecodeObject()
		require.True(t, ok)
		assert.Equal(t, float64(1), content["id"])
	})

	t.Run("Array", func(t *testing.T) {
		c := NewCaptured(http.StatusOK, nil, []byte(`[1,2]`))
		_, ok := c.DecodeObject()
		assert.False(t, ok)
	})

	t.Run("EmptyBody", func(t *testing.T) {
		c := NewCaptured(http.StatusNoContent, nil, nil)
		_, ok := c.DecodeObject()
		assert.False(t, ok)
	})

	t.Run("Malformed", func(t *testing.T) {
		c := NewCaptured(http.StatusOK, nil, []byte(`{"id":`))
		_, ok := c.DecodeObject()
		assert.False(t, ok)
	})
}

func TestNewCaptured_CopiesInput(t *testing.T) {
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	body := []byte(`{"id":1}`)

	c := NewCaptured(http.StatusOK, header, body)

	header.Set("Content-Type", "text/plain")
	body[0] = 'X'

	assert.Equal(t, "application/json", c.ContentType())
	assert.Equal(t, byte('{'), c.Body[0])
}
