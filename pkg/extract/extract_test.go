package extract

import (
	"encoding/json"
	"testing"

	"github.com/chris/imagegen-credits/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestResultRef(t *testing.T) {
	t.Run("Result List", func(t *testing.T) {
		cb := &models.GenerationCallback{Result: json.RawMessage(`["https://cdn.example.com/a.png","https://cdn.example.com/b.png"]`)}

		ref, err := ResultRef(cb)

		assert.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/a.png", ref)
	})

	t.Run("Result String", func(t *testing.T) {
		cb := &models.GenerationCallback{Result: json.RawMessage(`"https://cdn.example.com/a.png"`)}

		ref, err := ResultRef(cb)

		assert.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/a.png", ref)
	})

	t.Run("Full Response Fallback", func(t *testing.T) {
		cb := &models.GenerationCallback{
			FullResponse: json.RawMessage(`[{"url":"https://cdn.example.com/full.png","b64_json":null}]`),
		}

		ref, err := ResultRef(cb)

		assert.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/full.png", ref)
	})

	t.Run("Result List Wins Over Full Response", func(t *testing.T) {
		cb := &models.GenerationCallback{
			Result:       json.RawMessage(`["https://cdn.example.com/primary.png"]`),
			FullResponse: json.RawMessage(`[{"url":"https://cdn.example.com/secondary.png"}]`),
		}

		ref, err := ResultRef(cb)

		assert.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/primary.png", ref)
	})

	t.Run("Empty List Falls Through", func(t *testing.T) {
		cb := &models.GenerationCallback{
			Result:       json.RawMessage(`[]`),
			FullResponse: json.RawMessage(`[{"url":"https://cdn.example.com/full.png"}]`),
		}

		ref, err := ResultRef(cb)

		assert.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/full.png", ref)
	})

	t.Run("Nothing Usable", func(t *testing.T) {
		cb := &models.GenerationCallback{
			Result:       json.RawMessage(`[]`),
			FullResponse: json.RawMessage(`[{"b64_json":"abc"}]`),
		}

		_, err := ResultRef(cb)

		assert.ErrorIs(t, err, ErrNoResultRef)
	})

	t.Run("Empty Callback", func(t *testing.T) {
		_, err := ResultRef(&models.GenerationCallback{})

		assert.ErrorIs(t, err, ErrNoResultRef)
	})
}
