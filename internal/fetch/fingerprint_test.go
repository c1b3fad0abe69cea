package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GamblerIX/duanju/internal/provider"
)

func TestFingerprint(t *testing.T) {
	t.Run("parameter order does not matter", func(t *testing.T) {
		a := Fingerprint("p", provider.OpSearch, map[string]string{"keyword": "总裁", "page": "1"})
		b := Fingerprint("p", provider.OpSearch, map[string]string{"page": "1", "keyword": "总裁"})
		assert.Equal(t, a, b)
	})

	t.Run("provider scoping", func(t *testing.T) {
		params := map[string]string{"keyword": "总裁", "page": "1"}
		a := Fingerprint("cenguigui", provider.OpSearch, params)
		b := Fingerprint("uuuka", provider.OpSearch, params)
		assert.NotEqual(t, a, b)
	})

	t.Run("operation scoping", func(t *testing.T) {
		a := Fingerprint("p", provider.OpCategories, nil)
		b := Fingerprint("p", provider.OpRecommendations, nil)
		assert.NotEqual(t, a, b)
	})

	t.Run("distinct params produce distinct fingerprints", func(t *testing.T) {
		a := Fingerprint("p", provider.OpSearch, map[string]string{"keyword": "总裁", "page": "1"})
		b := Fingerprint("p", provider.OpSearch, map[string]string{"keyword": "总裁", "page": "2"})
		assert.NotEqual(t, a, b)
	})
}
