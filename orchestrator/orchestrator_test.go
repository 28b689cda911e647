package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSensitive_DetectsProtectedAttributeTerms(t *testing.T) {
	assert.True(t, isSensitive("What is the ethnicity of Akinkuolie, Sarah?"))
	assert.True(t, isSensitive("Can you guess their RACE?"))
	assert.True(t, isSensitive("What is their religion?"))
	assert.False(t, isSensitive("What is the salary of Akinkuolie, Sarah?"))
}

func TestOptions_WithDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, 2000, o.CorpusLimit)
	assert.Equal(t, 10, o.RetrieveTopK)
	assert.Equal(t, 60, o.RRFK)
	assert.Greater(t, o.CacheTTL, 0)
}

func TestOptions_WithDefaults_PreservesExplicitValues(t *testing.T) {
	o := Options{CorpusLimit: 500, RetrieveTopK: 5, RRFK: 30, CacheTTL: 120}.withDefaults()
	assert.Equal(t, 500, o.CorpusLimit)
	assert.Equal(t, 5, o.RetrieveTopK)
	assert.Equal(t, 30, o.RRFK)
	assert.Equal(t, 120, o.CacheTTL)
}
