package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToQuery_DefaultTopK(t *testing.T) {
	var p RequestPayload
	require.NoError(t, json.Unmarshal([]byte(`{"question":"What is the notice period for eviction?"}`), &p))

	q := p.ToQuery(6)
	assert.Equal(t, "What is the notice period for eviction?", q.Question)
	assert.Equal(t, 6, q.TopK)
}

func TestToQuery_ExplicitTopK(t *testing.T) {
	var p RequestPayload
	require.NoError(t, json.Unmarshal([]byte(`{"question":"q","top_k":0}`), &p))

	assert.Equal(t, 0, p.ToQuery(6).TopK)
}

func TestRequestPayload_RejectsNonIntegerTopK(t *testing.T) {
	var p RequestPayload
	assert.Error(t, json.Unmarshal([]byte(`{"question":"q","top_k":2.5}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"question":"q","top_k":"three"}`), &p))
}
