package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	e := NewEvaluator(8)

	tests := []struct {
		expr string
		data any
		want bool
	}{
		{"notify = true", map[string]any{"notify": true}, true},
		{"notify = true", map[string]any{"notify": false}, false},
		{"notify", map[string]any{}, false},
		{"age > 17", map[string]any{"age": 21}, true},
		{"name.exists()", map[string]any{"name": "x"}, true},
	}

	for _, tt := range tests {
		got, err := e.Eval(tt.expr, tt.data)
		require.NoError(t, err, tt.expr)
		assert.Equal(t, tt.want, got, "Eval(%q, %v)", tt.expr, tt.data)
	}
}

func TestEval_RawJSON(t *testing.T) {
	got, err := Default().Eval("flag = true", []byte(`{"flag": true}`))
	require.NoError(t, err)
	assert.True(t, got)
}

func TestCompile_Caches(t *testing.T) {
	e := NewEvaluator(0)

	_, err := e.Compile("a = 1")
	require.NoError(t, err)
	_, err = e.Compile("a = 1")
	require.NoError(t, err)

	s := e.Stats()
	assert.Equal(t, 1, s.Size)
	assert.Equal(t, DefaultCacheSize, s.Capacity)
	assert.Equal(t, uint64(1), s.Hits)
}

func TestCompile_Error(t *testing.T) {
	e := NewEvaluator(4)

	_, err := e.Eval("a = = (", map[string]any{})
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "a = = (", ce.Expression)
	assert.Equal(t, 0, e.Stats().Size)
}
