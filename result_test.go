package paramcheck

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_Valid(t *testing.T) {
	name := stringParam("name", true)
	s := newTestSchema().Add(name)

	res := runSchema(t, s, map[string]any{"name": "x"})
	if !res.Valid() {
		t.Errorf("Valid() = false; want true")
	}
	if len(res.Issues()) != 0 {
		t.Errorf("Issues() = %v; want none", res.Issues())
	}

	res = runSchema(t, s, map[string]any{})
	if res.Valid() {
		t.Errorf("Valid() = true; want false")
	}
	assert.Equal(t, 1, res.Nodes(name).Len()+len(res.Issues()))
}

func TestResult_MarshalJSON(t *testing.T) {
	list := Required("list").Many().Validation(doubleOdd)
	res := runSchema(t, newTestSchema().Add(list), map[string]any{"list": []any{1, 2}})

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, res.RunID(), got["runId"])
	assert.Equal(t, false, got["valid"])
	assert.Equal(t, []any{2.0, nil}, got["values"].(map[string]any)["list"])

	issues := got["issues"].([]any)
	require.Len(t, issues, 1)
	assert.Equal(t, "list.1", issues[0].(map[string]any)["path"])
}

func TestResult_MarshalJSON_NoIssues(t *testing.T) {
	res := runSchema(t, newTestSchema(), nil)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"issues":[]`)
	assert.Contains(t, string(data), `"valid":true`)
}
