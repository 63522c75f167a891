package paramcheck

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gofhir/paramcheck/check"
)

func TestRequiredIf_RunsPerOccurrence(t *testing.T) {
	calls := 0
	age := Required("age").NoValidation()
	parentName := Optional("parentName", nil).NoValidation().RequiredIf(func(map[string]any, *ExecutionNode, *RequiredIfContext) bool {
		calls++
		return false
	})
	user := Required("user").Many().Object(age, parentName)

	res := runSchema(t, newTestSchema().Add(user), map[string]any{
		"user": []any{
			map[string]any{"age": 10},
			map[string]any{"age": 20},
		},
	})

	assert.True(t, res.Valid())
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, res.Nodes(parentName).Len())
	assert.Equal(t, 2, res.Nodes(age).Len())
}

func TestRequiredIf_NavigatesSiblings(t *testing.T) {
	age := Required("age").NoValidation()
	parentName := Optional("parentName", nil).NoValidation()
	parentName.RequiredIf(func(_ map[string]any, node *ExecutionNode, ric *RequiredIfContext) bool {
		ageNode := node.Siblings(age).First()
		require.NotNil(t, ageNode)
		n, err := check.Integer(ageNode.Value())
		require.NoError(t, err)
		ric.DependsOn(ageNode).Reason("minors need a parent")
		return n < 14
	})
	user := Required("user").Object(age, parentName)

	res := runSchema(t, newTestSchema().Add(user), map[string]any{"user": map[string]any{"age": 10}})

	requireIssues(t, res, "user.parentName")
	issue := res.Issues()[0]
	assert.Equal(t, check.CodeRequiredIf, issue.Reason)
	assert.Equal(t, "parentName", issue.Name)
	assert.Equal(t, map[string]any{
		"dependsOn": []string{"user.age"},
		"reasons":   []string{"minors need a parent"},
	}, issue.Context)
}

func TestRequiredIf_SkipsPresentParameters(t *testing.T) {
	called := false
	email := stringParam("email", false).RequiredIf(func(map[string]any, *ExecutionNode, *RequiredIfContext) bool {
		called = true
		return true
	})

	res := runSchema(t, newTestSchema().Add(email), map[string]any{"email": "a@b.c"})
	assert.True(t, res.Valid())
	assert.False(t, called)
}

func TestRequiredIf_OrderAndValues(t *testing.T) {
	var order []string
	notify := Optional("notify", false).Validation(func(v any) (any, error) { return check.Bool(v) })
	email := stringParam("email", false).RequiredIf(func(values map[string]any, _ *ExecutionNode, _ *RequiredIfContext) bool {
		order = append(order, "email")
		return values["notify"] == true
	})
	phone := stringParam("phone", false).RequiredIf(func(values map[string]any, _ *ExecutionNode, _ *RequiredIfContext) bool {
		order = append(order, "phone")
		return values["channel"] == "sms"
	})
	channel := stringParam("channel", false)

	// email is declared before notify: rules still see every value.
	s := newTestSchema().Add(email, phone, notify, channel)

	res := runSchema(t, s, map[string]any{"notify": true, "channel": "sms"})
	requireIssues(t, res, "email", "phone")
	assert.Equal(t, []string{"email", "phone"}, order)

	order = nil
	res = runSchema(t, s, map[string]any{"channel": "mail"})
	assert.True(t, res.Valid())
	assert.Equal(t, []string{"email", "phone"}, order)
}

func TestRequiredIfExpr(t *testing.T) {
	notify := Optional("notify", nil).Validation(func(v any) (any, error) { return check.Bool(v) })
	email := stringParam("email", false).RequiredIfExpr("notify = true")
	s := newTestSchema().Add(notify, email)

	res := runSchema(t, s, map[string]any{"notify": true})
	requireIssues(t, res, "email")
	assert.Equal(t, check.CodeRequiredIf, res.Issues()[0].Reason)
	assert.Equal(t, []string{`condition "notify = true" holds`}, res.Issues()[0].Context["reasons"])

	res = runSchema(t, s, map[string]any{"notify": false})
	assert.True(t, res.Valid())

	res = runSchema(t, s, map[string]any{"notify": true, "email": "x@y.z"})
	assert.True(t, res.Valid())
}

func TestRequiredIfExpr_InvalidCondition(t *testing.T) {
	email := stringParam("email", false).RequiredIfExpr("notify = = (")
	_, err := newTestSchema().Add(email).Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidCondition)
}

func TestNode_AbsentWithRules(t *testing.T) {
	opt := Optional("opt", nil).NoValidation().RequiredIf(func(map[string]any, *ExecutionNode, *RequiredIfContext) bool {
		return false
	})
	plain := Optional("plain", nil).NoValidation()

	res := runSchema(t, newTestSchema().Add(opt, plain), nil)

	n := res.Nodes(opt).First()
	require.NotNil(t, n)
	assert.Equal(t, CollectAbsent, n.Mode())
	assert.Equal(t, Missing, n.Value())
	assert.True(t, IsMissing(n.Value()))
	assert.Equal(t, 0, res.Nodes(plain).Len())
}

func TestNode_Tree(t *testing.T) {
	age := Required("age").Validation(func(v any) (any, error) { return check.Integer(v) })
	name := stringParam("name", true)
	user := Required("user").Many().Object(name, age)
	flag := Optional("flag", nil).NoValidation()

	res := runSchema(t, newTestSchema().Add(user, flag), map[string]any{
		"user": []any{
			map[string]any{"name": "a", "age": 10},
			map[string]any{"name": "b", "age": 20},
		},
		"flag": true,
	})

	root := res.Nodes(user).First()
	require.NotNil(t, root)
	assert.True(t, root.IsRoot())
	assert.Nil(t, root.Parent())
	assert.Equal(t, CollectArray, root.Mode())
	assert.Equal(t, "user", root.Path())
	assert.Equal(t, []any{
		map[string]any{"name": "a", "age": int64(10)},
		map[string]any{"name": "b", "age": int64(20)},
	}, root.Value())

	items := root.Children()
	require.Equal(t, 2, items.Len())
	assert.Equal(t, "user.1", items.Eq(1).Path())
	assert.Equal(t, "1", items.Eq(1).Name())
	assert.Same(t, root, items.First().Parent())

	ages := res.Nodes(age)
	assert.Equal(t, []any{int64(10), int64(20)}, ages.Values())
	assert.Equal(t, "user.0.age", ages.First().Path())
	assert.Equal(t, 10, ages.First().Raw())
	assert.True(t, ages.First().Is(age))

	leaves := items.Children()
	assert.Equal(t, 4, leaves.Len())
	assert.True(t, leaves.Includes(ages.Last()))
	assert.Equal(t, 0, ages.First().Children().Len())

	assert.Equal(t, 2, res.Global.Scope().Nodes().Len())
	assert.Same(t, res.Nodes(flag).First(), root.Siblings().First())
}

func TestNode_SiblingSymmetry(t *testing.T) {
	a := Optional("a", nil).NoValidation()
	b := Optional("b", nil).NoValidation()
	c := Optional("c", nil).Object(Optional("x", nil).NoValidation(), Optional("y", nil).NoValidation())

	res := runSchema(t, newTestSchema().Add(a, b, c), map[string]any{
		"a": 1, "b": 2, "c": map[string]any{"x": 1, "y": 2},
	})

	groups := []NodeList{
		res.Global.Scope().Nodes(),
		res.Nodes(c).First().Children(),
	}
	for _, group := range groups {
		for _, n := range group.All() {
			assert.False(t, n.Siblings().Includes(n), n.Path())
			for _, m := range group.All() {
				if n == m {
					continue
				}
				assert.Equal(t, n.Siblings().Includes(m), m.Siblings().Includes(n))
				assert.True(t, n.Siblings().Includes(m))
			}
		}
	}

	assert.Equal(t, 1, res.Nodes(a).First().Siblings(b).Len())
}

func TestNodeList(t *testing.T) {
	nodes := []*ExecutionNode{{name: "a"}, {name: "b"}, {name: "c"}}
	l := newNodeList(nodes)
	nodes[0] = nil

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, "a", l.First().Name())
	assert.Equal(t, "c", l.Last().Name())
	assert.Equal(t, "b", l.Eq(-2).Name())
	assert.Nil(t, l.Eq(3))
	assert.Nil(t, l.Eq(-4))

	filtered := l.Filter(func(n *ExecutionNode) bool { return n.Name() != "b" })
	assert.Equal(t, 2, filtered.Len())
	assert.Equal(t, 3, l.Len())

	var names []string
	for i, n := range l.All() {
		if i == 2 {
			break
		}
		names = append(names, n.Name())
	}
	assert.Equal(t, []string{"a", "b"}, names)

	copied := l.Nodes()
	copied[0] = nil
	assert.NotNil(t, l.First())

	var empty NodeList
	assert.Nil(t, empty.First())
	data, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestNode_MarshalJSON(t *testing.T) {
	list := Required("list").Many().Validation(doubleOdd)
	res := runSchema(t, newTestSchema().Add(list), map[string]any{"list": []any{1, 2}})

	nodes := res.Nodes(list)
	require.Equal(t, 3, nodes.Len())

	data, err := json.Marshal(nodes.First())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"path": "list",
		"name": "list",
		"mode": "array",
		"value": [2, null],
		"children": ["list.0", "list.1"]
	}`, string(data))

	data, err = json.Marshal(nodes.Last())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"path": "list.1",
		"name": "1",
		"mode": "leaf",
		"parent": "list",
		"value": null,
		"raw": 2
	}`, string(data))
}

func TestNode_UnknownModePanics(t *testing.T) {
	n := &ExecutionNode{name: "x"}
	assert.PanicsWithError(t, errInvalidCollectState().Error(), func() { n.Value() })
}

func TestResolveContext(t *testing.T) {
	g := NewGlobalContext(context.Background())
	rc := NewResolveContext(g, "user")

	_, err := rc.Node()
	assert.ErrorIs(t, err, ErrMissingNode)

	item := rc.Item(3)
	assert.Equal(t, "user.3", item.Path())
	assert.Equal(t, "3", item.Name())
	assert.True(t, item.ForceOne())

	child := item.Child("age")
	assert.Equal(t, "user.3.age", child.Path())
	assert.Equal(t, "age", child.Name())
	assert.False(t, child.ForceOne())
	assert.Equal(t, []string{"user", "3", "age"}, child.Segments())
	assert.Same(t, g, child.Global())
	assert.Equal(t, []string{"user"}, rc.Segments())
}
