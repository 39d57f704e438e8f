package scope_test

import (
	"testing"

	"github.com/cxxtok/cxxtok/internal/scope"
	"github.com/stretchr/testify/assert"
)

func TestPathIsRootToLeaf(t *testing.T) {
	global := scope.New(nil, "", scope.Global, 0, -1)
	ns := scope.New(global, "A", scope.Namespace, 1, 10)
	rec := scope.New(ns, "A::Foo", scope.Record, 2, 8)

	path := rec.Path()
	if assert.Len(t, path, 3) {
		assert.Equal(t, global, path[0])
		assert.Equal(t, ns, path[1])
		assert.Equal(t, rec, path[2])
	}
}

func TestIsInside(t *testing.T) {
	global := scope.New(nil, "", scope.Global, 0, -1)
	ns := scope.New(global, "A", scope.Namespace, 1, 10)
	rec := scope.New(ns, "A::Foo", scope.Record, 2, 8)
	other := scope.New(global, "B", scope.Namespace, 20, 30)

	assert.True(t, rec.IsInside(ns))
	assert.True(t, rec.IsInside(global))
	assert.True(t, rec.IsInside(rec))
	assert.False(t, rec.IsInside(other))
}

func TestInheritsFromDirectAndTransitive(t *testing.T) {
	base := scope.New(nil, "Base", scope.Record, 0, 10)
	mid := scope.New(nil, "Mid", scope.Record, 0, 10)
	mid.BaseTypes["Base"] = true
	derived := scope.New(nil, "Derived", scope.Record, 0, 10)
	derived.BaseTypes["Mid"] = true

	registry := map[string]*scope.Info{"Base": base, "Mid": mid, "Derived": derived}
	resolve := func(name string) *scope.Info { return registry[name] }

	assert.True(t, derived.InheritsFrom("Mid", resolve))
	assert.True(t, derived.InheritsFrom("Base", resolve))
	assert.False(t, derived.InheritsFrom("Other", resolve))
}

func TestInheritsFromIgnoresNonRecordScopes(t *testing.T) {
	ns := scope.New(nil, "A", scope.Namespace, 0, 10)
	assert.False(t, ns.InheritsFrom("Anything", nil))
}
