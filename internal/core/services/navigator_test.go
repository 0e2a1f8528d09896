package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ewsctl/internal/core/domain"
)

func TestNavigate(t *testing.T) {
	tree := map[string]any{
		"a": map[string]any{
			"b": []any{
				map[string]any{"c": "first"},
				map[string]any{"c": "second"},
			},
			"single": map[string]any{"c": "only"},
			"one":    []any{map[string]any{"c": "lonely"}},
			"empty":  "",
			"none":   map[string]any{},
			"leaf":   "text",
		},
	}

	tests := []struct {
		name    string
		path    domain.Path
		want    any
		wantErr error
	}{
		{name: "key then index then key", path: domain.Path{"a", "b", 1, "c"}, want: "second"},
		{name: "index zero on single node", path: domain.Path{"a", "single", 0, "c"}, want: "only"},
		{name: "key through one element sequence", path: domain.Path{"a", "one", "c"}, want: "lonely"},
		{name: "subtree", path: domain.Path{"a", "single"}, want: map[string]any{"c": "only"}},
		{name: "missing key", path: domain.Path{"a", "x"}, wantErr: domain.ErrAbsent},
		{name: "index out of range", path: domain.Path{"a", "b", 2}, wantErr: domain.ErrAbsent},
		{name: "negative index", path: domain.Path{"a", "b", -1}, wantErr: domain.ErrAbsent},
		{name: "index one on single node", path: domain.Path{"a", "single", 1}, wantErr: domain.ErrAbsent},
		{name: "empty string at end", path: domain.Path{"a", "empty"}, wantErr: domain.ErrAbsent},
		{name: "empty map at end", path: domain.Path{"a", "none"}, wantErr: domain.ErrAbsent},
		{name: "walk past empty node", path: domain.Path{"a", "empty", "x"}, wantErr: domain.ErrAbsent},
		{name: "empty path", path: domain.Path{}, wantErr: domain.ErrLookup},
		{name: "key on sequence", path: domain.Path{"a", "b", "c"}, wantErr: domain.ErrNodeType},
		{name: "key on leaf", path: domain.Path{"a", "leaf", "x"}, wantErr: domain.ErrNodeType},
		{name: "index on leaf", path: domain.Path{"a", "leaf", 0}, wantErr: domain.ErrNodeType},
		{name: "unsupported segment", path: domain.Path{"a", 1.5}, wantErr: domain.ErrNodeType},
	}

	nav := NewNavigator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := nav.Navigate(tt.path, tree)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNavigate_AbsenceIsLookupFailure(t *testing.T) {
	nav := NewNavigator(nil)

	_, err := nav.Navigate(domain.Path{"missing"}, map[string]any{"x": "1"})

	assert.ErrorIs(t, err, domain.ErrLookup)
	assert.True(t, IsAbsent(err))
}

func TestNavigate_NodeTypeIsNotLookupFailure(t *testing.T) {
	nav := NewNavigator(nil)

	_, err := nav.Navigate(domain.Path{"x", 0}, map[string]any{"x": "leaf"})

	assert.ErrorIs(t, err, domain.ErrNodeType)
	assert.False(t, IsAbsent(err))
}

func TestNavigate_NilTree(t *testing.T) {
	nav := NewNavigator(nil)

	_, err := nav.Navigate(domain.Path{"Envelope"}, nil)

	assert.ErrorIs(t, err, domain.ErrAbsent)
}

func TestNavigate_DoesNotPanic(t *testing.T) {
	nav := NewNavigator(nil)
	trees := []domain.Tree{nil, "", "x", 42, []any{}, []any{nil}, map[string]any{"a": nil}}
	paths := []domain.Path{{"a"}, {0}, {"a", 0, "b"}, {3}, {struct{}{}}}

	for _, tree := range trees {
		for _, path := range paths {
			assert.NotPanics(t, func() {
				_, _ = nav.Navigate(path, tree)
			})
		}
	}
}

func TestNavigateString(t *testing.T) {
	nav := NewNavigator(nil)
	tree := map[string]any{"id": map[string]any{"-Id": "AAMk"}, "node": map[string]any{"x": "y"}}

	s, err := nav.NavigateString(domain.Path{"id", "-Id"}, tree)
	require.NoError(t, err)
	assert.Equal(t, "AAMk", s)

	_, err = nav.NavigateString(domain.Path{"node"}, tree)
	assert.ErrorIs(t, err, domain.ErrNodeType)
}

func TestNavigateInt(t *testing.T) {
	tests := []struct {
		name    string
		leaf    any
		want    int
		wantErr error
	}{
		{name: "decimal string", leaf: "2500", want: 2500},
		{name: "padded string", leaf: " 7 ", want: 7},
		{name: "int", leaf: 3, want: 3},
		{name: "float", leaf: float64(12), want: 12},
		{name: "not a number", leaf: "many", wantErr: domain.ErrNodeType},
		{name: "map", leaf: map[string]any{"x": "1"}, wantErr: domain.ErrNodeType},
	}

	nav := NewNavigator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := nav.NavigateInt(domain.Path{"n"}, map[string]any{"n": tt.leaf})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAsList(t *testing.T) {
	single := map[string]any{"a": "1"}

	assert.Nil(t, AsList(nil))
	assert.Nil(t, AsList(""))
	assert.Nil(t, AsList([]any{}))
	assert.Equal(t, []domain.Tree{single}, AsList(single))
	assert.Len(t, AsList([]any{"a", "b"}), 2)
}
