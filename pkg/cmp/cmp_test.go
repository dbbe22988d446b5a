package cmp_test

import (
	"strings"
	"testing"

	"github.com/opst/dmcatalog/pkg/cmp"
)

func TestSliceEq(t *testing.T) {
	for name, testcase := range map[string]struct {
		a, b []string
		want bool
	}{
		"both empty":     {a: []string{}, b: nil, want: true},
		"same":           {a: []string{"a", "b"}, b: []string{"a", "b"}, want: true},
		"other order":    {a: []string{"a", "b"}, b: []string{"b", "a"}, want: false},
		"other length":   {a: []string{"a"}, b: []string{"a", "a"}, want: false},
		"other elements": {a: []string{"a"}, b: []string{"b"}, want: false},
	} {
		t.Run(name, func(t *testing.T) {
			if got := cmp.SliceEq(testcase.a, testcase.b); got != testcase.want {
				t.Errorf("SliceEq(%v, %v) = %v", testcase.a, testcase.b, got)
			}
		})
	}
}

func TestSliceContentEq(t *testing.T) {
	for name, testcase := range map[string]struct {
		a, b []string
		want bool
	}{
		"both empty":        {a: nil, b: []string{}, want: true},
		"other order":       {a: []string{"a", "b", "c"}, b: []string{"c", "b", "a"}, want: true},
		"more elements":     {a: []string{"a", "b", "c"}, b: []string{"c", "b", "a", "z"}, want: false},
		"other elements":    {a: []string{"a", "b", "c"}, b: []string{"c", "b", "z"}, want: false},
		"multiplicity":      {a: []string{"a", "b", "c", "c"}, b: []string{"a", "b", "b", "c"}, want: false},
		"same multiplicity": {a: []string{"c", "a", "c"}, b: []string{"c", "c", "a"}, want: true},
	} {
		t.Run(name, func(t *testing.T) {
			if got := cmp.SliceContentEq(testcase.a, testcase.b); got != testcase.want {
				t.Errorf("SliceContentEq(%v, %v) = %v", testcase.a, testcase.b, got)
			}
		})
	}

	t.Run("with equivalence", func(t *testing.T) {
		if !cmp.SliceContentEqWith(
			[]string{"A", "b"}, []string{"B", "a"}, strings.EqualFold,
		) {
			t.Error("expected to be equivalent")
		}
		if cmp.SliceContentEqWith(
			[]string{"A", "a"}, []string{"a", "b"}, strings.EqualFold,
		) {
			t.Error("expected not to be equivalent")
		}
	})
}

func TestMapEq(t *testing.T) {
	for name, testcase := range map[string]struct {
		a, b map[string]int
		want bool
	}{
		"both empty":   {a: nil, b: map[string]int{}, want: true},
		"same":         {a: map[string]int{"a": 1, "b": 2}, b: map[string]int{"b": 2, "a": 1}, want: true},
		"other value":  {a: map[string]int{"a": 1}, b: map[string]int{"a": 2}, want: false},
		"other key":    {a: map[string]int{"a": 1}, b: map[string]int{"b": 1}, want: false},
		"more entries": {a: map[string]int{"a": 1}, b: map[string]int{"a": 1, "b": 1}, want: false},
	} {
		t.Run(name, func(t *testing.T) {
			if got := cmp.MapEq(testcase.a, testcase.b); got != testcase.want {
				t.Errorf("MapEq(%v, %v) = %v", testcase.a, testcase.b, got)
			}
		})
	}
}
