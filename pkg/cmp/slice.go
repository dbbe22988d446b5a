package cmp

// BiPredicator tells whether a and b are equivalent.
type BiPredicator[V any, U any] func(a V, b U) bool

// a == b as BiPredicator function
func EqEq[T comparable](a, b T) bool {
	return a == b
}

// SliceEq checks a and b have same elements in same order.
func SliceEq[T comparable](a []T, b []T) bool {
	return SliceEqWith(a, b, EqEq[T])
}

func SliceEqWith[T any, U any](a []T, b []U, pred BiPredicator[T, U]) bool {
	if len(a) != len(b) {
		return false
	}
	for nth := range a {
		if !pred(a[nth], b[nth]) {
			return false
		}
	}
	return true
}

// check 2 slices has same content but its ordering.
//
// In other words, this function answers equality of two bags (or multi-sets).
//
// example:
//
//	SliceContentEq([]string{"a", "b", "c"}, []string{"c", "b", "a"})       // ==> true
//	SliceContentEq([]string{"a", "b", "c", "c"}, []string{"a", "b", "c"})  // ==> false
func SliceContentEq[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	count := make(map[T]int, len(a))
	for _, v := range a {
		count[v] += 1
	}
	for _, v := range b {
		if count[v] == 0 {
			return false
		}
		count[v] -= 1
	}
	return true
}

// SliceContentEqWith is SliceContentEq for elements which are equivalent in context of equiv.
func SliceContentEqWith[S, T any](a []S, b []T, equiv BiPredicator[S, T]) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))

NEXT_A:
	for _, va := range a {
		for i, vb := range b {
			if used[i] || !equiv(va, vb) {
				continue
			}
			used[i] = true
			continue NEXT_A
		}
		return false
	}
	return true
}
