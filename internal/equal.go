package internal

import "reflect"

// IsEqual compares two values with ==.
// Values whose dynamic type has no equality are never equal, so a write always notifies.
func IsEqual(a, b any) (equal bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}

	// comparable structs can still hold incomparable interface fields
	defer func() {
		if recover() != nil {
			equal = false
		}
	}()

	return a == b
}
