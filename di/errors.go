package di

import (
	"reflect"

	"github.com/wulawulu/tdd-di/errors"
)

// MissingDependency reports the component and the unbound dependency carried
// by a DEPENDENCY_NOT_FOUND error.
func MissingDependency(err error) (component, dependency Key, ok bool) {
	appErr, found := errors.AsAppError(err)
	if !found || appErr.Code != errors.ErrCodeDependencyNotFound {
		return Key{}, Key{}, false
	}
	dependency, ok = appErr.Details["dependency"].(Key)
	switch c := appErr.Details["component"].(type) {
	case Key:
		component = c
	case reflect.Type:
		component = Key{Type: c}
	}
	return component, dependency, ok
}

// CyclePath returns the path carried by a CYCLIC_DEPENDENCIES error. It ends
// with the component it starts with.
func CyclePath(err error) ([]Key, bool) {
	appErr, found := errors.AsAppError(err)
	if !found || appErr.Code != errors.ErrCodeCyclicDependencies {
		return nil, false
	}
	path, ok := appErr.Details["path"].([]Key)
	return path, ok
}

// CycleComponents returns each component on the cycle once, in path order.
func CycleComponents(err error) []Key {
	path, ok := CyclePath(err)
	if !ok {
		return nil
	}
	seen := make(map[Key]bool, len(path))
	var keys []Key
	for _, k := range path {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}
