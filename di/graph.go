package di

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/wulawulu/tdd-di/errors"
)

// validate walks the dependency graph depth-first from every key in sorted
// order. Each edge must point at a bound key. A non-deferred edge back onto
// the current path is a cycle; deferred edges are checked for existence only.
func validate(bindings map[Key]Binding) error {
	v := &graphWalker{
		bindings: bindings,
		onPath:   make(map[Key]bool),
		done:     make(map[Key]bool, len(bindings)),
	}
	for _, k := range sortedKeys(bindings) {
		if err := v.visit(k); err != nil {
			return err
		}
	}
	return nil
}

type graphWalker struct {
	bindings map[Key]Binding
	path     []Key
	onPath   map[Key]bool
	done     map[Key]bool
}

func (w *graphWalker) visit(k Key) error {
	if w.done[k] {
		return nil
	}
	w.path = append(w.path, k)
	w.onPath[k] = true

	for _, dep := range w.bindings[k].Dependencies() {
		if _, ok := w.bindings[dep.Key]; !ok {
			return errors.DependencyNotFound(k, dep.Key)
		}
		if dep.Deferred() {
			continue
		}
		if w.onPath[dep.Key] {
			return errors.CyclicDependencies(w.cycleTo(dep.Key))
		}
		if err := w.visit(dep.Key); err != nil {
			return err
		}
	}

	w.path = w.path[:len(w.path)-1]
	delete(w.onPath, k)
	w.done[k] = true
	return nil
}

// cycleTo returns the part of the current path starting at k, closed by k.
func (w *graphWalker) cycleTo(k Key) []Key {
	start := slices.Index(w.path, k)
	cycle := slices.Clone(w.path[start:])
	return append(cycle, k)
}

func sortedKeys(bindings map[Key]Binding) []Key {
	keys := make([]Key, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

// compareKeys orders by the printed key, then by the fully qualified type for
// keys that print alike, such as template.Template from text/ and html/.
func compareKeys(a, b Key) int {
	return cmp.Or(
		strings.Compare(a.String(), b.String()),
		strings.Compare(typeID(a.Type), typeID(b.Type)),
		strings.Compare(a.Qualifier.kind, b.Qualifier.kind),
		strings.Compare(a.Qualifier.value, b.Qualifier.value),
	)
}

// typeID spells t with full package paths.
func typeID(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if t.Name() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + typeID(t.Elem())
	case reflect.Slice:
		return "[]" + typeID(t.Elem())
	case reflect.Array:
		return fmt.Sprintf("[%d]%s", t.Len(), typeID(t.Elem()))
	case reflect.Map:
		return "map[" + typeID(t.Key()) + "]" + typeID(t.Elem())
	case reflect.Chan:
		return t.ChanDir().String() + " " + typeID(t.Elem())
	}
	return t.String()
}
