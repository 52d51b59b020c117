// Package modules provides a registry of named module implementations.
//
// Components with multiple interchangeable implementations, such as the leader
// rotation policies, register a constructor under a name. Callers, typically the
// command line interface, can then construct an implementation by name.
package modules

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

var (
	registryMut sync.Mutex
	byInterface = make(map[reflect.Type]map[string]any)
)

// Register registers a constructor for a module implementation with the specified name.
// For example:
//
//	modules.Register("round-robin", func() leaderrotation.Builder { return leaderrotation.NewRoundRobin })
func Register[T any](name string, constructor func() T) {
	var t T
	moduleType := reflect.TypeOf(&t).Elem()

	registryMut.Lock()
	defer registryMut.Unlock()

	registry, ok := byInterface[moduleType]
	if !ok {
		registry = make(map[string]any)
		byInterface[moduleType] = registry
	}
	if _, ok := registry[name]; ok {
		panic(fmt.Sprintf("a %s module with name %s already exists", moduleType.Name(), name))
	}
	registry[name] = constructor
}

// Get constructs a new instance of the module with the specified name.
// Get returns false if no module of type T was registered under the name.
// For example:
//
//	builder, ok := modules.Get[leaderrotation.Builder]("round-robin")
func Get[T any](name string) (out T, ok bool) {
	targetType := reflect.TypeOf(&out).Elem()

	registryMut.Lock()
	defer registryMut.Unlock()

	registry, ok := byInterface[targetType]
	if !ok {
		return out, false
	}
	ctor, ok := registry[name]
	if !ok {
		return out, false
	}
	return ctor.(func() T)(), true
}

// List returns the registered module names for each module interface.
func List() map[string][]string {
	registryMut.Lock()
	defer registryMut.Unlock()

	modules := make(map[string][]string)
	for t, registry := range byInterface {
		names := make([]string, 0, len(registry))
		for name := range registry {
			names = append(names, name)
		}
		sort.Strings(names)
		modules[fmt.Sprintf("(%s).%s", t.PkgPath(), t.Name())] = names
	}
	return modules
}
