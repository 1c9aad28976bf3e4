package core

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// registry holds the modules compiled into the binary.
type registry struct {
	mu    sync.RWMutex
	infos map[ModuleID]ModuleInfo
}

func (r *registry) add(info ModuleInfo) error {
	if info.ID == "" {
		return errors.New("module ID must not be empty")
	}
	if info.New == nil {
		return fmt.Errorf("module %s: New function must not be nil", info.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.infos[info.ID]; exists {
		return fmt.Errorf("module already registered: %s", info.ID)
	}
	r.infos[info.ID] = info
	return nil
}

func (r *registry) get(id ModuleID) (ModuleInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.infos[id]
	return info, ok
}

func (r *registry) sorted() []ModuleInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.SortedFunc(maps.Values(r.infos), func(a, b ModuleInfo) int {
		return cmp.Compare(a.ID, b.ID)
	})
}

var modules = &registry{infos: make(map[ModuleID]ModuleInfo)}

// RegisterModule adds instance's module to the registry. It panics on an
// invalid or duplicate ID and is meant to be called from init().
func RegisterModule(instance Module) {
	if err := modules.add(instance.ModuleInfo()); err != nil {
		panic(err.Error())
	}
}

// GetModule returns the ModuleInfo registered under id.
func GetModule(id string) (ModuleInfo, bool) {
	return modules.get(ModuleID(id))
}

// GetModules returns all registered modules sorted by ID.
func GetModules() []ModuleInfo {
	return modules.sorted()
}

func resetRegistry() {
	modules.mu.Lock()
	defer modules.mu.Unlock()
	modules.infos = make(map[ModuleID]ModuleInfo)
}
