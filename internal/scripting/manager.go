package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cardclash/internal/game/dice"
)

// GlobalVM is the reserved key for shared scripts loaded via LoadGlobal.
// Hook calls fall back to this VM when no tactic VM is found.
const GlobalVM = "__global__"

// vm is one sandboxed LState. An LState is single-threaded, so every call
// holds mu for its duration.
type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed LState per tactic and exposes hook dispatch.
//
// Manager is safe for concurrent use. Calls into the same VM are serialized;
// different VMs run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	src    dice.Source
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: logger must be non-nil; src may be nil, in which case
// engine.dice returns zero values.
// Postcondition: Returns a non-nil Manager with no VMs loaded.
func NewManager(src dice.Source, logger *zap.Logger) *Manager {
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		src:    src,
		logger: logger,
	}
}

// LoadTactic creates a sandboxed VM for name, registers the engine.* modules,
// then executes every *.lua file in scriptDir in lexicographic order.
// Reloading a name replaces its VM.
//
// Precondition: name must be non-empty; scriptDir must be a readable directory.
// Postcondition: VM is registered; returns error on Lua load failure.
func (m *Manager) LoadTactic(name, scriptDir string, instLimit int) error {
	if name == "" {
		return fmt.Errorf("scripting: tactic name must not be empty")
	}
	return m.loadInto(name, scriptDir, instLimit)
}

// LoadGlobal creates the shared VM used as the fallback for every tactic.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(GlobalVM, scriptDir, instLimit)
}

// LoadAll loads root as a script tree: top-level *.lua files form the global
// VM and each subdirectory becomes a tactic named after it.
//
// Precondition: root must be a readable directory.
// Postcondition: Returns the names of the loaded tactics in sorted order.
func (m *Manager) LoadAll(root string, instLimit int) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading script root %q: %w", root, err)
	}
	var names []string
	hasGlobal := false
	for _, e := range entries {
		switch {
		case e.IsDir():
			if err := m.LoadTactic(e.Name(), filepath.Join(root, e.Name()), instLimit); err != nil {
				return nil, err
			}
			names = append(names, e.Name())
		case filepath.Ext(e.Name()) == ".lua":
			hasGlobal = true
		}
	}
	if hasGlobal {
		if err := m.LoadGlobal(root, instLimit); err != nil {
			return nil, err
		}
	}
	sort.Strings(names)
	m.logger.Info("scripts loaded",
		zap.String("root", root),
		zap.Strings("tactics", names),
		zap.Bool("global", hasGlobal),
	)
	return names, nil
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	L := NewSandboxedState(instLimit)
	m.RegisterModules(L, key)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		release := armBudget(L, instLimit)
		err := L.DoFile(path)
		release()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	old := m.vms[key]
	m.vms[key] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()

	if old != nil {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	return nil
}

// Tactics returns the names of the loaded tactic VMs, excluding the global VM.
func (m *Manager) Tactics() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.vms))
	for k := range m.vms {
		if k != GlobalVM {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Has reports whether a VM named vmID, or the global fallback, is loaded.
func (m *Manager) Has(vmID string) bool {
	return m.lookup(vmID) != nil
}

func (m *Manager) lookup(vmID string) *vm {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.vms[vmID]; ok {
		return v
	}
	return m.vms[GlobalVM]
}

// CallHook calls the named Lua global function in vmID's VM with args.
// See CallHookWith for fallback and error semantics.
//
// Precondition: args must be valid lua.LValue instances not bound to another VM's tables.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(vmID, hook string, args ...lua.LValue) (lua.LValue, error) {
	return m.CallHookWith(vmID, hook, func(*lua.LState) []lua.LValue { return args })
}

// CallHookWith calls the named Lua global function in vmID's VM. The build
// callback runs under the VM's lock and constructs the arguments, so tables
// it creates belong to the called VM. If vmID has no VM the global VM is
// tried. Returns (LNil, nil) if the hook is not defined or no VM exists.
// Lua runtime errors, including an exhausted instruction budget, are logged
// at Warn level and never propagated.
//
// Precondition: build must be non-nil.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHookWith(vmID, hook string, build func(L *lua.LState) []lua.LValue) (lua.LValue, error) {
	v := m.lookup(vmID)
	if v == nil {
		m.logger.Info("scripting: no VM for tactic",
			zap.String("tactic", vmID),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	L := v.L
	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	args := build(L)
	release := armBudget(L, v.limit)
	err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...)
	release()
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("tactic", vmID),
			zap.String("hook", hook),
			zap.Error(err),
		)
		L.SetTop(0)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// Close releases every VM.
//
// Postcondition: The manager holds no VMs; later calls return LNil.
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.mu.Unlock()
	for _, v := range vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
	}
}

// TableString returns the string field key of tbl, or "" when tbl is not a
// table or the field is not a string.
func TableString(v lua.LValue, key string) string {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return ""
	}
	s, ok := tbl.RawGetString(key).(lua.LString)
	if !ok {
		return ""
	}
	return strings.TrimSpace(string(s))
}
