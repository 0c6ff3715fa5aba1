package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cardclash/internal/game/dice"
)

// RegisterModules registers the engine.* Lua tables into L:
//
//	engine.log.debug/info/warn/error(msg)  structured log lines tagged with the VM name
//	engine.dice.int(n)               uniform integer in [1, n]
//	engine.dice.chance(p)            true with probability p
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState, vmID string) {
	engine := L.NewTable()

	logT := L.NewTable()
	logFn := func(write func(string, ...zap.Field)) lua.LGFunction {
		return func(L *lua.LState) int {
			write(L.CheckString(1), zap.String("tactic", vmID))
			return 0
		}
	}
	L.SetField(logT, "debug", L.NewFunction(logFn(m.logger.Debug)))
	L.SetField(logT, "info", L.NewFunction(logFn(m.logger.Info)))
	L.SetField(logT, "warn", L.NewFunction(logFn(m.logger.Warn)))
	L.SetField(logT, "error", L.NewFunction(logFn(m.logger.Error)))
	L.SetField(engine, "log", logT)

	diceT := L.NewTable()
	L.SetField(diceT, "int", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		if n <= 0 || m.src == nil {
			L.Push(lua.LNumber(0))
			return 1
		}
		L.Push(lua.LNumber(m.src.Intn(n) + 1))
		return 1
	}))
	L.SetField(diceT, "chance", L.NewFunction(func(L *lua.LState) int {
		p := float64(L.CheckNumber(1))
		if m.src == nil {
			L.Push(lua.LBool(p >= 1))
			return 1
		}
		L.Push(lua.LBool(dice.Chance(m.src, p)))
		return 1
	}))
	L.SetField(engine, "dice", diceT)

	L.SetGlobal("engine", engine)
}
