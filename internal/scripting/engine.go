// Package scripting loads Lua content and binds it to world triggers.
package scripting

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/tickworld/server/internal/data"
	"github.com/tickworld/server/internal/script"
	"github.com/tickworld/server/internal/world"
)

const apiVersion = 1

// Engine wraps a single gopher-lua VM. Handlers run on the tick goroutine
// only. A reload builds a new Engine and swaps its Scripts into the world.
type Engine struct {
	vm      *lua.LState
	stores  *data.Stores
	Scripts *world.Scripts
	count   int
	log     *zap.Logger
}

// Load creates a Lua engine and runs every .lua file under dir in lexical
// path order. Scripts register their handlers while they run.
func Load(dir string, stores *data.Stores, log *zap.Logger) (*Engine, error) {
	if stores == nil {
		stores = &data.Stores{}
	}
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(apiVersion))

	e := &Engine{vm: vm, stores: stores, Scripts: world.NewScripts(), log: log}
	e.install()

	if err := e.loadDir(dir); err != nil {
		vm.Close()
		return nil, err
	}
	log.Info("lua scripts loaded", zap.String("dir", dir), zap.Int("handlers", e.count))
	return e, nil
}

func (e *Engine) loadDir(dir string) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".lua" {
			return nil
		}
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// DoString runs a chunk of Lua in the engine. Used for inline content.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// Handlers is the number of handlers registered so far.
func (e *Engine) Handlers() int { return e.count }

// Install makes this engine's handlers the ones the world dispatches into.
func (e *Engine) Install(w *world.World) {
	w.Scripts = e.Scripts
}

func (e *Engine) Close() {
	if e.vm != nil {
		e.vm.Close()
		e.vm = nil
	}
}

// install registers the global functions scripts use to bind handlers.
func (e *Engine) install() {
	L := e.vm
	L.SetGlobal("on", L.NewFunction(e.luaOn))
	L.SetGlobal("on_category", L.NewFunction(e.luaOnCategory))
	L.SetGlobal("on_global", L.NewFunction(e.luaOnGlobal))
	L.SetGlobal("on_label", L.NewFunction(e.luaOnLabel))
	L.SetGlobal("log", L.NewFunction(e.luaLog))
	L.SetGlobal("obj", L.NewFunction(e.luaObjID))
	L.SetGlobal("npc", L.NewFunction(e.luaNpcID))
	L.SetGlobal("loc", L.NewFunction(e.luaLocID))

	methods := maps.Clone(ctxMethods)
	methods["chat"] = e.ctxChat
	mt := L.NewTypeMetatable(ctxType)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), methods))
}

func (e *Engine) trigger(L *lua.LState, n int) script.Trigger {
	name := L.CheckString(n)
	t, ok := script.ParseTrigger(name)
	if !ok {
		L.ArgError(n, "unknown trigger "+name)
	}
	return t
}

// on(trigger, subject, fn) binds fn to one config type. subject is a type
// id or a debug name looked up in the table the trigger refers to.
func (e *Engine) luaOn(L *lua.LState) int {
	t := e.trigger(L, 1)
	id := e.subject(L, t, 2)
	fn := L.CheckFunction(3)
	e.Scripts.Register(t, id, e.wrap(fn))
	e.count++
	return 0
}

// on_category(trigger, category, fn)
func (e *Engine) luaOnCategory(L *lua.LState) int {
	t := e.trigger(L, 1)
	category := L.CheckInt(2)
	fn := L.CheckFunction(3)
	e.Scripts.RegisterCategory(t, category, e.wrap(fn))
	e.count++
	return 0
}

// on_global(trigger, fn)
func (e *Engine) luaOnGlobal(L *lua.LState) int {
	t := e.trigger(L, 1)
	fn := L.CheckFunction(2)
	e.Scripts.RegisterGlobal(t, e.wrap(fn))
	e.count++
	return 0
}

// on_label(name, fn) registers a handler other scripts reach by name.
func (e *Engine) luaOnLabel(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	e.Scripts.RegisterByName(name, e.wrap(fn))
	e.count++
	return 0
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("lua", zap.String("text", L.CheckString(1)))
	return 0
}

func (e *Engine) luaObjID(L *lua.LState) int {
	L.Push(lua.LNumber(e.stores.Objs.ID(L.CheckString(1))))
	return 1
}

func (e *Engine) luaNpcID(L *lua.LState) int {
	L.Push(lua.LNumber(e.stores.Npcs.ID(L.CheckString(1))))
	return 1
}

func (e *Engine) luaLocID(L *lua.LState) int {
	L.Push(lua.LNumber(e.stores.Locs.ID(L.CheckString(1))))
	return 1
}

// subject resolves argument n to a type id. Names are looked up in the npc,
// loc or obj table depending on the trigger name.
func (e *Engine) subject(L *lua.LState, t script.Trigger, n int) int {
	switch v := L.Get(n).(type) {
	case lua.LNumber:
		return int(v)
	case lua.LString:
		name := string(v)
		id := -1
		switch tn := t.String(); {
		case strings.Contains(tn, "npc"):
			id = e.stores.Npcs.ID(name)
		case strings.Contains(tn, "loc"):
			id = e.stores.Locs.ID(name)
		case strings.Contains(tn, "obj"), strings.HasPrefix(tn, "opheld"):
			id = e.stores.Objs.ID(name)
		}
		if id == -1 {
			L.ArgError(n, fmt.Sprintf("unknown %s subject %q", t, name))
		}
		return id
	}
	L.ArgError(n, "type id or name expected")
	return -1
}

func (e *Engine) wrap(fn *lua.LFunction) script.Handler[*world.ScriptContext] {
	return func(ctx *world.ScriptContext) { e.call(fn, ctx) }
}

// call runs fn with ctx as its only argument. A Lua error is logged and
// does not reach the tick loop.
func (e *Engine) call(fn *lua.LFunction, ctx *world.ScriptContext) {
	if e.vm == nil {
		return
	}
	L := e.vm
	ud := L.NewUserData()
	ud.Value = ctx
	L.SetMetatable(ud, L.GetTypeMetatable(ctxType))

	if err := L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, ud); err != nil {
		fields := []zap.Field{zap.String("trigger", ctx.Trigger.String()), zap.Error(err)}
		if ctx.Player != nil {
			fields = append(fields, zap.String("username", ctx.Player.Username))
		}
		e.log.Error("lua handler failed", fields...)
	}
}
