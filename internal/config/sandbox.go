package config

import (
	lua "github.com/yuin/gopher-lua"
)

// sandboxLuaVM removes everything that lets a config reach outside the VM:
// process control and environment (os), files (io), loading code
// (require, dofile, loadfile, load, loadstring) and debug.
// string, table, math and the basic functions stay available.
func sandboxLuaVM(L *lua.LState) {
	for _, name := range []string{
		"os",
		"io",
		"require",
		"dofile",
		"loadfile",
		"load",
		"loadstring",
		"debug",
		"module",
	} {
		L.SetGlobal(name, lua.LNil)
	}
}

// newSandboxedVM creates a Lua VM with sandboxing applied.
func newSandboxedVM() *lua.LState {
	L := lua.NewState()
	sandboxLuaVM(L)
	return L
}
