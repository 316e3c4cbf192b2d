package platform

import (
	lua "github.com/yuin/gopher-lua"
)

// InjectPlatformTable sets a read-only global "platform" table describing
// info. It must run before user configuration code is loaded.
//
//	platform.os, platform.arch, platform.distro, platform.family, platform.version
//	platform.is_linux, platform.is_macos
//	platform.is_arch_family, platform.is_debian_family, platform.is_fedora_family
//	platform.when(cond, value) -- value if cond, else nil
func InjectPlatformTable(L *lua.LState, info *Info) error {
	t := L.NewTable()

	L.SetField(t, "os", lua.LString(info.OS))
	L.SetField(t, "arch", lua.LString(info.Arch))
	L.SetField(t, "distro", lua.LString(info.Distro))
	L.SetField(t, "family", lua.LString(info.Family))
	L.SetField(t, "version", lua.LString(info.Version))

	L.SetField(t, "is_linux", lua.LBool(info.IsLinux()))
	L.SetField(t, "is_macos", lua.LBool(info.IsMacOS()))
	L.SetField(t, "is_arch_family", lua.LBool(info.IsArchFamily()))
	L.SetField(t, "is_debian_family", lua.LBool(info.IsDebianFamily()))
	L.SetField(t, "is_fedora_family", lua.LBool(info.IsFedoraFamily()))

	L.SetField(t, "when", L.NewFunction(func(L *lua.LState) int {
		if L.CheckBool(1) {
			L.Push(L.Get(2))
		} else {
			L.Push(lua.LNil)
		}
		return 1
	}))

	L.SetGlobal("platform", ReadOnly(L, t, "platform"))
	return nil
}

// ReadOnly wraps table in a proxy whose writes raise a Lua error.
func ReadOnly(L *lua.LState, table *lua.LTable, name string) *lua.LTable {
	mt := L.NewTable()
	L.SetField(mt, "__index", table)
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("%s table is read-only", name)
		return 0
	}))
	L.SetField(mt, "__metatable", lua.LString("protected"))

	proxy := L.NewTable()
	L.SetMetatable(proxy, mt)
	return proxy
}
