package router

import (
	"sort"

	"redflix-api/internal/transport/http/ez"
)

// APIModule 模块可选择实现其中一个或两个接口
type APIModule interface{ MountAPI(ez.EZ) }
type AdminModule interface{ MountAdmin(ez.EZ) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

// Registry 每个引擎一份，装配期使用，不需要加锁
type Registry struct {
	api   []APIModule
	admin []AdminModule
}

// Register 根据类型断言分发到 API/Admin 列表；两者都没实现直接 panic
func (r *Registry) Register(mods ...any) *Registry {
	for _, mod := range mods {
		api, isAPI := mod.(APIModule)
		admin, isAdmin := mod.(AdminModule)
		if !isAPI && !isAdmin {
			panic("router: module mounts nothing")
		}
		if isAPI {
			r.api = append(r.api, api)
		}
		if isAdmin {
			r.admin = append(r.admin, admin)
		}
	}
	return r
}

func (r *Registry) MountAPI(e ez.EZ) {
	mods := append([]APIModule(nil), r.api...)
	sort.SliceStable(mods, func(i, j int) bool { return priorityOf(mods[i]) < priorityOf(mods[j]) })
	for _, m := range mods {
		m.MountAPI(e)
	}
}

func (r *Registry) MountAdmin(e ez.EZ) {
	mods := append([]AdminModule(nil), r.admin...)
	sort.SliceStable(mods, func(i, j int) bool { return priorityOf(mods[i]) < priorityOf(mods[j]) })
	for _, m := range mods {
		m.MountAdmin(e)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
