package router

import (
	"time"

	"gorm.io/gorm"

	"redflix-api/internal/core/auth"
	"redflix-api/internal/core/cache"
	"redflix-api/internal/feature/movie"
	"redflix-api/internal/transport/http/ez"
	"redflix-api/internal/transport/http/handler"
)

type authModule struct{ h *handler.AuthHandler }

func (m authModule) MountAPI(e ez.EZ) { m.h.Mount(e) }
func (authModule) Priority() int { return 10 }

type usersModule struct{ h *handler.UserHandler }

func (m usersModule) MountAPI(e ez.EZ) { m.h.Mount(e, handler.APIUserAccess) }
func (m usersModule) MountAdmin(e ez.EZ) { m.h.Mount(e, handler.AdminUserAccess) }
func (usersModule) Priority() int { return 20 }

type moviesModule struct {
	db    *gorm.DB
	cache *cache.Cache
	ttl   time.Duration
}

func (m moviesModule) MountAPI(e ez.EZ) {
	ez.Crud(ez.CrudConfig[movie.MovieModel]{
		DB:   m.db,
		EZ:   e,
		Path: "/movies",
		Ops: map[ez.Op]ez.Access{
			ez.OpCreate: ez.Roles(auth.StaffRoles),
			ez.OpUpdate: ez.Roles(auth.StaffRoles),
			ez.OpList:   ez.Roles(auth.MemberRoles),
			ez.OpGet:    ez.Roles(auth.MemberRoles),
			ez.OpDelete: ez.Roles(auth.AdminOnly),
		},
		OrderBy:  "created_at DESC",
		Cache:    m.cache,
		CacheTTL: m.ttl,
	})
}

func (moviesModule) Priority() int { return 30 }
