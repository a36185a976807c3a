package ez

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"redflix-api/internal/core/apperr"
	"redflix-api/internal/core/cache"
	resp "redflix-api/internal/transport/http/response"
	"redflix-api/pkg/utils"
)

type Op string

const (
	OpCreate Op = "create"
	OpList   Op = "list"
	OpGet    Op = "get"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Hook
type CrudHooks[T any] struct {
	BeforeCreate func(c *gin.Context, m *T) error
	BeforeUpdate func(c *gin.Context, m *T) error
	ScopeList    func(c *gin.Context, q *gorm.DB) *gorm.DB // 自定义筛选/排序
	AfterGet     func(c *gin.Context, m *T)
}

type CrudConfig[T any] struct {
	DB   *gorm.DB
	EZ   EZ
	Path string
	New  func() *T

	Hooks CrudHooks[T]

	// Ops 只挂载出现的操作，每个操作都要有访问声明
	Ops map[Op]Access

	IDField string        // 默认 "ID"
	IDGen   func() string // 默认 utils.NewID

	// 列表排序（列名按模型字段自动转 snake_case），为空则按 ID DESC
	OrderBy string

	// Cache 非 nil 时 GET /:id 走读穿缓存，更新/删除后失效
	Cache    *cache.Cache
	CacheTTL time.Duration
}

// 反射 & 工具
func (c *CrudConfig[T]) idFieldCandidates() []string {
	if c.IDField != "" {
		return []string{c.IDField, "ID", "Id"}
	}
	return []string{"ID", "Id"}
}

func getStringFieldPtr(obj any, candidates []string) (*string, bool) {
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr {
		return nil, false
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return nil, false
	}
	t := v.Type()
	for _, cand := range candidates {
		f, ok := t.FieldByName(cand)
		if !ok || f.PkgPath != "" {
			continue
		}
		fv := v.FieldByIndex(f.Index)
		if fv.Kind() == reflect.String && fv.CanSet() {
			return fv.Addr().Interface().(*string), true
		}
	}
	return nil, false
}

func readStringField(obj any, candidates []string) (string, bool) {
	p, ok := getStringFieldPtr(obj, candidates)
	if !ok {
		return "", false
	}
	return *p, true
}

func writeStringField(obj any, candidates []string, val string) bool {
	p, ok := getStringFieldPtr(obj, candidates)
	if !ok {
		return false
	}
	*p = val
	return true
}

func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

func toSnake(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			// 连续大写（ID、URL）视为一个词
			if i > 0 && !unicode.IsUpper(runes[i-1]) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func dbErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("not found")
	}
	return apperr.Repository(err)
}

// Crud 注册 CRUD；模型无需实现任何接口
func Crud[T any](cfg CrudConfig[T]) {
	if len(cfg.Ops) == 0 {
		panic("ez: crud " + cfg.Path + " mounts no operations")
	}
	if cfg.New == nil {
		cfg.New = func() *T { return new(T) }
	}
	if cfg.IDGen == nil {
		cfg.IDGen = utils.NewID
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	idFieldNames := cfg.idFieldCandidates()
	if _, ok := readStringField(cfg.New(), idFieldNames); !ok {
		panic("ez: crud " + cfg.Path + " model has no string id field")
	}
	idCol := toSnake(idFieldNames[0])
	cacheKey := func(id string) string { return "crud:" + cfg.Path + ":" + id }
	invalidate := func(ctx context.Context, id string) {
		if cfg.Cache != nil {
			_ = cfg.Cache.Invalidate(ctx, cacheKey(id))
		}
	}
	find := func(ctx context.Context, id string) (*T, error) {
		m := cfg.New()
		if err := cfg.DB.WithContext(ctx).Where(clause.Eq{Column: clause.Column{Name: idCol}, Value: id}).Take(m).Error; err != nil {
			return nil, dbErr(err)
		}
		return m, nil
	}
	mount := func(op Op, method, path string, h gin.HandlerFunc) {
		a, ok := cfg.Ops[op]
		if !ok {
			return
		}
		chain := cfg.EZ.Guard(method, path, "", a)
		cfg.EZ.handle(method, path, chain, h)
	}
	fail := resp.Abort

	// Create
	mount(OpCreate, http.MethodPost, cfg.Path, func(c *gin.Context) {
		m := cfg.New()
		if err := c.ShouldBindJSON(m); err != nil {
			fail(c, BindError(err))
			return
		}
		_ = writeStringField(m, idFieldNames, cfg.IDGen())
		if cfg.Hooks.BeforeCreate != nil {
			if err := cfg.Hooks.BeforeCreate(c, m); err != nil {
				fail(c, err)
				return
			}
		}
		if err := cfg.DB.WithContext(c.Request.Context()).Create(m).Error; err != nil {
			fail(c, apperr.Repository(err))
			return
		}
		if cfg.Hooks.AfterGet != nil {
			cfg.Hooks.AfterGet(c, m)
		}
		resp.JSON(c, m)
	})

	// List
	mount(OpList, http.MethodGet, cfg.Path, func(c *gin.Context) {
		page := atoiDefault(c.Query("page"), 1)
		size := atoiDefault(c.Query("size"), 20)
		if size > 100 {
			size = 20
		}
		offset := (page - 1) * size

		q := cfg.DB.WithContext(c.Request.Context()).Model(cfg.New())
		if cfg.Hooks.ScopeList != nil {
			q = cfg.Hooks.ScopeList(c, q)
		}
		var total int64
		if err := q.Count(&total).Error; err != nil {
			fail(c, apperr.Repository(err))
			return
		}
		if cfg.OrderBy != "" {
			q = q.Order(cfg.OrderBy)
		} else {
			q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: idCol}, Desc: true})
		}
		var items []T
		if err := q.Limit(size).Offset(offset).Find(&items).Error; err != nil {
			fail(c, apperr.Repository(err))
			return
		}
		if cfg.Hooks.AfterGet != nil {
			for i := range items {
				cfg.Hooks.AfterGet(c, &items[i])
			}
		}
		resp.JSON(c, gin.H{"list": items, "total": total, "page": page, "size": size})
	})

	// Get
	mount(OpGet, http.MethodGet, cfg.Path+"/:id", func(c *gin.Context) {
		id := c.Param("id")
		var (
			m   *T
			err error
		)
		if cfg.Cache != nil {
			m, err = cache.GetOrLoadJSON(cfg.Cache, c.Request.Context(), cacheKey(id), cfg.CacheTTL, func(ctx context.Context) (*T, error) {
				return find(ctx, id)
			})
		} else {
			m, err = find(c.Request.Context(), id)
		}
		if err != nil {
			fail(c, err)
			return
		}
		if cfg.Hooks.AfterGet != nil {
			cfg.Hooks.AfterGet(c, m)
		}
		resp.JSON(c, m)
	})

	// Update
	mount(OpUpdate, http.MethodPut, cfg.Path+"/:id", func(c *gin.Context) {
		id := c.Param("id")
		if _, err := find(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}
		in := cfg.New()
		if err := c.ShouldBindJSON(in); err != nil {
			fail(c, BindError(err))
			return
		}
		// 强制保持 ID
		_ = writeStringField(in, idFieldNames, id)
		if cfg.Hooks.BeforeUpdate != nil {
			if err := cfg.Hooks.BeforeUpdate(c, in); err != nil {
				fail(c, err)
				return
			}
		}
		err := cfg.DB.WithContext(c.Request.Context()).Model(cfg.New()).
			Where(clause.Eq{Column: clause.Column{Name: idCol}, Value: id}).
			Omit(idCol, "created_at").
			Updates(in).Error
		if err != nil {
			fail(c, apperr.Repository(err))
			return
		}
		invalidate(c.Request.Context(), id)
		m, err := find(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		if cfg.Hooks.AfterGet != nil {
			cfg.Hooks.AfterGet(c, m)
		}
		resp.JSON(c, m)
	})

	// Delete
	mount(OpDelete, http.MethodDelete, cfg.Path+"/:id", func(c *gin.Context) {
		id := c.Param("id")
		res := cfg.DB.WithContext(c.Request.Context()).Where(clause.Eq{Column: clause.Column{Name: idCol}, Value: id}).Delete(cfg.New())
		if res.Error != nil {
			fail(c, apperr.Repository(res.Error))
			return
		}
		if res.RowsAffected == 0 {
			fail(c, apperr.NotFound("not found"))
			return
		}
		invalidate(c.Request.Context(), id)
		resp.JSON(c, gin.H{"id": id})
	})
}
