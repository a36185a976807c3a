package repotest

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"redflix-api/internal/domain"
	"redflix-api/pkg/utils"
)

// MemoryUserRepo 进程内 domain.UserRepository，只给测试用
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]domain.User
	now   func() time.Time
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]domain.User), now: time.Now}
}

var _ domain.UserRepository = (*MemoryUserRepo)(nil)

func (r *MemoryUserRepo) find(match func(u *domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(&u) {
			cp := u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *MemoryUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *MemoryUserRepo) FindByResetToken(_ context.Context, token string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return token != "" && u.ResetPasswordToken != nil && *u.ResetPasswordToken == token })
}

func (r *MemoryUserRepo) FindByVerifyToken(_ context.Context, token string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return token != "" && u.VerifyToken != nil && *u.VerifyToken == token })
}

func (r *MemoryUserRepo) IsUsernameUnique(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return errors.Is(err, domain.ErrUserNotFound), nil
}

func (r *MemoryUserRepo) IsEmailUnique(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return errors.Is(err, domain.ErrUserNotFound), nil
}

// conflicts 调用方需持有锁
func (r *MemoryUserRepo) conflicts(u *domain.User) bool {
	for id, o := range r.users {
		if id != u.ID && (o.Username == u.Username || o.Email == u.Email) {
			return true
		}
	}
	return false
}

func (r *MemoryUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	if _, ok := r.users[u.ID]; ok || r.conflicts(u) {
		return domain.ErrUserExists
	}
	now := r.now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryUserRepo) Update(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.users[u.ID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if r.conflicts(u) {
		return nil, domain.ErrUserExists
	}
	next := *u
	next.CreatedAt = old.CreatedAt
	next.UpdatedAt = r.now()
	r.users[u.ID] = next
	return &next, nil
}

func (r *MemoryUserRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IsEnabled = false
	u.Role = domain.RoleDeletedUser
	u.UpdatedAt = r.now()
	r.users[id] = u
	return nil
}

func (r *MemoryUserRepo) List(_ context.Context, q domain.ListQuery) ([]domain.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := strings.TrimSpace(q.Q)
	all := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		if s == "" || strings.Contains(u.Username, s) || strings.Contains(u.Email, s) {
			all = append(all, u)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	total := int64(len(all))
	if q.Offset >= len(all) {
		return []domain.User{}, total, nil
	}
	all = all[q.Offset:]
	if q.Limit > 0 && q.Limit < len(all) {
		all = all[:q.Limit]
	}
	return all, total, nil
}
