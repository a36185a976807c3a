package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"redflix-api/internal/domain"
	"redflix-api/internal/feature/user"
	"redflix-api/pkg/utils"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var m user.UserModel
	err := r.db.WithContext(ctx).Where(query, arg).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *UserRepo) FindByResetToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, "reset_password_token = ?", token)
}

func (r *UserRepo) FindByVerifyToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, "verify_token = ?", token)
}

func (r *UserRepo) isUnique(ctx context.Context, column, value string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&user.UserModel{}).Where(column+" = ?", value).Count(&n).Error; err != nil {
		return false, err
	}
	return n == 0, nil
}

func (r *UserRepo) IsUsernameUnique(ctx context.Context, username string) (bool, error) {
	return r.isUnique(ctx, "username", username)
}

func (r *UserRepo) IsEmailUnique(ctx context.Context, email string) (bool, error) {
	return r.isUnique(ctx, "email", email)
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	m := user.FromDomain(u)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrUserExists
		}
		return err
	}
	u.CreatedAt, u.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

// Update 整行覆盖（除 id/created_at），返回落库后的记录
func (r *UserRepo) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	m := user.FromDomain(u)
	res := r.db.WithContext(ctx).
		Model(&user.UserModel{ID: u.ID}).
		Select("*").Omit("id", "created_at").
		Updates(m)
	if res.Error != nil {
		if isDupKey(res.Error) {
			return nil, domain.ErrUserExists
		}
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrUserNotFound
	}
	return r.FindByID(ctx, u.ID)
}

func (r *UserRepo) SoftDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&user.UserModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_enabled": false, "role": string(domain.RoleDeletedUser)})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) List(ctx context.Context, q domain.ListQuery) ([]domain.User, int64, error) {
	tx := r.db.WithContext(ctx).Model(&user.UserModel{})
	if s := strings.TrimSpace(q.Q); s != "" {
		like := "%" + s + "%"
		tx = tx.Where("username LIKE ? OR email LIKE ?", like, like)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ms []user.UserModel
	if err := tx.Order("created_at desc").Offset(q.Offset).Limit(q.Limit).Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.User, 0, len(ms))
	for i := range ms {
		out = append(out, *ms[i].ToDomain())
	}
	return out, total, nil
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 未开启 TranslateError 的连接兜底
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
