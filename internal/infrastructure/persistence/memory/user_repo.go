package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/xiebiao/bookmarket/internal/domain/user"
)

type userRepository struct {
	db *DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func cloneUser(u *user.User) *user.User {
	cp := *u
	return &cp
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	defer r.db.lockWrite(ctx)()

	for _, existing := range r.db.users {
		if existing.Email == u.Email {
			return user.ErrEmailDuplicate
		}
	}

	r.db.seq.user++
	u.ID = r.db.seq.user
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	r.db.users[u.ID] = cloneUser(u)
	return nil
}

func (r *userRepository) FindByID(_ context.Context, id uint) (*user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *userRepository) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	defer r.db.lockWrite(ctx)()

	if _, ok := r.db.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	u.UpdatedAt = time.Now()
	r.db.users[u.ID] = cloneUser(u)
	return nil
}

func (r *userRepository) List(_ context.Context) ([]*user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]*user.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		out = append(out, cloneUser(u))
	}
	slices.SortFunc(out, func(a, b *user.User) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}
