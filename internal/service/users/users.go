package users

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/seniorstay/staycation-api/internal/middleware"
	"github.com/seniorstay/staycation-api/internal/service/auth"
	"github.com/seniorstay/staycation-api/internal/store"
	"github.com/seniorstay/staycation-api/internal/store/users"
)

type Store interface {
	Create(ctx context.Context, u *users.User) (*users.User, error)
	List(ctx context.Context) ([]*users.User, error)
	GetByID(ctx context.Context, id int64) (*users.User, error)
	Update(ctx context.Context, id int64, in users.Update) error
	Delete(ctx context.Context, id int64) error
	Favourites(ctx context.Context, id int64) ([]int64, error)
	UpdateFavourites(ctx context.Context, id int64, fn func([]int64) []int64) ([]int64, error)
}

var (
	ErrRoleChange  = errors.New("only administrators can change roles")
	ErrInvalidRole = errors.New("role must be user or admin")
	ErrInvalidRoom = errors.New("invalid room_id")
)

type UpdateRequest struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Role     *string `json:"role"`
}

// CreateRequest is the admin form of registration. Role defaults to user.
type CreateRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Username string  `json:"username" binding:"required"`
	Password string  `json:"password" binding:"required,min=8"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Role     *string `json:"role"`
}

type UsersService struct {
	log   *zap.Logger
	store Store
	cost  int
}

func NewUsersService(log *zap.Logger, store Store) *UsersService {
	return &UsersService{log: log, store: store, cost: bcrypt.DefaultCost}
}

func (s *UsersService) List(ctx context.Context) ([]*users.User, error) {
	return s.store.List(ctx)
}

func (s *UsersService) Get(ctx context.Context, id int64) (*users.User, error) {
	return s.store.GetByID(ctx, id)
}

// Create adds an account on behalf of an administrator. A taken email returns
// auth.ErrUserExists.
func (s *UsersService) Create(ctx context.Context, req CreateRequest) (*users.User, error) {
	role := middleware.RoleUser
	if req.Role != nil {
		if *req.Role != middleware.RoleUser && *req.Role != middleware.RoleAdmin {
			return nil, ErrInvalidRole
		}
		role = *req.Role
	}
	hash, err := auth.HashPassword(req.Password, s.cost)
	if err != nil {
		return nil, err
	}
	u, err := s.store.Create(ctx, &users.User{
		Email:        strings.TrimSpace(req.Email),
		Username:     req.Username,
		PasswordHash: hash,
		Phone:        req.Phone,
		Address:      req.Address,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, auth.ErrUserExists
		}
		return nil, err
	}
	return u, nil
}

// Update applies the supplied fields. Only admins may change a role.
func (s *UsersService) Update(ctx context.Context, id int64, req UpdateRequest, asAdmin bool) error {
	in := users.Update{
		Email:    req.Email,
		Username: req.Username,
		Phone:    req.Phone,
		Address:  req.Address,
	}
	if req.Role != nil {
		if !asAdmin {
			return ErrRoleChange
		}
		if *req.Role != middleware.RoleUser && *req.Role != middleware.RoleAdmin {
			return ErrInvalidRole
		}
		in.Role = req.Role
	}
	if !store.Blank(req.Password) {
		hash, err := auth.HashPassword(*req.Password, s.cost)
		if err != nil {
			return err
		}
		in.PasswordHash = &hash
	}
	return s.store.Update(ctx, id, in)
}

func (s *UsersService) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

func (s *UsersService) Favourites(ctx context.Context, userID int64) ([]int64, error) {
	return s.store.Favourites(ctx, userID)
}

// AddFavourite is idempotent and returns the resulting list.
func (s *UsersService) AddFavourite(ctx context.Context, userID, roomID int64) ([]int64, error) {
	if roomID <= 0 {
		return nil, ErrInvalidRoom
	}
	return s.store.UpdateFavourites(ctx, userID, func(l []int64) []int64 { return users.AddFavourite(l, roomID) })
}

// RemoveFavourite is idempotent and returns the resulting list.
func (s *UsersService) RemoveFavourite(ctx context.Context, userID, roomID int64) ([]int64, error) {
	if roomID <= 0 {
		return nil, ErrInvalidRoom
	}
	return s.store.UpdateFavourites(ctx, userID, func(l []int64) []int64 { return users.RemoveFavourite(l, roomID) })
}
