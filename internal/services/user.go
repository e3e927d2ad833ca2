package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"tours-backend/internal/apperror"
	"tours-backend/internal/models"
	"tours-backend/internal/query"

	"github.com/go-playground/validator/v10"
)

// UserService is the admin-facing user management surface. Password
// material never flows through the generic update path; credential
// changes go through AuthService exclusively.
type UserService struct {
	userRepo UserStore
	pageSize int64
	validate *validator.Validate
}

func NewUserService(userRepo UserStore, pageSize int64) *UserService {
	return &UserService{
		userRepo: userRepo,
		pageSize: pageSize,
		validate: validator.New(),
	}
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=user guide lead-guide admin"`
}

func (s *UserService) List(ctx context.Context, values url.Values) (*query.Result[models.User], error) {
	opts, err := query.Parse(values, s.pageSize)
	if err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx, opts)
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

func (s *UserService) Create(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperror.Wrap(apperror.ValidationError, "User failed validation", err)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "Failed to hash password", err)
	}

	now := time.Now()
	user := &models.User{
		Name:      req.Name,
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  hash,
		Role:      req.Role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if apperror.Is(err, apperror.ValidationError) {
			return nil, apperror.New(apperror.ValidationError, "An account with this email already exists")
		}
		return nil, err
	}
	return created, nil
}

func (s *UserService) Update(ctx context.Context, id string, input map[string]interface{}) (*models.User, error) {
	set := UserUpdateWhitelist.FilterStored(input)
	if len(set) == 0 {
		return nil, apperror.New(apperror.ValidationError, "No updatable fields provided")
	}

	if role, ok := set["role"]; ok {
		if err := s.validate.Var(role, "oneof=user guide lead-guide admin"); err != nil {
			return nil, apperror.New(apperror.ValidationError, "Role must be one of: user, guide, lead-guide, admin")
		}
	}
	if email, ok := set["email"].(string); ok {
		normalized := strings.ToLower(strings.TrimSpace(email))
		if err := s.validate.Var(normalized, "email"); err != nil {
			return nil, apperror.New(apperror.ValidationError, "Email address is invalid")
		}
		set["email"] = normalized
	}

	return s.userRepo.UpdateByID(ctx, id, set)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.userRepo.DeleteByID(ctx, id)
}
