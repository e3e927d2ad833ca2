package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"strings"
	"time"

	"tours-backend/internal/apperror"
	"tours-backend/internal/models"
	"tours-backend/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
)

// resetTokenTTL bounds how long a password reset token stays usable.
const resetTokenTTL = 10 * time.Minute

// passwordChangeStamp returns the timestamp recorded for a password
// change. JWT issue times carry whole-second precision, so the stamp is
// backdated one second to keep a token minted in the same second valid.
func passwordChangeStamp() time.Time {
	return time.Now().Truncate(time.Second).Add(-time.Second)
}

type AuthService struct {
	userRepo     UserStore
	jwtUtil      *jwt.JWTUtil
	emailService EmailSender
}

func NewAuthService(userRepo UserStore, jwtUtil *jwt.JWTUtil, emailService EmailSender) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		jwtUtil:      jwtUtil,
		emailService: emailService,
	}
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse pairs a session token with a profile subset safe to return.
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Signup creates a new principal. The role is always "user"; elevated
// roles are only assigned through the admin user management surface.
func (s *AuthService) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "Failed to hash password", err)
	}

	now := time.Now()
	user := &models.User{
		Name:      req.Name,
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  hash,
		Role:      models.RoleUser,
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

	token, err := s.jwtUtil.GenerateToken(created.ID.Hex())
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "Failed to generate token", err)
	}

	return &AuthResponse{User: created, Token: token}, nil
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.New(apperror.NotAuthenticated, "Incorrect email or password")
	}

	if err := VerifyPassword(req.Password, user.Password); err != nil {
		return nil, apperror.New(apperror.NotAuthenticated, "Incorrect email or password")
	}

	if !user.Active {
		return nil, apperror.New(apperror.AccountDeactivated, "Account is deactivated")
	}

	token, err := s.jwtUtil.GenerateToken(user.ID.Hex())
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "Failed to generate token", err)
	}

	return &AuthResponse{User: user, Token: token}, nil
}

// Authenticate resolves a session token to a principal, walking the full
// validity chain: signature and expiry, account existence, active flag,
// and password-change invalidation.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (models.Principal, error) {
	details, err := s.jwtUtil.ValidateToken(tokenString)
	if err != nil {
		return models.Principal{}, err
	}

	user, err := s.userRepo.FindByID(ctx, details.UserID)
	if err != nil {
		return models.Principal{}, apperror.New(apperror.InvalidToken, "The account for this session no longer exists")
	}

	if !user.Active {
		return models.Principal{}, apperror.New(apperror.AccountDeactivated, "Account is deactivated")
	}

	if user.PasswordChangedAfter(details.IssuedAt) {
		return models.Principal{}, apperror.New(apperror.SessionInvalidated, "Password was changed after this session started, please log in again")
	}

	return user.Principal(), nil
}

// ChangePassword verifies the current password before setting a new one.
// The change timestamp invalidates all previously issued tokens; a fresh
// token is returned so the current session survives.
func (s *AuthService) ChangePassword(ctx context.Context, principal models.Principal, currentPassword, newPassword string) (string, error) {
	user, err := s.userRepo.FindByID(ctx, principal.ID.Hex())
	if err != nil {
		return "", err
	}

	if err := VerifyPassword(currentPassword, user.Password); err != nil {
		return "", apperror.New(apperror.NotAuthenticated, "Current password is incorrect")
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return "", apperror.Wrap(apperror.Internal, "Failed to hash password", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash, passwordChangeStamp()); err != nil {
		return "", err
	}

	token, err := s.jwtUtil.GenerateToken(user.ID.Hex())
	if err != nil {
		return "", apperror.Wrap(apperror.Internal, "Failed to generate token", err)
	}
	return token, nil
}

// ForgotPassword issues a reset token and hands the plaintext to the email
// service. Only the one-way digest is stored; on delivery failure the
// token is cleared again so no orphaned credential stays behind.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the address exists.
		log.Printf("forgot-password for unknown email: %v", err)
		return nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return apperror.Wrap(apperror.Internal, "Failed to generate reset token", err)
	}
	plainToken := hex.EncodeToString(tokenBytes)

	expiry := time.Now().Add(resetTokenTTL)
	if err := s.userRepo.SetResetToken(ctx, user.ID, HashResetToken(plainToken), expiry); err != nil {
		return err
	}

	if err := s.emailService.SendPasswordResetEmail(user.Email, plainToken); err != nil {
		if clearErr := s.userRepo.ClearResetToken(ctx, user.ID); clearErr != nil {
			log.Printf("failed to clear reset token after send failure: %v", clearErr)
		}
		return apperror.Wrap(apperror.Internal, "Failed to send reset email", err)
	}

	return nil
}

// ResetPassword consumes a reset token. Unknown and expired tokens are
// indistinguishable to the caller, and neither mutates the password.
func (s *AuthService) ResetPassword(ctx context.Context, plainToken, newPassword string) (string, error) {
	user, err := s.userRepo.FindByResetTokenHash(ctx, HashResetToken(plainToken))
	if err != nil {
		return "", apperror.New(apperror.ExpiredOrInvalidToken, "Reset token is invalid or has expired")
	}

	if user.PasswordResetExpiry == nil || user.PasswordResetExpiry.Before(time.Now()) {
		return "", apperror.New(apperror.ExpiredOrInvalidToken, "Reset token is invalid or has expired")
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return "", apperror.Wrap(apperror.Internal, "Failed to hash password", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash, passwordChangeStamp()); err != nil {
		return "", err
	}

	token, err := s.jwtUtil.GenerateToken(user.ID.Hex())
	if err != nil {
		return "", apperror.Wrap(apperror.Internal, "Failed to generate token", err)
	}
	return token, nil
}

// Deactivate flips the caller's account inactive; existing tokens keep
// failing authorization until the account is activated again.
func (s *AuthService) Deactivate(ctx context.Context, principal models.Principal) error {
	return s.userRepo.SetActive(ctx, principal.ID, false)
}

// Activate re-enables an account. A deactivated account cannot hold a
// valid session, so activation proves control via credentials instead.
func (s *AuthService) Activate(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.New(apperror.NotAuthenticated, "Incorrect email or password")
	}

	if err := VerifyPassword(req.Password, user.Password); err != nil {
		return nil, apperror.New(apperror.NotAuthenticated, "Incorrect email or password")
	}

	if err := s.userRepo.SetActive(ctx, user.ID, true); err != nil {
		return nil, err
	}
	user.Active = true

	token, err := s.jwtUtil.GenerateToken(user.ID.Hex())
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "Failed to generate token", err)
	}
	return &AuthResponse{User: user, Token: token}, nil
}

// Profile returns the caller's stored account.
func (s *AuthService) Profile(ctx context.Context, principal models.Principal) (*models.User, error) {
	return s.userRepo.FindByID(ctx, principal.ID.Hex())
}

// HashPassword applies the one-way, salted, slow hash used for stored
// credentials.
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyPassword compares a plaintext candidate against a stored hash.
func VerifyPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// HashResetToken produces the deterministic one-way digest under which
// reset tokens are stored and looked up.
func HashResetToken(plainToken string) string {
	sum := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(sum[:])
}
