package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/AKT74/shareulbi-backend/internal/activity"
	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/AKT74/shareulbi-backend/internal/repository"
	"github.com/AKT74/shareulbi-backend/internal/validation"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const AuthCookieName = "token"

var ErrInvalidToken = errors.New("invalid token")

type RegisterInput struct {
	Fullname       string     `json:"fullname" validate:"required,max=100"`
	Email          string     `json:"email" validate:"required,email"`
	Password       string     `json:"password" validate:"required"`
	Role           model.Role `json:"role" validate:"required,oneof=lecturer student other"`
	DepartmentID   string     `json:"department_id"`
	StudentNumber  string     `json:"student_number" validate:"max=50"`
	LecturerNumber string     `json:"lecturer_number" validate:"max=50"`
	Occupation     string     `json:"occupation" validate:"max=100"`
}

type EmailPolicy struct {
	StudentDomain  string
	LecturerDomain string
}

type AuthService struct {
	userRepo     repository.UserRepository
	emailService *EmailService
	activity     activity.Logger
	emailPolicy  EmailPolicy
	jwtSecret    string
	jwtExpiry    time.Duration
	secureCookie bool
}

func NewAuthService(
	userRepo repository.UserRepository,
	emailService *EmailService,
	activity activity.Logger,
	emailPolicy EmailPolicy,
	jwtSecret string,
	jwtExpiry time.Duration,
	secureCookie bool,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		emailService: emailService,
		activity:     activity,
		emailPolicy:  emailPolicy,
		jwtSecret:    jwtSecret,
		jwtExpiry:    jwtExpiry,
		secureCookie: secureCookie,
	}
}

// Register creates a pending account. An admin has to approve it before the
// user can log in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Email = validation.NormalizeEmail(in.Email)
	in.Fullname = validation.CleanName(in.Fullname)

	if err := validation.Struct(in); err != nil {
		return nil, ErrValidation(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, ErrValidation(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, ErrValidation(err.Error())
	}
	if in.Role.NeedsDepartment() && in.DepartmentID == "" {
		return nil, ErrValidation("department_id is required for " + string(in.Role))
	}

	switch in.Role {
	case model.RoleStudent:
		if err := validation.ValidateEmailDomain(in.Email, s.emailPolicy.StudentDomain); err != nil {
			return nil, ErrValidation(err.Error())
		}
	case model.RoleLecturer:
		if err := validation.ValidateEmailDomain(in.Email, s.emailPolicy.LecturerDomain); err != nil {
			return nil, ErrValidation(err.Error())
		}
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:               uuid.New().String(),
		Fullname:         in.Fullname,
		Email:            in.Email,
		PasswordHash:     hash,
		Role:             in.Role,
		DepartmentID:     optional(in.DepartmentID),
		StudentNumber:    optional(in.StudentNumber),
		LecturerNumber:   optional(in.LecturerNumber),
		Occupation:       optional(in.Occupation),
		OnboardingStatus: model.OnboardingPending,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if !in.Role.NeedsDepartment() {
		user.DepartmentID = nil
	}

	err = s.userRepo.Create(ctx, user)
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return nil, ErrConflict("email already registered")
	case errors.Is(err, repository.ErrDepartmentNotFound):
		return nil, ErrValidation("department not found")
	case err != nil:
		return nil, ErrDependency("failed to create user", err)
	}

	s.activity.Log(ctx, user.ID, activity.ActionRegister, "Register "+user.Email)

	if err := s.emailService.SendRegistrationReceivedEmail(ctx, user.Email, user.Fullname); err != nil {
		slog.Warn("failed to send registration email", "error", err, "user_id", user.ID)
	}

	return user, nil
}

// Login checks the credentials and returns a signed token for approved, active users.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, time.Time, error) {
	email = validation.NormalizeEmail(email)

	user, err := s.userRepo.ByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", time.Time{}, ErrUnauthorized("invalid email or password")
	}
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.ComparePassword(password, user.PasswordHash); err != nil {
		return nil, "", time.Time{}, ErrUnauthorized("invalid email or password")
	}

	if !user.CanLogin() {
		switch {
		case user.OnboardingStatus == model.OnboardingPending:
			return nil, "", time.Time{}, ErrForbidden("account is waiting for approval")
		case user.OnboardingStatus == model.OnboardingRejected:
			return nil, "", time.Time{}, ErrForbidden("account registration was rejected")
		default:
			return nil, "", time.Time{}, ErrForbidden("account is disabled")
		}
	}

	expiry := time.Now().Add(s.jwtExpiry)
	token, err := s.GenerateJWT(user, expiry)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	s.activity.Log(ctx, user.ID, activity.ActionLogin, "Login "+user.Email)

	return user, token, expiry, nil
}

// CreateAdmin provisions an approved admin account; used from the CLI.
func (s *AuthService) CreateAdmin(ctx context.Context, fullname, email, password string) (*model.User, error) {
	email = validation.NormalizeEmail(email)
	fullname = validation.CleanName(fullname)

	if err := validation.ValidateName(fullname); err != nil {
		return nil, ErrValidation(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, ErrValidation(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, ErrValidation(err.Error())
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:               uuid.New().String(),
		Fullname:         fullname,
		Email:            email,
		PasswordHash:     hash,
		Role:             model.RoleAdmin,
		OnboardingStatus: model.OnboardingApproved,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.userRepo.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, ErrConflict("email already registered")
	}
	if err != nil {
		return nil, ErrDependency("failed to create admin", err)
	}

	return user, nil
}

// Authenticate resolves a token to the current user. Users that were
// deactivated or never approved are rejected even with a valid token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.VerifyJWT(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.ByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	if !user.CanLogin() {
		return nil, ErrInvalidToken
	}
	return user, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) GenerateJWT(user *model.User, expiry time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"exp":     expiry.Unix(),
		"iat":     time.Now().Unix(),
	}
	if user.DepartmentID != nil {
		claims["department_id"] = *user.DepartmentID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifyJWT returns the user id carried by a valid token.
func (s *AuthService) VerifyJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}

	return userID, nil
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
