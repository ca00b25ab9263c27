package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AKT74/shareulbi-backend/internal/activity"
	"github.com/AKT74/shareulbi-backend/internal/model"
	"github.com/AKT74/shareulbi-backend/internal/repository"
	"github.com/AKT74/shareulbi-backend/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

type UpdateProfileInput struct {
	Fullname   string `json:"fullname" validate:"required,max=100"`
	Occupation string `json:"occupation" validate:"max=100"`
}

type UserService struct {
	userRepo     repository.UserRepository
	activityRepo repository.ActivityRepository
	emailService *EmailService
	activity     activity.Logger
}

func NewUserService(
	userRepo repository.UserRepository,
	activityRepo repository.ActivityRepository,
	emailService *EmailService,
	activity activity.Logger,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		activityRepo: activityRepo,
		emailService: emailService,
		activity:     activity,
	}
}

func (s *UserService) ByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.ByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrNotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, caller *model.Identity, in UpdateProfileInput) (*model.User, error) {
	in.Fullname = validation.CleanName(in.Fullname)
	if err := validation.Struct(in); err != nil {
		return nil, ErrValidation(err.Error())
	}

	err := s.userRepo.UpdateProfile(ctx, caller.UserID, in.Fullname, optional(in.Occupation))
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrNotFound("user not found")
	}
	if err != nil {
		return nil, ErrDependency("failed to update profile", err)
	}

	s.activity.Log(ctx, caller.UserID, activity.ActionUpdateProfile, "Update profile")
	return s.ByID(ctx, caller.UserID)
}

func (s *UserService) UpdatePassword(ctx context.Context, caller *model.Identity, currentPassword, newPassword string) error {
	user, err := s.ByID(ctx, caller.UserID)
	if err != nil {
		return err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword))
	if err != nil {
		return ErrValidation("current password is incorrect")
	}

	if err := validation.ValidatePassword(newPassword); err != nil {
		return ErrValidation(err.Error())
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.userRepo.UpdatePassword(ctx, user.ID, string(hashedPassword))
	if err != nil {
		return ErrDependency("failed to update password", err)
	}

	slog.Info("password updated", "user_id", user.ID)
	return nil
}

// ListPending returns accounts waiting for an admin decision, newest first.
func (s *UserService) ListPending(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.ByOnboarding(ctx, model.OnboardingPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending users: %w", err)
	}
	if users == nil {
		users = []*model.User{}
	}
	return users, nil
}

func (s *UserService) CountPending(ctx context.Context) (int, error) {
	count, err := s.userRepo.CountByOnboarding(ctx, model.OnboardingPending)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending users: %w", err)
	}
	return count, nil
}

func (s *UserService) Approve(ctx context.Context, admin *model.Identity, userID string) (*model.User, error) {
	return s.decide(ctx, admin, userID, model.OnboardingApproved)
}

func (s *UserService) Reject(ctx context.Context, admin *model.Identity, userID string) (*model.User, error) {
	return s.decide(ctx, admin, userID, model.OnboardingRejected)
}

// decide moves a pending account to its final onboarding state. Accounts that
// are not pending are reported as not found.
func (s *UserService) decide(ctx context.Context, admin *model.Identity, userID string, to model.OnboardingStatus) (*model.User, error) {
	ok, err := s.userRepo.TransitionOnboarding(ctx, userID, model.OnboardingPending, to)
	if err != nil {
		return nil, ErrDependency("failed to update user", err)
	}
	if !ok {
		return nil, ErrNotFound("pending user not found")
	}

	user, err := s.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	action := activity.ActionApproveUser
	if to == model.OnboardingRejected {
		action = activity.ActionRejectUser
		err = s.emailService.SendAccountRejectedEmail(ctx, user.Email, user.Fullname)
	} else {
		err = s.emailService.SendAccountApprovedEmail(ctx, user.Email, user.Fullname)
	}
	if err != nil {
		slog.Warn("failed to send onboarding email", "error", err, "user_id", user.ID, "status", to)
	}

	s.activity.Log(ctx, admin.UserID, action, fmt.Sprintf("%s user %s", to, user.Email))
	return user, nil
}

func (s *UserService) SetActive(ctx context.Context, admin *model.Identity, userID string, active bool) (*model.User, error) {
	if admin.UserID == userID && !active {
		return nil, ErrValidation("you cannot deactivate your own account")
	}

	err := s.userRepo.SetActive(ctx, userID, active)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrNotFound("user not found")
	}
	if err != nil {
		return nil, ErrDependency("failed to update user", err)
	}

	s.activity.Log(ctx, admin.UserID, activity.ActionUpdateUser, fmt.Sprintf("Set user %s active=%t", userID, active))
	return s.ByID(ctx, userID)
}

// ListActivity returns the most recent audit entries.
func (s *UserService) ListActivity(ctx context.Context, limit int) ([]*model.ActivityLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	logs, err := s.activityRepo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	if logs == nil {
		logs = []*model.ActivityLog{}
	}
	return logs, nil
}
