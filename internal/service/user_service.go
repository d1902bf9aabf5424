package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/fittracker-api/internal/models"
	"github.com/fittracker-api/internal/repository"
	"github.com/fittracker-api/pkg/crypto"
	"github.com/go-playground/validator/v10"
)

// profileRules lists the only fields a profile update may touch, with the
// validator rule each value must satisfy
var profileRules = map[string]string{
	"age":       "min=1,max=150",
	"height":    "min=100,max=250",
	"weight":    "min=20,max=300",
	"gender":    "oneof=M F O",
	"step_goal": "min=1000,max=100000",
}

// UserService handles user profile operations
type UserService struct {
	userRepo *repository.UserRepository
	weekly   *WeeklyService
	validate *validator.Validate
}

// NewUserService creates a new UserService
func NewUserService(userRepo *repository.UserRepository, weekly *WeeklyService) *UserService {
	return &UserService{
		userRepo: userRepo,
		weekly:   weekly,
		validate: validator.New(),
	}
}

// CreateUserRequest represents the signup payload
type CreateUserRequest struct {
	Username  string  `json:"username" binding:"required,max=100"`
	Password  string  `json:"password" binding:"required,max=72"`
	Email     string  `json:"email" binding:"required,email,max=100"`
	FirstName string  `json:"first_name" binding:"max=100"`
	LastName  string  `json:"last_name" binding:"max=100"`
	Age       *int    `json:"age" binding:"omitempty,min=1,max=150"`
	Height    *int    `json:"height" binding:"omitempty,min=100,max=250"`
	Weight    *int    `json:"weight" binding:"omitempty,min=20,max=300"`
	Gender    *string `json:"gender" binding:"omitempty,oneof=M F O"`
	StepGoal  *int    `json:"step_goal" binding:"omitempty,min=1000,max=100000"`
}

// Create registers a new user
func (s *UserService) Create(req *CreateUserRequest) (*models.User, error) {
	if len(req.Password) > crypto.MaxPasswordBytes {
		return nil, FieldErrors{"password": {fmt.Sprintf("Must be at most %d bytes.", crypto.MaxPasswordBytes)}}
	}

	exists, err := s.userRepo.ExistsByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	passwordHash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: passwordHash,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Age:          req.Age,
		Height:       req.Height,
		Weight:       req.Weight,
		Gender:       req.Gender,
		StepGoal:     models.DefaultStepGoal,
	}
	if req.StepGoal != nil {
		user.StepGoal = *req.StepGoal
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// List returns every user
func (s *UserService) List() ([]models.User, error) {
	return s.userRepo.List()
}

// Get returns a user by ID
func (s *UserService) Get(id uint) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

// UpdateProfile applies a partial profile update. The request is rejected as
// a whole with ErrFieldNotUpdatable if any key falls outside profileRules, and
// with FieldErrors if any value is invalid; nothing is written in either case.
func (s *UserService) UpdateProfile(id uint, payload map[string]json.RawMessage) (*models.User, error) {
	if _, err := s.userRepo.GetByID(id); err != nil {
		return nil, err
	}

	for key := range payload {
		if _, ok := profileRules[key]; !ok {
			return nil, ErrFieldNotUpdatable
		}
	}

	updates, err := s.parseProfileUpdate(payload)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateFields(id, updates); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(id)
}

func (s *UserService) parseProfileUpdate(payload map[string]json.RawMessage) (map[string]interface{}, error) {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	updates := make(map[string]interface{}, len(payload))
	problems := FieldErrors{}

	for _, key := range keys {
		raw := bytes.TrimSpace(payload[key])
		if bytes.Equal(raw, []byte("null")) {
			if key == "step_goal" {
				problems.Add(key, "This field may not be null.")
				continue
			}
			updates[key] = nil
			continue
		}

		var value interface{}
		if key == "gender" {
			var gender string
			if err := json.Unmarshal(raw, &gender); err != nil {
				problems.Add(key, "Not a valid string.")
				continue
			}
			value = gender
		} else {
			var n int
			if err := json.Unmarshal(raw, &n); err != nil {
				problems.Add(key, "A valid integer is required.")
				continue
			}
			value = n
		}

		if err := s.validate.Var(value, profileRules[key]); err != nil {
			problems.Add(key, ruleMessage(err))
			continue
		}
		updates[key] = value
	}

	if err := problems.orNil(); err != nil {
		return nil, err
	}
	return updates, nil
}

// Delete removes a user and all of their activity rows
func (s *UserService) Delete(ctx context.Context, id uint) error {
	if err := s.userRepo.Delete(id); err != nil {
		return err
	}
	s.weekly.Invalidate(ctx, id)
	return nil
}

func ruleMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	return RuleMessage(verrs[0].Tag(), verrs[0].Param())
}

// RuleMessage renders a failed validator tag as a client-facing message
func RuleMessage(tag, param string) string {
	switch tag {
	case "required":
		return "This field is required."
	case "min":
		return "Must be at least " + param + "."
	case "max":
		return "Must be at most " + param + "."
	case "oneof":
		return "Must be one of: " + param + "."
	case "email":
		return "Enter a valid email address."
	default:
		return "Invalid value (" + tag + ")."
	}
}
