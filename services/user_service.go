package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"report-approval-api/config"
	"report-approval-api/models"
	"report-approval-api/utils"
)

type CreateUserInput struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	if db == nil {
		db = config.DB
	}
	return &UserService{db: db}
}

// CreateUser registers a new account in Pending status. Role defaults to
// Engineer.
func (s *UserService) CreateUser(input *CreateUserInput) (*models.User, error) {
	if input == nil || strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	role := input.Role
	if role == "" {
		role = "Engineer"
	}

	user := &models.User{
		FullName: input.FullName,
		Email:    input.Email,
		Role:     role,
		Status:   models.UserStatusPending,
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, err
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail loads a user by their email identity.
func (s *UserService) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "email = ?", email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUserStatus sets a user's account status.
func (s *UserService) UpdateUserStatus(userID uint, status string) error {
	var user models.User
	if err := s.db.First(&user, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: id %d", ErrUserNotFound, userID)
		}
		return err
	}
	return s.db.Model(&user).Update("status", status).Error
}

// UserSummary is the name/email pair exposed by role listings.
type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GetUsersByRole groups active users by their classified role. Keys are the
// frontend categories Admin, Engineer, TM, PM.
func (s *UserService) GetUsersByRole() (map[string][]UserSummary, error) {
	var users []models.User
	if err := s.db.Where("status = ?", models.UserStatusActive).Find(&users).Error; err != nil {
		return nil, err
	}

	grouped := map[string][]UserSummary{
		"Admin":    {},
		"Engineer": {},
		"TM":       {},
		"PM":       {},
	}
	for _, u := range users {
		summary := UserSummary{Name: u.FullName, Email: u.Email}
		switch utils.ClassifyRole(u.Role) {
		case utils.RoleAdmin:
			grouped["Admin"] = append(grouped["Admin"], summary)
		case utils.RoleEngineer:
			grouped["Engineer"] = append(grouped["Engineer"], summary)
		case utils.RoleTechnicalManager:
			grouped["TM"] = append(grouped["TM"], summary)
		case utils.RoleProjectManager:
			grouped["PM"] = append(grouped["PM"], summary)
		}
	}
	return grouped, nil
}
