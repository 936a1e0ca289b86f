package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nightlight/internal/db"
)

// ErrInvalidCredentials is returned for both unknown names and wrong
// passwords, so a login response never reveals which accounts exist.
var ErrInvalidCredentials = errors.New("invalid name or password")

var validate = validator.New()

// RegisterInput carries the raw registration form fields.
type RegisterInput struct {
	Name            string `validate:"required"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=8,max=100"`
	PasswordConfirm string `validate:"required,eqfield=Password"`
}

// FieldErrors maps a form field name to its validation message.
type FieldErrors map[string]string

// UserService handles account registration and credential checks.
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a UserService instance.
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb}
}

// Register validates the input and creates an account with a bcrypt-hashed
// password. Validation failures come back as per-field messages with a nil
// error; only infrastructure failures populate the error.
func (s *UserService) Register(input RegisterInput) (*db.User, FieldErrors, error) {
	input.Name = strings.ToLower(strings.TrimSpace(input.Name))
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if fieldErrs := validateRegisterInput(input); len(fieldErrs) > 0 {
		return nil, fieldErrs, nil
	}

	fieldErrs := FieldErrors{}
	var existing db.User
	if err := s.db.Where("name = ?", input.Name).First(&existing).Error; err == nil {
		fieldErrs["name"] = "That name is already taken"
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}
	if err := s.db.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		fieldErrs["email"] = "That email address is already registered"
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}
	if len(fieldErrs) > 0 {
		return nil, fieldErrs, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	user := db.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashed),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, nil, err
	}
	return &user, nil, nil
}

// Authenticate verifies a name/password pair and returns the matching user.
func (s *UserService) Authenticate(name, password string) (*db.User, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user db.User
	if err := s.db.Where("name = ?", name).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func validateRegisterInput(input RegisterInput) FieldErrors {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return FieldErrors{"form": "Registration could not be processed"}
	}

	fieldErrs := FieldErrors{}
	for _, fe := range invalid {
		switch fe.StructField() {
		case "Name":
			fieldErrs["name"] = "Please enter your name"
		case "Email":
			fieldErrs["email"] = "Please enter a valid email address"
		case "Password":
			fieldErrs["password"] = "Password must be between 8 and 100 characters"
		case "PasswordConfirm":
			if fe.Tag() == "eqfield" {
				fieldErrs["passwordconfirm"] = "Oops! Your passwords do not match"
			} else {
				fieldErrs["passwordconfirm"] = "Please confirm your password"
			}
		}
	}
	return fieldErrs
}
