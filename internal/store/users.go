package store

import (
	"errors"
	"strings"

	"github.com/drivelane-dev/drivelane/internal/models"
	"gorm.io/gorm"
)

// UserStore persists user records. Email uniqueness is enforced by the
// database constraint, not by a read-then-write check, so two concurrent
// registrations with the same email resolve to exactly one row and one
// ErrDuplicateEmail.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// NormalizeEmail lowercases and trims an email address. Every email that
// reaches the store goes through this first so the uniqueness constraint is
// effectively case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserStore) Create(username, email, passwordHash string) (*models.User, error) {
	user := models.User{
		Username:     username,
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
	}

	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return &user, nil
}

func (s *UserStore) GetByID(id uint) (*models.User, error) {
	var user models.User

	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (s *UserStore) GetByUsername(username string) (*models.User, error) {
	var user models.User

	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (s *UserStore) GetByEmail(email string) (*models.User, error) {
	var user models.User

	if err := s.db.Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}

// Update applies the given column updates to the user. Emails in the update
// set are normalized; a collision with another user's email returns
// ErrDuplicateEmail.
func (s *UserStore) Update(id uint, updates map[string]interface{}) (*models.User, error) {
	user, err := s.GetByID(id)

	if err != nil {
		return nil, err
	}

	if email, ok := updates["email"].(string); ok {
		updates["email"] = NormalizeEmail(email)
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return s.GetByID(id)
}

// Delete removes the user together with every application they own. Both
// deletes run in one transaction so a failure leaves the account intact.
// The rows are hard-deleted: a soft delete would keep the email held by
// the unique index and block re-registration forever.
func (s *UserStore) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Unscoped().Delete(&models.User{}, id)

		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		return tx.Unscoped().Where("user_id = ?", id).Delete(&models.DriverLicenseApplication{}).Error
	})
}
