package store

import (
	"errors"

	"github.com/drivelane-dev/drivelane/internal/models"
	"gorm.io/gorm"
)

// ApplicationStore persists driver license applications. Every read and
// write is scoped to the owning user: a lookup for a record owned by someone
// else behaves exactly like a lookup for a record that does not exist.
type ApplicationStore struct {
	db *gorm.DB
}

func NewApplicationStore(db *gorm.DB) *ApplicationStore {
	return &ApplicationStore{db: db}
}

// Create inserts a new application for the given owner. The owner is fixed
// here and never changes afterwards.
func (s *ApplicationStore) Create(app *models.DriverLicenseApplication, ownerID uint) error {
	app.UserID = ownerID

	if app.Status == "" {
		app.Status = models.StatusInProgress
	}

	return s.db.Create(app).Error
}

func (s *ApplicationStore) ListByOwner(ownerID uint) ([]models.DriverLicenseApplication, error) {
	var apps []models.DriverLicenseApplication

	if err := s.db.Where("user_id = ?", ownerID).Order("id").Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

func (s *ApplicationStore) GetByID(id, ownerID uint) (*models.DriverLicenseApplication, error) {
	var app models.DriverLicenseApplication

	if err := s.db.Where("id = ? AND user_id = ?", id, ownerID).First(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &app, nil
}

// Update overwrites only the supplied columns and returns the refreshed
// record. user_id is stripped from the update set; ownership is immutable.
func (s *ApplicationStore) Update(id, ownerID uint, updates map[string]interface{}) (*models.DriverLicenseApplication, error) {
	app, err := s.GetByID(id, ownerID)

	if err != nil {
		return nil, err
	}

	delete(updates, "user_id")

	if len(updates) > 0 {
		if err := s.db.Model(app).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return s.GetByID(id, ownerID)
}

func (s *ApplicationStore) Delete(id, ownerID uint) error {
	app, err := s.GetByID(id, ownerID)

	if err != nil {
		return err
	}

	return s.db.Delete(app).Error
}
