package models

import "gorm.io/gorm"

const StatusInProgress = "in_progress"

type DriverLicenseApplication struct {
	gorm.Model

	LastName            string  `gorm:"not null"`
	FirstName           string  `gorm:"not null"`
	MiddleName          string
	DriverLicenseNumber string
	BirthDate           string  `gorm:"not null"` // dd/mm/yyyy
	Sex                 string  `gorm:"not null"` // M, F or X
	Height              float64 `gorm:"not null"` // centimeters

	UnitNumber   string
	StreetNumber string `gorm:"not null"`
	StreetName   string `gorm:"not null"`
	POBox        string `gorm:"column:po_box"`
	City         string `gorm:"not null"`
	Province     string `gorm:"not null"`
	PostalCode   string `gorm:"not null"`

	Status string `gorm:"not null;default:'in_progress'"`
	UserID uint   `gorm:"not null;index"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
