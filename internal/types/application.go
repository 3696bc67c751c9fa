package types

import "github.com/drivelane-dev/drivelane/internal/models"

type ApplicationResponse struct {
	ID                  uint    `json:"id"`
	LastName            string  `json:"last_name"`
	FirstName           string  `json:"first_name"`
	MiddleName          string  `json:"middle_name,omitempty"`
	DriverLicenseNumber string  `json:"driver_license_number,omitempty"`
	BirthDate           string  `json:"birth_date"`
	Sex                 string  `json:"sex"`
	Height              float64 `json:"height"`
	UnitNumber          string  `json:"unit_number,omitempty"`
	StreetNumber        string  `json:"street_number"`
	StreetName          string  `json:"street_name"`
	POBox               string  `json:"po_box,omitempty"`
	City                string  `json:"city"`
	Province            string  `json:"province"`
	PostalCode          string  `json:"postal_code"`
	Status              string  `json:"status"`
	OwnerID             uint    `json:"owner_id"`
}

func NewApplicationResponse(app *models.DriverLicenseApplication) ApplicationResponse {
	return ApplicationResponse{
		ID:                  app.ID,
		LastName:            app.LastName,
		FirstName:           app.FirstName,
		MiddleName:          app.MiddleName,
		DriverLicenseNumber: app.DriverLicenseNumber,
		BirthDate:           app.BirthDate,
		Sex:                 app.Sex,
		Height:              app.Height,
		UnitNumber:          app.UnitNumber,
		StreetNumber:        app.StreetNumber,
		StreetName:          app.StreetName,
		POBox:               app.POBox,
		City:                app.City,
		Province:            app.Province,
		PostalCode:          app.PostalCode,
		Status:              app.Status,
		OwnerID:             app.UserID,
	}
}
