package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"

	"github.com/drivelane-dev/drivelane/internal/middleware"
	"github.com/drivelane-dev/drivelane/internal/models"
	"github.com/drivelane-dev/drivelane/internal/store"
	"github.com/drivelane-dev/drivelane/internal/types"
	"github.com/gin-gonic/gin"
)

var birthDatePattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

type CreateApplicationRequest struct {
	LastName            string  `json:"last_name" binding:"required,max=50"`
	FirstName           string  `json:"first_name" binding:"required,max=50"`
	MiddleName          string  `json:"middle_name" binding:"max=50"`
	DriverLicenseNumber string  `json:"driver_license_number" binding:"max=15"`
	BirthDate           string  `json:"birth_date" binding:"required"`
	Sex                 string  `json:"sex" binding:"required,oneof=M F X"`
	Height              float64 `json:"height" binding:"required,gt=0"`

	UnitNumber   string `json:"unit_number" binding:"max=10"`
	StreetNumber string `json:"street_number" binding:"required,max=10"`
	StreetName   string `json:"street_name" binding:"required,max=100"`
	POBox        string `json:"po_box" binding:"max=10"`
	City         string `json:"city" binding:"required,max=100"`
	Province     string `json:"province" binding:"required,max=50"`
	PostalCode   string `json:"postal_code" binding:"required"`

	Status string `json:"status"`
}

// UpdateApplicationRequest distinguishes absent fields from zero values so
// a partial update leaves everything it does not mention untouched.
type UpdateApplicationRequest struct {
	LastName            *string  `json:"last_name" binding:"omitempty,min=1,max=50"`
	FirstName           *string  `json:"first_name" binding:"omitempty,min=1,max=50"`
	MiddleName          *string  `json:"middle_name" binding:"omitempty,max=50"`
	DriverLicenseNumber *string  `json:"driver_license_number" binding:"omitempty,max=15"`
	BirthDate           *string  `json:"birth_date"`
	Sex                 *string  `json:"sex" binding:"omitempty,oneof=M F X"`
	Height              *float64 `json:"height" binding:"omitempty,gt=0"`

	UnitNumber   *string `json:"unit_number" binding:"omitempty,max=10"`
	StreetNumber *string `json:"street_number" binding:"omitempty,min=1,max=10"`
	StreetName   *string `json:"street_name" binding:"omitempty,min=1,max=100"`
	POBox        *string `json:"po_box" binding:"omitempty,max=10"`
	City         *string `json:"city" binding:"omitempty,min=1,max=100"`
	Province     *string `json:"province" binding:"omitempty,min=1,max=50"`
	PostalCode   *string `json:"postal_code" binding:"omitempty,min=1"`

	Status *string `json:"status" binding:"omitempty,min=1"`
}

type ApplicationHandler struct {
	applications *store.ApplicationStore
	logger       *slog.Logger
}

func NewApplicationHandler(applications *store.ApplicationStore, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		applications: applications,
		logger:       logger,
	}
}

func (h *ApplicationHandler) Create(ctx *gin.Context) {
	currentUser, ok := middleware.CurrentUser(ctx)

	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateApplicationRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid request body"})
		return
	}

	if !birthDatePattern.MatchString(req.BirthDate) {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Birth date must be in dd/mm/yyyy format"})
		return
	}

	app := models.DriverLicenseApplication{
		LastName:            req.LastName,
		FirstName:           req.FirstName,
		MiddleName:          req.MiddleName,
		DriverLicenseNumber: req.DriverLicenseNumber,
		BirthDate:           req.BirthDate,
		Sex:                 req.Sex,
		Height:              req.Height,
		UnitNumber:          req.UnitNumber,
		StreetNumber:        req.StreetNumber,
		StreetName:          req.StreetName,
		POBox:               req.POBox,
		City:                req.City,
		Province:            req.Province,
		PostalCode:          req.PostalCode,
		Status:              req.Status,
	}

	if err := h.applications.Create(&app, currentUser.ID); err != nil {
		h.logger.Error("failed to create application", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, types.NewApplicationResponse(&app))
}

func (h *ApplicationHandler) ListMine(ctx *gin.Context) {
	currentUser, ok := middleware.CurrentUser(ctx)

	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	apps, err := h.applications.ListByOwner(currentUser.ID)

	if err != nil {
		h.logger.Error("failed to list applications", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	response := make([]types.ApplicationResponse, 0, len(apps))

	for i := range apps {
		response = append(response, types.NewApplicationResponse(&apps[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *ApplicationHandler) Get(ctx *gin.Context) {
	currentUser, ok := middleware.CurrentUser(ctx)

	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := applicationID(ctx)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	app, err := h.applications.GetByID(id, currentUser.ID)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
			return
		}
		h.logger.Error("failed to fetch application", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, types.NewApplicationResponse(app))
}

func (h *ApplicationHandler) Update(ctx *gin.Context) {
	currentUser, ok := middleware.CurrentUser(ctx)

	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := applicationID(ctx)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	var req UpdateApplicationRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid request body"})
		return
	}

	if req.BirthDate != nil && !birthDatePattern.MatchString(*req.BirthDate) {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Birth date must be in dd/mm/yyyy format"})
		return
	}

	app, err := h.applications.Update(id, currentUser.ID, req.updates())

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
			return
		}
		h.logger.Error("failed to update application", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, types.NewApplicationResponse(app))
}

func (h *ApplicationHandler) Delete(ctx *gin.Context) {
	currentUser, ok := middleware.CurrentUser(ctx)

	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := applicationID(ctx)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	if err := h.applications.Delete(id, currentUser.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
			return
		}
		h.logger.Error("failed to delete application", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// updates maps the fields present in the request to their columns. Absent
// fields stay out of the map and keep their stored values.
func (r *UpdateApplicationRequest) updates() map[string]interface{} {
	updates := make(map[string]interface{})

	if r.LastName != nil {
		updates["last_name"] = *r.LastName
	}
	if r.FirstName != nil {
		updates["first_name"] = *r.FirstName
	}
	if r.MiddleName != nil {
		updates["middle_name"] = *r.MiddleName
	}
	if r.DriverLicenseNumber != nil {
		updates["driver_license_number"] = *r.DriverLicenseNumber
	}
	if r.BirthDate != nil {
		updates["birth_date"] = *r.BirthDate
	}
	if r.Sex != nil {
		updates["sex"] = *r.Sex
	}
	if r.Height != nil {
		updates["height"] = *r.Height
	}
	if r.UnitNumber != nil {
		updates["unit_number"] = *r.UnitNumber
	}
	if r.StreetNumber != nil {
		updates["street_number"] = *r.StreetNumber
	}
	if r.StreetName != nil {
		updates["street_name"] = *r.StreetName
	}
	if r.POBox != nil {
		updates["po_box"] = *r.POBox
	}
	if r.City != nil {
		updates["city"] = *r.City
	}
	if r.Province != nil {
		updates["province"] = *r.Province
	}
	if r.PostalCode != nil {
		updates["postal_code"] = *r.PostalCode
	}
	if r.Status != nil {
		updates["status"] = *r.Status
	}

	return updates
}

func applicationID(ctx *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)

	if err != nil {
		return 0, err
	}

	return uint(id), nil
}
