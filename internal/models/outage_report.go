package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HapoSeiz/AlertShip/pkg/errors"
	"github.com/HapoSeiz/AlertShip/pkg/util"
)

const SigReportCreate = "report.create"

// Outage types accepted by the report form.
const (
	OutageElectricity = "electricity"
	OutageWater       = "water"
)

// LatestReportsLimit caps the homepage strip.
const LatestReportsLimit = 4

var ErrReportNotFound = errors.New("report not found")

// OutageReport is one submitted civic outage.
type OutageReport struct {
	ID          uint   `json:"-" gorm:"primaryKey"`
	PublicID    string `json:"id" gorm:"size:64;uniqueIndex"`
	Type        string `json:"type" gorm:"size:32;index"`
	Description string `json:"description" gorm:"size:2048"`

	Locality string `json:"locality" gorm:"size:255"`
	City     string `json:"city" gorm:"size:255;index"`
	State    string `json:"state" gorm:"size:255"`
	PinCode  string `json:"pinCode" gorm:"size:6"`

	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	// Source records whether the coordinates came from the device or a
	// place search.
	Source string `json:"locationSource" gorm:"size:16"`

	PlaceID      string `json:"placeId,omitempty" gorm:"size:255"`
	Premise      string `json:"premise,omitempty" gorm:"size:255"`
	Route        string `json:"route,omitempty" gorm:"size:255"`
	Neighborhood string `json:"neighborhood,omitempty" gorm:"size:255"`
	Sublocality  string `json:"sublocality,omitempty" gorm:"size:255"`

	ReportedBy *uint `json:"-" gorm:"index"`

	CreatedAt time.Time `json:"timestamp"`
	UpdatedAt time.Time `json:"-"`
}

// ValidOutageType reports whether t is an accepted outage kind.
func ValidOutageType(t string) bool {
	return t == OutageElectricity || t == OutageWater
}

// CreateOutageReport persists a report with a server timestamp and emits
// SigReportCreate for the live-refresh and subscriber-alert listeners.
func CreateOutageReport(db *gorm.DB, report *OutageReport) error {
	report.PublicID = uuid.NewString()
	if err := db.Create(report).Error; err != nil {
		return errors.Wrap(err, "create outage report")
	}
	util.Sig().Emit(SigReportCreate, report)
	return nil
}

// ListOutageReports returns reports newest first, optionally filtered by
// exact city match.
func ListOutageReports(db *gorm.DB, city string) ([]OutageReport, error) {
	var reports []OutageReport
	q := db.Order("created_at DESC")
	if city != "" {
		q = q.Where("city = ?", city)
	}
	if err := q.Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

// LatestOutageReports returns the newest few reports for the homepage.
func LatestOutageReports(db *gorm.DB) ([]OutageReport, error) {
	var reports []OutageReport
	err := db.Order("created_at DESC").Limit(LatestReportsLimit).Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// GetOutageReport loads one report by its public id.
func GetOutageReport(db *gorm.DB, publicID string) (*OutageReport, error) {
	var report OutageReport
	err := db.Where("public_id = ?", publicID).First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}
