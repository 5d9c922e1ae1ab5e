package storage

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string   `gorm:"uniqueIndex" json:"username"`
	Email        string   `json:"email"`
	Role         string   `gorm:"default:unknown" json:"role"`
	PasswordHash string   `json:"-"`
	Sports       []string `gorm:"serializer:json" json:"sports"`
}

type Spot struct {
	gorm.Model
	Name string  `gorm:"uniqueIndex" json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`

	// WindFetchArea holds the wind-fetch polygon as a GeoJSON geometry.
	// Empty means no polygon is defined and wind-field generation is
	// skipped for sessions at this spot.
	WindFetchArea string `json:"wind_fetch_area,omitempty"`
}

type Session struct {
	gorm.Model
	Date      time.Time `gorm:"index" json:"date"`
	StartTime string    `json:"start_time"` // HH:mm
	EndTime   string    `json:"end_time"`   // HH:mm
	SpotID    uint      `gorm:"index" json:"spot_id"`
	SpotName  string    `json:"spot_name"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	UserID    uint      `gorm:"index" json:"user_id"`

	WaveHeight string  `json:"wave_height"`
	Rating     int     `json:"rating"`
	SailSize   float64 `json:"sail_size"`
	Tide       string  `json:"tide,omitempty"`

	WindSpeedKnots      *float64 `json:"wind_speed_knots,omitempty"`
	WindDirectionDegree *float64 `json:"wind_direction_degree,omitempty"`
}

// UserConnection is one edge of the friend graph, stored in the direction
// the request was made so only the addressee can respond. Duplicate checks
// cover both directions of a pair.
type UserConnection struct {
	gorm.Model
	RequesterID  uint       `gorm:"index:idx_connection_pair,unique" json:"requester_id"`
	AddresseeID  uint       `gorm:"index:idx_connection_pair,unique" json:"addressee_id"`
	Status       string     `gorm:"default:pending" json:"status"` // pending, accepted, rejected
	RequestDate  time.Time  `json:"request_date"`
	AcceptedDate *time.Time `json:"accepted_date,omitempty"`
}

type PlannedSession struct {
	gorm.Model
	Date         time.Time            `gorm:"index" json:"date"`
	SpotID       uint                 `json:"spot_id"`
	SportMode    string               `json:"sport_mode"`
	Rated        bool                 `json:"rated"`
	Participants []SessionParticipant `gorm:"constraint:OnDelete:CASCADE" json:"participants"`
	Forecasts    []WindForecast       `gorm:"constraint:OnDelete:CASCADE" json:"forecasts,omitempty"`
}

type SessionParticipant struct {
	gorm.Model
	PlannedSessionID uint   `gorm:"index" json:"planned_session_id"`
	UserID           uint   `gorm:"index" json:"user_id"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
}

// WindForecast is one point forecast stored by the poller for a planned
// session, one row per provider model and poll cycle.
type WindForecast struct {
	gorm.Model
	PlannedSessionID uint      `gorm:"index" json:"planned_session_id"`
	RequestTime      time.Time `json:"request_time"`
	ModelName        string    `gorm:"column:model_name" json:"model"`
	SpeedKnots       float64   `json:"speed_knots"`
	DirectionDegrees float64   `json:"direction_degrees"`
}

// WindFieldRecord owns its points exclusively; both are deleted together.
type WindFieldRecord struct {
	gorm.Model
	SessionID uint                   `gorm:"index" json:"session_id"`
	At        time.Time              `gorm:"index" json:"at"`
	Points    []WindFieldPointRecord `gorm:"constraint:OnDelete:CASCADE" json:"points"`
}

type WindFieldPointRecord struct {
	gorm.Model
	WindFieldRecordID uint    `gorm:"index" json:"wind_field_record_id"`
	Lng               float64 `json:"lng"`
	Lat               float64 `json:"lat"`
	SpeedKnots        float64 `json:"speed_knots"`
	DirectionDegrees  float64 `json:"direction_degrees"`
}

type WindFieldInterpolatedRecord struct {
	gorm.Model
	SessionID      uint                  `gorm:"index" json:"session_id"`
	At             time.Time             `gorm:"index" json:"at"`
	CellSizeMeters int                   `json:"cell_size_meters"`
	Cells          []WindFieldCellRecord `gorm:"constraint:OnDelete:CASCADE" json:"cells"`
}

// WindFieldCellRecord carries speed only; direction is never interpolated.
type WindFieldCellRecord struct {
	gorm.Model
	WindFieldInterpolatedRecordID uint    `gorm:"index" json:"wind_field_interpolated_record_id"`
	CellID                        int     `json:"cell_id"`
	CenterLng                     float64 `json:"center_lng"`
	CenterLat                     float64 `json:"center_lat"`
	CellSizeMeters                int     `json:"cell_size_meters"`
	SpeedKnots                    float64 `json:"speed_knots"`
}
