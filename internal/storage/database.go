package storage

import (
	"errors"
	"fmt"
	"time"

	"surfscout/internal/geo"
	"surfscout/internal/windfield"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrNotFound = errors.New("record not found")

type Database struct {
	db *gorm.DB
}

func NewDatabase(path string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(
		&User{},
		&Spot{},
		&Session{},
		&UserConnection{},
		&PlannedSession{},
		&SessionParticipant{},
		&WindForecast{},
		&WindFieldRecord{},
		&WindFieldPointRecord{},
		&WindFieldInterpolatedRecord{},
		&WindFieldCellRecord{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// -------- users --------

func (d *Database) CreateUser(user *User) error {
	return d.db.Create(user).Error
}

func (d *Database) GetUserByUsername(username string) (*User, error) {
	var user User
	if err := d.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}

func (d *Database) GetUser(id uint) (*User, error) {
	var user User
	if err := d.db.First(&user, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}

func (d *Database) ListUsers() ([]User, error) {
	var users []User
	if err := d.db.Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// -------- spots --------

func (d *Database) CreateSpot(spot *Spot) error {
	return d.db.Create(spot).Error
}

func (d *Database) GetSpot(id uint) (*Spot, error) {
	var spot Spot
	if err := d.db.First(&spot, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &spot, nil
}

func (d *Database) ListSpots() ([]Spot, error) {
	var spots []Spot
	if err := d.db.Order("name").Find(&spots).Error; err != nil {
		return nil, err
	}
	return spots, nil
}

func (d *Database) RenameSpot(id uint, name string) error {
	result := d.db.Model(&Spot{}).Where("id = ?", id).Update("name", name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) SetWindFetchArea(id uint, geojson string) error {
	result := d.db.Model(&Spot{}).Where("id = ?", id).Update("wind_fetch_area", geojson)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SpotPolygon parses the spot's wind-fetch area. The second return value is
// false when no polygon is defined, which is a valid state, not an error.
func (d *Database) SpotPolygon(id uint) (geo.Polygon, bool, error) {
	spot, err := d.GetSpot(id)
	if err != nil {
		return geo.Polygon{}, false, err
	}
	if spot.WindFetchArea == "" {
		return geo.Polygon{}, false, nil
	}
	polygon, err := geo.FromGeoJSON([]byte(spot.WindFetchArea))
	if err != nil {
		return geo.Polygon{}, false, fmt.Errorf("spot %d wind fetch area: %w", id, err)
	}
	return polygon, true, nil
}

// -------- sessions --------

func (d *Database) CreateSession(session *Session) error {
	return d.db.Create(session).Error
}

func (d *Database) GetSession(id uint) (*Session, error) {
	var session Session
	if err := d.db.First(&session, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &session, nil
}

func (d *Database) UpdateSessionTideAndWind(id uint, tide string, speedKnots, directionDegrees *float64) error {
	return d.db.Model(&Session{}).Where("id = ?", id).Updates(map[string]interface{}{
		"tide":                  tide,
		"wind_speed_knots":      speedKnots,
		"wind_direction_degree": directionDegrees,
	}).Error
}

// SessionFilter narrows SearchSessions. Zero values mean "no filter". The
// radius filter runs in Go over the SQL result since SQLite has no spatial
// functions here.
type SessionFilter struct {
	Date     *time.Time
	SpotName string
	Lat      *float64
	Lng      *float64
	RadiusKm *float64
}

func (d *Database) SearchSessions(userID uint, filter SessionFilter) ([]Session, error) {
	query := d.db.Where("user_id = ?", userID)
	if filter.Date != nil {
		dayStart := filter.Date.Truncate(24 * time.Hour)
		query = query.Where("date >= ? AND date < ?", dayStart, dayStart.Add(24*time.Hour))
	}
	if filter.SpotName != "" {
		query = query.Where("LOWER(spot_name) LIKE ?", "%"+filter.SpotName+"%")
	}

	var sessions []Session
	if err := query.Order("date desc").Find(&sessions).Error; err != nil {
		return nil, err
	}

	if filter.Lat != nil && filter.Lng != nil && filter.RadiusKm != nil {
		center := geo.Point{Lng: *filter.Lng, Lat: *filter.Lat}
		radiusMeters := *filter.RadiusKm * 1000
		filtered := sessions[:0]
		for _, s := range sessions {
			if geo.DistanceMeters(center, geo.Point{Lng: s.Lng, Lat: s.Lat}) <= radiusMeters {
				filtered = append(filtered, s)
			}
		}
		sessions = filtered
	}
	return sessions, nil
}

// -------- user connections --------

// CreatePendingConnection stores a new pending edge, keeping the request
// direction so only the addressee can respond to it. Returns
// ErrConnectionExists when the pair is already connected or pending in
// either direction.
var ErrConnectionExists = errors.New("connection already exists")

func (d *Database) CreatePendingConnection(requesterID, addresseeID uint) (*UserConnection, error) {
	var existing UserConnection
	err := d.db.
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			requesterID, addresseeID, addresseeID, requesterID).
		First(&existing).Error
	if err == nil {
		return nil, ErrConnectionExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	connection := &UserConnection{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      "pending",
		RequestDate: time.Now().UTC(),
	}
	if err := d.db.Create(connection).Error; err != nil {
		return nil, err
	}
	return connection, nil
}

func (d *Database) PendingConnectionsFor(userID uint) ([]UserConnection, error) {
	var connections []UserConnection
	err := d.db.
		Where("(addressee_id = ? OR requester_id = ?) AND status = ?", userID, userID, "pending").
		Find(&connections).Error
	if err != nil {
		return nil, err
	}
	return connections, nil
}

// UpdateConnectionStatus resolves a pending request. The row is matched in
// its stored direction, so a requester passing the pair reversed gets
// ErrNotFound instead of accepting their own request.
func (d *Database) UpdateConnectionStatus(requesterID, addresseeID uint, status string) error {
	updates := map[string]interface{}{"status": status}
	if status == "accepted" {
		now := time.Now().UTC()
		updates["accepted_date"] = &now
	}

	result := d.db.Model(&UserConnection{}).
		Where("requester_id = ? AND addressee_id = ?", requesterID, addresseeID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AcceptedPartnerIDs returns the ids of all users connected to userID.
func (d *Database) AcceptedPartnerIDs(userID uint) ([]uint, error) {
	var connections []UserConnection
	err := d.db.
		Where("(requester_id = ? OR addressee_id = ?) AND status = ?", userID, userID, "accepted").
		Find(&connections).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(connections))
	for _, c := range connections {
		if c.RequesterID == userID {
			ids = append(ids, c.AddresseeID)
		} else {
			ids = append(ids, c.RequesterID)
		}
	}
	return ids, nil
}

// -------- planned sessions --------

func (d *Database) CreatePlannedSession(planned *PlannedSession) error {
	return d.db.Create(planned).Error
}

// PlannedSessionsForUser returns planned sessions the user participates in,
// split by future (date >= today) or past.
func (d *Database) PlannedSessionsForUser(userID uint, future bool, today time.Time) ([]PlannedSession, error) {
	op := "<"
	if future {
		op = ">="
	}

	var sessions []PlannedSession
	err := d.db.Preload("Participants").
		Joins("JOIN session_participants ON session_participants.planned_session_id = planned_sessions.id").
		Where("session_participants.user_id = ?", userID).
		Where("planned_sessions.date "+op+" ?", today.Truncate(24*time.Hour)).
		Group("planned_sessions.id").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// PlannedSessionsOfConnections returns future planned sessions where at
// least one connection of the user participates but the user does not.
func (d *Database) PlannedSessionsOfConnections(userID uint, partnerIDs []uint, today time.Time) ([]PlannedSession, error) {
	if len(partnerIDs) == 0 {
		return nil, nil
	}

	var sessions []PlannedSession
	err := d.db.Preload("Participants").
		Where("date >= ?", today.Truncate(24*time.Hour)).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	partners := make(map[uint]bool, len(partnerIDs))
	for _, id := range partnerIDs {
		partners[id] = true
	}

	var result []PlannedSession
	for _, s := range sessions {
		hasPartner, hasUser := false, false
		for _, p := range s.Participants {
			if p.UserID == userID {
				hasUser = true
			}
			if partners[p.UserID] {
				hasPartner = true
			}
		}
		if hasPartner && !hasUser {
			result = append(result, s)
		}
	}
	return result, nil
}

// PlannedSessionConflict reports whether a planned session already exists at
// the same date and spot with any of the given participants.
func (d *Database) PlannedSessionConflict(date time.Time, spotID uint, participantIDs []uint) (bool, error) {
	var sessions []PlannedSession
	err := d.db.Preload("Participants").
		Where("date = ? AND spot_id = ?", date.Truncate(24*time.Hour), spotID).
		Find(&sessions).Error
	if err != nil {
		return false, err
	}

	ids := make(map[uint]bool, len(participantIDs))
	for _, id := range participantIDs {
		ids[id] = true
	}
	for _, s := range sessions {
		for _, p := range s.Participants {
			if ids[p.UserID] {
				return true, nil
			}
		}
	}
	return false, nil
}

// UpcomingPlannedSessions returns planned sessions from today onward, with
// participants, for the forecast poller.
func (d *Database) UpcomingPlannedSessions(today time.Time) ([]PlannedSession, error) {
	var sessions []PlannedSession
	err := d.db.Preload("Participants").
		Where("date >= ?", today.Truncate(24*time.Hour)).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// -------- wind forecasts --------

func (d *Database) SaveForecast(forecast *WindForecast) error {
	return d.db.Create(forecast).Error
}

// CleanupForecasts deletes forecasts requested before the cutoff that belong
// to unrated planned sessions. Rated sessions keep their forecasts.
func (d *Database) CleanupForecasts(cutoff time.Time) error {
	return d.db.
		Where("request_time < ?", cutoff).
		Where("planned_session_id IN (?)",
			d.db.Model(&PlannedSession{}).Select("id").Where("rated = ?", false)).
		Delete(&WindForecast{}).Error
}

// CleanupPastUnratedPlans deletes planned sessions older than the cutoff
// date that were never rated, cascading to participants and forecasts.
func (d *Database) CleanupPastUnratedPlans(cutoff time.Time) error {
	var plans []PlannedSession
	err := d.db.
		Where("date < ? AND rated = ?", cutoff.Truncate(24*time.Hour), false).
		Find(&plans).Error
	if err != nil {
		return err
	}
	for _, plan := range plans {
		if err := d.db.Select("Participants", "Forecasts").Delete(&plan).Error; err != nil {
			return err
		}
	}
	return nil
}

// -------- wind fields --------

// SaveWindFields persists a session's assembled wind fields in one
// transaction: either the whole batch commits or none of it does.
func (d *Database) SaveWindFields(fields []windfield.Field) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		for _, field := range fields {
			record := WindFieldRecord{
				SessionID: field.SessionID,
				At:        field.At,
				Points:    make([]WindFieldPointRecord, 0, len(field.Points)),
			}
			for _, p := range field.Points {
				record.Points = append(record.Points, WindFieldPointRecord{
					Lng:              p.Location.Lng,
					Lat:              p.Location.Lat,
					SpeedKnots:       p.SpeedKnots,
					DirectionDegrees: p.DirectionDegrees,
				})
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *Database) WindFieldsBySession(sessionID uint) ([]windfield.Field, error) {
	var records []WindFieldRecord
	err := d.db.Preload("Points").
		Where("session_id = ?", sessionID).
		Order("at").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	fields := make([]windfield.Field, 0, len(records))
	for _, record := range records {
		field := windfield.Field{SessionID: record.SessionID, At: record.At}
		for _, p := range record.Points {
			field.Points = append(field.Points, windfield.SamplePoint{
				Location:         geo.Point{Lng: p.Lng, Lat: p.Lat},
				SpeedKnots:       p.SpeedKnots,
				DirectionDegrees: p.DirectionDegrees,
			})
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// SaveInterpolated persists one interpolated field and all its cells in a
// single transaction, satisfying the windfield.Sink contract that a field is
// written atomically as a unit.
func (d *Database) SaveInterpolated(field windfield.Interpolated) error {
	record := WindFieldInterpolatedRecord{
		SessionID:      field.SessionID,
		At:             field.At,
		CellSizeMeters: field.CellSizeMeters,
		Cells:          make([]WindFieldCellRecord, 0, len(field.Cells)),
	}
	for _, cell := range field.Cells {
		record.Cells = append(record.Cells, WindFieldCellRecord{
			CellID:         cell.ID,
			CenterLng:      cell.Center.Lng,
			CenterLat:      cell.Center.Lat,
			CellSizeMeters: cell.CellSizeMeters,
			SpeedKnots:     cell.SpeedKnots,
		})
	}

	return d.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&record).Error
	})
}

func (d *Database) InterpolatedBySession(sessionID uint) ([]windfield.Interpolated, error) {
	var records []WindFieldInterpolatedRecord
	err := d.db.Preload("Cells").
		Where("session_id = ?", sessionID).
		Order("at").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	fields := make([]windfield.Interpolated, 0, len(records))
	for _, record := range records {
		field := windfield.Interpolated{
			SessionID:      record.SessionID,
			At:             record.At,
			CellSizeMeters: record.CellSizeMeters,
		}
		for _, cell := range record.Cells {
			field.Cells = append(field.Cells, windfield.Cell{
				ID:             cell.CellID,
				Center:         geo.Point{Lng: cell.CenterLng, Lat: cell.CenterLat},
				CellSizeMeters: cell.CellSizeMeters,
				SpeedKnots:     cell.SpeedKnots,
			})
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// DeleteWindFieldsBefore removes wind fields (raw and interpolated) older
// than the cutoff, cascading to points and cells.
func (d *Database) DeleteWindFieldsBefore(cutoff time.Time) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		var raw []WindFieldRecord
		if err := tx.Where("at < ?", cutoff).Find(&raw).Error; err != nil {
			return err
		}
		for _, record := range raw {
			if err := tx.Select("Points").Delete(&record).Error; err != nil {
				return err
			}
		}

		var interpolated []WindFieldInterpolatedRecord
		if err := tx.Where("at < ?", cutoff).Find(&interpolated).Error; err != nil {
			return err
		}
		for _, record := range interpolated {
			if err := tx.Select("Cells").Delete(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
