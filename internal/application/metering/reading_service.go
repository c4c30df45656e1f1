package metering

import (
	"context"
	"fmt"
	"time"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/metering"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/tenancy"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BatchLock serializes concurrent recording batches for the same building
// and period across instances.
type BatchLock interface {
	// Acquire returns true when the lock was taken; false means another
	// batch holds it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// batchLockTTL bounds how long a crashed batch can block its successors
const batchLockTTL = 2 * time.Minute

// RetentionMonths is how far back a reading period may be recorded or
// corrected. Older periods are settled history.
const RetentionMonths = 3

// ReadingEntry is one room's meter input inside a recording batch. Reset
// flags mark a meter replacement; the matching baseline override anchors the
// period instead of the prior month's index.
type ReadingEntry struct {
	RoomID       uuid.UUID
	CurrElectric decimal.Decimal
	CurrWater    decimal.Decimal

	ElectricReset         bool
	ElectricResetBaseline decimal.Decimal
	WaterReset            bool
	WaterResetBaseline    decimal.Decimal
}

// RecordReadingsRequest is one batch of readings for a building and period
type RecordReadingsRequest struct {
	BuildingID uuid.UUID
	Month      int
	Year       int
	Entries    []ReadingEntry
}

// ReadingService owns the meter ledger: batch recording with baseline
// resolution, correction of unbilled periods with forward cascade, and the
// read models the recording form and billing need.
type ReadingService struct {
	readings  metering.ReadingRepository
	rooms     tenancy.RoomRepository
	buildings tenancy.BuildingRepository
	lock      BatchLock
	tx        shared.TxManager
	clock     shared.Clock
	logger    *zap.Logger
}

// NewReadingService creates a ReadingService
func NewReadingService(
	readings metering.ReadingRepository,
	rooms tenancy.RoomRepository,
	buildings tenancy.BuildingRepository,
	lock BatchLock,
	tx shared.TxManager,
	clock shared.Clock,
	logger *zap.Logger,
) *ReadingService {
	return &ReadingService{
		readings:  readings,
		rooms:     rooms,
		buildings: buildings,
		lock:      lock,
		tx:        tx,
		clock:     clock,
		logger:    logger,
	}
}

// RecordReadings writes one batch of meter readings. The whole batch commits
// or rolls back as a unit: a single invalid entry aborts everything. Each row
// is upserted, and a correction to an already-recorded month cascades its new
// index into the following month's baseline (one step forward, never further).
func (s *ReadingService) RecordReadings(ctx context.Context, req RecordReadingsRequest) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "reading", "record_batch")
	defer span.End()
	telemetry.SetAttributes(span,
		"building_id", req.BuildingID.String(),
		"period", fmt.Sprintf("%04d-%02d", req.Year, req.Month),
		"entries", len(req.Entries))

	if len(req.Entries) == 0 {
		return shared.NewValidationError("EMPTY_BATCH", "recording batch has no entries")
	}
	if err := s.validatePeriod(req.Month, req.Year); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	building, err := s.buildings.FindByID(ctx, req.BuildingID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	lockKey := fmt.Sprintf("metering:batch:%s:%04d-%02d", req.BuildingID, req.Year, req.Month)
	acquired, err := s.lock.Acquire(ctx, lockKey, batchLockTTL)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to acquire batch lock: %w", err)
	}
	if !acquired {
		err := shared.NewConflictError("BATCH_IN_PROGRESS",
			fmt.Sprintf("another recording batch is running for building %s period %04d-%02d",
				building.Name, req.Year, req.Month))
		telemetry.RecordError(span, err)
		return err
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), lockKey); err != nil {
			s.logger.Warn("failed to release batch lock", zap.String("key", lockKey), zap.Error(err))
		}
	}()

	err = s.tx.Do(ctx, func(ctx context.Context) error {
		for i := range req.Entries {
			if err := s.recordEntry(ctx, building, req.Month, req.Year, &req.Entries[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.logger.Info("reading batch recorded",
		zap.String("building", building.Name),
		zap.Int("month", req.Month), zap.Int("year", req.Year),
		zap.Int("entries", len(req.Entries)))
	return nil
}

// validatePeriod rejects future periods and periods older than the
// correction retention window
func (s *ReadingService) validatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return shared.NewValidationError("INVALID_MONTH", fmt.Sprintf("billing month %d out of range", month))
	}
	today := s.clock.Today()
	current := today.Year()*12 + int(today.Month()) - 1
	target := year*12 + month - 1
	if target > current {
		return shared.NewValidationError("FUTURE_PERIOD",
			fmt.Sprintf("cannot record readings for future period %04d-%02d", year, month))
	}
	if current-target > RetentionMonths {
		return shared.NewValidationError("PERIOD_TOO_OLD",
			fmt.Sprintf("period %04d-%02d is beyond the %d-month correction window", year, month, RetentionMonths))
	}
	return nil
}

func (s *ReadingService) recordEntry(ctx context.Context, building *tenancy.Building, month, year int, entry *ReadingEntry) error {
	existing, err := s.readings.FindByRoomPeriod(ctx, entry.RoomID, month, year)
	if err != nil {
		return err
	}
	if existing != nil {
		if err := existing.EnsureMutable(); err != nil {
			return err
		}
	}

	reading := existing
	if reading == nil {
		reading, err = metering.NewUtilityReading(entry.RoomID, month, year)
		if err != nil {
			return err
		}
		// snapshot tariffs at first recording; later corrections keep it
		reading.ElectricityPrice = building.Tariffs.ElectricityPrice
		reading.WaterPrice = building.Tariffs.WaterPrice
	}

	if err := s.resolveBaselines(ctx, reading, entry); err != nil {
		return err
	}
	reading.CurrElectric = entry.CurrElectric
	reading.CurrWater = entry.CurrWater

	if err := reading.Validate(); err != nil {
		return err
	}
	if err := s.readings.Upsert(ctx, reading); err != nil {
		return fmt.Errorf("failed to save reading for room %s: %w", entry.RoomID, err)
	}

	return s.cascadeForward(ctx, reading)
}

// resolveBaselines fills the reading's prev indices: a reset override wins,
// otherwise the prior month's current index, otherwise zero for a room with
// no history.
func (s *ReadingService) resolveBaselines(ctx context.Context, reading *metering.UtilityReading, entry *ReadingEntry) error {
	var prior *metering.UtilityReading
	if !entry.ElectricReset || !entry.WaterReset {
		prevMonth, prevYear := metering.PrevPeriod(reading.BillingMonth, reading.BillingYear)
		var err error
		prior, err = s.readings.FindByRoomPeriod(ctx, reading.RoomID, prevMonth, prevYear)
		if err != nil {
			return err
		}
	}

	reading.IsElectricReset = entry.ElectricReset
	reading.IsWaterReset = entry.WaterReset

	switch {
	case entry.ElectricReset:
		if entry.ElectricResetBaseline.IsNegative() {
			return shared.NewValidationError("INVALID_BASELINE", "reset baseline must not be negative")
		}
		reading.PrevElectric = entry.ElectricResetBaseline
	case prior != nil:
		reading.PrevElectric = prior.CurrElectric
	}

	switch {
	case entry.WaterReset:
		if entry.WaterResetBaseline.IsNegative() {
			return shared.NewValidationError("INVALID_BASELINE", "reset baseline must not be negative")
		}
		reading.PrevWater = entry.WaterResetBaseline
	case prior != nil:
		reading.PrevWater = prior.CurrWater
	}
	return nil
}

// cascadeForward pushes a corrected current index into the next month's
// baseline, depth one only. A billed next row is frozen and skipped; a next
// row whose index the new baseline would exceed aborts the batch so both
// months get corrected together.
func (s *ReadingService) cascadeForward(ctx context.Context, reading *metering.UtilityReading) error {
	nextMonth, nextYear := metering.NextPeriod(reading.BillingMonth, reading.BillingYear)
	next, err := s.readings.FindByRoomPeriod(ctx, reading.RoomID, nextMonth, nextYear)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}
	if next.IsBilled() {
		s.logger.Warn("skipping cascade into billed reading",
			zap.String("room_id", reading.RoomID.String()),
			zap.Int("month", nextMonth), zap.Int("year", nextYear))
		return nil
	}

	next.PropagateBaseline(reading.CurrElectric, reading.CurrWater)
	if err := next.Validate(); err != nil {
		return err
	}
	if err := s.readings.Update(ctx, next); err != nil {
		return fmt.Errorf("failed to cascade baseline to %04d-%02d: %w", nextYear, nextMonth, err)
	}
	return nil
}

// ReadingFormRow pre-fills one room's line on the monthly recording form
type ReadingFormRow struct {
	RoomID       uuid.UUID       `json:"room_id"`
	RoomNumber   string          `json:"room_number"`
	PrevElectric decimal.Decimal `json:"prev_electric"`
	PrevWater    decimal.Decimal `json:"prev_water"`
	CurrElectric decimal.Decimal `json:"curr_electric"`
	CurrWater    decimal.Decimal `json:"curr_water"`
	HasReading   bool            `json:"has_reading"`
	Billed       bool            `json:"billed"`
}

// GetReadingsForm returns the recording form for a building and period: one
// row per occupied room, pre-filled from the period's reading when it exists,
// otherwise with baselines carried from the prior month.
func (s *ReadingService) GetReadingsForm(ctx context.Context, buildingID uuid.UUID, month, year int) ([]ReadingFormRow, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reading", "get_form")
	defer span.End()

	rooms, err := s.rooms.FindOccupiedByBuilding(ctx, buildingID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	rows := make([]ReadingFormRow, 0, len(rooms))
	for i := range rooms {
		room := &rooms[i]
		row := ReadingFormRow{
			RoomID:     room.ID,
			RoomNumber: room.Number,
		}

		existing, err := s.readings.FindByRoomPeriod(ctx, room.ID, month, year)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if existing != nil {
			row.PrevElectric = existing.PrevElectric
			row.PrevWater = existing.PrevWater
			row.CurrElectric = existing.CurrElectric
			row.CurrWater = existing.CurrWater
			row.HasReading = true
			row.Billed = existing.IsBilled()
			rows = append(rows, row)
			continue
		}

		prevMonth, prevYear := metering.PrevPeriod(month, year)
		prior, err := s.readings.FindByRoomPeriod(ctx, room.ID, prevMonth, prevYear)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if prior != nil {
			row.PrevElectric = prior.CurrElectric
			row.PrevWater = prior.CurrWater
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// UnbilledRoomRow is one line of the unbilled-rooms report
type UnbilledRoomRow struct {
	RoomID     uuid.UUID `json:"room_id"`
	RoomNumber string    `json:"room_number"`
	// Reason is MISSING_READING when no reading exists for the period,
	// UNBILLED_READING when a reading exists but no bill consumed it.
	Reason string `json:"reason"`
}

// GetUnbilledRooms reports the occupied rooms of a building that have no
// utility bill for the period, split by whether a reading exists at all.
// Two building-scoped queries cover every room; the report never queries
// per room.
func (s *ReadingService) GetUnbilledRooms(ctx context.Context, buildingID uuid.UUID, month, year int) ([]UnbilledRoomRow, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reading", "unbilled_rooms")
	defer span.End()

	rooms, err := s.rooms.FindOccupiedByBuilding(ctx, buildingID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	recorded, err := s.readings.FindByBuildingPeriod(ctx, buildingID, month, year)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	unbilled, err := s.readings.FindUnbilledByBuildingPeriod(ctx, buildingID, month, year)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	hasReading := make(map[uuid.UUID]bool, len(recorded))
	for i := range recorded {
		hasReading[recorded[i].RoomID] = true
	}
	awaitingBill := make(map[uuid.UUID]bool, len(unbilled))
	for i := range unbilled {
		awaitingBill[unbilled[i].RoomID] = true
	}

	var rows []UnbilledRoomRow
	for i := range rooms {
		room := &rooms[i]
		switch {
		case !hasReading[room.ID]:
			rows = append(rows, UnbilledRoomRow{RoomID: room.ID, RoomNumber: room.Number, Reason: "MISSING_READING"})
		case awaitingBill[room.ID]:
			rows = append(rows, UnbilledRoomRow{RoomID: room.ID, RoomNumber: room.Number, Reason: "UNBILLED_READING"})
		}
	}
	return rows, nil
}

// GetReadings returns all readings of a building for a period
func (s *ReadingService) GetReadings(ctx context.Context, buildingID uuid.UUID, month, year int) ([]metering.UtilityReading, error) {
	return s.readings.FindByBuildingPeriod(ctx, buildingID, month, year)
}
