package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/roamline/travelcompanion-back/internal/db"
)

type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{db: db}
}

func (r *TripRepository) Create(ctx context.Context, trip *db.Trip) error {
	res := r.db.WithContext(ctx).Create(trip)
	return translate(res.Error)
}

func (r *TripRepository) GetByID(ctx context.Context, id uint64) (*db.Trip, error) {
	trip := db.Trip{}
	res := r.db.WithContext(ctx).First(&trip, id)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &trip, nil
}

// GetByUserAndDate backs the one-trip-per-day rule at trip creation.
func (r *TripRepository) GetByUserAndDate(ctx context.Context, userID uint64, tripDate time.Time) (*db.Trip, error) {
	trip := db.Trip{}
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND trip_date = ?", userID, tripDate).
		First(&trip)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &trip, nil
}

// FilterByUser returns the user's trips sorted ascending by trip date. An
// unknown user yields an empty slice, never an error.
func (r *TripRepository) FilterByUser(ctx context.Context, userID uint64) ([]db.Trip, error) {
	trips := make([]db.Trip, 0)
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("trip_date ASC").
		Find(&trips)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "filter trips")
	}
	return trips, nil
}

func (r *TripRepository) Update(ctx context.Context, trip *db.Trip) error {
	res := r.db.WithContext(ctx).Save(trip)
	return translate(res.Error)
}

// DeleteByID removes the trip and all its city links in one transaction.
// Returns the number of trip rows removed (0 when the id did not exist).
func (r *TripRepository) DeleteByID(ctx context.Context, id uint64) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if res := tx.Where("trip_id = ?", id).Delete(&db.TripCity{}); res.Error != nil {
			return errors.Wrap(res.Error, "delete trip links")
		}
		res := tx.Delete(&db.Trip{}, id)
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete trip")
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
