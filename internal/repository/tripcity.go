package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/roamline/travelcompanion-back/internal/db"
)

type TripCityRepository struct {
	db *gorm.DB
}

func NewTripCityRepository(db *gorm.DB) *TripCityRepository {
	return &TripCityRepository{db: db}
}

// FilterByTrip returns the trip's city links in position order.
func (r *TripCityRepository) FilterByTrip(ctx context.Context, tripID uint64) ([]db.TripCity, error) {
	links := make([]db.TripCity, 0)
	res := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("position ASC").
		Find(&links)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "filter trip links")
	}
	return links, nil
}

func (r *TripCityRepository) DeleteByTrip(ctx context.Context, tripID uint64) (int64, error) {
	res := r.db.WithContext(ctx).Where("trip_id = ?", tripID).Delete(&db.TripCity{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "delete trip links")
	}
	return res.RowsAffected, nil
}

// ReplaceForTrip drops every link of the trip and recreates one per city id,
// numbering positions in the given order. Runs on the provided handle so the
// caller can keep it inside a wider transaction.
func ReplaceForTrip(tx *gorm.DB, tripID uint64, cityIDs []uint64) error {
	if res := tx.Where("trip_id = ?", tripID).Delete(&db.TripCity{}); res.Error != nil {
		return errors.Wrap(res.Error, "delete old trip links")
	}
	for i, cityID := range cityIDs {
		link := db.TripCity{
			TripID:   tripID,
			CityID:   cityID,
			Position: i + 1,
		}
		if res := tx.Create(&link); res.Error != nil {
			return errors.Wrap(res.Error, "create trip link")
		}
	}
	return nil
}
