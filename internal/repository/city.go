package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/roamline/travelcompanion-back/internal/db"
)

type CityRepository struct {
	db *gorm.DB
}

func NewCityRepository(db *gorm.DB) *CityRepository {
	return &CityRepository{db: db}
}

func (r *CityRepository) Create(ctx context.Context, city *db.City) error {
	res := r.db.WithContext(ctx).Create(city)
	return translate(res.Error)
}

func (r *CityRepository) GetByID(ctx context.Context, id uint64) (*db.City, error) {
	city := db.City{}
	res := r.db.WithContext(ctx).First(&city, id)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &city, nil
}

// GetByNameAndCountry backs the destination uniqueness check.
func (r *CityRepository) GetByNameAndCountry(ctx context.Context, cityName, country string) (*db.City, error) {
	city := db.City{}
	res := r.db.WithContext(ctx).
		Where("city_name = ? AND country = ?", cityName, country).
		First(&city)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &city, nil
}

// All returns every known city, used to build the candidate list on the
// trip edit screen.
func (r *CityRepository) All(ctx context.Context) ([]db.City, error) {
	cities := make([]db.City, 0)
	res := r.db.WithContext(ctx).Order("id ASC").Find(&cities)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "list cities")
	}
	return cities, nil
}
