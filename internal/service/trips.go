package service

import (
	"context"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/roamline/travelcompanion-back/internal/db"
	"github.com/roamline/travelcompanion-back/internal/repository"
)

type (
	// TripWithDestinations is a trip row joined with the comma-separated
	// names of its destination cities, in link position order.
	TripWithDestinations struct {
		ID           uint64
		Associates   string
		TripDate     time.Time
		TotalCost    int64
		Destinations string
	}

	// CandidateCity annotates a city with whether it is currently linked to
	// the trip being edited.
	CandidateCity struct {
		CityID   uint64
		CityName string
		Selected bool
	}

	TripService struct {
		db       *gorm.DB
		tripRepo *repository.TripRepository
		cityRepo *repository.CityRepository
		linkRepo *repository.TripCityRepository
		logger   *zap.SugaredLogger
	}
)

func NewTripService(
	db *gorm.DB,
	tripRepo *repository.TripRepository,
	cityRepo *repository.CityRepository,
	linkRepo *repository.TripCityRepository,
	logger *zap.SugaredLogger,
) *TripService {
	return &TripService{
		db:       db,
		tripRepo: tripRepo,
		cityRepo: cityRepo,
		linkRepo: linkRepo,
		logger:   logger,
	}
}

// ListTripsForUser returns the user's trips sorted ascending by trip date.
func (s *TripService) ListTripsForUser(ctx context.Context, userID uint64) ([]db.Trip, error) {
	return s.tripRepo.FilterByUser(ctx, userID)
}

// ListTripsWithDestinations resolves every trip of the user together with
// its destination city names. Destination names of one trip are joined with
// commas, ordered by link position.
func (s *TripService) ListTripsWithDestinations(ctx context.Context, userID uint64) ([]TripWithDestinations, error) {
	trips, err := s.tripRepo.FilterByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(trips) == 0 {
		return []TripWithDestinations{}, nil
	}

	tripIDs := make([]uint64, len(trips))
	for i := range trips {
		tripIDs[i] = trips[i].ID
	}

	sql, args, err := squirrel.
		Select("tc.trip_id", "c.city_name").From("trip_cities tc").
		Join("cities c ON c.id = tc.city_id").
		Where(squirrel.Eq{"tc.trip_id": tripIDs}).
		OrderBy("tc.trip_id", "tc.position").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}

	rows := make([]struct {
		TripID   uint64
		CityName string
	}, 0)
	res := s.db.WithContext(ctx).Raw(sql, args...).Scan(&rows)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "scan")
	}

	namesByTrip := make(map[uint64][]string, len(trips))
	for _, row := range rows {
		namesByTrip[row.TripID] = append(namesByTrip[row.TripID], row.CityName)
	}

	out := make([]TripWithDestinations, len(trips))
	for i, trip := range trips {
		out[i] = TripWithDestinations{
			ID:           trip.ID,
			Associates:   trip.Associates,
			TripDate:     trip.TripDate,
			TotalCost:    trip.TotalCost,
			Destinations: strings.Join(namesByTrip[trip.ID], ","),
		}
	}
	return out, nil
}

// CreateTrip adds a trip for the user, rejecting a second trip on the same
// date with repository.ErrDuplicate.
func (s *TripService) CreateTrip(ctx context.Context, userID uint64, associates string, tripDate time.Time, totalCost int64) (*db.Trip, error) {
	_, err := s.tripRepo.GetByUserAndDate(ctx, userID, tripDate)
	if err == nil {
		return nil, repository.ErrDuplicate
	}
	if err != repository.ErrNotFound {
		return nil, err
	}

	trip := db.Trip{
		UserID:     userID,
		Associates: associates,
		TripDate:   tripDate,
		TotalCost:  totalCost,
	}
	if err := s.tripRepo.Create(ctx, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

// CreateCity adds a destination, rejecting an already known
// (name, country) pair with repository.ErrDuplicate.
func (s *TripService) CreateCity(ctx context.Context, cityName, country string, population int64) (*db.City, error) {
	_, err := s.cityRepo.GetByNameAndCountry(ctx, cityName, country)
	if err == nil {
		return nil, repository.ErrDuplicate
	}
	if err != repository.ErrNotFound {
		return nil, err
	}

	city := db.City{
		CityName:   cityName,
		Country:    country,
		Population: population,
	}
	if err := s.cityRepo.Create(ctx, &city); err != nil {
		return nil, err
	}
	return &city, nil
}

func (s *TripService) GetTrip(ctx context.Context, tripID uint64) (*db.Trip, error) {
	return s.tripRepo.GetByID(ctx, tripID)
}

// CandidateCities builds the edit-screen snapshot: every known city, marked
// selected when it is currently linked to the trip.
func (s *TripService) CandidateCities(ctx context.Context, tripID uint64) ([]CandidateCity, error) {
	links, err := s.linkRepo.FilterByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	linked := make(map[uint64]bool, len(links))
	for _, link := range links {
		linked[link.CityID] = true
	}

	cities, err := s.cityRepo.All(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]CandidateCity, len(cities))
	for i, city := range cities {
		candidates[i] = CandidateCity{
			CityID:   city.ID,
			CityName: city.CityName,
			Selected: linked[city.ID],
		}
	}
	return candidates, nil
}

// UpdateTrip overwrites every scalar field of the trip and replaces its city
// links with the selected set. The whole update runs in one transaction, so
// a failing step leaves both the trip and its links untouched.
func (s *TripService) UpdateTrip(ctx context.Context, tripID uint64, associates string, tripDate time.Time, totalCost int64, selectedCityIDs []uint64, userID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trip := db.Trip{}
		if res := tx.First(&trip, tripID); res.Error != nil {
			if res.Error == gorm.ErrRecordNotFound {
				return repository.ErrNotFound
			}
			return errors.Wrap(res.Error, "load trip")
		}

		// Every selected city id must resolve before anything is written.
		for _, cityID := range selectedCityIDs {
			city := db.City{}
			if res := tx.First(&city, cityID); res.Error != nil {
				if res.Error == gorm.ErrRecordNotFound {
					return repository.ErrNotFound
				}
				return errors.Wrap(res.Error, "resolve city")
			}
		}

		trip.Associates = associates
		trip.TripDate = tripDate
		trip.TotalCost = totalCost
		trip.UserID = userID
		if res := tx.Save(&trip); res.Error != nil {
			return errors.Wrap(res.Error, "save trip")
		}

		return repository.ReplaceForTrip(tx, tripID, selectedCityIDs)
	})
}

// DeleteTrip removes the trip and its links. Deleting an unknown id is not
// an error.
func (s *TripService) DeleteTrip(ctx context.Context, tripID uint64) error {
	deleted, err := s.tripRepo.DeleteByID(ctx, tripID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		s.logger.Infow("delete of unknown trip", "trip_id", tripID)
	}
	return nil
}
