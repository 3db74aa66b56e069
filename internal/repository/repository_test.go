package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/roamline/travelcompanion-back/internal/db"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func date(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return d
}

func makeUser(t *testing.T, gdb *gorm.DB, username string) *db.User {
	t.Helper()
	user := db.User{
		Name:     "name",
		Surname:  "surname",
		Username: username,
		Password: "hash",
		Email:    username + "@example.com",
	}
	require.NoError(t, gdb.Create(&user).Error)
	return &user
}

func TestUserRepository(t *testing.T) {
	gdb := testDB(t)
	repo := NewUserRepository(gdb)
	ctx := context.Background()

	t.Run("get by username", func(t *testing.T) {
		created := makeUser(t, gdb, "ann")

		got, err := repo.GetByUsername(ctx, "ann")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)

		byID, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "ann", byID.Username)
	})

	t.Run("missing username is ErrNotFound", func(t *testing.T) {
		_, err := repo.GetByUsername(ctx, "nobody")
		assert.Equal(t, ErrNotFound, err)

		_, err = repo.GetByID(ctx, 9999)
		assert.Equal(t, ErrNotFound, err)
	})

	t.Run("duplicate username is ErrDuplicate", func(t *testing.T) {
		makeUser(t, gdb, "bob")

		err := repo.Create(ctx, &db.User{Name: "other", Username: "bob", Password: "hash"})
		assert.Equal(t, ErrDuplicate, err)
	})
}

func TestTripRepositoryFilterByUser(t *testing.T) {
	gdb := testDB(t)
	repo := NewTripRepository(gdb)
	ctx := context.Background()

	owner := makeUser(t, gdb, "owner")
	other := makeUser(t, gdb, "other")

	// Created out of date order on purpose.
	for _, d := range []string{"2022-03-01", "2022-01-01", "2022-02-01"} {
		require.NoError(t, repo.Create(ctx, &db.Trip{UserID: owner.ID, TripDate: date(t, d)}))
	}
	require.NoError(t, repo.Create(ctx, &db.Trip{UserID: other.ID, TripDate: date(t, "2022-01-01")}))

	trips, err := repo.FilterByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, trips, 3)
	assert.True(t, trips[0].TripDate.Equal(date(t, "2022-01-01")))
	assert.True(t, trips[1].TripDate.Equal(date(t, "2022-02-01")))
	assert.True(t, trips[2].TripDate.Equal(date(t, "2022-03-01")))

	empty, err := repo.FilterByUser(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTripRepositoryGetByUserAndDate(t *testing.T) {
	gdb := testDB(t)
	repo := NewTripRepository(gdb)
	ctx := context.Background()

	owner := makeUser(t, gdb, "owner")
	trip := db.Trip{UserID: owner.ID, TripDate: date(t, "2022-01-01")}
	require.NoError(t, repo.Create(ctx, &trip))

	got, err := repo.GetByUserAndDate(ctx, owner.ID, date(t, "2022-01-01"))
	require.NoError(t, err)
	assert.Equal(t, trip.ID, got.ID)

	_, err = repo.GetByUserAndDate(ctx, owner.ID, date(t, "2022-01-02"))
	assert.Equal(t, ErrNotFound, err)
}

func TestTripRepositoryDeleteCascadesLinks(t *testing.T) {
	gdb := testDB(t)
	repo := NewTripRepository(gdb)
	ctx := context.Background()

	owner := makeUser(t, gdb, "owner")
	trip := db.Trip{UserID: owner.ID, TripDate: date(t, "2022-01-01")}
	require.NoError(t, repo.Create(ctx, &trip))
	keep := db.Trip{UserID: owner.ID, TripDate: date(t, "2022-02-01")}
	require.NoError(t, repo.Create(ctx, &keep))

	city := db.City{CityName: "city1", Country: "country1"}
	require.NoError(t, gdb.Create(&city).Error)
	require.NoError(t, gdb.Create(&db.TripCity{TripID: trip.ID, CityID: city.ID, Position: 1}).Error)
	require.NoError(t, gdb.Create(&db.TripCity{TripID: keep.ID, CityID: city.ID, Position: 1}).Error)

	deleted, err := repo.DeleteByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var linkCount int64
	require.NoError(t, gdb.Model(&db.TripCity{}).Where("trip_id = ?", trip.ID).Count(&linkCount).Error)
	assert.Zero(t, linkCount)

	// The other trip keeps its link.
	require.NoError(t, gdb.Model(&db.TripCity{}).Where("trip_id = ?", keep.ID).Count(&linkCount).Error)
	assert.Equal(t, int64(1), linkCount)

	deleted, err = repo.DeleteByID(ctx, 9999)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestCityRepository(t *testing.T) {
	gdb := testDB(t)
	repo := NewCityRepository(gdb)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &db.City{CityName: "city1", Country: "country1", Population: 100}))
	require.NoError(t, repo.Create(ctx, &db.City{CityName: "city1", Country: "country2", Population: 200}))

	got, err := repo.GetByNameAndCountry(ctx, "city1", "country2")
	require.NoError(t, err)
	assert.Equal(t, int64(200), got.Population)

	byID, err := repo.GetByID(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, "country2", byID.Country)

	_, err = repo.GetByNameAndCountry(ctx, "city1", "country3")
	assert.Equal(t, ErrNotFound, err)

	err = repo.Create(ctx, &db.City{CityName: "city1", Country: "country1"})
	assert.Equal(t, ErrDuplicate, err)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReplaceForTrip(t *testing.T) {
	gdb := testDB(t)
	linkRepo := NewTripCityRepository(gdb)
	ctx := context.Background()

	owner := makeUser(t, gdb, "owner")
	trip := db.Trip{UserID: owner.ID, TripDate: date(t, "2022-01-01")}
	require.NoError(t, gdb.Create(&trip).Error)

	cityIDs := make([]uint64, 0, 3)
	for _, name := range []string{"a", "b", "c"} {
		city := db.City{CityName: name, Country: "x"}
		require.NoError(t, gdb.Create(&city).Error)
		cityIDs = append(cityIDs, city.ID)
	}

	require.NoError(t, ReplaceForTrip(gdb, trip.ID, []uint64{cityIDs[2], cityIDs[0]}))

	links, err := linkRepo.FilterByTrip(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, cityIDs[2], links[0].CityID)
	assert.Equal(t, cityIDs[0], links[1].CityID)
	assert.Equal(t, 1, links[0].Position)
	assert.Equal(t, 2, links[1].Position)

	// A second replace fully supersedes the first set.
	require.NoError(t, ReplaceForTrip(gdb, trip.ID, []uint64{cityIDs[1]}))

	links, err = linkRepo.FilterByTrip(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, cityIDs[1], links[0].CityID)

	removed, err := linkRepo.DeleteByTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	links, err = linkRepo.FilterByTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
}
