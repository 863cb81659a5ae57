//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/repository"
)

type CourierRepositorySuite struct {
	suite.Suite
	repo *repository.CourierRepo
}

func (s *CourierRepositorySuite) SetupSuite() {
	s.Require().NotNil(tcPool, "tcPool must be initialized in TestMain")
	s.repo = repository.NewCourierRepo(tcPool)
}

func (s *CourierRepositorySuite) SetupTest() {
	s.Require().NoError(truncateAll(context.Background(), tcPool))
}

func (s *CourierRepositorySuite) TestGetNotFound() {
	got, err := s.repo.Get(context.Background(), 9999)
	s.Require().NoError(err)
	s.Require().Nil(got)
}

func (s *CourierRepositorySuite) TestNearestAvailable_OrderedByDistance() {
	ctx := context.Background()

	// Origin in central Moscow; couriers progressively farther east.
	far, err := seedCourier(ctx, tcPool, "+79990000003", domain.CourierAvailable, true, 37.70, 55.75)
	s.Require().NoError(err)
	near, err := seedCourier(ctx, tcPool, "+79990000001", domain.CourierAvailable, true, 37.63, 55.75)
	s.Require().NoError(err)
	mid, err := seedCourier(ctx, tcPool, "+79990000002", domain.CourierAvailable, true, 37.66, 55.75)
	s.Require().NoError(err)

	got, err := s.repo.NearestAvailable(ctx, 37.62, 55.75, 10)
	s.Require().NoError(err)
	s.Require().Len(got, 3)

	s.Equal(near, got[0].Courier.ID)
	s.Equal(mid, got[1].Courier.ID)
	s.Equal(far, got[2].Courier.ID)
	s.Less(got[0].DistanceKm, got[1].DistanceKm)
	s.Less(got[1].DistanceKm, got[2].DistanceKm)
	s.Greater(got[0].DistanceKm, 0.0)
}

func (s *CourierRepositorySuite) TestNearestAvailable_FiltersIneligible() {
	ctx := context.Background()

	eligible, err := seedCourier(ctx, tcPool, "+79990000001", domain.CourierAvailable, true, 37.63, 55.75)
	s.Require().NoError(err)
	_, err = seedCourier(ctx, tcPool, "+79990000002", domain.CourierBusy, true, 37.63, 55.75)
	s.Require().NoError(err)
	_, err = seedCourier(ctx, tcPool, "+79990000003", domain.CourierAvailable, false, 37.63, 55.75)
	s.Require().NoError(err)

	// Available, active, but no stored location.
	_, err = tcPool.Exec(ctx, `
        INSERT INTO couriers (name, phone, status, is_active)
        VALUES ('NoLoc', '+79990000004', 'AVAILABLE', true)
    `)
	s.Require().NoError(err)

	got, err := s.repo.NearestAvailable(ctx, 37.62, 55.75, 10)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(eligible, got[0].Courier.ID)
}

func (s *CourierRepositorySuite) TestNearestAvailable_TieBreakByID() {
	ctx := context.Background()

	first, err := seedCourier(ctx, tcPool, "+79990000001", domain.CourierAvailable, true, 37.63, 55.75)
	s.Require().NoError(err)
	second, err := seedCourier(ctx, tcPool, "+79990000002", domain.CourierAvailable, true, 37.63, 55.75)
	s.Require().NoError(err)

	got, err := s.repo.NearestAvailable(ctx, 37.62, 55.75, 10)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(first, got[0].Courier.ID)
	s.Equal(second, got[1].Courier.ID)
}

func (s *CourierRepositorySuite) TestNearestAvailable_RespectsLimit() {
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := seedCourier(ctx, tcPool,
			"+7999000000"+string(rune('1'+i)), domain.CourierAvailable, true, 37.63, 55.75)
		s.Require().NoError(err)
	}

	got, err := s.repo.NearestAvailable(ctx, 37.62, 55.75, 3)
	s.Require().NoError(err)
	s.Len(got, 3)
}

func (s *CourierRepositorySuite) TestUpdateLocation() {
	ctx := context.Background()

	id, err := seedCourier(ctx, tcPool, "+79990000001", domain.CourierAvailable, true, 37.63, 55.75)
	s.Require().NoError(err)

	at := time.Now().UTC().Truncate(time.Second)
	ok, err := s.repo.UpdateLocation(ctx, id, domain.Location{Lon: 37.70, Lat: 55.80}, at)
	s.Require().NoError(err)
	s.True(ok)

	got, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Require().NotNil(got.Location)
	s.InDelta(37.70, got.Location.Lon, 1e-6)
	s.InDelta(55.80, got.Location.Lat, 1e-6)
}

func (s *CourierRepositorySuite) TestUpdateLocation_UnknownCourier() {
	ok, err := s.repo.UpdateLocation(context.Background(), 9999,
		domain.Location{Lon: 37.70, Lat: 55.80}, time.Now().UTC())
	s.Require().NoError(err)
	s.False(ok)
}

func TestCourierRepositorySuite(t *testing.T) {
	suite.Run(t, new(CourierRepositorySuite))
}
