package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ecologics/collection-service/internal/model"
)

const (
	earthRadiusKm = 6371.0
	// Assumed collector travel speed; the ETA is a linear estimate.
	averageSpeedKmh = 30.0

	// Fallback coordinates used when a request carries none.
	defaultLat = 20.082
	defaultLng = -98.363

	trackingStateInTransit = "in_transit"
)

// Estimate computes the great-circle distance between two points and a
// linear ETA at the fixed average speed.
func Estimate(fromLat, fromLng, toLat, toLng float64) (distanceKm float64, etaMinutes int) {
	lat1 := fromLat * math.Pi / 180
	lat2 := toLat * math.Pi / 180
	dLat := (toLat - fromLat) * math.Pi / 180
	dLng := (toLng - fromLng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	distanceKm = earthRadiusKm * c
	etaMinutes = int(math.Round(distanceKm / averageSpeedKmh * 60))
	return distanceKm, etaMinutes
}

// TrackingService answers the live-tracking poll: where the assigned
// collector is relative to the pickup point.
type TrackingService struct {
	requests  RequestStore
	positions PositionStore
	users     UserStore
	log       zerolog.Logger
}

func NewTrackingService(requests RequestStore, positions PositionStore, users UserStore, log zerolog.Logger) *TrackingService {
	return &TrackingService{requests: requests, positions: positions, users: users, log: log}
}

// Track builds the tracking snapshot for a request. When the collector
// has never reported a position, the requester's own location stands in
// and distance/ETA are zero.
func (s *TrackingService) Track(ctx context.Context, principal model.Principal, requestID uuid.UUID) (*model.TrackingInfo, error) {
	req, err := s.requests.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: request %s", ErrNotFound, requestID)
		}
		return nil, fmt.Errorf("load request: %w", err)
	}
	if principal.IsRequester() && req.RequesterID != principal.UserID {
		return nil, ErrPermissionDenied
	}

	requesterPos := model.Point{Lat: req.Lat, Lng: req.Lng}
	if requesterPos.Lat == 0 && requesterPos.Lng == 0 {
		requesterPos = model.Point{Lat: defaultLat, Lng: defaultLng}
	}

	info := &model.TrackingInfo{
		RequesterPosition: requesterPos,
		CollectorPosition: requesterPos,
		State:             trackingStateInTransit,
	}

	asg, err := s.requests.LatestAssignment(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("load assignment: %w", err)
	}
	if asg == nil {
		return info, nil
	}

	collector, err := s.users.GetUser(ctx, asg.CollectorID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load collector: %w", err)
	}
	if collector != nil {
		info.Collector = &model.TrackingCollector{
			Name:    collector.FullName(),
			Phone:   collector.Phone,
			Vehicle: textOrEmpty(collector.Vehicle),
			Plate:   textOrEmpty(collector.Plate),
		}
	}

	pos, err := s.positions.LatestPosition(ctx, asg.CollectorID)
	if err != nil {
		return nil, fmt.Errorf("load position: %w", err)
	}
	if pos == nil {
		// No position report yet: keep the requester's location as the
		// collector's placeholder.
		return info, nil
	}

	info.CollectorPosition = model.Point{Lat: pos.Lat, Lng: pos.Lng}
	info.DistanceKm, info.ETAMinutes = Estimate(
		requesterPos.Lat, requesterPos.Lng,
		pos.Lat, pos.Lng,
	)
	info.DistanceKm = math.Round(info.DistanceKm*100) / 100
	return info, nil
}

// ReportPosition appends a collector position sample.
func (s *TrackingService) ReportPosition(ctx context.Context, collectorID uuid.UUID, lat, lng float64) error {
	if lat == 0 && lng == 0 {
		return fmt.Errorf("%w: invalid coordinates", ErrInvalidInput)
	}
	report := &model.PositionReport{
		ID:          uuid.New(),
		CollectorID: collectorID,
		Lat:         lat,
		Lng:         lng,
		ReportedAt:  time.Now().UTC(),
	}
	if err := s.positions.CreatePosition(ctx, report); err != nil {
		return fmt.Errorf("store position: %w", err)
	}
	return nil
}

// CollectorPositions lists every collector's latest reported position.
func (s *TrackingService) CollectorPositions(ctx context.Context) ([]model.CollectorPosition, error) {
	positions, err := s.positions.LatestPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	return positions, nil
}

func textOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
