package services

import (
	"context"
	"sort"
	"sync"

	"github.com/gobarber/gobarber-client/internal/models"
	apperrors "github.com/gobarber/gobarber-client/pkg/errors"
	"github.com/gobarber/gobarber-client/pkg/logger"
	"github.com/gobarber/gobarber-client/pkg/metrics"
	"go.uber.org/zap"
)

// AvailabilityService resolves which hours of a provider's day are bookable
// and keeps the result in step with the current (provider, date) selection.
type AvailabilityService struct {
	gateway AvailabilityGateway

	mu      sync.Mutex
	current models.DayAvailability
	issued  uint64
	applied uint64

	// publishMu keeps snapshot and delivery together so listeners see
	// changes in the order they were made
	publishMu   sync.Mutex
	listenersMu sync.Mutex
	listeners   map[int]func(models.DayAvailability)
	nextID      int
}

func NewAvailabilityService(gateway AvailabilityGateway) *AvailabilityService {
	return &AvailabilityService{
		gateway:   gateway,
		listeners: make(map[int]func(models.DayAvailability)),
	}
}

// FetchDayAvailability issues one remote request for the day
func (s *AvailabilityService) FetchDayAvailability(ctx context.Context, providerID string, year, month, day int) ([]models.AvailabilitySlot, error) {
	if providerID == "" {
		return nil, apperrors.InvalidInputError("provider_id", "is required")
	}
	return s.gateway.DayAvailability(ctx, providerID, year, month, day)
}

// Partition splits slots at noon. Both halves are in ascending hour order.
func Partition(slots []models.AvailabilitySlot) (morning, afternoon []models.HourSlot) {
	morning = []models.HourSlot{}
	afternoon = []models.HourSlot{}

	for _, slot := range slots {
		hs := models.HourSlot{
			Hour:      slot.Hour,
			Available: slot.Available,
			Label:     models.HourLabel(slot.Hour),
		}
		if slot.Hour < models.MorningEndHour {
			morning = append(morning, hs)
		} else {
			afternoon = append(afternoon, hs)
		}
	}

	byHour := func(half []models.HourSlot) func(i, j int) bool {
		return func(i, j int) bool { return half[i].Hour < half[j].Hour }
	}
	sort.SliceStable(morning, byHour(morning))
	sort.SliceStable(afternoon, byHour(afternoon))

	return morning, afternoon
}

// Select makes sel the current selection and fetches its availability. The
// response is applied only if sel is still current when it arrives and no
// newer fetch for it has been applied; otherwise it is dropped. The returned
// channel closes once the response has been applied or dropped.
func (s *AvailabilityService) Select(ctx context.Context, sel models.Selection) <-chan struct{} {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	changed := s.current.Selection != sel
	if changed {
		s.current = models.DayAvailability{Selection: sel}
	}
	s.mu.Unlock()

	if changed {
		s.publish()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		slots, err := s.FetchDayAvailability(ctx, sel.ProviderID, sel.Year, sel.Month, sel.Day)
		s.apply(sel, seq, slots, err)
	}()

	return done
}

func (s *AvailabilityService) apply(sel models.Selection, seq uint64, slots []models.AvailabilitySlot, err error) {
	s.mu.Lock()
	if s.current.Selection != sel || seq <= s.applied {
		s.mu.Unlock()
		metrics.AvailabilityFetches.WithLabelValues("stale").Inc()
		logger.Debug("Dropping stale availability response", zap.String("selection", sel.String()))
		return
	}
	s.applied = seq

	next := models.DayAvailability{Selection: sel, Loaded: true}
	if err != nil {
		next.Morning = []models.HourSlot{}
		next.Afternoon = []models.HourSlot{}
		next.Err = err
	} else {
		next.Morning, next.Afternoon = Partition(slots)
	}
	s.current = next
	s.mu.Unlock()

	if err != nil {
		metrics.AvailabilityFetches.WithLabelValues("error").Inc()
		logger.Warn("Failed to fetch day availability",
			zap.String("selection", sel.String()),
			zap.Error(err))
	} else {
		metrics.AvailabilityFetches.WithLabelValues("applied").Inc()
	}

	s.publish()
}

// Current returns the availability exposed for the current selection
func (s *AvailabilityService) Current() models.DayAvailability {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers a listener called after every change to Current.
// Listeners must not call Select.
func (s *AvailabilityService) Subscribe(listener func(models.DayAvailability)) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = listener

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *AvailabilityService) publish() {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	current := s.Current()

	s.listenersMu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]func(models.DayAvailability), 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.listenersMu.Unlock()

	for _, l := range listeners {
		l(current)
	}
}
