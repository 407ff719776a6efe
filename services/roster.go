package services

import (
	"context"

	"fee-portal/cache"
	"fee-portal/dataservice"
	"fee-portal/logger"
	"fee-portal/models"
)

// RosterService serves the student roster through the client cache and
// keeps the cache coherent: it subscribes to the data service's change
// feed and invalidates on any students write, and exposes Invalidate for
// the mutation paths that know they touched the collection.
type RosterService struct {
	svc         dataservice.Service
	cache       *cache.Roster
	log         *logger.Logger
	unsubscribe func()
}

// NewRosterService wires the cache and, when a feed is available, the
// change subscription. Close releases the subscription.
func NewRosterService(svc dataservice.Service, feed dataservice.ChangeFeed, log *logger.Logger) (*RosterService, error) {
	s := &RosterService{
		svc:   svc,
		cache: cache.NewRoster(svc.ListStudents),
		log:   log,
	}

	if feed != nil {
		unsubscribe, err := feed.Subscribe(s.onStudentsChanged)
		if err != nil {
			return nil, err
		}
		s.unsubscribe = unsubscribe
	}

	return s, nil
}

func (s *RosterService) onStudentsChanged() {
	s.log.Debug("Students change event received, invalidating roster cache")
	s.cache.Invalidate()
}

// Students returns the roster, name-ascending, from cache or a fresh
// fetch.
func (s *RosterService) Students(ctx context.Context) ([]models.Student, error) {
	return s.cache.Students(ctx)
}

// Invalidate marks the cached roster stale.
func (s *RosterService) Invalidate() {
	s.cache.Invalidate()
}

// Close releases the change-feed subscription. Safe to call more than
// once.
func (s *RosterService) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}
