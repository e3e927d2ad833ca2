package cleanup

import (
	"context"
	"log"
	"time"
)

// TokenStore is the slice of the user repository the cleanup service
// needs.
type TokenStore interface {
	CleanupExpiredResetTokens(ctx context.Context) (int64, error)
}

// Service periodically purges expired password reset tokens. Expired
// tokens are already rejected at use time; the sweep just keeps stale
// credential material out of the database.
type Service struct {
	store    TokenStore
	interval time.Duration
	stopChan chan struct{}
}

func NewService(store TokenStore, interval time.Duration) *Service {
	return &Service{
		store:    store,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called. Call it in its own
// goroutine.
func (s *Service) Start() {
	log.Printf("Starting password reset token cleanup service (interval: %v)", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopChan:
			log.Println("Stopping password reset token cleanup service")
			return
		}
	}
}

// Stop terminates the sweep loop.
func (s *Service) Stop() {
	close(s.stopChan)
}

func (s *Service) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := s.store.CleanupExpiredResetTokens(ctx)
	if err != nil {
		log.Printf("Error cleaning up expired reset tokens: %v", err)
		return
	}

	if count > 0 {
		log.Printf("Cleaned up %d expired password reset tokens", count)
	}
}
