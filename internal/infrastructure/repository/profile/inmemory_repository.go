package profile

import (
	"context"
	"sync"

	apperrors "github.com/creditx/creditx-server/internal/domain/errors"
	domain "github.com/creditx/creditx-server/internal/domain/profile"
)

// InMemoryRepository is a thread-safe repository for local runs and tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]domain.FinancialProfile
}

// NewInMemoryRepository creates an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{entries: map[string]domain.FinancialProfile{}}
}

// Upsert stores a copy of p keyed by applicant id.
func (r *InMemoryRepository) Upsert(ctx context.Context, p *domain.FinancialProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[p.ApplicantID] = *p
	return nil
}

// FindByApplicantID returns the stored profile.
func (r *InMemoryRepository) FindByApplicantID(ctx context.Context, applicantID string) (*domain.FinancialProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.entries[applicantID]
	if !ok {
		return nil, apperrors.New(apperrors.KindRequestNotFound, "no financial profile for applicant")
	}
	return &p, nil
}

var _ domain.Repository = (*InMemoryRepository)(nil)
