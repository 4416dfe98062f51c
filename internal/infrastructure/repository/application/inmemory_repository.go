package application

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "github.com/creditx/creditx-server/internal/domain/errors"
	"github.com/creditx/creditx-server/internal/domain/loan"
	"github.com/creditx/creditx-server/internal/domain/status"
)

// InMemoryRepository is a thread-safe repository for local runs and tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]loan.Application
}

// NewInMemoryRepository creates an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{entries: map[string]loan.Application{}}
}

// Create stores a copy of app.
func (r *InMemoryRepository) Create(ctx context.Context, app *loan.Application) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(err, apperrors.KindPersistenceFailed, "create application")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[app.ID]; exists {
		return apperrors.Newf(apperrors.KindPersistenceFailed, "application %s already exists", app.ID)
	}
	r.entries[app.ID] = *app
	return nil
}

// FindByID returns a copy of the stored application.
func (r *InMemoryRepository) FindByID(ctx context.Context, id string) (*loan.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.entries[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.KindRequestNotFound, "application %s not found", id)
	}
	return &app, nil
}

// ListByOrg returns the organisation's applications, newest first.
func (r *InMemoryRepository) ListByOrg(ctx context.Context, orgID string) ([]*loan.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*loan.Application
	for _, app := range r.entries {
		if app.OrgID == orgID {
			app := app
			out = append(out, &app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// UpdateStatus moves the application from one status to another if it is still in from.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, from, to status.Status) (*loan.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.entries[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.KindRequestNotFound, "application %s not found", id)
	}
	if app.Status != from {
		return nil, apperrors.Newf(apperrors.KindInvalidTransition, "application %s is %s, not %s", id, app.Status, from)
	}
	app.Status = to
	app.UpdatedAt = time.Now().UTC()
	r.entries[id] = app
	return &app, nil
}

// Count returns the number of stored applications.
func (r *InMemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

var _ loan.Repository = (*InMemoryRepository)(nil)
