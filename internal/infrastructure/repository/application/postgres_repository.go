package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "github.com/creditx/creditx-server/internal/domain/errors"
	"github.com/creditx/creditx-server/internal/domain/loan"
	"github.com/creditx/creditx-server/internal/domain/status"
	"github.com/creditx/creditx-server/internal/domain/verdict"
	"github.com/creditx/creditx-server/internal/infrastructure/database/entities"
)

// PostgresRepository provides persistence for applications.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new application record.
func (r *PostgresRepository) Create(ctx context.Context, app *loan.Application) error {
	entity := mapToEntity(app)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return apperrors.Wrap(err, apperrors.KindPersistenceFailed, "failed to create application")
	}
	return nil
}

// FindByID fetches an application by its request id.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*loan.Application, error) {
	var entity entities.Application
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindRequestNotFound, "application %s not found", id)
		}
		return nil, apperrors.Wrap(err, apperrors.KindPersistenceFailed, "failed to find application")
	}
	return mapFromEntity(&entity), nil
}

// ListByOrg returns an organisation's applications, newest first.
func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID string) ([]*loan.Application, error) {
	var rows []entities.Application
	if err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindPersistenceFailed, "failed to list applications")
	}

	out := make([]*loan.Application, 0, len(rows))
	for i := range rows {
		out = append(out, mapFromEntity(&rows[i]))
	}
	return out, nil
}

// UpdateStatus moves an application from one status to another with a conditional update.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, from, to status.Status) (*loan.Application, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Application{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{"status": string(to), "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return nil, apperrors.Wrap(result.Error, apperrors.KindPersistenceFailed, "failed to update application status")
	}

	app, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.Newf(apperrors.KindInvalidTransition, "application %s is %s, not %s", id, app.Status, from)
	}
	return app, nil
}

func mapToEntity(app *loan.Application) *entities.Application {
	entity := &entities.Application{
		ID:              app.ID,
		CreatedAt:       app.CreatedAt,
		UpdatedAt:       app.UpdatedAt,
		UserID:          app.UserID,
		OrgID:           app.OrgID,
		ApplicantID:     app.ApplicantID,
		FirstName:       app.FirstName,
		MiddleName:      app.MiddleName,
		LastName:        app.LastName,
		LoanType:        string(app.LoanType),
		LoanDescription: app.LoanDescription,
		BankSummary:     app.BankSummary,
		AISSummary:      app.AISSummary,
		CreditVerdict:   app.CreditVerdict,
		Status:          string(app.Status),
	}
	if app.VerdictError != "" {
		msg := app.VerdictError
		entity.VerdictError = &msg
	}
	if body, ok := verdictJSON(app.CreditVerdict); ok {
		entity.CreditVerdictJSON = datatypes.JSON(body)
	}
	return entity
}

func mapFromEntity(entity *entities.Application) *loan.Application {
	app := &loan.Application{
		ID:              entity.ID,
		UserID:          entity.UserID,
		OrgID:           entity.OrgID,
		ApplicantID:     entity.ApplicantID,
		FirstName:       entity.FirstName,
		MiddleName:      entity.MiddleName,
		LastName:        entity.LastName,
		LoanType:        loan.Type(entity.LoanType),
		LoanDescription: entity.LoanDescription,
		BankSummary:     entity.BankSummary,
		AISSummary:      entity.AISSummary,
		CreditVerdict:   entity.CreditVerdict,
		Status:          status.Status(entity.Status),
		CreatedAt:       entity.CreatedAt,
		UpdatedAt:       entity.UpdatedAt,
	}
	if entity.VerdictError != nil {
		app.VerdictError = *entity.VerdictError
	}
	return app
}

// verdictJSON returns the JSON object embedded in a parseable verdict.
func verdictJSON(text string) ([]byte, bool) {
	if _, ok := verdict.Parse(text).(*verdict.Parsed); !ok {
		return nil, false
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	return []byte(text[start : end+1]), true
}

var _ loan.Repository = (*PostgresRepository)(nil)
