package profile

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/creditx/creditx-server/internal/domain/errors"
	domain "github.com/creditx/creditx-server/internal/domain/profile"
	"github.com/creditx/creditx-server/internal/infrastructure/database/entities"
)

// PostgresRepository provides persistence for financial profiles.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts the profile or replaces the stored one for the same applicant.
func (r *PostgresRepository) Upsert(ctx context.Context, p *domain.FinancialProfile) error {
	entity := entities.FinancialProfile{
		ApplicantID:        p.ApplicantID,
		RetirementPlanning: p.RetirementPlanning,
		Insurance:          p.Insurance,
		BankAccounts:       p.BankAccounts,
		MonthlySavings:     p.MonthlySavings,
		MonthlyEMIs:        p.MonthlyEMIs,
		InvestmentChannels: p.InvestmentChannels,
		ExistingLoans:      p.ExistingLoans,
		UpdatedAt:          p.UpdatedAt,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pan_card_number"}},
			UpdateAll: true,
		}).
		Create(&entity).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindPersistenceFailed, "failed to save financial profile")
	}
	return nil
}

// FindByApplicantID fetches the applicant's profile.
func (r *PostgresRepository) FindByApplicantID(ctx context.Context, applicantID string) (*domain.FinancialProfile, error) {
	var entity entities.FinancialProfile
	if err := r.db.WithContext(ctx).Where("pan_card_number = ?", applicantID).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindRequestNotFound, "no financial profile for applicant")
		}
		return nil, apperrors.Wrap(err, apperrors.KindPersistenceFailed, "failed to find financial profile")
	}
	return &domain.FinancialProfile{
		ApplicantID:        entity.ApplicantID,
		RetirementPlanning: entity.RetirementPlanning,
		Insurance:          entity.Insurance,
		BankAccounts:       entity.BankAccounts,
		MonthlySavings:     entity.MonthlySavings,
		MonthlyEMIs:        entity.MonthlyEMIs,
		InvestmentChannels: entity.InvestmentChannels,
		ExistingLoans:      entity.ExistingLoans,
		UpdatedAt:          entity.UpdatedAt,
	}, nil
}

var _ domain.Repository = (*PostgresRepository)(nil)
