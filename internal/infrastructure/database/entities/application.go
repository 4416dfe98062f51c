package entities

import (
	"time"

	"gorm.io/datatypes"
)

// Application represents the database schema for scored credit applications.
type Application struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time `gorm:"index:idx_application_org_created"`
	UpdatedAt time.Time

	UserID          string `gorm:"type:varchar(128);index;not null"`
	OrgID           string `gorm:"type:varchar(128);index:idx_application_org_created;not null"`
	ApplicantID     string `gorm:"type:varchar(32);index;not null"`
	FirstName       string `gorm:"type:varchar(128);not null"`
	MiddleName      string `gorm:"type:varchar(128)"`
	LastName        string `gorm:"type:varchar(128);not null"`
	LoanType        string `gorm:"type:varchar(20);not null"`
	LoanDescription string `gorm:"type:text"`
	BankSummary     string `gorm:"type:text;not null"`
	AISSummary      string `gorm:"column:ais_summary;type:text;not null"`

	// CreditVerdict is the verdict text exactly as returned by the model.
	CreditVerdict string `gorm:"type:text;not null"`
	// CreditVerdictJSON mirrors CreditVerdict when it parsed, for querying.
	CreditVerdictJSON datatypes.JSON `gorm:"type:jsonb"`
	VerdictError      *string        `gorm:"type:text"`
	Status            string         `gorm:"type:varchar(20);index;not null;default:'pending'"`
}

// TableName specifies the table name for Application.
func (Application) TableName() string {
	return "applications"
}

// ConversationTurn is one appended chat exchange. ID ordering is append ordering.
type ConversationTurn struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	RequestID  string    `gorm:"type:varchar(36);index;not null"`
	UserQuery  string    `gorm:"type:text;not null"`
	AIResponse string    `gorm:"column:ai_response;type:text;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for ConversationTurn.
func (ConversationTurn) TableName() string {
	return "conversation_turns"
}

// FinancialProfile represents the self-reported planning form of an applicant.
type FinancialProfile struct {
	ApplicantID        string `gorm:"column:pan_card_number;type:varchar(32);primaryKey"`
	RetirementPlanning string `gorm:"type:text"`
	Insurance          string `gorm:"type:text"`
	BankAccounts       string `gorm:"type:text"`
	MonthlySavings     string `gorm:"type:text"`
	MonthlyEMIs        string `gorm:"column:monthly_emis;type:text"`
	InvestmentChannels string `gorm:"type:text"`
	ExistingLoans      string `gorm:"type:text"`
	UpdatedAt          time.Time
}

// TableName specifies the table name for FinancialProfile.
func (FinancialProfile) TableName() string {
	return "financial_profiles"
}
