package models

import (
	"time"

	"github.com/volatiletech/null/v8"
)

type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Email        string `json:"email" gorm:"uniqueIndex;size:120;not null"`
	PasswordHash string `json:"-" gorm:"size:128;not null"`
	IsAdmin      bool   `json:"is_admin" gorm:"default:false"`
	Status       Status `json:"status" gorm:"size:50;default:pending;not null"`
	Profile      `gorm:"embedded"`
	Transactions []Transaction `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Profile is the KYC questionnaire a user fills in at registration.
// Every field is optional; unset fields stay null.
type Profile struct {
	// Personal data
	FullName    null.String `json:"full_name" gorm:"size:100" validate:"omitempty,max=100"`
	DateOfBirth null.String `json:"date_of_birth" gorm:"size:10" validate:"omitempty,max=10"` // YYYY-MM-DD
	Gender      null.String `json:"gender" gorm:"size:10" validate:"omitempty,max=10"`
	Nationality null.String `json:"nationality" gorm:"size:50" validate:"omitempty,max=50"`
	Naturalness null.String `json:"naturalness" gorm:"size:50" validate:"omitempty,max=50"`

	// Identification documents; image fields are opaque paths
	CPF              null.String `json:"cpf" gorm:"column:cpf;size:14;uniqueIndex" validate:"omitempty,max=14"`
	RgCnhFront       null.String `json:"rg_cnh_front" gorm:"size:255" validate:"omitempty,max=255"`
	RgCnhBack        null.String `json:"rg_cnh_back" gorm:"size:255" validate:"omitempty,max=255"`
	SelfieWithDoc    null.String `json:"selfie_with_doc" gorm:"size:255" validate:"omitempty,max=255"`
	ProofOfResidence null.String `json:"proof_of_residence" gorm:"size:255" validate:"omitempty,max=255"`

	// Financial profile
	Occupation                null.String  `json:"occupation" gorm:"size:100" validate:"omitempty,max=100"`
	CompanyName               null.String  `json:"company_name" gorm:"size:100" validate:"omitempty,max=100"`
	MonthlyIncome             null.Float64 `json:"monthly_income"`
	EstimatedWealth           null.Float64 `json:"estimated_wealth"`
	SourceOfIncome            null.String  `json:"source_of_income" gorm:"size:100" validate:"omitempty,max=100"`
	LicitResourcesDeclaration bool         `json:"licit_resources_declaration" gorm:"default:false"`

	// Banking details
	BankName         null.String `json:"bank_name" gorm:"size:100" validate:"omitempty,max=100"`
	BankAgency       null.String `json:"bank_agency" gorm:"size:20" validate:"omitempty,max=20"`
	BankAccount      null.String `json:"bank_account" gorm:"size:20" validate:"omitempty,max=20"`
	AccountType      null.String `json:"account_type" gorm:"size:20" validate:"omitempty,max=20"`      // current, savings
	AccountOwnership null.String `json:"account_ownership" gorm:"size:20" validate:"omitempty,max=20"` // own, third_party

	// Suitability
	InvestmentObjective null.String     `json:"investment_objective" gorm:"size:50" validate:"omitempty,max=50"`
	RiskTolerance       null.String     `json:"risk_tolerance" gorm:"size:50" validate:"omitempty,max=50"`
	InvestmentKnowledge null.String     `json:"investment_knowledge" gorm:"size:50" validate:"omitempty,max=50"`
	InvestmentTypes     InvestmentTypes `json:"investment_types" gorm:"type:text"`

	// Consents
	TermsOfUseAccepted    bool `json:"terms_of_use_accepted" gorm:"default:false"`
	PrivacyPolicyAccepted bool `json:"privacy_policy_accepted" gorm:"default:false"`
	LGPDAccepted          bool `json:"lgpd_accepted" gorm:"column:lgpd_accepted;default:false"`
	MarketingConsent      bool `json:"marketing_consent" gorm:"default:false"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,max=120"`
	Password string `json:"password" validate:"required"`
	Profile
}

// LoginRequest accepts "username" as an alias for "email".
type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Identifier() string {
	if r.Email != "" {
		return r.Email
	}
	return r.Username
}
