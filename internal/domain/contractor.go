package domain

import "time"

type MembershipTier string

const (
    TierFranchise    MembershipTier = "franchise"
    TierEnterprise   MembershipTier = "enterprise"
    TierProfessional MembershipTier = "professional"
    TierFoundation   MembershipTier = "foundation"
)

type Certification struct {
    Name     string    `json:"name" yaml:"name"`
    Number   string    `json:"number" yaml:"number"`
    Expiry   time.Time `json:"expiry" yaml:"expiry"`
    Verified bool      `json:"verified" yaml:"verified"`
}

type ContractorInsurance struct {
    Provider              string    `json:"provider" yaml:"provider"`
    PolicyNumber          string    `json:"policyNumber" yaml:"policy_number"`
    Expiry                time.Time `json:"expiry" yaml:"expiry"`
    PublicLiability       bool      `json:"publicLiability" yaml:"public_liability"`
    ProfessionalIndemnity bool      `json:"professionalIndemnity" yaml:"professional_indemnity"`
    DocumentVerified      bool      `json:"documentVerified" yaml:"document_verified"`
}

// Contractor is a directory entry used for matching and compliance rollups.
type Contractor struct {
    ID                  string              `json:"id" yaml:"id"`
    CompanyName         string              `json:"companyName" yaml:"company_name"`
    Email               string              `json:"email" yaml:"email"`
    Tier                MembershipTier      `json:"tier" yaml:"tier"`
    Specializations     []ServiceType       `json:"specializations" yaml:"specializations"`
    Location            Location            `json:"location" yaml:"location"`
    ServiceRadiusKm     float64             `json:"serviceRadiusKm" yaml:"service_radius_km"`
    Rating              float64             `json:"rating" yaml:"rating"`
    CompletionRate      float64             `json:"completionRate" yaml:"completion_rate"`
    CurrentWorkload     int                 `json:"currentWorkload" yaml:"current_workload"`
    AvgResponseMinutes  int                 `json:"avgResponseMinutes" yaml:"avg_response_minutes"`
    Available           bool                `json:"available" yaml:"available"`
    LastActive          time.Time           `json:"lastActive" yaml:"last_active"`
    Certifications      []Certification     `json:"certifications" yaml:"certifications"`
    TrainingCompleted   bool                `json:"trainingCompleted" yaml:"training_completed"`
    Insurance           ContractorInsurance `json:"insurance" yaml:"insurance"`
}

// HasValidCertification reports a verified certification still in force at now.
func (c Contractor) HasValidCertification(now time.Time) bool {
    for _, cert := range c.Certifications {
        if cert.Verified && cert.Expiry.After(now) {
            return true
        }
    }
    return false
}

func (c Contractor) InsuranceCurrent(now time.Time) bool {
    return c.Insurance.PublicLiability && c.Insurance.Expiry.After(now)
}

func (c Contractor) DocumentsVerified() bool {
    if !c.Insurance.DocumentVerified || len(c.Certifications) == 0 {
        return false
    }
    for _, cert := range c.Certifications {
        if !cert.Verified {
            return false
        }
    }
    return true
}

func (c Contractor) Handles(s ServiceType) bool {
    for _, sp := range c.Specializations {
        if sp == s {
            return true
        }
    }
    return false
}
