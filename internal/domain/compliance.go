package domain

import "time"

// ComplianceCounts are contractor-level counts with percentages of Total.
type ComplianceCounts struct {
    Total                int     `json:"total"`
    Certified            int     `json:"certified"`
    Trained              int     `json:"trained"`
    Insured              int     `json:"insured"`
    VerifiedDocuments    int     `json:"verifiedDocuments"`
    RecentlyActive       int     `json:"recentlyActive"`
    Compliant            int     `json:"compliant"`
    CertifiedPct         float64 `json:"certifiedPct"`
    TrainedPct           float64 `json:"trainedPct"`
    InsuredPct           float64 `json:"insuredPct"`
    VerifiedDocumentsPct float64 `json:"verifiedDocumentsPct"`
    RecentlyActivePct    float64 `json:"recentlyActivePct"`
    CompliantPct         float64 `json:"compliantPct"`
}

type RecordCounts struct {
    Total            int            `json:"total"`
    ByStatus         map[Status]int `json:"byStatus"`
    DeadLetteredJobs int            `json:"deadLetteredJobs"`
}

// ComplianceSnapshot is a read-only aggregate at a point in time.
type ComplianceSnapshot struct {
    GeneratedAt time.Time        `json:"generatedAt"`
    Timeframe   string           `json:"timeframe"`
    Contractors ComplianceCounts `json:"contractors"`
    Records     RecordCounts     `json:"records"`
}
