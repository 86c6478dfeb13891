package billing

import (
    "github.com/shopspring/decimal"

    "nrp/internal/domain"
)

var defaultBaseRate = decimal.NewFromInt(400)

var baseRates = map[domain.ServiceType]decimal.Decimal{
    domain.WaterDamage:         decimal.NewFromInt(450),
    domain.FireDamage:          decimal.NewFromInt(650),
    domain.StormDamage:         decimal.NewFromInt(500),
    domain.FloodRecovery:       decimal.NewFromInt(600),
    domain.MouldRemediation:    decimal.NewFromInt(550),
    domain.SewageCleanup:       decimal.NewFromInt(500),
    domain.BiohazardCleaning:   decimal.NewFromInt(800),
    domain.TraumaSceneCleaning: decimal.NewFromInt(900),
    domain.AsbestosRemoval:     decimal.NewFromInt(850),
    domain.VandalismRepair:     decimal.NewFromInt(350),
    domain.EmergencyBoardUp:    decimal.NewFromInt(300),
    domain.StructuralDamage:    decimal.NewFromInt(700),
}

var multipliers = map[domain.Priority]decimal.Decimal{
    domain.PriorityCritical: decimal.RequireFromString("1.5"),
    domain.PriorityHigh:     decimal.RequireFromString("1.3"),
    domain.PriorityMedium:   decimal.RequireFromString("1.1"),
    domain.PriorityLow:      decimal.NewFromInt(1),
}

// Payout is the contractor's call-out payment for a job.
func Payout(service domain.ServiceType, priority domain.Priority) decimal.Decimal {
    base, ok := baseRates[service]
    if !ok { base = defaultBaseRate }
    m, ok := multipliers[priority]
    if !ok { m = decimal.NewFromInt(1) }
    return base.Mul(m).Round(2)
}
