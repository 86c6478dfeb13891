// Package scoring turns an intake record into a lead score, a priority tier,
// a promised response time and a team label. Everything here is pure.
package scoring

import (
    "github.com/shopspring/decimal"

    "nrp/internal/domain"
)

const MaxScore = 100

// Breakdown is the per-factor contribution before clamping.
type Breakdown struct {
    Insurance     int `json:"insurance"`
    Urgency       int `json:"urgency"`
    PropertyValue int `json:"propertyValue"`
    Business      int `json:"business"`
    Readiness     int `json:"readiness"`
    DecisionMaker int `json:"decisionMaker"`
    Photos        int `json:"photos"`
    DamageType    int `json:"damageType"`
    Area          int `json:"area"`
}

func (b Breakdown) Total() int {
    return b.Insurance + b.Urgency + b.PropertyValue + b.Business + b.Readiness +
        b.DecisionMaker + b.Photos + b.DamageType + b.Area
}

// Map is the breakdown keyed by factor name, for API and CLI output.
func (b Breakdown) Map() map[string]int {
    return map[string]int{
        "insurance":     b.Insurance,
        "urgency":       b.Urgency,
        "propertyValue": b.PropertyValue,
        "business":      b.Business,
        "readiness":     b.Readiness,
        "decisionMaker": b.DecisionMaker,
        "photos":        b.Photos,
        "damageType":    b.DamageType,
        "area":          b.Area,
    }
}

var urgencyPoints = map[domain.Urgency]int{
    domain.UrgencyEmergency: 20,
    domain.UrgencyUrgent:    15,
    domain.UrgencySoon:      10,
    domain.UrgencyPlanning:  5,
}

// valueBands must stay sorted by descending floor.
var valueBands = []struct {
    over   decimal.Decimal
    points int
}{
    {decimal.NewFromInt(1_000_000), 20},
    {decimal.NewFromInt(500_000), 15},
    {decimal.NewFromInt(250_000), 10},
}

var readinessPoints = map[domain.ReadyToStart]int{
    domain.ReadyImmediately: 10,
    domain.ReadyWithinWeek:  7,
    domain.ReadyWithinMonth: 4,
}

var areaPoints = map[domain.AreaAffected]int{
    domain.AreaEntireProperty:  10,
    domain.AreaCommercialLarge: 10,
    domain.AreaEntireFloor:     5,
    domain.AreaMultipleRooms:   3,
}

var highValueDamage = map[domain.ServiceType]bool{
    domain.FireDamage:          true,
    domain.FloodRecovery:       true,
    domain.MouldRemediation:    true,
    domain.SewageCleanup:       true,
    domain.BiohazardCleaning:   true,
    domain.TraumaSceneCleaning: true,
    domain.AsbestosRemoval:     true,
    domain.StructuralDamage:    true,
}

const (
    insurancePoints     = 30
    businessPoints      = 15
    decisionMakerPoints = 5
    photoPoints         = 5
    damagePointsEach    = 5
    damagePointsCap     = 10
)

// Explain computes the per-factor points. Unknown or missing values
// contribute nothing.
func Explain(in domain.IntakeRecord) Breakdown {
    var b Breakdown
    if in.HasInsurance {
        b.Insurance = insurancePoints
    }
    b.Urgency = urgencyPoints[in.Urgency]
    for _, band := range valueBands {
        if in.PropertyValue.GreaterThan(band.over) {
            b.PropertyValue = band.points
            break
        }
    }
    if in.IsBusinessProperty {
        b.Business = businessPoints
    }
    b.Readiness = readinessPoints[in.ReadyToStart]
    if in.DecisionMaker {
        b.DecisionMaker = decisionMakerPoints
    }
    if in.HasPhotos {
        b.Photos = photoPoints
    }
    seen := map[domain.ServiceType]bool{}
    for _, d := range in.DamageTypes {
        if highValueDamage[d] && !seen[d] {
            seen[d] = true
            b.DamageType += damagePointsEach
        }
    }
    if b.DamageType > damagePointsCap {
        b.DamageType = damagePointsCap
    }
    b.Area = areaPoints[in.EstimatedAreaAffected]
    return b
}

// Score returns the lead score in [0,100].
func Score(in domain.IntakeRecord) int {
    return min(Explain(in).Total(), MaxScore)
}
