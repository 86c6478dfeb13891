package matching

import (
    "math"
    "sort"
    "sync"

    "github.com/golang/geo/s2"
    "github.com/jonboulle/clockwork"
    "github.com/shopspring/decimal"

    "nrp/internal/domain"
)

const earthRadiusKm = 6371.0088

// Weights are percentage weights applied to per-factor scores out of 100.
type Weights struct {
    Membership     float64
    Performance    float64
    Proximity      float64
    Specialization float64
    Availability   float64
    Workload       float64
    ResponseTime   float64
    Emergency      float64
}

var DefaultWeights = Weights{
    Membership:     25,
    Performance:    20,
    Proximity:      15,
    Specialization: 15,
    Availability:   10,
    Workload:       8,
    ResponseTime:   5,
    Emergency:      2,
}

var highValueBudget = decimal.NewFromInt(50_000)

var specialisedServices = map[domain.ServiceType]bool{
    domain.BiohazardCleaning:   true,
    domain.TraumaSceneCleaning: true,
    domain.AsbestosRemoval:     true,
}

// DynamicWeights shifts the defaults for emergencies, high-value jobs and
// specialised services.
func DynamicWeights(rec domain.ServiceRecord) Weights {
    w := DefaultWeights
    if emergency(rec) {
        w.Proximity += 10
        w.Availability += 10
        w.ResponseTime += 5
        w.Membership -= 15
        w.Performance -= 10
    }
    if rec.Intake.Budget.GreaterThan(highValueBudget) {
        w.Membership += 10
        w.Performance += 10
        w.Proximity -= 10
        w.Workload -= 5
        w.Availability -= 5
    }
    for _, s := range required(rec) {
        if specialisedServices[s] {
            w.Specialization += 15
            w.Membership -= 5
            w.Proximity -= 5
            w.Performance -= 5
            break
        }
    }
    return w
}

type Breakdown struct {
    Membership     float64 `json:"membership"`
    Performance    float64 `json:"performance"`
    Proximity      float64 `json:"proximity"`
    Specialization float64 `json:"specialization"`
    Availability   float64 `json:"availability"`
    Workload       float64 `json:"workload"`
    ResponseTime   float64 `json:"responseTime"`
    Emergency      float64 `json:"emergency"`
}

func (b Breakdown) weighted(w Weights) float64 {
    sum := b.Membership*w.Membership +
        b.Performance*w.Performance +
        b.Proximity*w.Proximity +
        b.Specialization*w.Specialization +
        b.Availability*w.Availability +
        b.Workload*w.Workload +
        b.ResponseTime*w.ResponseTime +
        b.Emergency*w.Emergency
    return sum / 100
}

// Candidate is a contractor eligible for a record, with its match score.
type Candidate struct {
    Contractor domain.Contractor
    Score      float64
    DistanceKm float64
    Breakdown  Breakdown
    Rank       int
}

// Matcher ranks contractors and tracks recent offers so work spreads across
// the directory. Safe for concurrent use.
type Matcher struct {
    clock  clockwork.Clock
    mu     sync.Mutex
    offers map[string]int
}

func New(clock clockwork.Clock) *Matcher {
    if clock == nil { clock = clockwork.NewRealClock() }
    return &Matcher{clock: clock, offers: map[string]int{}}
}

// Rank returns eligible contractors best first. Contractors listed in exclude
// are skipped.
func (m *Matcher) Rank(rec domain.ServiceRecord, contractors []domain.Contractor, exclude []string) []Candidate {
    now := m.clock.Now()
    w := DynamicWeights(rec)
    skip := map[string]bool{}
    for _, id := range exclude {
        skip[id] = true
    }
    services := required(rec)

    m.mu.Lock()
    defer m.mu.Unlock()
    var out []Candidate
    for _, c := range contractors {
        if skip[c.ID] || !c.Available || !serviceMatch(services, c) { continue }
        dist := Distance(rec.Intake.Location, c.Location)
        if c.ServiceRadiusKm > 0 && dist > c.ServiceRadiusKm { continue }
        b := Breakdown{
            Membership:     membershipScore(c.Tier),
            Performance:    performanceScore(c),
            Proximity:      proximityScore(dist),
            Specialization: specializationScore(services, c),
            Availability:   availabilityScore(c, now.Sub(c.LastActive).Hours()),
            Workload:       workloadScore(c.CurrentWorkload),
            ResponseTime:   responseScore(c.AvgResponseMinutes),
            Emergency:      emergencyScore(rec),
        }
        penalty := math.Min(20, float64(m.offers[c.ID])*2)
        score := math.Round((b.weighted(w)-penalty)*100) / 100
        out = append(out, Candidate{Contractor: c, Score: score, DistanceKm: dist, Breakdown: b})
    }
    sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
    for i := range out {
        out[i].Rank = i + 1
    }
    return out
}

// Best picks the top candidate and counts it as an offer.
func (m *Matcher) Best(rec domain.ServiceRecord, contractors []domain.Contractor) (Candidate, bool) {
    ranked := m.Rank(rec, contractors, rec.DeclinedBy)
    if len(ranked) == 0 {
        return Candidate{}, false
    }
    m.RecordOffer(ranked[0].Contractor.ID)
    return ranked[0], true
}

func (m *Matcher) RecordOffer(contractorID string) {
    m.mu.Lock()
    m.offers[contractorID]++
    m.mu.Unlock()
}

// ResetOffers clears the fairness history.
func (m *Matcher) ResetOffers() {
    m.mu.Lock()
    m.offers = map[string]int{}
    m.mu.Unlock()
}

// Distance is the great-circle distance in km when both sides have
// coordinates, otherwise the distance the customer reported.
func Distance(from, to domain.Location) float64 {
    if !from.HasCoordinates() || !to.HasCoordinates() {
        return from.DistanceKm
    }
    a := s2.LatLngFromDegrees(*from.Latitude, *from.Longitude)
    b := s2.LatLngFromDegrees(*to.Latitude, *to.Longitude)
    return a.Distance(b).Radians() * earthRadiusKm
}

func emergency(rec domain.ServiceRecord) bool {
    return rec.EmergencyDetected || rec.Intake.Urgency == domain.UrgencyEmergency || rec.Intake.Urgency == domain.UrgencyUrgent
}

func required(rec domain.ServiceRecord) []domain.ServiceType {
    var out []domain.ServiceType
    if rec.Intake.ServiceType != "" {
        out = append(out, rec.Intake.ServiceType)
    }
    seen := map[domain.ServiceType]bool{rec.Intake.ServiceType: true}
    for _, list := range [][]domain.ServiceType{rec.Intake.DamageTypes, rec.SuggestedDamageTypes} {
        for _, d := range list {
            if !seen[d] {
                seen[d] = true
                out = append(out, d)
            }
        }
    }
    return out
}

func serviceMatch(services []domain.ServiceType, c domain.Contractor) bool {
    for _, s := range services {
        if c.Handles(s) || related(s, c) { return true }
    }
    return false
}

func related(s domain.ServiceType, c domain.Contractor) bool {
    for _, sp := range c.Specializations {
        if s.Related(sp) { return true }
    }
    return false
}

func membershipScore(t domain.MembershipTier) float64 {
    switch t {
    case domain.TierFranchise:
        return 100
    case domain.TierEnterprise:
        return 80
    case domain.TierProfessional:
        return 60
    case domain.TierFoundation:
        return 40
    }
    return 0
}

func performanceScore(c domain.Contractor) float64 {
    return math.Min(100, c.Rating/5*60+c.CompletionRate*40)
}

func proximityScore(km float64) float64 {
    switch {
    case km <= 5:
        return 100
    case km <= 10:
        return 90
    case km <= 20:
        return 75
    case km <= 35:
        return 60
    case km <= 50:
        return 40
    case km <= 75:
        return 25
    case km <= 100:
        return 15
    }
    return 5
}

func specializationScore(services []domain.ServiceType, c domain.Contractor) float64 {
    best := 0.0
    for _, s := range services {
        score := 0.0
        switch {
        case c.Handles(s):
            score = 100
        case related(s, c):
            score = 70
        case len(c.Specializations) > 0:
            score = 40
        }
        best = math.Max(best, score)
    }
    return best
}

func availabilityScore(c domain.Contractor, hoursInactive float64) float64 {
    if !c.Available { return 0 }
    switch {
    case hoursInactive <= 1:
        return 100
    case hoursInactive <= 4:
        return 90
    case hoursInactive <= 12:
        return 75
    case hoursInactive <= 24:
        return 60
    case hoursInactive <= 72:
        return 40
    }
    return 20
}

func workloadScore(n int) float64 {
    switch {
    case n <= 0:
        return 100
    case n <= 2:
        return 80
    case n <= 4:
        return 60
    case n <= 6:
        return 40
    case n <= 8:
        return 20
    }
    return 5
}

func responseScore(minutes int) float64 {
    switch {
    case minutes <= 15:
        return 100
    case minutes <= 30:
        return 85
    case minutes <= 60:
        return 70
    case minutes <= 120:
        return 50
    case minutes <= 240:
        return 30
    case minutes <= 480:
        return 15
    }
    return 5
}

func emergencyScore(rec domain.ServiceRecord) float64 {
    if rec.EmergencyDetected || rec.Intake.Urgency == domain.UrgencyEmergency {
        return 100
    }
    switch rec.Priority {
    case domain.PriorityCritical:
        return 80
    case domain.PriorityHigh:
        return 60
    case domain.PriorityMedium:
        return 40
    case domain.PriorityLow:
        return 20
    }
    return 0
}
