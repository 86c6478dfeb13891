package scoring

import "nrp/internal/domain"

const (
    TeamSenior     = "senior-response"
    TeamPriority   = "priority-response"
    TeamSpecialist = "specialist-remediation"
    TeamFire       = "fire-restoration"
    TeamGeneral    = "general-response"
)

var specialistServices = map[domain.ServiceType]string{
    domain.MouldRemediation:    TeamSpecialist,
    domain.BiohazardCleaning:   TeamSpecialist,
    domain.TraumaSceneCleaning: TeamSpecialist,
    domain.AsbestosRemoval:     TeamSpecialist,
    domain.SewageCleanup:       TeamSpecialist,
    domain.FireDamage:          TeamFire,
}

// Assign picks a symbolic team label. No load or directory lookup happens here.
func Assign(score int, service domain.ServiceType) domain.Assignment {
    switch Classify(score) {
    case domain.PriorityCritical:
        return domain.Assignment{Team: TeamSenior, Escalation: true}
    case domain.PriorityHigh:
        return domain.Assignment{Team: TeamPriority}
    }
    if team, ok := specialistServices[service]; ok {
        return domain.Assignment{Team: team}
    }
    return domain.Assignment{Team: TeamGeneral}
}

// Result bundles everything derived from one intake record.
type Result struct {
    Score               int
    Breakdown           Breakdown
    Priority            domain.Priority
    ResponseTimeMinutes int
    Assignment          domain.Assignment
}

func Evaluate(in domain.IntakeRecord) Result {
    b := Explain(in)
    score := min(b.Total(), MaxScore)
    return Result{
        Score:               score,
        Breakdown:           b,
        Priority:            Classify(score),
        ResponseTimeMinutes: ResponseTimeMinutes(score),
        Assignment:          Assign(score, in.ServiceType),
    }
}
