package scoring

import "nrp/internal/domain"

// Thresholds are inclusive lower bounds, highest first.
var priorityThresholds = []struct {
    min      int
    priority domain.Priority
}{
    {80, domain.PriorityCritical},
    {60, domain.PriorityHigh},
    {40, domain.PriorityMedium},
}

func Classify(score int) domain.Priority {
    for _, t := range priorityThresholds {
        if score >= t.min {
            return t.priority
        }
    }
    return domain.PriorityLow
}

var responseTable = []struct {
    min     int
    minutes int
}{
    {90, 15},
    {80, 30},
    {60, 60},
    {40, 240},
}

const slowestResponseMinutes = 24 * 60

// ResponseTimeMinutes is the promised first-contact bound. It never increases
// as the score goes up.
func ResponseTimeMinutes(score int) int {
    for _, r := range responseTable {
        if score >= r.min {
            return r.minutes
        }
    }
    return slowestResponseMinutes
}
