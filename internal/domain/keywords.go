package domain

import "strings"

var emergencyKeywords = []string{
    "emergency", "urgent", "immediate", "flooding", "fire",
    "danger", "help now", "asap", "right now", "critical",
}

// DetectEmergency does a case-insensitive substring scan for emergency
// phrases and returns the ones that matched.
func DetectEmergency(text string) (bool, []string) {
    lower := strings.ToLower(text)
    var matched []string
    for _, kw := range emergencyKeywords {
        if strings.Contains(lower, kw) {
            matched = append(matched, kw)
        }
    }
    return len(matched) > 0, matched
}

var damageKeywords = []struct {
    word string
    kind ServiceType
}{
    {"flood", FloodRecovery},
    {"burst pipe", WaterDamage},
    {"leak", WaterDamage},
    {"water", WaterDamage},
    {"fire", FireDamage},
    {"smoke", FireDamage},
    {"storm", StormDamage},
    {"hail", StormDamage},
    {"mould", MouldRemediation},
    {"mold", MouldRemediation},
    {"sewage", SewageCleanup},
    {"biohazard", BiohazardCleaning},
    {"trauma", TraumaSceneCleaning},
    {"asbestos", AsbestosRemoval},
    {"vandal", VandalismRepair},
    {"board up", EmergencyBoardUp},
    {"structural", StructuralDamage},
    {"collapse", StructuralDamage},
}

// ClassifyDamage maps a free-text description onto damage types by keyword.
func ClassifyDamage(description string) []ServiceType {
    lower := strings.ToLower(description)
    seen := map[ServiceType]bool{}
    var out []ServiceType
    for _, k := range damageKeywords {
        if strings.Contains(lower, k.word) && !seen[k.kind] {
            seen[k.kind] = true
            out = append(out, k.kind)
        }
    }
    return out
}
