package main

import (
    "fmt"
    "sort"
    "strings"

    "github.com/charmbracelet/lipgloss"

    "nrp/internal/domain"
    "nrp/internal/services/scoring"
)

var styles = struct {
    header   lipgloss.Style
    label    lipgloss.Style
    ok       lipgloss.Style
    warn     lipgloss.Style
    critical lipgloss.Style
    dim      lipgloss.Style
    box      lipgloss.Style
}{
    header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
    label:    lipgloss.NewStyle().Width(18),
    ok:       lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
    warn:     lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
    critical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
    dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
    box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
}

func priorityStyle(p domain.Priority) lipgloss.Style {
    switch p {
    case domain.PriorityCritical:
        return styles.critical
    case domain.PriorityHigh:
        return styles.warn
    }
    return styles.ok
}

func row(label, value string) string {
    return styles.label.Render(label) + value
}

func renderScore(r scoring.Result) string {
    b := r.Breakdown
    parts := []struct {
        name   string
        points int
    }{
        {"insurance", b.Insurance},
        {"urgency", b.Urgency},
        {"property value", b.PropertyValue},
        {"business", b.Business},
        {"readiness", b.Readiness},
        {"decision maker", b.DecisionMaker},
        {"photos", b.Photos},
        {"damage type", b.DamageType},
        {"area", b.Area},
    }
    lines := []string{styles.header.Render("Score breakdown")}
    for _, p := range parts {
        v := fmt.Sprintf("%3d", p.points)
        if p.points == 0 { v = styles.dim.Render(v) }
        lines = append(lines, row(p.name, v))
    }
    lines = append(lines,
        "",
        row("score", fmt.Sprintf("%d / %d", r.Score, scoring.MaxScore)),
        row("priority", priorityStyle(r.Priority).Render(string(r.Priority))),
        row("respond within", fmt.Sprintf("%d min", r.ResponseTimeMinutes)),
        row("team", r.Assignment.Team),
    )
    if r.Assignment.Escalation {
        lines = append(lines, row("escalation", styles.critical.Render("yes")))
    }
    return styles.box.Render(strings.Join(lines, "\n"))
}

func renderCompliance(s domain.ComplianceSnapshot) string {
    c := s.Contractors
    pct := func(n int, p float64) string { return fmt.Sprintf("%4d  %5.1f%%", n, p) }
    lines := []string{
        styles.header.Render("Compliance, " + s.Timeframe),
        row("contractors", fmt.Sprintf("%4d", c.Total)),
        row("certified", pct(c.Certified, c.CertifiedPct)),
        row("trained", pct(c.Trained, c.TrainedPct)),
        row("insured", pct(c.Insured, c.InsuredPct)),
        row("verified docs", pct(c.VerifiedDocuments, c.VerifiedDocumentsPct)),
        row("recently active", pct(c.RecentlyActive, c.RecentlyActivePct)),
        row("compliant", pct(c.Compliant, c.CompliantPct)),
        "",
        row("records", fmt.Sprintf("%4d", s.Records.Total)),
    }
    statuses := make([]string, 0, len(s.Records.ByStatus))
    for st := range s.Records.ByStatus {
        statuses = append(statuses, string(st))
    }
    sort.Strings(statuses)
    for _, st := range statuses {
        lines = append(lines, row("  "+st, fmt.Sprintf("%4d", s.Records.ByStatus[domain.Status(st)])))
    }
    dead := fmt.Sprintf("%4d", s.Records.DeadLetteredJobs)
    if s.Records.DeadLetteredJobs > 0 { dead = styles.critical.Render(dead) }
    lines = append(lines, row("dead jobs", dead))
    lines = append(lines, styles.dim.Render("generated "+s.GeneratedAt.Format("2006-01-02 15:04 MST")))
    return styles.box.Render(strings.Join(lines, "\n"))
}
