package notify

import (
    "bytes"
    "fmt"
    "text/template"
)

const (
    CustomerAck     = "customer_ack"
    EmergencyAck    = "emergency_ack"
    ContractorOffer = "contractor_offer"
    CriticalLead    = "critical_lead"
    DeadLetter      = "dead_letter"
    ComplianceDaily = "compliance_daily"
    ClaimReceipt    = "claim_receipt"
)

type pair struct{ subject, body string }

var sources = map[string]pair{
    CustomerAck: {
        "We've received your request",
        `Hi {{.Name}},

Thanks for contacting us about {{.Service}}. A member of our team will be in touch within {{.Response}}.

Reference: {{.RecordID}}`,
    },
    EmergencyAck: {
        "EMERGENCY request received: help is on the way",
        `Hi {{.Name}},

Your emergency request has been escalated. A senior responder will contact you within {{.Response}}.
If anyone is in danger call 000 now.

Reference: {{.RecordID}}`,
    },
    ContractorOffer: {
        "New {{.Priority}} job in {{.Suburb}}",
        `{{.Company}},

A {{.Service}} job ({{.Priority}}) in {{.Suburb}} {{.State}} has been assigned to you.
Distance: {{printf "%.1f" .DistanceKm}} km. Call-out payout: ${{.Payout}} AUD.

Reference: {{.RecordID}}`,
    },
    CriticalLead: {
        "Critical lead {{.RecordID}}",
        `:rotating_light: Critical lead {{.RecordID}} scored {{.Score}} ({{.Service}}, {{.Suburb}} {{.State}}). Team: {{.Team}}. Respond within {{.Response}}.`,
    },
    DeadLetter: {
        "Lifecycle job dead-lettered",
        `:warning: {{.Kind}} for record {{.RecordID}} gave up after {{.Attempts}} attempts: {{.Error}}`,
    },
    ComplianceDaily: {
        "Daily compliance snapshot",
        `Compliance ({{.Timeframe}}): {{.Compliant}}/{{.Total}} contractors compliant ({{printf "%.1f" .CompliantPct}}%). Records in window: {{.Records}}. Dead-lettered jobs: {{.Dead}}.`,
    },
    ClaimReceipt: {
        "Claim lodged: {{.RecordID}}",
        `Hi {{.Name}},

Your claim has been lodged and your payment of ${{.Amount}} AUD received. We will contact you within {{.Response}}.

Reference: {{.RecordID}}`,
    },
}

var templates = func() map[string]*template.Template {
    out := map[string]*template.Template{}
    for name, p := range sources {
        t := template.New(name).Option("missingkey=zero")
        template.Must(t.New("subject").Parse(p.subject))
        template.Must(t.New("body").Parse(p.body))
        out[name] = t
    }
    return out
}()

// Rendered is a message ready for a transport.
type Rendered struct {
    To       string
    Template string
    Subject  string
    Body     string
}

func render(to, name string, data map[string]any) (Rendered, error) {
    t, ok := templates[name]
    if !ok {
        return Rendered{}, fmt.Errorf("unknown template %q", name)
    }
    var subj, body bytes.Buffer
    if err := t.ExecuteTemplate(&subj, "subject", data); err != nil {
        return Rendered{}, fmt.Errorf("render %s subject: %w", name, err)
    }
    if err := t.ExecuteTemplate(&body, "body", data); err != nil {
        return Rendered{}, fmt.Errorf("render %s body: %w", name, err)
    }
    return Rendered{To: to, Template: name, Subject: subj.String(), Body: body.String()}, nil
}
