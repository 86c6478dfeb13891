package anthropic

import (
    "context"
    "encoding/json"
    "fmt"
    "strings"

    "github.com/anthropics/anthropic-sdk-go"
    "github.com/anthropics/anthropic-sdk-go/option"

    "nrp/internal/domain"
    "nrp/internal/ports"
)

const DefaultModel = "claude-3-5-haiku-latest"

const systemPrompt = `You triage property damage reports for a restoration network.
Reply with a JSON array of damage types drawn only from:
water_damage, fire_damage, storm_damage, flood_recovery, mould_remediation,
sewage_cleanup, biohazard_cleaning, trauma_scene_cleaning, asbestos_removal,
vandalism_repair, emergency_board_up, structural_damage.
Most likely first, at most three. No prose.`

// Triage classifies free-text damage descriptions with the Messages API.
type Triage struct {
    client anthropic.Client
    model  string
}

func New(apiKey, model string, opts ...option.RequestOption) *Triage {
    if model == "" { model = DefaultModel }
    opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
    return &Triage{client: anthropic.NewClient(opts...), model: model}
}

func (t *Triage) ClassifyDamage(ctx context.Context, description string) ([]domain.ServiceType, error) {
    message, err := t.client.Messages.New(ctx, anthropic.MessageNewParams{
        Model:     anthropic.Model(t.model),
        MaxTokens: 128,
        System: []anthropic.TextBlockParam{
            {Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
        },
        Messages: []anthropic.MessageParam{
            anthropic.NewUserMessage(anthropic.NewTextBlock(description)),
        },
    })
    if err != nil {
        return nil, fmt.Errorf("anthropic triage: %w", err)
    }
    for _, block := range message.Content {
        if block.Type == "text" {
            return parseTypes(block.Text)
        }
    }
    return nil, fmt.Errorf("anthropic triage: no text content")
}

// parseTypes keeps the known service types from the reply in order, dropping
// anything the model invented.
func parseTypes(text string) ([]domain.ServiceType, error) {
    start, end := strings.Index(text, "["), strings.LastIndex(text, "]")
    if start < 0 || end < start {
        return nil, fmt.Errorf("anthropic triage: no JSON array in %q", text)
    }
    var raw []string
    if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
        return nil, fmt.Errorf("anthropic triage: %w", err)
    }
    seen := map[domain.ServiceType]bool{}
    var out []domain.ServiceType
    for _, r := range raw {
        st := domain.ServiceType(strings.ToLower(strings.TrimSpace(r)))
        if !st.Valid() || seen[st] { continue }
        seen[st] = true
        out = append(out, st)
    }
    if len(out) == 0 {
        return nil, fmt.Errorf("anthropic triage: no known damage types in %q", text)
    }
    return out, nil
}

var _ ports.DamageClassifier = (*Triage)(nil)
