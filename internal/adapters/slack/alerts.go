package slack

import (
    "context"
    "fmt"

    "github.com/slack-go/slack"

    "nrp/internal/notify"
)

// Alerts posts ops notifications to a single channel.
type Alerts struct {
    api     *slack.Client
    channel string
}

func New(token, channel string, opts ...slack.Option) *Alerts {
    return &Alerts{api: slack.New(token, opts...), channel: channel}
}

func (a *Alerts) Deliver(ctx context.Context, msg notify.Rendered) error {
    blocks := []slack.Block{
        slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, msg.Subject, false, false)),
        slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, msg.Body, false, false), nil, nil),
    }
    _, _, err := a.api.PostMessageContext(ctx, a.channel,
        slack.MsgOptionText(msg.Subject, false),
        slack.MsgOptionBlocks(blocks...),
    )
    if err != nil {
        return fmt.Errorf("slack post to %s: %w", a.channel, err)
    }
    return nil
}

var _ notify.Transport = (*Alerts)(nil)
