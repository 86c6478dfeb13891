package slack

import (
    "context"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/slack-go/slack"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "nrp/internal/notify"
)

func TestDeliverPostsToOpsChannel(t *testing.T) {
    var channel, text string
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        assert.Equal(t, "/chat.postMessage", r.URL.Path)
        require.NoError(t, r.ParseForm())
        channel, text = r.FormValue("channel"), r.FormValue("text")
        w.Header().Set("Content-Type", "application/json")
        w.Write([]byte(`{"ok":true,"channel":"C1","ts":"1.2"}`))
    }))
    defer srv.Close()

    a := New("xoxb-test", "#ops-alerts", slack.OptionAPIURL(srv.URL+"/"))
    err := a.Deliver(context.Background(), notify.Rendered{To: "ops", Subject: "Critical lead", Body: "*r1* needs a crew"})
    require.NoError(t, err)
    assert.Equal(t, "#ops-alerts", channel)
    assert.Equal(t, "Critical lead", text)
}

func TestDeliverSurfacesSlackError(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Content-Type", "application/json")
        w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
    }))
    defer srv.Close()

    a := New("xoxb-test", "#nowhere", slack.OptionAPIURL(srv.URL+"/"))
    err := a.Deliver(context.Background(), notify.Rendered{Subject: "x", Body: "y"})
    assert.ErrorContains(t, err, "channel_not_found")
}
