package whisper

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "math"
    "mime/multipart"
    "net/http"
    "time"

    "nrp/internal/ports"
)

const DefaultModel = "whisper-1"

// Client talks to an OpenAI-compatible /audio/transcriptions endpoint.
type Client struct {
    url    string
    apiKey string
    model  string
    http   *http.Client
}

func New(url, apiKey string) *Client {
    return &Client{url: url, apiKey: apiKey, model: DefaultModel, http: &http.Client{Timeout: 2 * time.Minute}}
}

type verboseJSON struct {
    Text     string `json:"text"`
    Language string `json:"language"`
    Segments []struct {
        Start      float64 `json:"start"`
        End        float64 `json:"end"`
        Text       string  `json:"text"`
        AvgLogprob float64 `json:"avg_logprob"`
    } `json:"segments"`
}

func (c *Client) Transcribe(ctx context.Context, audio io.Reader, language string) (ports.Transcript, error) {
    var body bytes.Buffer
    w := multipart.NewWriter(&body)
    fw, err := w.CreateFormFile("file", "audio.webm")
    if err != nil { return ports.Transcript{}, err }
    if _, err := io.Copy(fw, audio); err != nil {
        return ports.Transcript{}, fmt.Errorf("read audio: %w", err)
    }
    for k, v := range map[string]string{"model": c.model, "language": language, "response_format": "verbose_json"} {
        if err := w.WriteField(k, v); err != nil { return ports.Transcript{}, err }
    }
    if err := w.Close(); err != nil { return ports.Transcript{}, err }

    req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
    if err != nil { return ports.Transcript{}, err }
    req.Header.Set("Content-Type", w.FormDataContentType())
    if c.apiKey != "" {
        req.Header.Set("Authorization", "Bearer "+c.apiKey)
    }
    resp, err := c.http.Do(req)
    if err != nil { return ports.Transcript{}, fmt.Errorf("transcription request: %w", err) }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK {
        msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
        return ports.Transcript{}, fmt.Errorf("transcription failed: status %d: %s", resp.StatusCode, msg)
    }

    var v verboseJSON
    if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
        return ports.Transcript{}, fmt.Errorf("decode transcription: %w", err)
    }
    out := ports.Transcript{Text: v.Text, Language: v.Language, Confidence: 1}
    if out.Language == "" { out.Language = language }
    if len(v.Segments) > 0 {
        sum := 0.0
        for _, s := range v.Segments {
            out.Segments = append(out.Segments, ports.Segment{Start: s.Start, End: s.End, Text: s.Text})
            sum += math.Exp(s.AvgLogprob)
        }
        out.Confidence = math.Round(sum/float64(len(v.Segments))*100) / 100
    }
    return out, nil
}

var _ ports.Transcriber = (*Client)(nil)
