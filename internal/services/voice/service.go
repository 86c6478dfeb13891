package voice

import (
    "context"
    "errors"
    "io"
    "regexp"

    "github.com/apex/log"

    "nrp/internal/domain"
    "nrp/internal/ports"
)

const DefaultLanguage = "en"

var languageRe = regexp.MustCompile(`^[a-z]{2}(-[A-Z]{2})?$`)

type Service struct {
    transcriber ports.Transcriber
}

func New(t ports.Transcriber) *Service { return &Service{transcriber: t} }

func (s *Service) Transcribe(ctx context.Context, audio io.Reader, language string) (ports.VoiceResult, error) {
    if language == "" { language = DefaultLanguage }
    if !languageRe.MatchString(language) {
        v := &domain.ValidationError{}
        v.Add("language", "expected an ISO 639-1 code such as en or en-AU")
        return ports.VoiceResult{}, v
    }
    if audio == nil {
        v := &domain.ValidationError{}
        v.Add("audio", "required")
        return ports.VoiceResult{}, v
    }
    if s.transcriber == nil {
        return ports.VoiceResult{}, domain.Systemf("transcribe", errors.New("transcription provider not configured"))
    }
    tr, err := s.transcriber.Transcribe(ctx, audio, language)
    if err != nil {
        return ports.VoiceResult{}, domain.Systemf("transcribe", err)
    }
    if tr.Language == "" { tr.Language = language }
    hit, words := domain.DetectEmergency(tr.Text)
    if hit {
        log.WithField("keywords", words).Warn("emergency keywords in call transcript")
    }
    return ports.VoiceResult{Transcript: tr, EmergencyDetected: hit, MatchedKeywords: words}, nil
}

var _ ports.Voice = (*Service)(nil)
