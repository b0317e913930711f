package speech

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"google.golang.org/api/option"
	speechpb "google.golang.org/genproto/googleapis/cloud/speech/v1"
)

// Transcriber turns a voice note into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
	Close() error
}

// GoogleTranscriber recognizes WhatsApp voice notes with Google Cloud
// Speech-to-Text. Voice notes arrive as Ogg Opus at 16 kHz mono, so the
// recognition config is fixed to that shape.
type GoogleTranscriber struct {
	client       *speech.Client
	languageCode string
	altLanguages []string
}

func NewGoogleTranscriber(ctx context.Context, credentialsFile string) (*GoogleTranscriber, error) {
	const op = "speech.NewGoogleTranscriber"

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &GoogleTranscriber{
		client:       client,
		languageCode: "en-IN",
		altLanguages: []string{"hi-IN", "kn-IN", "ml-IN"},
	}, nil
}

func (t *GoogleTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	const op = "speech.GoogleTranscriber.Transcribe"

	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                 speechpb.RecognitionConfig_OGG_OPUS,
			SampleRateHertz:          16000,
			AudioChannelCount:        1,
			LanguageCode:             t.languageCode,
			AlternativeLanguageCodes: t.altLanguages,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{
				Content: audio,
			},
		},
	}

	resp, err := t.client.Recognize(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var transcript strings.Builder
	for _, result := range resp.Results {
		for _, alt := range result.Alternatives {
			transcript.WriteString(alt.Transcript + " ")
		}
	}

	return strings.TrimSpace(transcript.String()), nil
}

func (t *GoogleTranscriber) Close() error {
	return t.client.Close()
}
