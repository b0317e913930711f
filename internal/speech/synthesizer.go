package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"google.golang.org/api/option"
	texttospeech "google.golang.org/api/texttospeech/v1"
)

// Synthesizer renders reply text into an Ogg Opus voice note and returns
// the path of the produced file. Callers own the file and should remove it
// after upload.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, languageCode string) (string, error)
}

// Per-language voice selection. Unknown languages fall back to Indian
// English.
var voiceByLanguage = map[string]string{
	"en-IN": "en-IN-Wavenet-A",
	"hi-IN": "hi-IN-Wavenet-A",
	"kn-IN": "kn-IN-Wavenet-A",
	"ml-IN": "ml-IN-Wavenet-A",
}

const defaultLanguage = "en-IN"

// GoogleSynthesizer drives Google Cloud Text-to-Speech. The API returns
// MP3; WhatsApp voice notes must be Ogg Opus, so the result is transcoded
// with ffmpeg before handing it back.
type GoogleSynthesizer struct {
	svc     *texttospeech.Service
	workDir string
}

func NewGoogleSynthesizer(ctx context.Context, apiKey, workDir string) (*GoogleSynthesizer, error) {
	const op = "speech.NewGoogleSynthesizer"

	svc, err := texttospeech.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if workDir == "" {
		workDir = os.TempDir()
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &GoogleSynthesizer{svc: svc, workDir: workDir}, nil
}

func (s *GoogleSynthesizer) Synthesize(ctx context.Context, text, languageCode string) (string, error) {
	const op = "speech.GoogleSynthesizer.Synthesize"

	voice, ok := voiceByLanguage[languageCode]
	if !ok {
		languageCode = defaultLanguage
		voice = voiceByLanguage[defaultLanguage]
	}

	req := &texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: languageCode,
			Name:         voice,
		},
		AudioConfig: &texttospeech.AudioConfig{AudioEncoding: "MP3"},
	}

	resp, err := s.svc.Text.Synthesize(req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	stamp := time.Now().UnixNano()
	mp3Path := filepath.Join(s.workDir, fmt.Sprintf("reply-%d.mp3", stamp))
	oggPath := filepath.Join(s.workDir, fmt.Sprintf("reply-%d.ogg", stamp))

	if err := os.WriteFile(mp3Path, audio, 0o644); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer os.Remove(mp3Path)

	if err := transcodeToOpus(ctx, mp3Path, oggPath); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return oggPath, nil
}

func transcodeToOpus(ctx context.Context, inputPath, outputPath string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-i", inputPath,
		"-c:a", "libopus",
		"-ac", "1",
		"-ar", "16000",
		"-b:a", "24k",
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg transcode failed: %s", stderr.String())
	}

	return nil
}
