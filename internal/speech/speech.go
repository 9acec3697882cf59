package speech

import (
	"context"
	"errors"
	"strings"
)

var ErrNoSpeech = errors.New("speech: no speech recognized")

// Audio is raw PCM plus the metadata a recognizer needs.
type Audio struct {
	PCM        []byte
	SampleRate int
	BitDepth   int
	Channels   int
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio Audio) (string, error)
}

// AppendToDraft adds a recognized transcript to the text already typed.
func AppendToDraft(draft, transcript string) string {
	draft = strings.TrimRight(draft, " \t")
	transcript = strings.TrimSpace(transcript)
	switch {
	case transcript == "":
		return draft
	case draft == "":
		return transcript
	case strings.HasSuffix(draft, "\n"):
		return draft + transcript
	}
	return draft + " " + transcript
}
