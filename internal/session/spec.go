package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ptforge/internal/services"
)

// ValidSampleRates enumerates the sample rates Pro Tools sessions support.
var ValidSampleRates = []int{44100, 48000, 88200, 96000, 176400, 192000}

// ValidBitDepths enumerates the bit depths Pro Tools sessions support.
var ValidBitDepths = []int{16, 24, 32}

// Params collects the inputs needed to build a Spec. The zero value is
// invalid; New rejects anything incomplete.
type Params struct {
	SampleRate   int
	BitDepth     int
	AudioFiles   []string
	MIDIFiles    []string
	OutputDir    string
	SessionFile  string
	Artist       string
	SongName     string
	ProjectName  string
	TemplatePath string
}

// Spec is an immutable, validated description of one session build. All
// fields are private; accessors return copies so a queued Spec can never
// change after acceptance.
type Spec struct {
	sampleRate   int
	bitDepth     int
	audioFiles   []string
	midiFiles    []string
	outputDir    string
	sessionFile  string
	artist       string
	songName     string
	projectName  string
	templatePath string
}

// New validates params and returns an immutable Spec. Validation is
// atomic: any failure returns a nil Spec and a descriptive error tagged
// with services.ErrValidation.
func New(params Params) (*Spec, error) {
	if !containsInt(ValidSampleRates, params.SampleRate) {
		return nil, validationError(fmt.Sprintf("invalid sample rate: %d", params.SampleRate))
	}
	if !containsInt(ValidBitDepths, params.BitDepth) {
		return nil, validationError(fmt.Sprintf("invalid bit depth: %d", params.BitDepth))
	}
	if strings.TrimSpace(params.OutputDir) == "" {
		return nil, validationError("output directory is required")
	}
	if strings.TrimSpace(params.SessionFile) == "" {
		return nil, validationError("session file path is required")
	}
	if strings.TrimSpace(params.Artist) == "" {
		return nil, validationError("artist name is required")
	}
	if strings.TrimSpace(params.SongName) == "" {
		return nil, validationError("song name is required")
	}
	if len(params.AudioFiles) == 0 && len(params.MIDIFiles) == 0 {
		return nil, validationError("session must have at least one audio or MIDI file")
	}
	if params.TemplatePath != "" {
		if _, err := os.Stat(params.TemplatePath); err != nil {
			return nil, validationError(fmt.Sprintf("template file not found: %s", params.TemplatePath))
		}
	}

	return &Spec{
		sampleRate:   params.SampleRate,
		bitDepth:     params.BitDepth,
		audioFiles:   append([]string(nil), params.AudioFiles...),
		midiFiles:    append([]string(nil), params.MIDIFiles...),
		outputDir:    params.OutputDir,
		sessionFile:  params.SessionFile,
		artist:       params.Artist,
		songName:     params.SongName,
		projectName:  strings.TrimSpace(params.ProjectName),
		templatePath: params.TemplatePath,
	}, nil
}

func validationError(message string) error {
	return services.Wrap(services.ErrValidation, "session spec", "", message, nil)
}

func containsInt(values []int, value int) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// SampleRate returns the session sample rate in Hz.
func (s *Spec) SampleRate() int { return s.sampleRate }

// BitDepth returns the session bit depth.
func (s *Spec) BitDepth() int { return s.bitDepth }

// AudioFiles returns the ordered audio file paths.
func (s *Spec) AudioFiles() []string {
	return append([]string(nil), s.audioFiles...)
}

// MIDIFiles returns the ordered MIDI file paths.
func (s *Spec) MIDIFiles() []string {
	return append([]string(nil), s.midiFiles...)
}

// OutputDir returns the directory the session is created in.
func (s *Spec) OutputDir() string { return s.outputDir }

// SessionFile returns the final session file path.
func (s *Spec) SessionFile() string { return s.sessionFile }

// Artist returns the artist name.
func (s *Spec) Artist() string { return s.artist }

// SongName returns the song name.
func (s *Spec) SongName() string { return s.songName }

// ProjectName returns the album or EP name, empty in single-song mode.
func (s *Spec) ProjectName() string { return s.projectName }

// TemplatePath returns the session template path, empty when unset.
func (s *Spec) TemplatePath() string { return s.templatePath }

// HasAudio reports whether the spec references audio files.
func (s *Spec) HasAudio() bool { return len(s.audioFiles) > 0 }

// HasMIDI reports whether the spec references MIDI files.
func (s *Spec) HasMIDI() bool { return len(s.midiFiles) > 0 }

// HasTemplate reports whether a session template is configured.
func (s *Spec) HasTemplate() bool { return s.templatePath != "" }

// IsAlbumMode reports whether the session belongs to an album or EP.
func (s *Spec) IsAlbumMode() bool { return s.projectName != "" }

// SessionName returns the session file name without its extension.
func (s *Spec) SessionName() string {
	base := filepath.Base(s.sessionFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
