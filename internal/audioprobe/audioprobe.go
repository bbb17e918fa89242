package audioprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrSampleRateMismatch marks a folder whose audio files disagree on
// sample rate or bit depth. Pro Tools sessions use one rate for every
// track, so mixed folders are rejected before enqueue.
var ErrSampleRateMismatch = errors.New("audio files have mismatched formats")

// Info is the audio format summary for one file.
type Info struct {
	Path            string
	SampleRate      int
	BitDepth        int
	Channels        int
	DurationSeconds float64
}

type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType        string `json:"codec_type"`
	SampleRate       string `json:"sample_rate"`
	Channels         int    `json:"channels"`
	BitsPerSample    int    `json:"bits_per_sample"`
	BitsPerRawSample string `json:"bits_per_raw_sample"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

// Prober inspects audio files with ffprobe. The command runner is
// injectable so tests avoid a real ffprobe binary.
type Prober struct {
	binary string
	run    func(ctx context.Context, binary, path string) ([]byte, error)
}

// New returns a prober using the given ffprobe binary.
func New(binary string) *Prober {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary, run: runFFprobe}
}

func runFFprobe(ctx context.Context, binary, path string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary,
		"-v", "error", "-hide_banner",
		"-show_format", "-show_streams",
		"-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return output, nil
}

// Inspect probes one file and returns its audio format summary.
func (p *Prober) Inspect(ctx context.Context, path string) (Info, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Info{}, errors.New("audioprobe inspect: empty path")
	}

	output, err := p.run(ctx, p.binary, path)
	if err != nil {
		return Info{}, err
	}

	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return Info{}, fmt.Errorf("ffprobe parse: %w", err)
	}

	for _, stream := range result.Streams {
		if !strings.EqualFold(stream.CodecType, "audio") {
			continue
		}
		info := Info{
			Path:            path,
			SampleRate:      parseInt(stream.SampleRate),
			Channels:        stream.Channels,
			DurationSeconds: parseFloat(result.Format.Duration),
		}
		info.BitDepth = stream.BitsPerSample
		if info.BitDepth == 0 {
			info.BitDepth = parseInt(stream.BitsPerRawSample)
		}
		return info, nil
	}
	return Info{}, fmt.Errorf("no audio stream in %s", path)
}

// CheckConsistency probes every file and verifies they share one sample
// rate. Bit depth is compared only across files that report one; lossy
// formats report none and are not held against the rest. Returns the
// common rate and depth (0 when no file reports a depth).
func (p *Prober) CheckConsistency(ctx context.Context, files []string) (int, int, error) {
	if len(files) == 0 {
		return 0, 0, errors.New("no audio files to check")
	}

	rate, depth := 0, 0
	for _, file := range files {
		info, err := p.Inspect(ctx, file)
		if err != nil {
			return 0, 0, err
		}
		if rate == 0 {
			rate = info.SampleRate
		} else if info.SampleRate != rate {
			return 0, 0, fmt.Errorf("%w: %s is %d Hz, expected %d Hz",
				ErrSampleRateMismatch, file, info.SampleRate, rate)
		}
		if info.BitDepth == 0 {
			continue
		}
		if depth == 0 {
			depth = info.BitDepth
		} else if info.BitDepth != depth {
			return 0, 0, fmt.Errorf("%w: %s is %d-bit, expected %d-bit",
				ErrSampleRateMismatch, file, info.BitDepth, depth)
		}
	}
	return rate, depth, nil
}

func parseInt(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(value string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return f
}
