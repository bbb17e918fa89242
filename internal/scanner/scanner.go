package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var audioExtensions = map[string]bool{
	".wav":  true,
	".aif":  true,
	".aiff": true,
	".mp3":  true,
	".m4a":  true,
	".flac": true,
}

var midiExtensions = map[string]bool{
	".mid":  true,
	".midi": true,
}

// SongFolder is the scanned content of one song folder: the importable
// files split by kind, in stable name order.
type SongFolder struct {
	Path       string
	Name       string
	AudioFiles []string
	MIDIFiles  []string
}

// IsEmpty reports whether the folder held no importable files.
func (s SongFolder) IsEmpty() bool {
	return len(s.AudioFiles) == 0 && len(s.MIDIFiles) == 0
}

// ScanSongFolder reads the immediate children of dir and splits them into
// audio and MIDI files by extension. Hidden files and subdirectories are
// skipped; each list is sorted by file name so import order is stable.
func ScanSongFolder(dir string) (SongFolder, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return SongFolder{}, fmt.Errorf("read song folder: %w", err)
	}

	folder := SongFolder{
		Path: dir,
		Name: filepath.Base(dir),
	}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		full := filepath.Join(dir, entry.Name())
		switch {
		case audioExtensions[ext]:
			folder.AudioFiles = append(folder.AudioFiles, full)
		case midiExtensions[ext]:
			folder.MIDIFiles = append(folder.MIDIFiles, full)
		}
	}
	sort.Strings(folder.AudioFiles)
	sort.Strings(folder.MIDIFiles)
	return folder, nil
}

// IsAlbumFolder reports whether dir looks like an album: no importable
// files of its own, but at least one subfolder that has some.
func IsAlbumFolder(dir string) (bool, error) {
	own, err := ScanSongFolder(dir)
	if err != nil {
		return false, err
	}
	if !own.IsEmpty() {
		return false, nil
	}
	songs, err := ScanAlbumFolder(dir)
	if err != nil {
		return false, err
	}
	return len(songs) > 0, nil
}

// ScanAlbumFolder scans each immediate subfolder of dir as a song folder
// and returns the non-empty ones sorted by name. Hidden subfolders are
// skipped.
func ScanAlbumFolder(dir string) ([]SongFolder, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read album folder: %w", err)
	}

	var songs []SongFolder
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		song, err := ScanSongFolder(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if !song.IsEmpty() {
			songs = append(songs, song)
		}
	}
	sort.Slice(songs, func(i, j int) bool { return songs[i].Name < songs[j].Name })
	return songs, nil
}
