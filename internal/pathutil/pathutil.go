package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SessionExtension is the Pro Tools session file extension.
const SessionExtension = ".ptx"

// SanitizeName makes a user-supplied artist, song, or project name safe for
// use as a single path segment. Names are NFC-normalized so files created
// by macOS (which decomposes to NFD) compare equal to names typed by users.
func SanitizeName(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-",
		"?", "", "\"", "", "<", "", ">", "", "|", "",
	)
	name = replacer.Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	// A leading dot would hide the folder in Finder.
	name = strings.TrimLeft(name, ".")
	return strings.TrimSpace(name)
}

// Layout describes where a session build lands on disk.
type Layout struct {
	// OutputDir is the directory the session is created in.
	OutputDir string
	// SessionFile is the final .ptx path inside OutputDir.
	SessionFile string
}

// Resolve computes the output layout for a session build under root.
// Single-song mode produces root/Artist/Song/Song.ptx; album mode nests the
// song under the project: root/Artist/Project/Song/Song.ptx.
func Resolve(root, artist, song, project string) (Layout, error) {
	artist = SanitizeName(artist)
	song = SanitizeName(song)
	project = SanitizeName(project)
	if artist == "" || song == "" {
		return Layout{}, fmt.Errorf("artist and song names are required after sanitization")
	}

	segments := []string{root, artist}
	if project != "" {
		segments = append(segments, project)
	}
	segments = append(segments, song)

	dir := filepath.Join(segments...)
	return Layout{
		OutputDir:   dir,
		SessionFile: filepath.Join(dir, song+SessionExtension),
	}, nil
}

// EnsureUnique returns dir if nothing exists there, otherwise the first
// "dir 2", "dir 3", ... that is free. Pro Tools refuses to create a session
// over an existing folder, so collisions are resolved up front.
func EnsureUnique(dir string) string {
	if !exists(dir) {
		return dir
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s %d", dir, i)
		if !exists(candidate) {
			return candidate
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
