package automation

import (
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed scripts/*.applescript
var scriptFS embed.FS

// LoadScript returns the named AppleScript template with every
// {placeholder} occurrence substituted. Unknown names are an error;
// placeholder tokens left behind are the caller's responsibility (script
// literals such as "using {command down}" never collide with substitution
// keys).
func LoadScript(name string, placeholders map[string]string) (string, error) {
	raw, err := scriptFS.ReadFile("scripts/" + name + ".applescript")
	if err != nil {
		return "", fmt.Errorf("automation script %q not found", name)
	}
	content := string(raw)
	for key, value := range placeholders {
		content = strings.ReplaceAll(content, "{"+key+"}", value)
	}
	return content, nil
}

// ScriptNames lists the embedded automation operations, sorted.
func ScriptNames() []string {
	entries, err := scriptFS.ReadDir("scripts")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		names = append(names, strings.TrimSuffix(name, ".applescript"))
	}
	sort.Strings(names)
	return names
}
