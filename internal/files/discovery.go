package files

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// spreadsheetExt is the extension of source price exports, matched
// case-insensitively.
const spreadsheetExt = ".xlsx"

// exportPrefixes are known filename prefixes denoting "price export",
// stripped (case-insensitively) before a label is derived.
var exportPrefixes = []string{
	"prezzi_pokemon_",
	"df_prezzi_",
	"df_prezzi",
	"prezzi_",
}

// FileStamp is one (filename, byte size) pair of a change signature.
// An unreadable size is recorded as -1 rather than failing discovery.
type FileStamp struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Signature is the ordered change signature of a dataset directory.
// Identical signatures imply identical parsed content; consumers use it
// as a cache key.
type Signature []FileStamp

// Equal reports whether two signatures describe the same file set.
func (s Signature) Equal(other Signature) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Discovery scans a directory for spreadsheet price exports and derives
// a display label per file.
type Discovery struct {
	overrides map[string]string
}

// NewDiscovery creates a discovery instance. The override map translates
// derived canonical labels into localized display labels and may be nil.
func NewDiscovery(overrides map[string]string) *Discovery {
	return &Discovery{overrides: overrides}
}

// Discover lists the spreadsheet files in dir and returns the
// filename-to-label mapping, the lexicographically sorted file list and
// the change signature. A missing or unreadable directory yields an
// empty result, not an error.
func (d *Discovery) Discover(dir string) (map[string]string, []string, Signature) {
	labels := make(map[string]string)
	names := []string{}
	signature := Signature{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Debug("dataset directory not readable",
			slog.String("dir", dir),
			slog.String("error", err.Error()))
		return labels, names, signature
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(strings.ToLower(name), spreadsheetExt) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		labels[name] = d.Label(name)

		size := int64(-1)
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil {
			size = info.Size()
		}
		signature = append(signature, FileStamp{Name: name, Size: size})
	}

	return labels, names, signature
}

// Label derives the expansion display label for one export filename.
//
// The stem is stripped of known export prefixes, separators become
// spaces and the remainder is title-cased. A stem containing the literal
// token "151" is labeled exactly "151" (the set is named by number, so
// title-casing would mangle it). Overrides apply last.
func (d *Discovery) Label(filename string) string {
	stem := filename
	if i := strings.LastIndex(strings.ToLower(stem), spreadsheetExt); i != -1 {
		stem = stem[:i]
	}

	label := deriveLabel(stem)
	if display, ok := d.overrides[label]; ok {
		return display
	}
	return label
}

func deriveLabel(stem string) string {
	if strings.Contains(stem, "151") {
		return "151"
	}

	lower := strings.ToLower(stem)
	for _, prefix := range exportPrefixes {
		if strings.HasPrefix(lower, prefix) {
			stem = stem[len(prefix):]
			break
		}
	}

	stem = strings.ReplaceAll(stem, "_", " ")
	stem = strings.ReplaceAll(stem, "-", " ")
	return titleCase(stem)
}

// titleCase uppercases the first letter of every word and lowercases the
// rest, like the source exports expect ("paradox-rift" -> "Paradox Rift").
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
