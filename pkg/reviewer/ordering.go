package reviewer

import (
	"fmt"
	"os"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// OrderFiles returns a sorted copy of files according to the requested
// ordering. The input slice is never mutated. Size and modification-time
// ordering stat each file; files that cannot be stat'ed sort first with a
// zero key, keeping their relative order stable.
func OrderFiles(files []string, ordering FileOrdering) ([]string, error) {
	out := make([]string, len(files))
	copy(out, files)

	switch ordering {
	case OrderAlphabetical:
		sort.Strings(out)
	case OrderNatural:
		// Numeric collation sorts file2 before file10.
		c := collate.New(language.Und, collate.Numeric)
		c.SortStrings(out)
	case OrderSize:
		keys := statKeys(out, func(info os.FileInfo) int64 { return info.Size() })
		sort.SliceStable(out, func(i, j int) bool { return keys[out[i]] < keys[out[j]] })
	case OrderModified:
		keys := statKeys(out, func(info os.FileInfo) int64 { return info.ModTime().UnixNano() })
		sort.SliceStable(out, func(i, j int) bool { return keys[out[i]] < keys[out[j]] })
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOrdering, ordering)
	}
	return out, nil
}

func statKeys(files []string, key func(os.FileInfo) int64) map[string]int64 {
	keys := make(map[string]int64, len(files))
	for _, f := range files {
		if info, err := os.Stat(f); err == nil {
			keys[f] = key(info)
		}
	}
	return keys
}
