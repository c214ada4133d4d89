package writer

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultBaseName replaces names that are empty after sanitising
const DefaultBaseName = "image"

// maxBaseNameBytes leaves room for "_<n><ext>" under the usual 255-byte
// file name limit
const maxBaseNameBytes = 200

// BaseName derives a file name stem from the last segment of the URL path,
// without its extension and sanitised for the local filesystem.
func BaseName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return DefaultBaseName
	}
	seg := u.Path[strings.LastIndex(u.Path, "/")+1:]
	seg = strings.TrimSuffix(seg, path.Ext(seg))
	return Sanitize(seg)
}

// Sanitize replaces every run of characters outside letters, digits, '-',
// '.', '_' and ' ' with a single underscore.
func Sanitize(name string) string {
	var b strings.Builder
	replaced := false
	for _, r := range name {
		if isSafe(r) {
			b.WriteRune(r)
			replaced = false
			continue
		}
		if !replaced {
			b.WriteByte('_')
			replaced = true
		}
	}

	out := strings.TrimSpace(b.String())
	if strings.Trim(out, ".") == "" {
		return DefaultBaseName
	}
	return truncateBytes(out, maxBaseNameBytes)
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isSafe(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) ||
		r == '-' || r == '.' || r == '_' || r == ' '
}

// AllocatePath creates and returns the first unused file among
// <base><ext>, <base>_2<ext>, <base>_3<ext>, ... in dir. The file is
// created with O_EXCL so an existing file is never reused or truncated.
func AllocatePath(dir, base, ext string) (string, *os.File, error) {
	for i := 1; ; i++ {
		name := base + ext
		if i > 1 {
			name = fmt.Sprintf("%s_%d%s", base, i, ext)
		}
		candidate := filepath.Join(dir, name)

		f, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return candidate, f, nil
		}
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return "", nil, fmt.Errorf("create %s: %w", candidate, err)
	}
}
