package objectclient

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// UploadKey builds users/<userID>/uploads/<uuid>/<sanitized name>.
func UploadKey(userID, fileName string) string {
	return path.Join("users", SanitizeFileName(userID), "uploads", uuid.NewString(), SanitizeFileName(fileName))
}

// SanitizeFileName keeps letters, digits, dots, dashes and underscores of the
// base name; everything else becomes '_'.
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}
