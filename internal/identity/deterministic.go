package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// LocaleUUID derives the stable identifier for a locale code.
func LocaleUUID(localeCode string) uuid.UUID {
	return UUID("go-pagetree:locale:" + strings.ToLower(strings.TrimSpace(localeCode)))
}

// GroupUUID derives the stable identifier for a translation group seeded from
// the locale and path of the group's first page.
func GroupUUID(locale, path string) uuid.UUID {
	return UUID("go-pagetree:group:" + strings.ToLower(strings.TrimSpace(locale)) + ":" + strings.TrimSpace(path))
}
