package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Keys are namespaced by the helpers below so pages, folders and themes never
// collide.
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

// PageUUID identifies a page by its route. Routes are compared without
// surrounding slashes.
func PageUUID(route string) uuid.UUID {
	return UUID("flatcms:page:/" + strings.Trim(strings.TrimSpace(route), "/"))
}

// FolderUUID identifies a content folder by its path.
func FolderUUID(path string) uuid.UUID {
	return UUID("flatcms:folder:/" + strings.Trim(strings.TrimSpace(path), "/"))
}

func ThemeUUID(name string) uuid.UUID {
	return UUID("flatcms:theme:" + strings.ToLower(strings.TrimSpace(name)))
}
