package cache

import "fmt"

func KeySession(hash string) string {
	return fmt.Sprintf("sessions:%s", hash)
}

// KeyView holds the cache generation for a navigational path token.
// Mutations delete it, which strands every listing entry derived from the
// old generation.
func KeyView(path string) string {
	return fmt.Sprintf("views:%s", path)
}

// KeyList is one rendered listing under a view generation. The fingerprint
// captures the actor and query so listings are never shared across users.
func KeyList(path string, gen int64, fingerprint string) string {
	return fmt.Sprintf("lists:%s:%d:%s", path, gen, fingerprint)
}
