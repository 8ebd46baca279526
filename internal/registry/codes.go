// Package registry generates the short codes that identify rooms.
package registry

import (
	"math/rand"
	"strings"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

func randomCode() string {
	var b strings.Builder
	b.Grow(codeLength)
	for i := 0; i < codeLength; i++ {
		b.WriteByte(codeAlphabet[rand.Intn(len(codeAlphabet))])
	}
	return b.String()
}

// generateCode returns a code not currently in use. Collisions are unlikely
// with 36^6 possibilities but the loop handles them rather than assuming.
// Callers must hold the registry lock.
func (r *Registry) generateCode() string {
	for {
		code := randomCode()
		if _, exists := r.rooms[code]; !exists {
			return code
		}
	}
}
