package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NewRunID returns an identifier like "run-20260826-3f9a1c07e2b45d18":
// date-prefixed so run metadata sorts chronologically on disk, with enough
// random suffix to never collide.
func NewRunID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return fmt.Sprintf("run-%s-%s", time.Now().UTC().Format("20060102"), hex.EncodeToString(b[:]))
}
