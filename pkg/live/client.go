package live

import (
	"crypto/sha256"
	_ "embed"
	"fmt"
)

// ClientJS is the browser script that applies frames.
//
//go:embed client.js
var ClientJS []byte

// ClientETag is the strong ETag of ClientJS.
var ClientETag = func() string {
	sum := sha256.Sum256(ClientJS)
	return fmt.Sprintf("%q", fmt.Sprintf("%x", sum[:]))
}()
