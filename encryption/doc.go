// Package encryption seals token records before they are written to a
// persistent store. ChaCha20-Poly1305 is the default AEAD; AES-256-GCM is
// available for hosts with AES hardware.
//
//	s, err := encryption.New(encryption.Config{Key: os.Getenv("TOKEN_KEY")})
//	sealed, err := s.Seal(raw)
package encryption
