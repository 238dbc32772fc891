//go:build unix

package avbridge

import "golang.org/x/sys/unix"

// nativePathBytes encodes s as the raw OS-native, NUL-terminated byte
// sequence a Unix syscall expects, validating s via
// unix.BytePtrFromString (which rejects embedded NULs) before handing it
// to the backend.
func nativePathBytes(s string) []byte {
	if _, err := unix.BytePtrFromString(s); err != nil {
		// Embedded NUL: unix.BytePtrFromString refuses to build a C
		// string here, so fall back to truncating at the first NUL
		// ourselves. Still NUL-terminated — passing an unterminated
		// buffer to a C string API would be an out-of-bounds read, not
		// a clean failure.
		i := len(s)
		for j := 0; j < len(s); j++ {
			if s[j] == 0 {
				i = j
				break
			}
		}
		b := make([]byte, i+1)
		copy(b, s[:i])
		return b
	}
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}
