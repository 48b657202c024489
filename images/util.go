package images

import (
	"crypto/md5"
	"fmt"
	"math"
)

// ComputeChecksum generates a deterministic checksum of the 8-bit rendering of
// a buffer, so two buffers that would encode to the same image compare equal.
//
// Arguments:
// - b: The buffer to compute checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string, or "empty".
//
// Example:
//
// ```go
//
//	before := ComputeChecksum(frame)
//	out, _ := adjust.Brightness(frame, adjust.Base)
//	fmt.Println(before == ComputeChecksum(out)) // true
//
// ```
func ComputeChecksum(b *Buffer) string {
	if b.Empty() {
		return "empty"
	}

	hash := md5.New()
	fmt.Fprintf(hash, "%dx%dx%d:", b.Width, b.Height, b.Channels)
	data := make([]byte, len(b.Pix))
	for i, v := range b.Pix {
		data[i] = uint8(math.Round(ClampSample(v)))
	}
	hash.Write(data)
	return fmt.Sprintf("%x", hash.Sum(nil))
}
