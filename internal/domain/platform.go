package domain

// Platform identifies which upstream proxy API a profile belongs to.
type Platform string

const (
	PlatformTikTok    Platform = "TIKTOK"
	PlatformInstagram Platform = "INSTAGRAM"
)

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	return p == PlatformTikTok || p == PlatformInstagram
}
