package upstream

import (
	"fmt"

	"influencer-stats/internal/domain"
)

// ForPlatform returns the adapter for the given platform name.
func ForPlatform(platform domain.Platform, apiKey string, opts ...ClientOption) (Platform, error) {
	switch platform {
	case domain.PlatformTikTok:
		return NewTikTok(NewClient(DefaultTikTokHost, apiKey, opts...)), nil
	case domain.PlatformInstagram:
		return NewInstagram(NewClient(DefaultInstagramHost, apiKey, opts...)), nil
	default:
		return nil, fmt.Errorf("unsupported platform %q", platform)
	}
}
