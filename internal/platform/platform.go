// Package platform classifies video URLs into the closed set of supported
// platforms.
package platform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reelcraft/script-generation-go/internal/models"
)

// ErrUnrecognizedPlatform is returned for URLs matching no known platform.
var ErrUnrecognizedPlatform = errors.New("unrecognized platform")

// hostFragments maps URL fragments to platform tags, checked in order.
// First match wins.
var hostFragments = []struct {
	fragment string
	tag      models.PlatformTag
}{
	{"youtube.com", models.PlatformYouTube},
	{"youtu.be", models.PlatformYouTube},
	{"instagram.com", models.PlatformInstagram},
	{"tiktok.com", models.PlatformTikTok},
}

// Identify returns the platform tag for a video URL.
func Identify(url string) (models.PlatformTag, error) {
	for _, hf := range hostFragments {
		if strings.Contains(url, hf.fragment) {
			return hf.tag, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnrecognizedPlatform, url)
}
