// Package validation checks generation requests before any work is performed.
package validation

import (
	"fmt"
	"strings"

	"github.com/reelcraft/script-generation-go/internal/models"
)

const minDescriptionLength = 20

var (
	validDurations = map[string]bool{
		"15-30s": true,
		"30-60s": true,
		"60-90s": true,
		"90s+":   true,
	}

	validObjectives = map[string]bool{
		"leads":      true,
		"sale":       true,
		"engagement": true,
	}

	validTargetPlatforms = map[models.PlatformTag]bool{
		models.PlatformYouTube:   true,
		models.PlatformInstagram: true,
		models.PlatformTikTok:    true,
		models.PlatformAll:       true,
	}
)

// ValidateGenerateRequest checks the request shape and value ranges. It is
// pure: no network calls, no storage access.
func ValidateGenerateRequest(req *models.GenerateRequestDTO) error {
	if err := validateTheme(&req.Theme); err != nil {
		return err
	}
	if err := validateSettings(&req.Settings); err != nil {
		return err
	}

	for i, ref := range req.VideoReferences {
		if strings.TrimSpace(ref.URL) == "" {
			continue
		}
		if ref.Platform != "" && !isSourcePlatform(ref.Platform) {
			return fmt.Errorf("videoReferences[%d]: unknown platform %q", i, ref.Platform)
		}
	}

	return nil
}

func validateTheme(theme *models.ThemeInput) error {
	switch theme.Kind {
	case models.ThemeKindDescription:
		if len(strings.TrimSpace(theme.Content)) < minDescriptionLength {
			return fmt.Errorf("theme content must be at least %d characters", minDescriptionLength)
		}
	case models.ThemeKindLink:
		if strings.TrimSpace(theme.Content) == "" {
			return fmt.Errorf("theme content must contain a link")
		}
	default:
		return fmt.Errorf("theme kind must be %q or %q", models.ThemeKindDescription, models.ThemeKindLink)
	}

	if theme.Objective != "" && !validObjectives[theme.Objective] {
		return fmt.Errorf("unknown objective %q", theme.Objective)
	}

	return nil
}

func validateSettings(settings *models.GenerationSettings) error {
	if settings.VariantCount < 5 || settings.VariantCount > 10 {
		return fmt.Errorf("variantCount must be between 5 and 10, got %d", settings.VariantCount)
	}
	if !validDurations[settings.VideoDuration] {
		return fmt.Errorf("unknown videoDuration %q", settings.VideoDuration)
	}
	if !validTargetPlatforms[settings.PrimaryPlatform] {
		return fmt.Errorf("unknown primaryPlatform %q", settings.PrimaryPlatform)
	}
	return nil
}

func isSourcePlatform(tag models.PlatformTag) bool {
	switch tag {
	case models.PlatformYouTube, models.PlatformInstagram, models.PlatformTikTok:
		return true
	default:
		return false
	}
}
