package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelcraft/script-generation-go/internal/models"
)

func validRequest() *models.GenerateRequestDTO {
	return &models.GenerateRequestDTO{
		VideoReferences: []models.VideoReference{
			{URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		},
		Theme: models.ThemeInput{
			Kind:    models.ThemeKindDescription,
			Content: "Eco-friendly water bottle that keeps drinks cold",
		},
		Settings: models.GenerationSettings{
			VariantCount:    5,
			VideoDuration:   "30-60s",
			PrimaryPlatform: models.PlatformTikTok,
		},
	}
}

func TestValidateGenerateRequest(t *testing.T) {
	t.Run("accepts a well-formed request", func(t *testing.T) {
		require.NoError(t, ValidateGenerateRequest(validRequest()))
	})

	t.Run("accepts a request without video references", func(t *testing.T) {
		req := validRequest()
		req.VideoReferences = nil
		require.NoError(t, ValidateGenerateRequest(req))
	})

	tests := []struct {
		name    string
		mutate  func(*models.GenerateRequestDTO)
		wantErr string
	}{
		{
			name: "description theme of 19 characters",
			mutate: func(req *models.GenerateRequestDTO) {
				req.Theme.Content = strings.Repeat("x", 19)
			},
			wantErr: "at least 20 characters",
		},
		{
			name: "description theme padded with whitespace",
			mutate: func(req *models.GenerateRequestDTO) {
				req.Theme.Content = strings.Repeat("x", 10) + strings.Repeat(" ", 15)
			},
			wantErr: "at least 20 characters",
		},
		{
			name: "empty link theme",
			mutate: func(req *models.GenerateRequestDTO) {
				req.Theme.Kind = models.ThemeKindLink
				req.Theme.Content = "   "
			},
			wantErr: "must contain a link",
		},
		{
			name: "unknown theme kind",
			mutate: func(req *models.GenerateRequestDTO) {
				req.Theme.Kind = "freeform"
			},
			wantErr: "theme kind",
		},
		{
			name: "unknown objective",
			mutate: func(req *models.GenerateRequestDTO) {
				req.Theme.Objective = "virality"
			},
			wantErr: "unknown objective",
		},
		{
			name: "variant count below range",
			mutate: func(req *models.GenerateRequestDTO) {
				req.Settings.VariantCount = 4
			},
			wantErr: "variantCount",
		},
		{
			name: "variant count above range",
			mutate: func(req *models.GenerateRequestDTO) {
				req.Settings.VariantCount = 11
			},
			wantErr: "variantCount",
		},
		{
			name: "unknown video duration",
			mutate: func(req *models.GenerateRequestDTO) {
				req.Settings.VideoDuration = "5m"
			},
			wantErr: "videoDuration",
		},
		{
			name: "unknown primary platform",
			mutate: func(req *models.GenerateRequestDTO) {
				req.Settings.PrimaryPlatform = "vimeo"
			},
			wantErr: "primaryPlatform",
		},
		{
			name: "unknown source platform tag",
			mutate: func(req *models.GenerateRequestDTO) {
				req.VideoReferences[0].Platform = "all"
			},
			wantErr: "unknown platform",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := ValidateGenerateRequest(req)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("link theme accepts any non-blank content", func(t *testing.T) {
		req := validRequest()
		req.Theme.Kind = models.ThemeKindLink
		req.Theme.Content = "https://shop.example.com/bottle"
		require.NoError(t, ValidateGenerateRequest(req))
	})

	t.Run("blank video reference urls are ignored", func(t *testing.T) {
		req := validRequest()
		req.VideoReferences = append(req.VideoReferences, models.VideoReference{URL: "   ", Platform: "all"})
		require.NoError(t, ValidateGenerateRequest(req))
	})

	t.Run("all objectives are accepted", func(t *testing.T) {
		for _, objective := range []string{"leads", "sale", "engagement"} {
			req := validRequest()
			req.Theme.Objective = objective
			require.NoError(t, ValidateGenerateRequest(req), objective)
		}
	})
}
