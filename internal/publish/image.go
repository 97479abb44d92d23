package publish

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/temoto/robotstxt"
	"golang.org/x/net/html"

	"github.com/topicalmd/contentpipe/internal/model"
	"github.com/topicalmd/contentpipe/internal/sanity"
)

// fetchUserAgent identifies image fetches; Amazon serves a reduced page
// to unknown agents
const fetchUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// minImageBytes rejects tracking pixels and error thumbnails
const minImageBytes = 1000

// DALL-E prompt templates per content type
var dallePrompts = map[model.ContentType]string{
	model.ContentTypeBestFor: "A clean, modern medical illustration showing %s. " +
		"Minimal style, soft blue-green palette, no text, no faces, " +
		"suitable as a blog hero image. Professional healthcare aesthetic.",
	model.ContentTypeComparison: "A clean split-view product photography layout showing two topical pain relief products " +
		"side by side on a white background. Minimal, no text, studio lighting.",
	model.ContentTypeFAQ: "A clean infographic-style illustration representing common questions about %s. " +
		"Minimal design, question mark motifs, soft pastel medical palette, no text.",
	model.ContentTypeReview: "A product photography style image of a generic topical pain cream tube " +
		"on a clean white background with soft shadows. Studio lighting, minimal.",
}

var (
	hiResImageRe = regexp.MustCompile(`"hiRes":"(https://m\.media-amazon\.com/images/I/[^"]+)"`)
	largeImageRe = regexp.MustCompile(`"large":"(https://m\.media-amazon\.com/images/I/[^"]+)"`)
)

// reference points at another document or asset
type reference struct {
	Type string `json:"_type"`
	Ref  string `json:"_ref"`
}

// ImageRef is a main-image field value on a content document
type ImageRef struct {
	Type  string    `json:"_type"`
	Asset reference `json:"asset"`
}

func newImageRef(assetID string) *ImageRef {
	return &ImageRef{Type: "image", Asset: reference{Type: "reference", Ref: assetID}}
}

// ImageAcquirer sources hero images for articles. Product articles get the
// Amazon listing image; editorial pieces get a generated one.
type ImageAcquirer struct {
	Store      *sanity.Client
	httpClient *http.Client
	oai        *openai.Client

	// RecordImage, when set, is called once per acquired image with
	// generated=true for DALL-E output and false for fetched product shots.
	RecordImage func(generated bool)
}

// NewImageAcquirer creates an acquirer. With an empty OpenAI key the
// generation fallback is disabled and only product images are fetched.
func NewImageAcquirer(store *sanity.Client, openAIKey string) *ImageAcquirer {
	a := &ImageAcquirer{
		Store:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	if openAIKey != "" {
		a.oai = openai.NewClient(openAIKey)
	}
	return a
}

// Acquire finds or generates an image and uploads it, returning the image
// reference for the document or nil if nothing could be acquired. Image
// failures never fail the article.
func (a *ImageAcquirer) Acquire(ctx context.Context, topic string, contentType model.ContentType, asin string, dryRun bool) *ImageRef {
	var imageBytes []byte
	filename := "image.jpg"
	generated := false

	if asin != "" {
		imageBytes = a.fetchProductImage(ctx, asin)
		if imageBytes != nil {
			filename = fmt.Sprintf("product-%s.jpg", asin)
		}
	}
	if imageBytes == nil {
		imageBytes = a.generateEditorialImage(ctx, topic, contentType)
		if imageBytes != nil {
			filename = fmt.Sprintf("editorial-%s.jpg", contentType)
			generated = true
		}
	}
	if imageBytes == nil {
		return nil
	}
	if a.RecordImage != nil {
		a.RecordImage(generated)
	}

	if dryRun {
		slog.Info("dry run, skipping image upload", "bytes", len(imageBytes), "filename", filename)
		return newImageRef("image-dry-run")
	}

	assetID, err := a.Store.UploadImage(ctx, imageBytes, filename)
	if err != nil {
		slog.Warn("image upload failed", "filename", filename, "error", err)
		return nil
	}
	return newImageRef(assetID)
}

// fetchProductImage downloads the listing image for an ASIN. The product
// page's og:image meta tag is tried first, then the embedded hiRes/large
// image URLs. Returns nil when no usable image is found.
func (a *ImageAcquirer) fetchProductImage(ctx context.Context, asin string) []byte {
	path := "/dp/" + asin
	if !a.robotsAllowed(ctx, "https://www.amazon.com", path) {
		slog.Warn("robots.txt disallows product page fetch", "asin", asin)
		return nil
	}

	body, err := a.get(ctx, "https://www.amazon.com"+path, "text/html")
	if err != nil {
		slog.Warn("product page fetch failed", "asin", asin, "error", err)
		return nil
	}

	imgURL := findOGImage(body)
	if imgURL == "" {
		if m := hiResImageRe.FindSubmatch(body); m != nil {
			imgURL = string(m[1])
		} else if m := largeImageRe.FindSubmatch(body); m != nil {
			imgURL = string(m[1])
		}
	}
	if imgURL == "" {
		slog.Warn("no product image found on page", "asin", asin)
		return nil
	}

	img, err := a.get(ctx, imgURL, "")
	if err != nil || len(img) <= minImageBytes {
		slog.Warn("product image download failed", "asin", asin, "error", err)
		return nil
	}
	slog.Info("fetched product image", "asin", asin, "bytes", len(img))
	return img
}

// robotsAllowed checks the site's robots.txt for the fetch agent. Robots
// fetch failures allow the request.
func (a *ImageAcquirer) robotsAllowed(ctx context.Context, site, path string) bool {
	body, err := a.get(ctx, site+"/robots.txt", "")
	if err != nil {
		return true
	}
	robots, err := robotstxt.FromBytes(body)
	if err != nil {
		return true
	}
	return robots.TestAgent(path, fetchUserAgent)
}

// findOGImage parses HTML and returns the og:image meta content, if any
func findOGImage(body []byte) string {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return ""
	}
	var walk func(*html.Node) string
	walk = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var property, content string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "property":
					property = attr.Val
				case "content":
					content = attr.Val
				}
			}
			if property == "og:image" && content != "" {
				return content
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := walk(c); found != "" {
				return found
			}
		}
		return ""
	}
	return walk(doc)
}

// generateEditorialImage renders a hero image with DALL-E 3
func (a *ImageAcquirer) generateEditorialImage(ctx context.Context, topic string, contentType model.ContentType) []byte {
	if a.oai == nil {
		slog.Warn("image generation skipped, no OpenAI credential")
		return nil
	}

	template, ok := dallePrompts[contentType]
	if !ok {
		template = dallePrompts[model.ContentTypeBestFor]
	}
	prompt := template
	if strings.Contains(template, "%s") {
		prompt = fmt.Sprintf(template, topic)
	}

	resp, err := a.oai.CreateImage(ctx, openai.ImageRequest{
		Model:   openai.CreateImageModelDallE3,
		Prompt:  prompt,
		Size:    openai.CreateImageSize1024x1024,
		Quality: openai.CreateImageQualityStandard,
		N:       1,
	})
	if err != nil || len(resp.Data) == 0 {
		slog.Error("image generation failed", "topic", topic, "error", err)
		return nil
	}

	img, err := a.get(ctx, resp.Data[0].URL, "")
	if err != nil {
		slog.Error("generated image download failed", "error", err)
		return nil
	}
	slog.Info("generated editorial image", "topic", topic, "content_type", contentType)
	return img
}

// get fetches a URL with the image-fetch user agent and returns the body
func (a *ImageAcquirer) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
