package instagramimpl

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
)

// DownloadAsset fetches one media asset and writes it next to stem with an
// extension chosen from the response content type. Exactly one file is
// produced per call; the caller recovers the final name by globbing the stem.
func (ig *IgImpl) DownloadAsset(ctx context.Context, assetURL, stem string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build asset request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36")

	resp, err := ig.http.Do(req)
	if err != nil {
		return fmt.Errorf("asset download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("asset download failed: unexpected status %d", resp.StatusCode)
	}

	ext := extensionFor(resp.Header.Get("Content-Type"), assetURL)
	target := stem + ext

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create asset file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		// Leave no truncated file behind for the glob recovery to find.
		os.Remove(target)
		return fmt.Errorf("failed to write asset file: %w", err)
	}

	ig.Logger.Debug("Wrote asset", "file", target)
	return nil
}

// extensionFor picks the on-disk extension from the content type, falling
// back to the URL path.
func extensionFor(contentType, assetURL string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil {
		switch mediaType {
		case "image/jpeg":
			return ".jpg"
		case "image/png":
			return ".png"
		case "image/webp":
			return ".webp"
		case "image/heic":
			return ".heic"
		case "video/mp4":
			return ".mp4"
		case "video/webm":
			return ".webm"
		}
	}

	if u, err := url.Parse(assetURL); err == nil {
		if ext := path.Ext(u.Path); ext != "" && len(ext) <= 5 {
			return strings.ToLower(ext)
		}
	}
	return ".bin"
}
