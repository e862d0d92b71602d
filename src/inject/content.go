package inject

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const maxImageBytes = 32 << 20

// Content is what gets injected: text, or an image given as bytes, a URL,
// or both.
type Content struct {
	Text     string
	Image    []byte
	ImageURL string
}

func Text(s string) Content { return Content{Text: s} }

func Image(data []byte, url string) Content { return Content{Image: data, ImageURL: url} }

func (c Content) IsImage() bool { return len(c.Image) > 0 || c.ImageURL != "" }

func (c Content) String() string {
	if c.IsImage() {
		return fmt.Sprintf("image(%d bytes, url=%q)", len(c.Image), c.ImageURL)
	}
	return fmt.Sprintf("text(%d chars)", len([]rune(c.Text)))
}

// imagePNG returns c as PNG bytes, fetching and decoding as needed.
func (i *Injector) imagePNG(ctx context.Context, c Content) ([]byte, error) {
	data := c.Image
	if len(data) == 0 {
		var err error
		if data, err = i.fetch(ctx, c.ImageURL); err != nil {
			return nil, err
		}
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if format == "png" {
		return data, nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode %s as png: %w", format, err)
	}
	return buf.Bytes(), nil
}

func (i *Injector) fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, errors.New("image has neither bytes nor url")
	}
	if strings.HasPrefix(url, "data:") {
		return decodeDataURL(url)
	}

	ctx, cancel := context.WithTimeout(ctx, i.opts.FetchTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("image request: %w", err)
	}
	resp, err := i.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}
	return data, nil
}

func decodeDataURL(u string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(u, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data url")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, errors.New("data url is not base64")
	}
	return base64.StdEncoding.DecodeString(payload)
}
