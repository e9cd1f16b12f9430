//go:build ocr

package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractClient recognizes page images locally with Tesseract. It needs
// the ocr build tag and the Tesseract libraries at build time.
type TesseractClient struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// NewTesseractClient returns a client for the "+" separated languages in
// lang, English when empty.
func NewTesseractClient(lang string) (*TesseractClient, error) {
	if lang == "" {
		lang = "eng"
	}
	return &TesseractClient{
		languages:     strings.Split(lang, "+"),
		clientFactory: gosseract.NewClient,
	}, nil
}

// Recognize runs Tesseract over one image. Interword spacing is preserved so
// the text keeps its columns.
func (t *TesseractClient) Recognize(ctx context.Context, image []byte, mediaType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := t.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(t.languages...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("set page segmentation: %w", err)
	}
	if err := c.SetVariable(gosseract.SettableVariable("preserve_interword_spaces"), "1"); err != nil {
		return "", fmt.Errorf("set variable: %w", err)
	}
	if err := c.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimRight(text, "\n") + "\n", nil
}

func (t *TesseractClient) Close() {}
