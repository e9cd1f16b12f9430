//go:build !ocr

package ocr

import "context"

// TesseractClient is the stand-in used when the ocr build tag is not set.
// Rebuild with -tags ocr, with Tesseract installed, to enable it.
type TesseractClient struct{}

// NewTesseractClient returns ErrOCRNotEnabled.
func NewTesseractClient(lang string) (*TesseractClient, error) {
	return nil, ErrOCRNotEnabled
}

func (t *TesseractClient) Recognize(ctx context.Context, image []byte, mediaType string) (string, error) {
	return "", ErrOCRNotEnabled
}

func (t *TesseractClient) Close() {}
