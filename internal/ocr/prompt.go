package ocr

import (
	"fmt"
	"os"
)

// DefaultPrompt asks for a faithful transcription that keeps the column
// positions of the page.
const DefaultPrompt = `Transcribe all text in this page image exactly as printed.

Rules:
- Keep every line of the page on its own output line, in order
- Preserve horizontal position: use spaces so each word starts in the column where it appears
- Do not correct spelling, expand abbreviations or reorder columns
- Leave out nothing that is printed; transcribe illegible characters as ?
- Do not add commentary, headings or Markdown

Respond with ONLY the transcribed text.`

// LoadPrompt returns the contents of path, or DefaultPrompt when path is
// empty.
func LoadPrompt(path string) (string, error) {
	if path == "" {
		return DefaultPrompt, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt file: %w", err)
	}
	return string(b), nil
}
