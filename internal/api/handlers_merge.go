package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dgallion1/gridlock/internal/columns"
	"github.com/dgallion1/gridlock/internal/merge"
	"github.com/dgallion1/gridlock/internal/page"
)

type mergeRequest struct {
	Template string `json:"template"`
	Text     string `json:"text"`
	Margin   int    `json:"margin"`
	Debug    *bool  `json:"debug"`
	// Strategy restricts the merge to one strategy ("row" or "column").
	Strategy string `json:"strategy"`
}

type mergeResponse struct {
	OK          bool            `json:"ok"`
	Strategy    merge.Kind      `json:"strategy"`
	Report      string          `json:"report"`
	Lines       int             `json:"lines"`
	FailedLines int             `json:"failed_lines"`
	Mismatch    *merge.Mismatch `json:"mismatch,omitempty"`
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	strategies := merge.DefaultStrategies()
	if req.Strategy != "" {
		st, ok := merge.StrategyFor(merge.Kind(req.Strategy))
		if !ok {
			jsonError(w, "unknown strategy: "+req.Strategy, http.StatusBadRequest)
			return
		}
		strategies = []merge.Strategy{st}
	}

	template, _ := page.Read(strings.NewReader(req.Template))
	text, _ := page.Read(strings.NewReader(req.Text))
	res := merge.MergeWith(strategies, template, text, s.mergeOptions(req.Margin, req.Debug))

	code := http.StatusOK
	if !res.OK {
		code = http.StatusUnprocessableEntity
	}
	writeJSON(w, code, mergeResponse{
		OK:          res.OK,
		Strategy:    res.Strategy,
		Report:      res.String(),
		Lines:       len(res.Lines),
		FailedLines: res.Failed(),
		Mismatch:    res.Mismatch,
	})
}

type columnsRequest struct {
	Page   string `json:"page"`
	Margin int    `json:"margin"`
}

type columnsResponse struct {
	Extents []columns.Extent `json:"extents"`
	Columns [][]string       `json:"columns"`
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req columnsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	p, _ := page.Read(strings.NewReader(req.Page))
	margin := req.Margin
	if margin <= 0 {
		margin = s.cfg.MergeMargin
	}

	extents := columns.FindColumns(p, margin)
	resp := columnsResponse{
		Extents: extents,
		Columns: make([][]string, 0, len(extents)),
	}
	if resp.Extents == nil {
		resp.Extents = []columns.Extent{}
	}
	for _, col := range columns.Split(p, extents) {
		resp.Columns = append(resp.Columns, []string(col))
	}

	writeJSON(w, http.StatusOK, resp)
}

// mergeOptions applies request overrides to the configured defaults.
func (s *Server) mergeOptions(margin int, debug *bool) merge.Options {
	opts := merge.Options{Margin: s.cfg.MergeMargin, Debug: s.cfg.MergeDebug}
	if margin > 0 {
		opts.Margin = margin
	}
	if debug != nil {
		opts.Debug = *debug
	}
	return opts
}
