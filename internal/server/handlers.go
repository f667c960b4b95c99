package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/r9s-ai/respcheck/pkg/compare"
	"github.com/r9s-ai/respcheck/pkg/config"
	"github.com/r9s-ai/respcheck/pkg/document"
)

// compareRequest is the POST /v1/compare body. With format "xml" the
// expected and actual fields are JSON strings holding XML documents.
type compareRequest struct {
	Expected    json.RawMessage `json:"expected"`
	Actual      json.RawMessage `json:"actual"`
	Format      string          `json:"format"`
	Mode        string          `json:"mode"`
	IgnorePaths []string        `json:"ignore_paths"`
	Select      string          `json:"select"`
}

type compareResponse struct {
	Passed   bool              `json:"passed"`
	Mode     compare.Mode      `json:"mode"`
	Failures []compare.Failure `json:"failures"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Keyword string `json:"keyword,omitempty"`
	Path    string `json:"path,omitempty"`
}

type handlers struct {
	defaults config.CompareConfig
	reg      *compare.Registry
}

func (h *handlers) keywords(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"keywords": h.reg.Describe(),
		"modes":    []compare.Mode{compare.ModeStrictOrder, compare.ModeLenient, compare.ModeStrict, compare.ModeNonExtensible},
	})
}

func (h *handlers) compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: fmt.Sprintf("request body exceeds %d bytes", mbe.Limit)})
			return
		}
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if c.Request.ContentLength > 0 {
		c.Set(ctxBytesIn, c.Request.ContentLength)
	}

	expected, actual, err := decodeDocuments(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	cmp, err := h.comparator(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	c.Set(ctxMode, string(cmp.Mode()))

	if sel := strings.TrimSpace(req.Select); sel != "" {
		narrowed, ok := document.Narrow(actual, sel)
		if !ok {
			c.Set(ctxPassed, false)
			c.Set(ctxFailures, 1)
			c.JSON(http.StatusOK, compareResponse{
				Passed:   false,
				Mode:     cmp.Mode(),
				Failures: []compare.Failure{{Path: sel, Message: "select path matched nothing"}},
			})
			return
		}
		actual = narrowed
	}

	rep, err := cmp.Compare(expected, actual)
	if err != nil {
		var ce *compare.ConfigError
		if errors.As(err, &ce) {
			c.Set(ctxKeywordError, ce.Keyword)
			c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: ce.Error(), Keyword: ce.Keyword, Path: ce.Path})
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.Set(ctxPassed, rep.Passed)
	c.Set(ctxFailures, len(rep.Failures))
	c.JSON(http.StatusOK, compareResponse{Passed: rep.Passed, Mode: cmp.Mode(), Failures: rep.Failures})
}

func (h *handlers) comparator(req compareRequest) (*compare.Comparator, error) {
	cc := h.defaults
	if m := strings.TrimSpace(req.Mode); m != "" {
		cc.Mode = m
	}
	if len(req.IgnorePaths) > 0 {
		cc.IgnorePaths = append(append([]string(nil), cc.IgnorePaths...), req.IgnorePaths...)
	}
	opts, err := cc.Options()
	if err != nil {
		return nil, err
	}
	return compare.New(h.reg, opts...)
}

func decodeDocuments(req compareRequest) (document.Node, document.Node, error) {
	if len(req.Expected) == 0 {
		return document.Node{}, document.Node{}, errors.New("missing field: expected")
	}
	if len(req.Actual) == 0 {
		return document.Node{}, document.Node{}, errors.New("missing field: actual")
	}
	format, err := document.ParseFormat(req.Format)
	if err != nil {
		return document.Node{}, document.Node{}, err
	}
	expected, err := decodeDocument(req.Expected, format)
	if err != nil {
		return document.Node{}, document.Node{}, fmt.Errorf("expected: %w", err)
	}
	actual, err := decodeDocument(req.Actual, format)
	if err != nil {
		return document.Node{}, document.Node{}, fmt.Errorf("actual: %w", err)
	}
	return expected, actual, nil
}

func decodeDocument(raw json.RawMessage, format document.Format) (document.Node, error) {
	if format != document.FormatXML {
		return document.ParseJSON(raw)
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return document.Node{}, errors.New("xml documents must be sent as JSON strings")
	}
	return document.ParseXML([]byte(text))
}
