package export

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// ErrGoogleNotConfigured is returned when no Docs access token is configured
var ErrGoogleNotConfigured = errors.New("google docs export is not configured")

// GoogleDocsConfig holds the REST endpoints and token of the Docs exporter
type GoogleDocsConfig struct {
	DocsBaseURL  string
	DriveBaseURL string
	Token        string
}

// GoogleDocsExporter creates a Google Doc from an itinerary and shares it read-only
type GoogleDocsExporter struct {
	docs   *resty.Client
	drive  *resty.Client
	token  string
	logger zerolog.Logger
}

// NewGoogleDocsExporter creates a new GoogleDocsExporter
func NewGoogleDocsExporter(cfg GoogleDocsConfig, logger zerolog.Logger) *GoogleDocsExporter {
	newClient := func(base string) *resty.Client {
		return resty.New().
			SetBaseURL(strings.TrimRight(base, "/")).
			SetAuthToken(cfg.Token).
			SetHeader("Accept", "application/json")
	}
	return &GoogleDocsExporter{
		docs:   newClient(cfg.DocsBaseURL),
		drive:  newClient(cfg.DriveBaseURL),
		token:  cfg.Token,
		logger: logger.With().Str("component", "gdocs").Logger(),
	}
}

// Enabled reports whether a token is configured
func (g *GoogleDocsExporter) Enabled() bool {
	return g.token != ""
}

type googleError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

type document struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
}

// Export creates the document, inserts the itinerary text and grants anyone
// with the link read access. It returns the document URL.
func (g *GoogleDocsExporter) Export(ctx context.Context, it *Itinerary) (string, error) {
	if !g.Enabled() {
		return "", ErrGoogleNotConfigured
	}

	var doc document
	var gerr googleError
	resp, err := g.docs.R().
		SetContext(ctx).
		SetBody(map[string]string{"title": it.Title()}).
		SetResult(&doc).
		SetError(&gerr).
		Post("/v1/documents")
	if err := checkGoogle(resp, err, &gerr, "create document"); err != nil {
		return "", err
	}
	if doc.DocumentID == "" {
		return "", fmt.Errorf("create document: response without documentId")
	}

	update := map[string]interface{}{
		"requests": []interface{}{
			map[string]interface{}{
				"insertText": map[string]interface{}{
					"location": map[string]int{"index": 1},
					"text":     it.PlainText(),
				},
			},
		},
	}
	gerr = googleError{}
	resp, err = g.docs.R().
		SetContext(ctx).
		SetBody(update).
		SetError(&gerr).
		Post(fmt.Sprintf("/v1/documents/%s:batchUpdate", doc.DocumentID))
	if err := checkGoogle(resp, err, &gerr, "insert text"); err != nil {
		return "", err
	}

	gerr = googleError{}
	resp, err = g.drive.R().
		SetContext(ctx).
		SetBody(map[string]string{"role": "reader", "type": "anyone"}).
		SetError(&gerr).
		Post(fmt.Sprintf("/drive/v3/files/%s/permissions", doc.DocumentID))
	if err := checkGoogle(resp, err, &gerr, "share document"); err != nil {
		return "", err
	}

	url := fmt.Sprintf("https://docs.google.com/document/d/%s/edit", doc.DocumentID)
	g.logger.Info().Str("documentID", doc.DocumentID).Str("candidate", it.CandidateName).Msg("Itinerary exported to Google Docs")
	return url, nil
}

func checkGoogle(resp *resty.Response, err error, gerr *googleError, step string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	if resp.IsError() {
		msg := gerr.Error.Message
		if msg == "" {
			msg = resp.Status()
		}
		return fmt.Errorf("%s: %s", step, msg)
	}
	return nil
}
