package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/briefly/internal/client/models"
	"github.com/dmitrijs2005/briefly/internal/common"
)

const (
	routeRegister       = "/user/create"
	routeLogin          = "/user/verify"
	routeSummaries      = "/summaries/{userId}"
	routeShared         = "/user/{userId}/shared-summaries"
	routeSummary        = "/summary/{id}"
	routeCreateSummary  = "/summary/create"
	routeUploadSummary  = "/summary/upload"
	routeShareSummary   = "/summary/share"
	routeRegenerate     = "/summary/regenerate"
	routeInputFile      = "/summary/file/{fileId}"
	uploadFileFieldName = "file"
)

var _ Client = (*HTTPClient)(nil)

func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) error {
	var env models.Envelope
	err := c.Call(ctx, Request{
		Method: http.MethodPost,
		Path:   routeRegister,
		Body:   reg,
	}, &env)
	if err != nil {
		return err
	}
	return checkStatus(env, false)
}

// Login accepts the token either inside the envelope result or at the top
// level of the body.
func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	var raw json.RawMessage
	err := c.Call(ctx, Request{
		Method: http.MethodPost,
		Path:   routeLogin,
		Body:   creds,
	}, &raw)
	if err != nil {
		return nil, err
	}

	var env models.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, malformed(err)
	}
	if err := checkStatus(env, false); err != nil {
		return nil, err
	}

	payload := raw
	if !isNull(env.Result) {
		payload = env.Result
	}

	var res models.LoginResult
	if err := json.Unmarshal(payload, &res); err != nil {
		if msg := stringValue(env.Result); msg != "" {
			return nil, &FetchError{Status: env.Status, Message: msg}
		}
		return nil, malformed(err)
	}
	if res.AuthToken == "" {
		return nil, &FetchError{Status: env.Status, Message: "response carries no auth token"}
	}
	return &res, nil
}

func (c *HTTPClient) ListSummaries(ctx context.Context, userID models.ID) ([]models.Summary, error) {
	var out []models.Summary
	err := c.getList(ctx, routeSummaries, "/summaries/"+url.PathEscape(userID.String()), &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListSharedSummaries(ctx context.Context, userID models.ID) ([]models.SharedSummary, error) {
	var out []models.SharedSummary
	err := c.getList(ctx, routeShared, "/user/"+url.PathEscape(userID.String())+"/shared-summaries", &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetSummary(ctx context.Context, id models.ID) (*models.Summary, error) {
	var env models.Envelope
	err := c.Call(ctx, Request{
		Method:       http.MethodGet,
		Route:        routeSummary,
		Path:         summaryPath(id),
		RequiresAuth: true,
	}, &env)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(env, true); err != nil {
		return nil, err
	}
	if isNull(env.Result) {
		return nil, &FetchError{Status: env.Status, Message: "summary not found"}
	}

	var s models.Summary
	if err := json.Unmarshal(env.Result, &s); err != nil {
		return nil, malformed(err)
	}
	return &s, nil
}

func (c *HTTPClient) CreateSummary(ctx context.Context, req models.CreateSummaryRequest) (models.ID, error) {
	var env models.Envelope
	err := c.Call(ctx, Request{
		Method:       http.MethodPost,
		Path:         routeCreateSummary,
		Body:         req,
		RequiresAuth: true,
	}, &env)
	if err != nil {
		return "", err
	}
	return createdID(env)
}

func (c *HTTPClient) UploadSummary(ctx context.Context, userID models.ID, in models.NewSummary) (models.ID, error) {
	fields := map[string]string{
		"userId":     userID.String(),
		"type":       string(in.Type),
		"uploadType": string(models.UploadTypeUpload),
	}
	if in.Title != "" {
		fields["title"] = in.Title
	}

	var env models.Envelope
	err := c.Call(ctx, Request{
		Method: http.MethodPost,
		Path:   routeUploadSummary,
		Form: &MultipartForm{
			Fields:    fields,
			FileField: uploadFileFieldName,
			FileName:  in.FileName,
			File:      in.File,
		},
		RequiresAuth: true,
	}, &env)
	if err != nil {
		return "", err
	}
	return createdID(env)
}

func (c *HTTPClient) DeleteSummary(ctx context.Context, id models.ID) error {
	return c.mutate(ctx, Request{
		Method:       http.MethodDelete,
		Route:        routeSummary,
		Path:         summaryPath(id),
		RequiresAuth: true,
	})
}

func (c *HTTPClient) ShareSummary(ctx context.Context, req models.ShareRequest) error {
	return c.mutate(ctx, Request{
		Method:       http.MethodPost,
		Path:         routeShareSummary,
		Body:         req,
		RequiresAuth: true,
	})
}

func (c *HTTPClient) RegenerateSummary(ctx context.Context, req models.RegenerateRequest) error {
	return c.mutate(ctx, Request{
		Method:       http.MethodPost,
		Path:         routeRegenerate,
		Body:         req,
		RequiresAuth: true,
	})
}

func (c *HTTPClient) DownloadInputFile(ctx context.Context, fileID models.ID, w io.Writer) error {
	return c.Download(ctx, Request{
		Method:       http.MethodGet,
		Route:        routeInputFile,
		Path:         "/summary/file/" + url.PathEscape(fileID.String()),
		RequiresAuth: true,
	}, w)
}

func (c *HTTPClient) getList(ctx context.Context, route, path string, out any) error {
	var env models.Envelope
	err := c.Call(ctx, Request{
		Method:       http.MethodGet,
		Route:        route,
		Path:         path,
		RequiresAuth: true,
	}, &env)
	if err != nil {
		return err
	}
	if err := checkStatus(env, true); err != nil {
		return err
	}

	result := bytes.TrimSpace(env.Result)
	if len(result) == 0 || result[0] != '[' {
		return &FetchError{Status: env.Status, Message: "result is not a list"}
	}
	if err := json.Unmarshal(result, out); err != nil {
		return malformed(err)
	}
	return nil
}

func (c *HTTPClient) mutate(ctx context.Context, req Request) error {
	var env models.Envelope
	if err := c.Call(ctx, req, &env); err != nil {
		return err
	}
	return checkStatus(env, false)
}

// checkStatus fails unless the envelope reports OK. Lenient checks also
// accept an envelope that carries no status at all.
func checkStatus(env models.Envelope, strict bool) error {
	if env.Status == common.StatusOK || (!strict && env.Status == "") {
		return nil
	}

	msg := detailMessage(env.Detail)
	if msg == "" {
		msg = stringValue(env.Result)
	}
	if msg == "" {
		if env.Status == "" {
			msg = "response carries no status"
		} else {
			msg = "request was not successful"
		}
	}
	return &FetchError{Status: env.Status, Message: msg}
}

func createdID(env models.Envelope) (models.ID, error) {
	if err := checkStatus(env, false); err != nil {
		return "", err
	}

	var res struct {
		SummaryID models.ID `json:"summary_id"`
		ID        models.ID `json:"id"`
	}
	if isNull(env.Result) {
		return "", &FetchError{Status: env.Status, Message: "response carries no summary id"}
	}
	if err := json.Unmarshal(env.Result, &res); err != nil {
		return "", malformed(err)
	}

	switch {
	case res.SummaryID != "":
		return res.SummaryID, nil
	case res.ID != "":
		return res.ID, nil
	}
	return "", &FetchError{Status: env.Status, Message: "response carries no summary id"}
}

func summaryPath(id models.ID) string {
	return "/summary/" + url.PathEscape(id.String())
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func malformed(err error) error {
	return &FetchError{Message: fmt.Sprintf("malformed response: %v", err)}
}
