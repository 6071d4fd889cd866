package inspectionapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/DavidAtikpo/irata-sub002/internal/domain/inspection"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/propagation"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/qrcode"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/apierr"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
	"github.com/DavidAtikpo/irata-sub002/internal/services"
)

// Client talks to a remote inspection API. It serves as profile lookup,
// upload collaborator, record store and broadcast publisher. Calls are made
// once; nothing is retried.
type Client struct {
	http *resty.Client
	log  *logger.Logger
}

func New(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	return &Client{http: client, log: log.With("client", "InspectionAPI")}
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
		Kind    string `json:"kind"`
	} `json:"error"`
}

// check turns a transport failure or non-2xx response into an apierr.
func (c *Client) check(op string, resp *resty.Response, err error) error {
	if err != nil {
		c.log.Warn("request failed", "op", op, "error", err)
		return apierr.Transfer(0, op+"_failed", err)
	}
	if resp.IsSuccess() {
		return nil
	}
	status := resp.StatusCode()
	if status == http.StatusRequestEntityTooLarge {
		return apierr.TooLarge(fmt.Errorf("%s: %s", op, resp.Status()))
	}

	var env errorEnvelope
	_ = json.Unmarshal(resp.Body(), &env)
	msg := env.Error.Message
	if msg == "" {
		msg = resp.Status()
	}
	code := env.Error.Code
	if code == "" {
		code = op + "_failed"
	}
	cause := fmt.Errorf("%s: %s", op, msg)
	c.log.Warn("request rejected", "op", op, "status", status, "code", code)

	switch apierr.Kind(env.Error.Kind) {
	case apierr.KindValidation:
		return &apierr.Error{Status: status, Code: code, Kind: apierr.KindValidation, Err: cause}
	case apierr.KindDecode:
		return &apierr.Error{Status: status, Code: code, Kind: apierr.KindDecode, Err: cause}
	default:
		return apierr.Transfer(status, code, cause)
	}
}

func (c *Client) LookupProfile(ctx context.Context, code string) (*inspection.Profile, error) {
	var out inspection.Profile
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/equipment-profile/" + url.PathEscape(code))
	if err == nil && resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", qrcode.ErrProfileNotFound, code)
	}
	if err := c.check("profile_lookup", resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RegisterProfile(ctx context.Context, p *inspection.Profile) (*inspection.Profile, error) {
	var out inspection.Profile
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(p).
		SetResult(&out).
		Post("/api/equipment-profiles")
	if err := c.check("profile_register", resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Upload(ctx context.Context, kind services.UploadKind, filename string, data []byte) (*services.UploadResult, error) {
	var out services.UploadResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(data)).
		SetFormData(map[string]string{"type": string(kind)}).
		SetResult(&out).
		Post("/api/uploads")
	if err := c.check("upload", resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Get(ctx context.Context, id uuid.UUID) (*inspection.Record, error) {
	var out inspection.Record
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/inspections/" + id.String())
	if err := c.check("record_get", resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Create(ctx context.Context, rec *inspection.Record) (*inspection.Record, error) {
	var out inspection.Record
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(rec).
		SetResult(&out).
		Post("/api/inspections")
	if err := c.check("record_create", resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Update(ctx context.Context, rec *inspection.Record) (*inspection.Record, error) {
	var out inspection.Record
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(rec).
		SetResult(&out).
		Put("/api/inspections/" + rec.ID.String())
	if err := c.check("record_update", resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

type broadcastResult struct {
	Updated int `json:"updated"`
}

// PublishArtifact calls the narrow broadcast endpoint of the artifact kind.
func (c *Client) PublishArtifact(ctx context.Context, a propagation.Artifact) (int, error) {
	var path string
	switch a.Kind {
	case propagation.KindCertificate:
		path = "/api/inspections/broadcast/certificate"
	case propagation.KindSignature:
		path = "/api/inspections/broadcast/signature"
	default:
		return 0, errors.New("unknown artifact kind " + string(a.Kind))
	}
	var out broadcastResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(a).
		SetResult(&out).
		Post(path)
	if err := c.check("broadcast", resp, err); err != nil {
		return 0, apierr.Broadcast("broadcast_failed", err)
	}
	return out.Updated, nil
}

// DecodeQR sends an image to the server-side scanner.
func (c *Client) DecodeQR(ctx context.Context, filename string, image []byte) (*qrcode.Result, error) {
	var out qrcode.Result
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(image)).
		SetResult(&out).
		Post("/api/qr/decode")
	if err := c.check("qr_decode", resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Export(ctx context.Context, id uuid.UUID) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet").
		Get("/api/inspections/" + id.String() + "/export.xlsx")
	if err := c.check("export", resp, err); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}
