package schemareg

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

type httpClient struct {
	base string
	http *resty.Client
}

type Option func(*httpClient)

// WithToken sets the Authorization token
func WithToken(tok string) Option {
	return func(c *httpClient) {
		c.http.SetAuthToken(tok)
	}
}

// WithBasicAuth sets basic credentials for registries behind HTTP auth.
func WithBasicAuth(user, pass string) Option {
	return func(c *httpClient) {
		c.http.SetBasicAuth(user, pass)
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = resty.NewWithClient(hc)
	}
}

// NewHTTP returns a Client speaking the Confluent-style REST dialect
// rooted at the given base URL.
func NewHTTP(base string, opts ...Option) Client {
	c := &httpClient{base: strings.TrimRight(base, "/"), http: resty.New()}
	for _, o := range opts {
		o(c)
	}
	c.http.SetHeader("Accept", "application/vnd.schemaregistry.v1+json, application/json")
	return c
}

func (c *httpClient) ListSubjects(ctx context.Context) ([]string, error) {
	var out []string
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get(c.base + "/subjects")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	return out, nil
}

func (c *httpClient) ListVersions(ctx context.Context, subject string) ([]int, error) {
	var out []int
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).
		Get(c.base + "/subjects/" + subject + "/versions")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrSubjectNotFound, subject)
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	return out, nil
}

func (c *httpClient) GetVersion(ctx context.Context, subject string, version int) (SchemaDocument, error) {
	ver := "latest"
	if version > 0 {
		ver = strconv.Itoa(version)
	}
	resp, err := c.http.R().SetContext(ctx).
		Get(c.base + "/subjects/" + subject + "/versions/" + ver)
	if err != nil {
		return SchemaDocument{}, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return SchemaDocument{}, fmt.Errorf("%w: %s/%s", ErrVersionNotFound, subject, ver)
	}
	if resp.IsError() {
		return SchemaDocument{}, restyErr(resp)
	}
	doc, err := decodeDocument(resp.Body())
	if err != nil {
		return SchemaDocument{}, err
	}
	if doc.Subject == "" {
		doc.Subject = subject
	}
	if doc.Version == 0 && version > 0 {
		doc.Version = version
	}
	return doc, nil
}

func (c *httpClient) GetByGlobalID(ctx context.Context, id int) (SchemaDocument, error) {
	resp, err := c.http.R().SetContext(ctx).
		Get(c.base + "/schemas/ids/" + strconv.Itoa(id))
	if err != nil {
		return SchemaDocument{}, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return SchemaDocument{}, fmt.Errorf("%w: id %d", ErrSchemaNotFound, id)
	}
	if resp.IsError() {
		return SchemaDocument{}, restyErr(resp)
	}
	doc, err := decodeDocument(resp.Body())
	if err != nil {
		return SchemaDocument{}, err
	}
	if doc.GlobalID == 0 {
		doc.GlobalID = id
	}
	return doc, nil
}

func (c *httpClient) RegisterVersion(ctx context.Context, subject string, req RegisterRequest) (RegisterResponse, error) {
	var out RegisterResponse
	resp, err := c.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/vnd.schemaregistry.v1+json").
		SetBody(req).SetResult(&out).
		Post(c.base + "/subjects/" + subject + "/versions")
	if err != nil {
		return RegisterResponse{}, err
	}
	if resp.IsError() {
		return RegisterResponse{}, restyErr(resp)
	}
	return out, nil
}

// decodeDocument keeps the raw decoded body alongside the typed fields so
// variant payload shapes survive for the normalizer.
func decodeDocument(body []byte) (SchemaDocument, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return SchemaDocument{}, fmt.Errorf("decode schema payload: %w", err)
	}
	doc := SchemaDocument{RawPayload: raw}
	if m, ok := raw.(map[string]any); ok {
		if s, ok := m["subject"].(string); ok {
			doc.Subject = s
		}
		if v, ok := m["version"].(float64); ok {
			doc.Version = int(v)
		}
		if id, ok := m["id"].(float64); ok {
			doc.GlobalID = int(id)
		}
		if t, ok := m["schemaType"].(string); ok {
			doc.SchemaType = SchemaType(t)
		}
	}
	return doc, nil
}

func restyErr(resp *resty.Response) error {
	msg := strings.TrimSpace(string(resp.Body()))
	if msg == "" {
		return fmt.Errorf("%s", resp.Status())
	}
	return fmt.Errorf("%s: %s", resp.Status(), msg)
}
