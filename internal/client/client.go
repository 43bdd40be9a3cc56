// Package client is the REST client used by the slidehub command line
// tools. Bulk operations fan out one request per id and fail as a unit: the
// first error wins, requests already completed are not rolled back.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"slidehub/pkg/models"
)

// ScopeNone addresses the global material pool in move/copy targets and
// list scopes.
const ScopeNone = "none"

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Scope selects which materials a list returns.
type Scope struct {
	// Kind is "project", "global" or "all".
	Kind      string
	ProjectID string
}

func (s Scope) query() url.Values {
	v := url.Values{}
	switch s.Kind {
	case "project":
		v.Set("project_id", s.ProjectID)
	case "global":
		v.Set("project_id", ScopeNone)
	}
	// "all": no project_id parameter at all
	return v
}

type apiError struct {
	Message string `json:"error"`
}

// do runs a JSON request. Error responses surface the server's message when
// one is present, falling back to a generic description.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return responseError(method, path, resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func responseError(method, path string, status int, body []byte) error {
	var ae apiError
	if err := json.Unmarshal(body, &ae); err == nil && strings.TrimSpace(ae.Message) != "" {
		return fmt.Errorf("%s %s: %s", method, path, ae.Message)
	}
	return fmt.Errorf("%s %s: request failed (status %d)", method, path, status)
}

type materialList struct {
	Total int               `json:"total"`
	Items []models.Material `json:"items"`
}

func (c *Client) ListMaterials(ctx context.Context, scope Scope) ([]models.Material, error) {
	path := "/materials"
	if q := scope.query().Encode(); q != "" {
		path += "?" + q
	}
	var resp materialList
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// UploadMaterial sends one file bound to projectID (empty = global pool).
func (c *Client) UploadMaterial(ctx context.Context, filePath, projectID string) (*models.Material, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, err
	}
	if projectID != "" {
		if err := w.WriteField("project_id", projectID); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/materials", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, responseError(http.MethodPost, "/materials", resp.StatusCode, data)
	}
	var m models.Material
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// UploadMaterials uploads every file concurrently. On success it returns
// the number uploaded; on any failure the first error is returned and files
// already stored stay stored.
func (c *Client) UploadMaterials(ctx context.Context, filePaths []string, projectID string) (int, error) {
	if len(filePaths) == 0 {
		return 0, nil
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, p := range filePaths {
		g.Go(func() error {
			_, err := c.UploadMaterial(ctx, p, projectID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(filePaths), nil
}

func (c *Client) GetMaterial(ctx context.Context, id string) (*models.Material, error) {
	var m models.Material
	if err := c.do(ctx, http.MethodGet, "/materials/"+id, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) DeleteMaterial(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/materials/"+id, nil, nil)
}

func (c *Client) UpdateMaterial(ctx context.Context, id, displayName, note string) (*models.Material, error) {
	payload := map[string]string{
		"display_name": strings.TrimSpace(displayName),
		"note":         strings.TrimSpace(note),
	}
	var m models.Material
	if err := c.do(ctx, http.MethodPatch, "/materials/"+id, payload, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) MoveMaterial(ctx context.Context, id, targetProjectID string) error {
	return c.relocate(ctx, id, targetProjectID, "move")
}

func (c *Client) CopyMaterial(ctx context.Context, id, targetProjectID string) error {
	return c.relocate(ctx, id, targetProjectID, "copy")
}

func (c *Client) relocate(ctx context.Context, id, targetProjectID, op string) error {
	if targetProjectID == "" {
		targetProjectID = ScopeNone
	}
	payload := map[string]string{"target_project_id": targetProjectID}
	return c.do(ctx, http.MethodPost, "/materials/"+id+"/"+op, payload, nil)
}

// BulkDelete removes every id in parallel. An empty set is a no-op: no
// requests are issued.
func (c *Client) BulkDelete(ctx context.Context, ids []string) error {
	return c.forEach(ctx, ids, c.DeleteMaterial)
}

func (c *Client) BulkMove(ctx context.Context, ids []string, targetProjectID string) error {
	return c.forEach(ctx, ids, func(ctx context.Context, id string) error {
		return c.MoveMaterial(ctx, id, targetProjectID)
	})
}

func (c *Client) BulkCopy(ctx context.Context, ids []string, targetProjectID string) error {
	return c.forEach(ctx, ids, func(ctx context.Context, id string) error {
		return c.CopyMaterial(ctx, id, targetProjectID)
	})
}

func (c *Client) forEach(ctx context.Context, ids []string, fn func(context.Context, string) error) error {
	if len(ids) == 0 {
		return nil
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		g.Go(func() error { return fn(ctx, id) })
	}
	return g.Wait()
}

type projectList struct {
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
	Items  []models.Project `json:"items"`
}

func (c *Client) ListProjects(ctx context.Context, limit, offset int) ([]models.Project, error) {
	path := "/projects?limit=" + strconv.Itoa(limit) + "&offset=" + strconv.Itoa(offset)
	var resp projectList
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) CreateProject(ctx context.Context, title string) (*models.Project, error) {
	var p models.Project
	if err := c.do(ctx, http.MethodPost, "/projects", map[string]string{"title": title}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+id, nil, nil)
}

type pageList struct {
	Total int           `json:"total"`
	Items []models.Page `json:"items"`
}

func (c *Client) ListPages(ctx context.Context, projectID string) ([]models.Page, error) {
	var resp pageList
	if err := c.do(ctx, http.MethodGet, "/projects/"+projectID+"/pages", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) CreatePage(ctx context.Context, projectID, title string, points []string) (*models.Page, error) {
	payload := map[string]any{
		"outline_content": models.OutlineContent{Title: title, Points: points},
	}
	var p models.Page
	if err := c.do(ctx, http.MethodPost, "/projects/"+projectID+"/pages", payload, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) GetPage(ctx context.Context, id string) (*models.Page, error) {
	var p models.Page
	if err := c.do(ctx, http.MethodGet, "/pages/"+id, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PageUpdate mirrors the PATCH /pages/:id body; nil fields are omitted.
type PageUpdate struct {
	OutlineContent     *models.OutlineContent     `json:"outline_content,omitempty"`
	DescriptionContent *models.DescriptionContent `json:"description_content,omitempty"`
	PageType           *string                    `json:"page_type,omitempty"`
	Part               *string                    `json:"part,omitempty"`
}

func (c *Client) UpdatePage(ctx context.Context, id string, upd PageUpdate) (*models.Page, error) {
	var p models.Page
	if err := c.do(ctx, http.MethodPatch, "/pages/"+id, upd, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeletePage(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/pages/"+id, nil, nil)
}

func (c *Client) GeneratePage(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/pages/"+id+"/generate", nil, nil)
}

func (c *Client) RegenerateDescription(ctx context.Context, id string) (*models.Page, error) {
	var p models.Page
	if err := c.do(ctx, http.MethodPost, "/pages/"+id+"/regenerate-description", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
