package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// =============================================================================
// DOCUMENT STORE
// Solr-style collection reachable over HTTP: cursor-paged select, bulk
// set-updates, and an explicit durability commit.
// =============================================================================

// SentinelCursor is the initial cursor mark for a fresh pagination walk.
const SentinelCursor = "*"

// Config holds document store connection configuration.
type Config struct {
	// BaseURL is the collection URL (e.g., http://localhost:8983/solr/records)
	BaseURL string `json:"baseUrl"`

	// SourceField is the legacy single-valued field to read.
	SourceField string `json:"sourceField"`

	// TargetField is the multi-valued field to write.
	TargetField string `json:"targetField"`

	// PageSize is the number of documents per select request.
	PageSize int `json:"pageSize,omitempty"`

	// Client overrides the HTTP client configuration (optional).
	Client *ClientConfig `json:"-"`
}

// DefaultPageSize is the default number of documents per select request.
const DefaultPageSize = 20

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return &ValidationError{Field: "baseUrl", Message: "required"}
	}
	if c.SourceField == "" {
		return &ValidationError{Field: "sourceField", Message: "required"}
	}
	if c.TargetField == "" {
		return &ValidationError{Field: "targetField", Message: "required"}
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	return nil
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Document is one store record projected to the fields the migration needs.
// Extra fields returned by the store are ignored.
type Document struct {
	ID     string
	Source string
}

// SelectPage is one page of documents plus the cursor for the next page.
type SelectPage struct {
	Docs       []Document
	NextCursor string
}

// UpdateDoc is one set-update instruction in a bulk update request.
type UpdateDoc struct {
	ID  string
	Set []string
}

// Store is the HTTP document store handle.
type Store struct {
	client *Client
	config *Config
}

// New creates a new store handle with the given configuration.
func New(config *Config) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	clientConfig := config.Client
	if clientConfig == nil {
		clientConfig = DefaultClientConfig()
	}
	clientConfig.BaseURL = config.BaseURL

	return &Store{
		client: NewClient(clientConfig),
		config: config,
	}, nil
}

// SourceField returns the configured legacy field name.
func (s *Store) SourceField() string { return s.config.SourceField }

// TargetField returns the configured destination field name.
func (s *Store) TargetField() string { return s.config.TargetField }

// PageSize returns the configured select page size.
func (s *Store) PageSize() int { return s.config.PageSize }

// =============================================================================
// SELECT
// =============================================================================

// selectResponse is the wire shape of a select result. Unknown fields are
// ignored.
type selectResponse struct {
	Response struct {
		Docs []map[string]any `json:"docs"`
	} `json:"response"`
	NextCursorMark string `json:"nextCursorMark"`
}

// Select fetches one page of documents carrying the source field, resuming
// from cursor. The query is sorted by the unique key so cursor pagination
// is deterministic, gap-free and duplicate-free.
func (s *Store) Select(ctx context.Context, cursor string) (*SelectPage, error) {
	query := url.Values{}
	query.Set("q", s.config.SourceField+":*")
	query.Set("fl", "id,"+s.config.SourceField)
	query.Set("rows", strconv.Itoa(s.config.PageSize))
	query.Set("sort", "id asc")
	query.Set("cursorMark", cursor)
	query.Set("wt", "json")

	resp, err := s.client.Get(ctx, "select", query)
	if err != nil {
		return nil, err
	}

	var wire selectResponse
	if err := resp.JSON(&wire); err != nil {
		return nil, fmt.Errorf("decode select response: %w", err)
	}

	page := &SelectPage{
		Docs:       make([]Document, 0, len(wire.Response.Docs)),
		NextCursor: wire.NextCursorMark,
	}
	for _, raw := range wire.Response.Docs {
		doc, err := parseDocument(raw, s.config.SourceField)
		if err != nil {
			return nil, err
		}
		page.Docs = append(page.Docs, doc)
	}
	return page, nil
}

// parseDocument validates the required id and coerces the source field to a
// string. The source value may be absent; non-scalar values are treated as
// absent rather than erroring.
func parseDocument(raw map[string]any, sourceField string) (Document, error) {
	id, ok := raw["id"].(string)
	if !ok || id == "" {
		return Document{}, fmt.Errorf("document missing id: %v", raw)
	}
	return Document{ID: id, Source: scalarString(raw[sourceField])}, nil
}

func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool, float64, int, int64:
		return fmt.Sprint(val)
	default:
		return ""
	}
}

// =============================================================================
// UPDATE / COMMIT
// =============================================================================

// updateContentType matches what the store expects for JSON update bodies.
const updateContentType = "application/json; charset=utf-8"

// EncodeUpdate serializes a bulk set-update payload: one object per
// instruction, each replacing the target field's entire value with the
// supplied sequence.
func (s *Store) EncodeUpdate(docs []UpdateDoc) ([]byte, error) {
	body := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		body = append(body, map[string]any{
			"id":                 doc.ID,
			s.config.TargetField: map[string][]string{"set": doc.Set},
		})
	}
	return json.Marshal(body)
}

// Update submits one pre-serialized bulk update request.
func (s *Store) Update(ctx context.Context, payload []byte) error {
	_, err := s.client.Post(ctx, "update", nil, payload, updateContentType)
	return err
}

// Commit issues the durability commit that makes prior updates visible.
func (s *Store) Commit(ctx context.Context) error {
	query := url.Values{}
	query.Set("commit", "true")
	_, err := s.client.Post(ctx, "update", query, nil, updateContentType)
	return err
}

// Ping verifies the store is reachable before a run starts.
func (s *Store) Ping(ctx context.Context) error {
	query := url.Values{}
	query.Set("q", "*:*")
	query.Set("rows", "0")
	query.Set("wt", "json")
	_, err := s.client.Get(ctx, "select", query)
	return err
}
