package notion

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aretw0/notesync/pkg/core"
)

// pageSize is the API maximum for list and search requests.
const pageSize = 100

// maxChildren is the API limit on blocks per create or append request.
const maxChildren = 100

// CreateCollection creates a database under the parent page.
func (c *Client) CreateCollection(ctx context.Context, parentID, title string, schema core.Schema) (string, error) {
	req := map[string]any{
		"parent":     parent{Type: "page_id", PageID: parentID},
		"title":      text(title),
		"properties": encodeSchema(schema),
	}
	var resp created
	if err := c.do(ctx, http.MethodPost, "/v1/databases", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// GetCollection retrieves a database and its property types.
func (c *Client) GetCollection(ctx context.Context, collectionID string) (core.Collection, error) {
	var db database
	if err := c.do(ctx, http.MethodGet, "/v1/databases/"+url.PathEscape(collectionID), nil, &db); err != nil {
		return core.Collection{}, err
	}
	col := core.Collection{
		ID:         db.ID,
		Title:      plain(db.Title),
		Properties: make(map[string]core.PropertyType, len(db.Properties)),
	}
	for name, p := range db.Properties {
		col.Properties[name] = core.PropertyType(p.Type)
	}
	return col, nil
}

// CreateRecord creates a page in the database. Blocks beyond the
// per-request limit are appended in follow-up requests.
func (c *Client) CreateRecord(ctx context.Context, collectionID string, props core.Properties, blocks []core.Block) (string, error) {
	first, rest := blocks, []core.Block(nil)
	if len(blocks) > maxChildren {
		first, rest = blocks[:maxChildren], blocks[maxChildren:]
	}
	req := map[string]any{
		"parent":     parent{DatabaseID: collectionID},
		"properties": encodeProperties(props),
	}
	if len(first) > 0 {
		req["children"] = encodeBlocks(first)
	}
	var resp created
	if err := c.do(ctx, http.MethodPost, "/v1/pages", req, &resp); err != nil {
		return "", err
	}
	for len(rest) > 0 {
		n := min(len(rest), maxChildren)
		body := map[string]any{"children": encodeBlocks(rest[:n])}
		if err := c.do(ctx, http.MethodPatch, "/v1/blocks/"+url.PathEscape(resp.ID)+"/children", body, nil); err != nil {
			return resp.ID, err
		}
		rest = rest[n:]
	}
	return resp.ID, nil
}

// UpdateRecord patches only the given properties.
func (c *Client) UpdateRecord(ctx context.Context, recordID string, props core.Properties) error {
	req := map[string]any{"properties": encodeProperties(props)}
	return c.do(ctx, http.MethodPatch, "/v1/pages/"+url.PathEscape(recordID), req, nil)
}

// ListRecords queries one page of the database.
func (c *Client) ListRecords(ctx context.Context, collectionID, cursor string) (core.RecordPage, error) {
	req := map[string]any{"page_size": pageSize}
	if cursor != "" {
		req["start_cursor"] = cursor
	}
	var resp listResponse
	if err := c.do(ctx, http.MethodPost, "/v1/databases/"+url.PathEscape(collectionID)+"/query", req, &resp); err != nil {
		return core.RecordPage{}, err
	}
	return toRecordPage(resp), nil
}

// SearchRecords runs a page search. Only the first result page is
// returned; exact title matching happens in the caller.
func (c *Client) SearchRecords(ctx context.Context, query string) ([]core.Record, error) {
	req := map[string]any{
		"query":     query,
		"filter":    map[string]string{"property": "object", "value": "page"},
		"page_size": pageSize,
	}
	var resp listResponse
	if err := c.do(ctx, http.MethodPost, "/v1/search", req, &resp); err != nil {
		return nil, err
	}
	return toRecordPage(resp).Records, nil
}

// ArchiveRecord archives a page. Notion keeps it in the trash.
func (c *Client) ArchiveRecord(ctx context.Context, recordID string) error {
	req := map[string]any{"archived": true}
	return c.do(ctx, http.MethodPatch, "/v1/pages/"+url.PathEscape(recordID), req, nil)
}

// Blocks reads every child block of a page, following the cursor.
// Block kinds other than paragraph and to_do are skipped.
func (c *Client) Blocks(ctx context.Context, recordID string) ([]core.Block, error) {
	var out []core.Block
	cursor := ""
	for {
		q := url.Values{"page_size": {strconv.Itoa(pageSize)}}
		if cursor != "" {
			q.Set("start_cursor", cursor)
		}
		var resp blockList
		path := "/v1/blocks/" + url.PathEscape(recordID) + "/children?" + q.Encode()
		if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, err
		}
		for _, b := range resp.Results {
			if blk, ok := decodeBlock(b); ok {
				out = append(out, blk)
			}
		}
		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			return out, nil
		}
		cursor = *resp.NextCursor
	}
}

func toRecordPage(resp listResponse) core.RecordPage {
	out := core.RecordPage{HasMore: resp.HasMore, Records: make([]core.Record, 0, len(resp.Results))}
	if resp.NextCursor != nil {
		out.NextCursor = *resp.NextCursor
	}
	for _, p := range resp.Results {
		if p.Object != "" && p.Object != "page" {
			continue
		}
		out.Records = append(out.Records, decodeRecord(p))
	}
	return out
}

// CollectionURL is the browser link of a database.
func CollectionURL(collectionID string) string {
	return "https://notion.so/" + core.NormalizeID(collectionID)
}

var _ core.Destination = (*Client)(nil)
