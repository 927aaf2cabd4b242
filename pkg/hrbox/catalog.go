package hrbox

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

// Catalog accumulates the pages of the document listing in arrival order.
type Catalog struct {
	Documents   []Document `json:"documents" yaml:"documents"`
	Folders     []Folder   `json:"folders,omitempty" yaml:"folders,omitempty"`
	MetaData    []Metadata `json:"metaData,omitempty" yaml:"metadata,omitempty"`
	Retrieved   uint32     `json:"retrieved" yaml:"retrieved"`
	Total       uint32     `json:"total" yaml:"total"`
	UnreadCount uint32     `json:"unreadCount" yaml:"unread_count"`

	pages int
}

// Pages returns how many pages have been accumulated.
func (c *Catalog) Pages() int {
	return c.pages
}

// Accumulate folds one page into the catalog. It returns the offset of the
// next page to request, or done when every document has been retrieved.
// The total count of the first page is binding for all following pages.
func (c *Catalog) Accumulate(page *Page) (next uint32, done bool, err error) {
	if page == nil {
		return 0, false, ErrMalformedPage
	}
	if c.pages > 0 && page.TotalCount != c.Total {
		return 0, false, fmt.Errorf("%w: %d, was %d", ErrTotalChanged, page.TotalCount, c.Total)
	}
	if uint32(len(page.Documents)) != page.TotalResultCount {
		return 0, false, fmt.Errorf("%w: %d documents but totalResultCount %d",
			ErrMalformedPage, len(page.Documents), page.TotalResultCount)
	}
	if c.pages == 0 {
		c.Total = page.TotalCount
		c.UnreadCount = page.UnreadCount
		c.MetaData = page.MetaData
		c.Folders = page.Folders
	}

	c.pages++
	c.Documents = append(c.Documents, page.Documents...)
	c.Retrieved += page.TotalResultCount

	if c.Retrieved >= c.Total {
		return c.Retrieved, true, nil
	}
	if page.TotalResultCount == 0 {
		return 0, false, fmt.Errorf("%w at %d of %d documents", ErrStalledPagination, c.Retrieved, c.Total)
	}
	return c.Retrieved, false, nil
}

// FetchPage requests one page of the listing starting at offset.
func FetchPage(ctx context.Context, s *Session, offset uint32) (*Page, error) {
	query := url.Values{}
	query.Set("offset", strconv.FormatUint(uint64(offset), 10))
	resp, err := s.Get(ctx, DocumentsPath, query)
	if err != nil {
		return nil, err
	}
	body := resp.Body()
	if err := checkPageShape(body); err != nil {
		return nil, &ProtocolError{Op: "decode catalog page", Err: err}
	}
	var page Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &ProtocolError{
			Op:  "decode catalog page",
			Err: fmt.Errorf("%w: %v", ErrMalformedPage, err),
		}
	}
	if !page.Success {
		return nil, &ProtocolError{
			Op:  "decode catalog page",
			Err: fmt.Errorf("%w: success is false", ErrMalformedPage),
		}
	}
	return &page, nil
}

// checkPageShape rejects bodies that decode without error but lack the
// fields a listing page must carry.
func checkPageShape(body []byte) error {
	required := []struct {
		key  string
		kind jsoniter.ValueType
	}{
		{"success", jsoniter.BoolValue},
		{"totalResultCount", jsoniter.NumberValue},
		{"totalCount", jsoniter.NumberValue},
		{"documents", jsoniter.ArrayValue},
	}
	if json.Get(body).ValueType() != jsoniter.ObjectValue {
		return fmt.Errorf("%w: not a JSON object", ErrMalformedPage)
	}
	for _, field := range required {
		if json.Get(body, field.key).ValueType() != field.kind {
			return fmt.Errorf("%w: missing or invalid %q", ErrMalformedPage, field.key)
		}
	}
	return nil
}

// FetchAll walks the listing page by page until the reported total is reached.
func FetchAll(ctx context.Context, s *Session) (*Catalog, error) {
	catalog := &Catalog{}
	var offset uint32
	for {
		page, err := FetchPage(ctx, s, offset)
		if err != nil {
			return nil, fmt.Errorf("catalog page at offset %d: %w", offset, err)
		}
		next, done, err := catalog.Accumulate(page)
		if err != nil {
			return nil, fmt.Errorf("catalog page at offset %d: %w", offset,
				&ProtocolError{Op: "paginate", Err: err})
		}
		s.logger.Infof("Retrieved information for [%d/%d] documents", catalog.Retrieved, catalog.Total)
		if done {
			break
		}
		offset = next
	}
	s.logger.Infof("Retrieved information for a total of [%d] documents", catalog.Retrieved)
	return catalog, nil
}
