package strindex

import (
	"context"
	"time"
)

// Create analyzes value and stores it. A duplicate returns ErrAlreadyExists.
func (c *Client) Create(ctx context.Context, value string) (_ Record, err error) {
	start := time.Now()
	defer func() { c.obs.observe("create", start, err) }()

	rec, err := c.records.Create(ctx, value)
	if err != nil {
		return Record{}, err
	}
	return recordFromDomain(&rec), nil
}

// Get returns the record with exactly value, or ErrNotFound.
func (c *Client) Get(ctx context.Context, value string) (_ Record, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get", start, err) }()

	rec, err := c.records.Get(ctx, value)
	if err != nil {
		return Record{}, err
	}
	return recordFromDomain(&rec), nil
}

// List returns the records matching every set filter. Zero Filters lists everything.
func (c *Client) List(ctx context.Context, f Filters) (_ ListResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("list", start, err) }()

	res, err := c.records.List(ctx, f.params())
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{
		Records: recordsFromDomain(res.Records),
		Count:   res.Count,
		Filters: filtersFromPredicate(res.Filters),
	}, nil
}

// ListByPhrase interprets a plain-English phrase and returns the matching records.
// An unrecognized phrase returns an error matching ErrParse.
func (c *Client) ListByPhrase(ctx context.Context, phrase string) (_ PhraseResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("list_by_phrase", start, err) }()

	res, err := c.records.ListByPhrase(ctx, phrase)
	if err != nil {
		return PhraseResult{}, err
	}
	return PhraseResult{
		Records:  recordsFromDomain(res.Records),
		Count:    res.Count,
		Original: res.Original,
		Parsed:   filtersFromPredicate(res.Parsed),
	}, nil
}

// Delete removes the record with exactly value, or returns ErrNotFound.
func (c *Client) Delete(ctx context.Context, value string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete", start, err) }()

	return c.records.Delete(ctx, value)
}
