package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	perr "prsentinel/internal/platform/errors"
)

const maxPerPage = 100

// SearchRepositories runs a repository search and returns at most limit results
// sort and order follow the GitHub search API (e.g. "stars", "desc")
func (c *Client) SearchRepositories(ctx context.Context, query, sort, order string, limit int) ([]Repo, error) {
	if limit <= 0 {
		return nil, nil
	}
	var out []Repo
	perPage := min(limit, maxPerPage)
	next := fmt.Sprintf("/search/repositories?q=%s&sort=%s&order=%s&per_page=%d",
		url.QueryEscape(query), url.QueryEscape(sort), url.QueryEscape(order), perPage)

	for next != "" && len(out) < limit {
		var page struct {
			TotalCount int    `json:"total_count"`
			Items      []Repo `json:"items"`
		}
		link, err := c.getJSON(ctx, next, &page)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Items...)
		if len(page.Items) == 0 {
			break
		}
		next = link
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListPulls lists every pull request of owner/name in the given state ("open", "closed", "all")
// following Link pagination. maxPages <= 0 means no page cap
func (c *Client) ListPulls(ctx context.Context, owner, name, state string, perPage, maxPages int) ([]PullRequest, error) {
	if state == "" {
		state = "all"
	}
	if perPage <= 0 || perPage > maxPerPage {
		perPage = maxPerPage
	}
	next := fmt.Sprintf("/repos/%s/%s/pulls?state=%s&per_page=%d",
		url.PathEscape(owner), url.PathEscape(name), url.QueryEscape(state), perPage)

	var out []PullRequest
	for pages := 0; next != ""; pages++ {
		if maxPages > 0 && pages >= maxPages {
			break
		}
		var page []PullRequest
		link, err := c.getJSON(ctx, next, &page)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) == 0 {
			break
		}
		next = link
	}
	return out, nil
}

// PullDetail fetches a single pull request including size and commit counts,
// which the list endpoint omits
func (c *Client) PullDetail(ctx context.Context, owner, name string, number int) (PullRequest, error) {
	var out PullRequest
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d", url.PathEscape(owner), url.PathEscape(name), number)
	if _, err := c.getJSON(ctx, path, &out); err != nil {
		return PullRequest{}, err
	}
	return out, nil
}

// getJSON performs a GET, decodes the body into v and returns the next page link if any
func (c *Client) getJSON(ctx context.Context, path string, v any) (string, error) {
	resp, err := c.get(ctx, path)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(io.LimitReader(resp.Body, 16<<20)).Decode(v); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeJSON, "github: decode %s", path)
	}
	return c.relativeLink(nextLink(resp.Header.Get("Link"))), nil
}

// relativeLink strips our base url so Do composes the same host
func (c *Client) relativeLink(link string) string {
	if link == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(link, c.opts.BaseURL); ok {
		return rest
	}
	return link
}
