package wordsource

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	es8 "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	jsoniter "github.com/json-iterator/go"
	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
)

func init() {
	for _, scheme := range []string{"es", "elastic", "elasticsearch"} {
		if err := Register(scheme, openElasticsearch); err != nil {
			panic(err)
		}
	}
	for _, scheme := range []string{"os", "opensearch"} {
		if err := Register(scheme, openOpenSearch); err != nil {
			panic(err)
		}
	}
}

const defaultSearchPageSize = 1000

var (
	searchJSON = jsoniter.ConfigCompatibleWithStandardLibrary
	indexRe    = regexp.MustCompile(`^[a-z0-9][a-z0-9_.+-]*$`)
)

// searchOpts is a parsed es:// or opensearch:// connection string
type searchOpts struct {
	address    string
	username   string
	password   string
	index      string
	column     string
	pageSize   int
	skipVerify bool
}

// parseSearchConnString reads user:pass@host:port/index?column=word&page=1000&tls=true,
// tls defaults to on when credentials are given
func parseSearchConnString(cs string) (*searchOpts, error) {
	_, uri, err := ParseScheme(cs)
	if err != nil {
		return nil, err
	}

	rest, params, err := splitParams(uri, "column", "page", "tls", "tls-skip-verify")
	if err != nil {
		return nil, err
	}

	u, err := url.Parse("http://" + rest)
	if err != nil {
		return nil, fmt.Errorf("cannot parse connection url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("no search host given")
	}

	var opts = &searchOpts{
		username: u.User.Username(),
		index:    strings.Trim(u.Path, "/"),
		column:   defaultColumn,
		pageSize: defaultSearchPageSize,
	}
	opts.password, _ = u.User.Password()

	if !indexRe.MatchString(opts.index) {
		return nil, fmt.Errorf("invalid index name '%s'", opts.index)
	}

	if v, ok := params["column"]; ok {
		opts.column = v
	}
	if !identifierRe.MatchString(opts.column) {
		return nil, fmt.Errorf("invalid column name '%s'", opts.column)
	}

	if v, ok := params["page"]; ok {
		if opts.pageSize, err = strconv.Atoi(v); err != nil || opts.pageSize <= 0 {
			return nil, fmt.Errorf("invalid page size '%s'", v)
		}
	}

	var tlsEnabled = opts.username != ""
	if v, ok := params["tls"]; ok {
		if tlsEnabled, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid value for tls: %w", err)
		}
	}
	if v, ok := params["tls-skip-verify"]; ok {
		if opts.skipVerify, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid value for tls-skip-verify: %w", err)
		}
	}

	var scheme = "http"
	if tlsEnabled {
		scheme = "https"
	}
	opts.address = (&url.URL{Scheme: scheme, Host: u.Host}).String()

	return opts, nil
}

func (o *searchOpts) transport() *http.Transport {
	return &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: o.skipVerify, //nolint:gosec // opt-in through tls-skip-verify
			MinVersion:         tls.VersionTLS12,
		},
	}
}

// searchRequest selects one page of words sorted by the word column
type searchRequest struct {
	Source      bool                `json:"_source"`
	Fields      []string            `json:"fields"`
	Query       map[string]any      `json:"query"`
	Sort        []map[string]string `json:"sort"`
	Size        int                 `json:"size"`
	SearchAfter []string            `json:"search_after,omitempty"`
}

func newSearchRequest(column string, size int, after string) *searchRequest {
	r := &searchRequest{
		Fields: []string{column},
		Query:  map[string]any{"exists": map[string]string{"field": column}},
		Sort:   []map[string]string{{column: "asc"}},
		Size:   size,
	}
	if after != "" {
		r.SearchAfter = []string{after}
	}

	return r
}

// searchPage runs one search request and returns the fields object of every hit
type searchPage func(ctx context.Context, body io.Reader) ([]jsoniter.RawMessage, error)

// searchSource pages through an index with search_after on the word column
type searchSource struct {
	opts     *searchOpts
	page     searchPage
	wordCase Case
}

func (s *searchSource) Words(ctx context.Context, fn func(word string) bool) error {
	var after string
	for {
		body, err := searchJSON.Marshal(newSearchRequest(s.opts.column, s.opts.pageSize, after))
		if err != nil {
			return fmt.Errorf("request encode error: %w", err)
		}

		hits, err := s.page(ctx, bytes.NewReader(body))
		if err != nil {
			return err
		}
		if len(hits) == 0 {
			return nil
		}

		for _, raw := range hits {
			values, err := s.hitWords(raw)
			if err != nil {
				return err
			}

			for _, w := range values {
				if !fn(s.wordCase.Normalize(w)) {
					return nil
				}
			}

			// ascending sort orders a multi-valued document by its smallest value
			after = minWord(values)
		}

		// words equal to the last sort key of a page are not repeated on the next one
		if len(hits) < s.opts.pageSize || after == "" {
			return nil
		}
	}
}

func (s *searchSource) hitWords(raw jsoniter.RawMessage) ([]string, error) {
	var fields map[string][]any
	if err := searchJSON.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hit fields: %w", err)
	}

	var words []string
	for _, v := range fields[s.opts.column] {
		if w, ok := v.(string); ok {
			words = append(words, w)
		}
	}

	return words, nil
}

func minWord(words []string) string {
	var m string
	for i, w := range words {
		if i == 0 || w < m {
			m = w
		}
	}

	return m
}

func (s *searchSource) Close() error {
	return nil
}

// esSearchResponse keeps the part of a search response words are read from
type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			Fields jsoniter.RawMessage `json:"fields"`
		} `json:"hits"`
	} `json:"hits"`
}

func openElasticsearch(cfg Config) (Source, error) {
	opts, err := parseSearchConnString(cfg.ConnString)
	if err != nil {
		return nil, err
	}

	var conf = es8.Config{
		Addresses: []string{opts.address},
		Transport: opts.transport(),
		Username:  opts.username,
		Password:  opts.password,
	}

	var es *es8.Client
	if es, err = es8.NewClient(conf); err != nil {
		return nil, fmt.Errorf("cannot connect to elasticsearch at %s: %w", opts.address, err)
	}

	var ping *esapi.Response
	if ping, err = es.Ping(); err != nil {
		return nil, fmt.Errorf("failed ping elasticsearch at %s: %w", opts.address, err)
	}
	defer ping.Body.Close()
	if ping.IsError() {
		return nil, fmt.Errorf("failed ping elasticsearch at %s: %s", opts.address, ping.String())
	}

	cfg.Logger.Trace("elasticsearch: reading %s.%s from %s", opts.index, opts.column, opts.address)

	page := func(ctx context.Context, body io.Reader) ([]jsoniter.RawMessage, error) {
		res, err := es.Search(
			es.Search.WithContext(ctx),
			es.Search.WithIndex(opts.index),
			es.Search.WithBody(body))
		if err != nil {
			return nil, fmt.Errorf("failed to perform search: %w", err)
		}
		defer res.Body.Close()

		if res.IsError() {
			return nil, fmt.Errorf("failed to perform search: %s", res.String())
		}

		var resp esSearchResponse
		if err = searchJSON.NewDecoder(res.Body).Decode(&resp); err != nil {
			return nil, fmt.Errorf("search response decode err: %w", err)
		}

		hits := make([]jsoniter.RawMessage, 0, len(resp.Hits.Hits))
		for _, h := range resp.Hits.Hits {
			hits = append(hits, h.Fields)
		}

		return hits, nil
	}

	return &searchSource{opts: opts, page: page, wordCase: cfg.Case}, nil
}

func openOpenSearch(cfg Config) (Source, error) {
	opts, err := parseSearchConnString(cfg.ConnString)
	if err != nil {
		return nil, err
	}

	var conf = opensearchapi.Config{
		Client: opensearch.Config{
			Addresses: []string{opts.address},
			Transport: opts.transport(),
			Username:  opts.username,
			Password:  opts.password,
		},
	}

	var client *opensearchapi.Client
	if client, err = opensearchapi.NewClient(conf); err != nil {
		return nil, fmt.Errorf("cannot connect to opensearch at %s: %w", opts.address, err)
	}

	var ping *opensearch.Response
	if ping, err = client.Ping(context.Background(), nil); err != nil {
		return nil, fmt.Errorf("failed ping opensearch at %s: %w", opts.address, err)
	} else if ping != nil && ping.IsError() {
		return nil, fmt.Errorf("failed ping opensearch at %s: %s", opts.address, ping.String())
	}

	cfg.Logger.Trace("opensearch: reading %s.%s from %s", opts.index, opts.column, opts.address)

	page := func(ctx context.Context, body io.Reader) ([]jsoniter.RawMessage, error) {
		resp, err := client.Search(ctx, &opensearchapi.SearchReq{
			Indices: []string{opts.index},
			Body:    body,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to perform search: %w", err)
		}

		hits := make([]jsoniter.RawMessage, 0, len(resp.Hits.Hits))
		for _, h := range resp.Hits.Hits {
			hits = append(hits, jsoniter.RawMessage(h.Fields))
		}

		return hits, nil
	}

	return &searchSource{opts: opts, page: page, wordCase: cfg.Case}, nil
}
