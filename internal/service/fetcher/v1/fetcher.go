// Package fetcher provides functionality for retrieving user posts from a REST API.
package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/danilovkiri/dk_go_post_board/internal/config"
	serviceErrors "github.com/danilovkiri/dk_go_post_board/internal/service/errors"
	"github.com/danilovkiri/dk_go_post_board/internal/service/fetcher"
)

const postsPath = "/posts"

// Check interface implementation explicitly
var (
	_ fetcher.Fetcher = (*Fetcher)(nil)
)

// Fetcher struct defines data structure handling and provides support for adding new implementations.
type Fetcher struct {
	client *resty.Client
}

// InitFetcher initializes a Fetcher object and sets its attributes.
func InitFetcher(cfg *config.FetchConfig) *Fetcher {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &Fetcher{client: client}
}

// FetchPosts issues one GET {base}/posts?userId={userID} and returns the JSON body untouched.
func (f *Fetcher) FetchPosts(ctx context.Context, userID int) (json.RawMessage, error) {
	res, err := f.client.R().
		SetContext(ctx).
		SetQueryParam("userId", strconv.Itoa(userID)).
		Get(postsPath)
	if err != nil {
		log.Debug().Err(err).Int("userId", userID).Msg("fetching posts")
		return nil, &serviceErrors.ConnectionError{Err: err}
	}
	if !res.IsSuccess() {
		log.Debug().Int("status", res.StatusCode()).Int("userId", userID).Msg("fetching posts")
		return nil, &serviceErrors.RequestFailedError{StatusCode: res.StatusCode()}
	}
	body := bytes.TrimSpace(res.Body())
	if !json.Valid(body) {
		var v interface{}
		// json.Unmarshal reports where the body stops being JSON
		err := json.Unmarshal(body, &v)
		if err == nil {
			err = &serviceErrors.FormatError{Msg: "response body is not JSON"}
		}
		return nil, &serviceErrors.ConnectionError{Err: err}
	}
	log.Debug().Int("userId", userID).Int("bytes", len(body)).Msg("posts fetched")
	return json.RawMessage(body), nil
}
