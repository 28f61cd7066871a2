// Package wikidata talks to the Wikidata APIs: the SPARQL query service
// for reading datasets and the MediaWiki action API for writing
// statements.
package wikidata

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
	"resty.dev/v3"

	"github.com/askiada/go-linker/pkg/catalog"
)

const (
	apiURL    = "https://www.wikidata.org/w/api.php"
	sparqlURL = "https://query.wikidata.org/sparql"

	// maxLag makes the APIs reject our requests when replication lag
	// grows, instead of piling load on the servers.
	maxLag = "5"

	// Lagged-replica rejections clear once replication catches up, so
	// they are retried with a growing wait instead of failing the run.
	retryCount       = 3
	retryWaitTime    = 2 * time.Second
	retryMaxWaitTime = 30 * time.Second

	// EntityBatchSize is how many entities one wbgetentities call may
	// carry.
	EntityBatchSize = 50
)

// Client is a rate-limited Wikidata API client.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	log     *slog.Logger

	csrfToken string
}

// NewClient builds a client honoring the Wikimedia User-Agent policy,
// capped at ten requests per second.
func NewClient(log *slog.Logger) *Client {
	httpClient := resty.New().
		SetHeader("User-Agent", catalog.HTTPUserAgent).
		SetRetryCount(retryCount).
		SetRetryWaitTime(retryWaitTime).
		SetRetryMaxWaitTime(retryMaxWaitTime).
		AddRetryConditions(func(res *resty.Response, err error) bool {
			return err == nil && res != nil && isMaxLag(res.String())
		})

	return &Client{
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(10), 1),
		log:     log,
	}
}

// Close releases the underlying HTTP resources.
func (c *Client) Close() error {
	return c.http.Close()
}

// isMaxLag spots the lagged-replica rejection the action API sends
// back when the maxlag threshold is exceeded.
func isMaxLag(body string) bool {
	return strings.Contains(body, `"code":"maxlag"`)
}

func (c *Client) get(ctx context.Context, url string, params map[string]string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "unable to wait for the rate limiter")
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(out).
		Get(url)
	if err != nil {
		return errors.Wrapf(err, "unable to GET %s", url)
	}
	if res.IsError() {
		return errors.Errorf("GET %s failed with status %s", url, res.Status())
	}

	return nil
}

func (c *Client) post(ctx context.Context, form map[string]string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "unable to wait for the rate limiter")
	}

	form["maxlag"] = maxLag
	form["format"] = "json"

	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(out).
		Post(apiURL)
	if err != nil {
		return errors.Wrap(err, "unable to POST to the action API")
	}
	if res.IsError() {
		return errors.Errorf("action API call failed with status %s", res.Status())
	}

	return nil
}

type tokenResponse struct {
	Query struct {
		Tokens struct {
			LoginToken string `json:"logintoken"`
			CSRFToken  string `json:"csrftoken"`
		} `json:"tokens"`
	} `json:"query"`
	Error *apiError `json:"error"`
}

type loginResponse struct {
	Login struct {
		Result string `json:"result"`
	} `json:"login"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// Login authenticates the bot account and fetches a CSRF token for the
// write calls.
func (c *Client) Login(ctx context.Context, user, password string) error {
	var loginToken tokenResponse
	err := c.get(ctx, apiURL, map[string]string{
		"action": "query",
		"meta":   "tokens",
		"type":   "login",
		"format": "json",
	}, &loginToken)
	if err != nil {
		return err
	}
	if loginToken.Error != nil {
		return errors.Errorf("login token request failed: %s: %s", loginToken.Error.Code, loginToken.Error.Info)
	}

	var login loginResponse
	err = c.post(ctx, map[string]string{
		"action":     "login",
		"lgname":     user,
		"lgpassword": password,
		"lgtoken":    loginToken.Query.Tokens.LoginToken,
	}, &login)
	if err != nil {
		return err
	}
	if login.Login.Result != "Success" {
		return errors.Errorf("login failed for user %s: %s", user, login.Login.Result)
	}

	var csrf tokenResponse
	err = c.get(ctx, apiURL, map[string]string{
		"action": "query",
		"meta":   "tokens",
		"format": "json",
	}, &csrf)
	if err != nil {
		return err
	}
	if csrf.Error != nil {
		return errors.Errorf("csrf token request failed: %s: %s", csrf.Error.Code, csrf.Error.Info)
	}

	c.csrfToken = csrf.Query.Tokens.CSRFToken
	c.log.Info("logged in to Wikidata", "user", user)

	return nil
}
