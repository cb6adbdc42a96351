// Package api is the HTTP client side of the engine exchange protocol. It
// works entirely on the type-erased payloads: engine state and status info
// pass through as raw JSON, so the client serves any engine.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"enginehost/internal/client/display"
	"enginehost/internal/protocol"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// DefaultMoveAttempts is the bounded retry budget for engine-level
// failures. Exhausting it is treated as a forfeit by the engine side.
const DefaultMoveAttempts = 3

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Verbose    bool
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

// EngineFailure is a server-reported engine fault (HTTP 500). This is the
// retryable error family; request errors are not retryable.
type EngineFailure struct {
	Text string
}

func (e *EngineFailure) Error() string {
	return e.Text
}

// Info fetches the engine's metadata, including its initial state.
func (c *Client) Info() (*protocol.AnyInfo, error) {
	body, status, err := c.doRequest(http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, errors.Errorf("info request failed with status %d", status)
	}
	var info protocol.AnyInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, errors.Wrap(err, "decode engine info")
	}
	return &info, nil
}

// Move runs one exchange. Request-level failures come back as
// *protocol.RequestError, engine-level ones as *EngineFailure.
func (c *Client) Move(req *protocol.AnyMoveRequest) (*protocol.AnyMoveResponse, error) {
	body, status, err := c.doRequest(http.MethodPost, req)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
		var resp protocol.AnyMoveResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, errors.Wrap(err, "decode move response")
		}
		return &resp, nil

	case http.StatusBadRequest:
		reqErr := &protocol.RequestError{}
		if err := json.Unmarshal(body, reqErr); err != nil {
			// Not a protocol error body; the request was rejected before
			// the exchange ran (validation, content type).
			return nil, errors.Errorf("request rejected: %s", strings.TrimSpace(string(body)))
		}
		return nil, reqErr

	case http.StatusInternalServerError:
		var fault protocol.EngineInternalError
		if err := json.Unmarshal(body, &fault); err != nil {
			return nil, &EngineFailure{Text: strings.TrimSpace(string(body))}
		}
		return nil, &EngineFailure{Text: fault.ErrorText}

	default:
		return nil, errors.Errorf("move request failed with status %d", status)
	}
}

// MoveWithRetry applies the protocol's retry convention: engine-level and
// transport failures are retried up to attempts times, request-level errors
// never are. On exhaustion the per-attempt failures are aggregated and the
// game is considered forfeit by the engine.
func (c *Client) MoveWithRetry(req *protocol.AnyMoveRequest, attempts int) (*protocol.AnyMoveResponse, error) {
	if attempts < 1 {
		attempts = 1
	}
	var merr *multierror.Error
	for i := 0; i < attempts; i++ {
		resp, err := c.Move(req)
		if err == nil {
			return resp, nil
		}
		var reqErr *protocol.RequestError
		if errors.As(err, &reqErr) {
			return nil, err
		}
		merr = multierror.Append(merr, err)
	}
	return nil, errors.Wrapf(merr.ErrorOrNil(), "engine forfeits after %d attempts", attempts)
}

func (c *Client) doRequest(method string, body interface{}) ([]byte, int, error) {
	var bodyReader io.Reader
	var bodyStr string
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		bodyReader = bytes.NewReader(jsonData)
		bodyStr = string(jsonData)
	}

	req, err := http.NewRequest(method, c.BaseURL+"/", bodyReader)
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.Verbose {
		fmt.Printf("\n%s[API] %s /%s\n", display.Blue, method, display.Reset)
		if bodyStr != "" {
			fmt.Printf("%s%s%s\n", display.Blue, bodyStr, display.Reset)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}

	if c.Verbose {
		statusColor := display.Green
		if resp.StatusCode >= 400 {
			statusColor = display.Red
		}
		fmt.Printf("%s[%d %s]%s\n", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)
		if len(respBody) > 0 {
			fmt.Printf("%s%s%s\n", display.Cyan, string(respBody), display.Reset)
		}
	}

	return respBody, resp.StatusCode, nil
}
