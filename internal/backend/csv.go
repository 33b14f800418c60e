package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

// ErrCSVNotReady is reported while a polled CSV file does not exist yet.
var ErrCSVNotReady = errors.New("csv file not available yet")

// PollConfig bounds CSV status polling.
type PollConfig struct {
	Attempts uint
	Delay    time.Duration
}

// DefaultPollConfig polls for roughly half a minute.
var DefaultPollConfig = PollConfig{Attempts: 15, Delay: 2 * time.Second}

type messageResponse struct {
	Message string `json:"message"`
	Path    string `json:"path"`
}

func checkType(t CSVType) error {
	if !t.Valid() {
		return fmt.Errorf("unknown csv type %q", t)
	}
	return nil
}

// UploadCSV stores a CSV file for dataset t without importing it.
func (c *Client) UploadCSV(ctx context.Context, t CSVType, filename string, r io.Reader) (string, error) {
	if err := checkType(t); err != nil {
		return "", err
	}
	if _, err := c.upload(ctx, "/api/csv/upload/"+string(t), filename, r); err != nil {
		return "", fmt.Errorf("uploading %s csv: %w", t, err)
	}
	return filename, nil
}

// ImportCSV loads the stored CSV of dataset t into the database.
func (c *Client) ImportCSV(ctx context.Context, t CSVType) (string, error) {
	return c.csvCommand(ctx, http.MethodPost, "/api/csv/import/", t, "importing")
}

// ExportCSV regenerates the places CSV from the database.
func (c *Client) ExportCSV(ctx context.Context) (string, error) {
	var out messageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/csv/export", nil, &out); err != nil {
		return "", fmt.Errorf("exporting csv: %w", err)
	}
	return out.Message, nil
}

// DeleteCSV removes the stored CSV of dataset t.
func (c *Client) DeleteCSV(ctx context.Context, t CSVType) (string, error) {
	return c.csvCommand(ctx, http.MethodDelete, "/api/csv/delete/", t, "deleting")
}

func (c *Client) csvCommand(ctx context.Context, method, prefix string, t CSVType, verb string) (string, error) {
	if err := checkType(t); err != nil {
		return "", err
	}
	var out messageResponse
	if err := c.doJSON(ctx, method, prefix+string(t), nil, &out); err != nil {
		return "", fmt.Errorf("%s %s csv: %w", verb, t, err)
	}
	return out.Message, nil
}

// DownloadCSV returns the raw CSV contents of dataset t.
func (c *Client) DownloadCSV(ctx context.Context, t CSVType) ([]byte, error) {
	if err := checkType(t); err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/api/csv/download/"+string(t), nil, "")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv")
	body, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s csv: %w", t, err)
	}
	return body, nil
}

// CSVStatus reports whether dataset t has a stored CSV file.
func (c *Client) CSVStatus(ctx context.Context, t CSVType) (*CSVStatus, error) {
	if err := checkType(t); err != nil {
		return nil, err
	}
	var out CSVStatus
	if err := c.doJSON(ctx, http.MethodGet, csvStatusPath+string(t), nil, &out); err != nil {
		return nil, fmt.Errorf("checking %s csv status: %w", t, err)
	}
	return &out, nil
}

// WaitForCSV polls CSVStatus until the file exists. Connectivity failures and
// 5xx replies are retried; any other server error stops polling at once.
func (c *Client) WaitForCSV(ctx context.Context, t CSVType, poll PollConfig) (*CSVStatus, error) {
	if poll.Attempts == 0 {
		poll = DefaultPollConfig
	}
	return retryValue(ctx, func(ctx context.Context) (*CSVStatus, error) {
		st, err := c.CSVStatus(ctx, t)
		if err != nil {
			return nil, err
		}
		if !st.Exists {
			return nil, ErrCSVNotReady
		}
		return st, nil
	},
		retry.Attempts(poll.Attempts),
		retry.Delay(poll.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(retryablePoll),
		retry.OnRetry(func(n uint, err error) {
			c.log.Debug("csv not ready", "type", string(t), "attempt", n+1, "err", err)
		}),
	)
}

func retryablePoll(err error) bool {
	if errors.Is(err, ErrCSVNotReady) {
		return true
	}
	var cerr *ConnectivityError
	if errors.As(err, &cerr) {
		return true
	}
	var serr *ServerError
	return errors.As(err, &serr) && serr.StatusCode >= 500
}

// retryValue runs fn under retry-go and returns the value of the first success.
func retryValue[T any](ctx context.Context, fn func(context.Context) (T, error), opts ...retry.Option) (T, error) {
	var value T
	err := retry.Do(func() error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		value = v
		return nil
	}, append([]retry.Option{retry.Context(ctx), retry.LastErrorOnly(true)}, opts...)...)
	return value, err
}
