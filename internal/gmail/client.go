package gmail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/labelsheet/internal/google"
	"github.com/teemow/labelsheet/internal/instrumentation"
)

// ErrLabelNotFound is returned by ResolveLabel when no label has the requested name.
var ErrLabelNotFound = errors.New("label not found")

// DefaultPageSize is the maximum page size messages.list accepts.
const DefaultPageSize = 500

const me = "me"

// Client reads labels and messages of the authenticated user.
type Client struct {
	svc      *gmail.UsersService
	metrics  *instrumentation.Metrics
	pageSize int64
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	metrics  *instrumentation.Metrics
	pageSize int64
	api      []option.ClientOption
}

// WithMetrics records every API call on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// WithPageSize overrides the messages.list page size.
func WithPageSize(n int64) Option {
	return func(o *clientOptions) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithEndpoint points the client at a different API root.
func WithEndpoint(url string) Option {
	return func(o *clientOptions) { o.api = append(o.api, option.WithEndpoint(url)) }
}

// NewClient creates a Gmail client using the HTTP client handed out by provider.
func NewClient(ctx context.Context, provider google.HTTPClientProvider, opts ...Option) (*Client, error) {
	o := clientOptions{pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}

	httpClient, err := provider.HTTPClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated client: %w", err)
	}

	apiOpts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, o.api...)
	svc, err := gmail.NewService(ctx, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{
		svc:      svc.Users,
		metrics:  o.metrics,
		pageSize: o.pageSize,
	}, nil
}

// ListLabels returns all labels of the account in API order.
func (c *Client) ListLabels(ctx context.Context) ([]Label, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceGmail, instrumentation.OperationLabelsList)
	start := time.Now()

	res, err := c.svc.Labels.List(me).Context(ctx).Do()
	c.observe(ctx, instrumentation.OperationLabelsList, start, err)
	instrumentation.EndSpan(span, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}

	labels := make([]Label, 0, len(res.Labels))
	for _, l := range res.Labels {
		if l == nil {
			continue
		}
		labels = append(labels, Label{ID: l.Id, Name: l.Name})
	}
	return labels, nil
}

// ResolveLabel returns the id of the first label named exactly name.
func (c *Client) ResolveLabel(ctx context.Context, name string) (string, error) {
	labels, err := c.ListLabels(ctx)
	if err != nil {
		return "", err
	}
	if id, ok := FindLabel(labels, name); ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: %q", ErrLabelNotFound, name)
}

// FindLabel returns the id of the first label whose name equals name.
// The comparison is case-sensitive.
func FindLabel(labels []Label, name string) (string, bool) {
	for _, l := range labels {
		if l.Name == name {
			return l.ID, true
		}
	}
	return "", false
}

// ListMessageIDs returns the ids of all messages carrying labelID, in the
// order the API returns them.
func (c *Client) ListMessageIDs(ctx context.Context, labelID string) ([]string, error) {
	return collectPages(ctx, func(ctx context.Context, pageToken string) ([]string, string, error) {
		ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceGmail, instrumentation.OperationMessagesList,
			attribute.String(instrumentation.SpanAttrLabel, labelID))
		start := time.Now()

		req := c.svc.Messages.List(me).LabelIds(labelID).MaxResults(c.pageSize).Context(ctx)
		if pageToken != "" {
			req.PageToken(pageToken)
		}
		res, err := req.Do()
		c.observe(ctx, instrumentation.OperationMessagesList, start, err)
		instrumentation.EndSpan(span, err)
		if err != nil {
			return nil, "", fmt.Errorf("failed to list messages for label %s: %w", labelID, err)
		}

		ids := make([]string, 0, len(res.Messages))
		for _, m := range res.Messages {
			if m != nil {
				ids = append(ids, m.Id)
			}
		}
		return ids, res.NextPageToken, nil
	})
}

// pageFunc fetches the page at token and returns its ids and the next token.
type pageFunc func(ctx context.Context, token string) (ids []string, next string, err error)

// collectPages follows continuation tokens until a page has none.
func collectPages(ctx context.Context, fetch pageFunc) ([]string, error) {
	var all []string
	token := ""
	for {
		ids, next, err := fetch(ctx, token)
		if err != nil {
			return nil, err
		}
		all = append(all, ids...)
		if next == "" {
			return all, nil
		}
		if next == token {
			return nil, fmt.Errorf("page token %q did not advance", next)
		}
		token = next
	}
}

// GetMessage fetches a message in full format and decodes it.
func (c *Client) GetMessage(ctx context.Context, id string) (*Message, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceGmail, instrumentation.OperationMessagesGet,
		attribute.String(instrumentation.SpanAttrMessageID, id))
	start := time.Now()

	raw, err := c.svc.Messages.Get(me, id).Format("full").Context(ctx).Do()
	c.observe(ctx, instrumentation.OperationMessagesGet, start, err)
	if err != nil {
		instrumentation.EndSpan(span, err)
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	instrumentation.EndSpan(span, nil)
	return decodeMessage(raw), nil
}

// FetchFields fetches message id and extracts its subject, sender and body.
func (c *Client) FetchFields(ctx context.Context, id string) (Fields, error) {
	msg, err := c.GetMessage(ctx, id)
	if err != nil {
		return Fields{}, err
	}
	return ExtractFields(msg)
}

func (c *Client) observe(ctx context.Context, operation string, start time.Time, err error) {
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceGmail, operation, status, time.Since(start))
}
