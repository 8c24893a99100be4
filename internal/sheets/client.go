package sheets

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/teemow/labelsheet/internal/google"
	"github.com/teemow/labelsheet/internal/instrumentation"
)

// Values are written verbatim and always below the existing data.
const (
	valueInputOption = "RAW"
	insertDataOption = "INSERT_ROWS"
)

// Client appends rows to one spreadsheet range.
type Client struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
	rangeA1       string
	metrics       *instrumentation.Metrics
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	metrics *instrumentation.Metrics
	api     []option.ClientOption
}

// WithMetrics records every API call on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// WithEndpoint points the client at a different API root.
func WithEndpoint(url string) Option {
	return func(o *clientOptions) { o.api = append(o.api, option.WithEndpoint(url)) }
}

// NewClient creates a client appending to rangeA1 of spreadsheetID.
func NewClient(ctx context.Context, provider google.HTTPClientProvider, spreadsheetID, rangeA1 string, opts ...Option) (*Client, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if rangeA1 == "" {
		return nil, fmt.Errorf("range is required")
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	httpClient, err := provider.HTTPClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated client: %w", err)
	}

	apiOpts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, o.api...)
	svc, err := sheets.NewService(ctx, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}

	return &Client{
		values:        svc.Spreadsheets.Values,
		spreadsheetID: spreadsheetID,
		rangeA1:       rangeA1,
		metrics:       o.metrics,
	}, nil
}

// AppendRows appends rows in order with a single values.append call.
// An empty rows slice makes no request.
func (c *Client) AppendRows(ctx context.Context, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceSheets, instrumentation.OperationValuesAppend,
		attribute.String(instrumentation.SpanAttrSpreadsheet, c.spreadsheetID),
		attribute.Int(instrumentation.SpanAttrCount, len(rows)),
	)
	start := time.Now()

	vr := &sheets.ValueRange{Values: toValues(rows)}
	_, err := c.values.Append(c.spreadsheetID, c.rangeA1, vr).
		ValueInputOption(valueInputOption).
		InsertDataOption(insertDataOption).
		Context(ctx).
		Do()

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceSheets, instrumentation.OperationValuesAppend, status, time.Since(start))
	instrumentation.EndSpan(span, err)

	if err != nil {
		return fmt.Errorf("failed to append %d rows to %s: %w", len(rows), c.rangeA1, err)
	}
	c.metrics.RecordRowsAppended(ctx, len(rows))
	return nil
}

func toValues(rows [][]string) [][]interface{} {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		values[i] = cells
	}
	return values
}
