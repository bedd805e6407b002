package orders

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"labelspool/internal/config"
	"labelspool/internal/label"
)

const userAgent = "labelspool/0.1.0"

// Source is the order-source surface the agent consumes. Implementations
// must treat an absent label as (nil, ext, nil), never as an error.
type Source interface {
	ListPendingOrders(ctx context.Context, statusID int) ([]label.Order, error)
	ListPackages(ctx context.Context, orderID string) ([]label.Package, error)
	FetchLabel(ctx context.Context, courierCode, packageID string) ([]byte, string, error)
}

// Client talks to the vendor connector endpoint.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient builds a client from configuration. Request timeouts are always
// bounded and an API-level rate limit keeps polling polite.
func NewClient(cfg *config.Config) *Client {
	timeout := time.Duration(cfg.Source.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	perMinute := cfg.Source.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}
	return &Client{
		baseURL: cfg.Source.BaseURL,
		token:   cfg.Source.Token,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute),
	}
}

// ListPendingOrders returns orders currently in the given status.
func (c *Client) ListPendingOrders(ctx context.Context, statusID int) ([]label.Order, error) {
	var response struct {
		apiStatus
		Orders []wireOrder `json:"orders"`
	}
	if err := c.call(ctx, "getOrders", map[string]any{"status_id": statusID}, &response); err != nil {
		return nil, err
	}
	if err := response.err("getOrders"); err != nil {
		return nil, err
	}

	result := make([]label.Order, 0, len(response.Orders))
	for _, order := range response.Orders {
		result = append(result, order.toOrder())
	}
	return result, nil
}

// ListPackages returns the shipments attached to an order.
func (c *Client) ListPackages(ctx context.Context, orderID string) ([]label.Package, error) {
	var response struct {
		apiStatus
		Packages []wirePackage `json:"packages"`
	}
	if err := c.call(ctx, "getOrderPackages", map[string]any{"order_id": orderID}, &response); err != nil {
		return nil, err
	}
	if err := response.err("getOrderPackages"); err != nil {
		return nil, err
	}

	result := make([]label.Package, 0, len(response.Packages))
	for _, pkg := range response.Packages {
		result = append(result, label.Package{
			PackageID:   pkg.PackageID.String(),
			CourierCode: pkg.CourierCode,
		})
	}
	return result, nil
}

// FetchLabel retrieves a package's label. A nil payload with a nil error
// means the label is not ready yet; callers retry on a later tick.
func (c *Client) FetchLabel(ctx context.Context, courierCode, packageID string) ([]byte, string, error) {
	var response struct {
		apiStatus
		Label     *string `json:"label"`
		Extension string  `json:"extension"`
	}
	params := map[string]any{
		"courier_code": courierCode,
		"package_id":   packageID,
	}
	if err := c.call(ctx, "getLabel", params, &response); err != nil {
		return nil, "", err
	}
	if err := response.err("getLabel"); err != nil {
		return nil, "", err
	}

	ext := strings.TrimSpace(response.Extension)
	if ext == "" {
		ext = "pdf"
	}
	if response.Label == nil || *response.Label == "" {
		return nil, ext, nil
	}

	payload, err := base64.StdEncoding.DecodeString(*response.Label)
	if err != nil {
		return nil, "", fmt.Errorf("decode label payload: %w", err)
	}
	return payload, ext, nil
}

func (c *Client) call(ctx context.Context, method string, parameters map[string]any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	paramsJSON, err := json.Marshal(parameters)
	if err != nil {
		return fmt.Errorf("marshal %s parameters: %w", method, err)
	}

	form := url.Values{}
	form.Set("method", method)
	form.Set("parameters", string(paramsJSON))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("X-BLToken", c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%s returned %d: %s", method, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}

type apiStatus struct {
	Status       string `json:"status"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

func (s apiStatus) err(method string) error {
	if strings.EqualFold(s.Status, "ERROR") || s.ErrorMessage != "" {
		message := s.ErrorMessage
		if message == "" {
			message = "unknown error"
		}
		if s.ErrorCode != "" {
			return fmt.Errorf("%s failed: %s (%s)", method, message, s.ErrorCode)
		}
		return fmt.Errorf("%s failed: %s", method, message)
	}
	return nil
}

// flexString accepts vendor identifiers that arrive as either JSON numbers
// or JSON strings.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) String() string { return string(f) }

type wireOrder struct {
	OrderID        flexString    `json:"order_id"`
	DeliveryName   string        `json:"delivery_fullname"`
	OrderSource    string        `json:"order_source"`
	DeliveryMethod string        `json:"delivery_method"`
	Products       []wireProduct `json:"products"`
}

type wireProduct struct {
	Name     string      `json:"name"`
	Quantity json.Number `json:"quantity"`
}

type wirePackage struct {
	PackageID   flexString `json:"package_id"`
	CourierCode string     `json:"courier_code"`
}

func (w wireOrder) toOrder() label.Order {
	order := label.Order{
		ID:             w.OrderID.String(),
		CustomerName:   w.DeliveryName,
		Platform:       w.OrderSource,
		ShippingMethod: w.DeliveryMethod,
	}
	if len(w.Products) > 0 {
		order.Products = make([]label.Product, 0, len(w.Products))
		for _, product := range w.Products {
			quantity, _ := product.Quantity.Int64()
			order.Products = append(order.Products, label.Product{
				Name:     product.Name,
				Quantity: int(quantity),
			})
		}
	}
	return order
}
