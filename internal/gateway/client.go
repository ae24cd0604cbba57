package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"staybook/internal/domain"
	"staybook/internal/metrics"
	"staybook/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Client is an HTTP client for the hotel-booking backend. The backend is the
// sole arbiter of consistency; the client never retries a failed call because
// booking operations are not idempotent.
type Client struct {
	baseURL    string
	httpClient *http.Client

	redis    *redis.Client
	cacheTTL time.Duration
	limiter  *rate.Limiter
}

// envelope is the wire shape of every backend response. A response is treated
// as failed whenever the transport status is non-2xx, regardless of what the
// success flag says.
type envelope struct {
	Success    bool            `json:"success"`
	Count      int             `json:"count"`
	Pagination json.RawMessage `json:"pagination"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

type createBookingRequest struct {
	CheckInDate   time.Time `json:"checkInDate"`
	CheckOutDate  time.Time `json:"checkOutDate"`
	PaymentMethod string    `json:"paymentMethod"`
}

type updateBookingRequest struct {
	CheckInDate  time.Time `json:"checkInDate"`
	CheckOutDate time.Time `json:"checkOutDate"`
}

// NewClient constructs a client for the backend at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// UseRedisCache configures optional Redis caching for catalog GET endpoints.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// UseRateLimit throttles outgoing requests across all operations.
func (c *Client) UseRateLimit(rps float64, burst int) {
	if rps <= 0 {
		return
	}
	if burst <= 0 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// ListHotels returns the hotel catalog.
func (c *Client) ListHotels(ctx context.Context) ([]models.Hotel, error) {
	metrics.IncCatalog("hotels")
	endpoint := fmt.Sprintf("%s/hotels", c.baseURL)
	var hotels []models.Hotel

	if c.readCache(ctx, "hotels", &hotels) {
		return hotels, nil
	}

	if err := c.doGet(ctx, endpoint, &hotels); err != nil {
		return nil, err
	}
	c.writeCache(ctx, "hotels", hotels)
	return hotels, nil
}

// GetHotel returns one hotel with its rooms and booking summaries.
func (c *Client) GetHotel(ctx context.Context, id string) (*models.Hotel, error) {
	metrics.IncCatalog("hotels")
	endpoint := fmt.Sprintf("%s/hotels/%s", c.baseURL, url.PathEscape(id))
	cacheKey := "hotel:" + id
	var hotel models.Hotel

	if c.readCache(ctx, cacheKey, &hotel) {
		return &hotel, nil
	}

	if err := c.doGet(ctx, endpoint, &hotel); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, hotel)
	return &hotel, nil
}

// ListRooms returns the room catalog.
func (c *Client) ListRooms(ctx context.Context) ([]models.Room, error) {
	metrics.IncCatalog("rooms")
	endpoint := fmt.Sprintf("%s/rooms", c.baseURL)
	var rooms []models.Room

	if c.readCache(ctx, "rooms", &rooms) {
		return rooms, nil
	}

	if err := c.doGet(ctx, endpoint, &rooms); err != nil {
		return nil, err
	}
	c.writeCache(ctx, "rooms", rooms)
	return rooms, nil
}

// GetRoom returns one room including its unavailable periods.
func (c *Client) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	metrics.IncCatalog("rooms")
	endpoint := fmt.Sprintf("%s/rooms/%s", c.baseURL, url.PathEscape(id))
	cacheKey := "room:" + id
	var room models.Room

	if c.readCache(ctx, cacheKey, &room) {
		return &room, nil
	}

	if err := c.doGet(ctx, endpoint, &room); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, room)
	return &room, nil
}

// ListBookings returns the caller's bookings. Never cached: the list is the
// local collection the coordinator reconciles against, so it must be fresh.
func (c *Client) ListBookings(ctx context.Context, credential string) ([]models.Booking, error) {
	endpoint := fmt.Sprintf("%s/bookings", c.baseURL)
	var bookings []models.Booking
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, credential, "booking", "", &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// CreateBooking issues a single create request scoped to the room. The
// returned booking is canonical: the backend may normalize the dates it was
// sent, so callers must take them from the result, not the request.
func (c *Client) CreateBooking(ctx context.Context, roomID string, checkIn, checkOut time.Time, paymentMethod, credential string) (*models.Booking, error) {
	endpoint := fmt.Sprintf("%s/rooms/%s/bookings", c.baseURL, url.PathEscape(roomID))
	body := createBookingRequest{CheckInDate: checkIn, CheckOutDate: checkOut, PaymentMethod: paymentMethod}

	var booking models.Booking
	if err := c.doJSON(ctx, http.MethodPost, endpoint, body, credential, "booking", roomID, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateBooking issues a single date-change request for an existing booking.
func (c *Client) UpdateBooking(ctx context.Context, bookingID string, checkIn, checkOut time.Time, credential string) (*models.Booking, error) {
	endpoint := fmt.Sprintf("%s/bookings/%s", c.baseURL, url.PathEscape(bookingID))
	body := updateBookingRequest{CheckInDate: checkIn, CheckOutDate: checkOut}

	var booking models.Booking
	if err := c.doJSON(ctx, http.MethodPut, endpoint, body, credential, "booking", bookingID, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// DeleteBooking issues a single delete request for an existing booking.
func (c *Client) DeleteBooking(ctx context.Context, bookingID, credential string) error {
	endpoint := fmt.Sprintf("%s/bookings/%s", c.baseURL, url.PathEscape(bookingID))
	return c.doJSON(ctx, http.MethodDelete, endpoint, nil, credential, "booking", bookingID, nil)
}

// CancelPayment issues a single state-transition request for a payment.
func (c *Client) CancelPayment(ctx context.Context, paymentID, credential string) (*models.Receipt, error) {
	endpoint := fmt.Sprintf("%s/payments/%s/cancel", c.baseURL, url.PathEscape(paymentID))

	var receipt models.Receipt
	if err := c.doJSON(ctx, http.MethodPut, endpoint, nil, credential, "payment", paymentID, &receipt); err != nil {
		return nil, mapPaymentError(err)
	}
	if receipt.PaymentID == "" {
		receipt.PaymentID = paymentID
	}
	return &receipt, nil
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, "catalog:"+key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, "catalog:"+key, data, c.cacheTTL).Err()
}

func (c *Client) doGet(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &domain.TransportError{Op: "GET", Err: err}
	}
	return c.do(req, "", "catalog", "", out)
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body any, credential, resource, id string, out any) error {
	var reader *strings.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &domain.TransportError{Op: method, Err: err}
		}
		reader = strings.NewReader(string(data))
	} else {
		reader = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &domain.TransportError{Op: method, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, credential, resource, id, out)
}

func (c *Client) do(req *http.Request, credential, resource, id string, out any) error {
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return &domain.TransportError{Op: req.Method, Err: err}
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.TransportError{Op: req.Method, Err: err}
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := ""
		if decodeErr == nil {
			message = env.Message
		}
		return statusError(resp.StatusCode, message, resource, id)
	}

	if out == nil {
		return nil
	}
	if decodeErr != nil {
		return &domain.TransportError{Op: req.Method, Err: decodeErr}
	}
	if len(env.Data) == 0 {
		return &domain.TransportError{Op: req.Method, Err: fmt.Errorf("empty data in response")}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &domain.TransportError{Op: req.Method, Err: err}
	}
	return nil
}

// statusError picks the error kind from the HTTP status. The backend does not
// guarantee distinct codes for every refusal, so anything unrecognized falls
// back to a rejection carrying whatever message the envelope had.
func statusError(status int, message, resource, id string) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthenticated
	case http.StatusNotFound:
		return &domain.NotFoundError{Resource: resource, ID: id}
	}
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}
	return &domain.RejectedError{Message: message}
}

// mapPaymentError converts the generic rejection into the payment-specific
// kind; auth, not-found and transport failures pass through unchanged.
func mapPaymentError(err error) error {
	if rejected, ok := err.(*domain.RejectedError); ok {
		return &domain.PaymentCancelError{Message: rejected.Message}
	}
	return err
}
