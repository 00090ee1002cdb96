package basket

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-basket/internal/common"
	"github.com/noah-isme/backend-basket/internal/obs"
)

// DefaultCookieName carries the basket id when the client does not send the header.
const DefaultCookieName = "basket_id"

type ctxKey struct{}

// Handler wires the basket service to HTTP.
type Handler struct {
	Svc          *Service
	Logger       *zerolog.Logger
	CookieName   string
	CookieSecure bool
	CookieMaxAge time.Duration
}

// Routes mounts the basket endpoints on r. ResolveBasket must already be in
// r's middleware stack.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Get)
	r.Delete("/", h.Clear)
	r.Post("/items", h.AddItem)
	r.Post("/items/bulk", h.AddItems)
	r.Delete("/items/{productId}", h.RemoveItem)
	r.Get("/total/without-vat", h.TotalWithoutVAT)
	r.Get("/total/with-vat", h.TotalWithVAT)
	r.Post("/discount-code", h.ApplyDiscountCode)
	r.Post("/shipping", h.SetShipping)
}

// ResolveBasket identifies the caller's basket from the X-Basket-ID header or
// the basket cookie, issuing a new id when neither is present. The id is
// echoed in the response header and stored on the request context.
func (h *Handler) ResolveBasket(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, issued, err := h.basketID(r)
		if err != nil {
			common.ValidationProblem(w, map[string][]string{
				"basketId": {obs.BasketIDHeader + " must be a valid UUID."},
			})
			return
		}
		w.Header().Set(obs.BasketIDHeader, id.String())
		obs.AnnotateBasket(r.Context(), id.String())
		if issued {
			cookie := &http.Cookie{
				Name:     h.cookieName(),
				Value:    id.String(),
				Path:     "/",
				HttpOnly: true,
				Secure:   h.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			}
			if h.CookieMaxAge > 0 {
				cookie.MaxAge = int(h.CookieMaxAge.Seconds())
			}
			http.SetCookie(w, cookie)
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// IDFromContext returns the basket id resolved for the request.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	return id, ok
}

func (h *Handler) basketID(r *http.Request) (uuid.UUID, bool, error) {
	if raw := strings.TrimSpace(r.Header.Get(obs.BasketIDHeader)); raw != "" {
		id, err := uuid.Parse(raw)
		return id, false, err
	}
	if c, err := r.Cookie(h.cookieName()); err == nil {
		if id, err := uuid.Parse(strings.TrimSpace(c.Value)); err == nil {
			return id, false, nil
		}
	}
	return uuid.New(), true, nil
}

func (h *Handler) cookieName() string {
	if h.CookieName == "" {
		return DefaultCookieName
	}
	return h.CookieName
}

// Get returns the current basket.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.Svc.Get(r.Context(), h.id(r))
	h.respond(w, r, b, err)
}

// Clear removes all lines, the discount code and shipping.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	b, err := h.Svc.Clear(r.Context(), h.id(r))
	h.respond(w, r, b, err)
}

// AddItem adds a single line.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.Input()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	b, err := h.Svc.AddItem(r.Context(), h.id(r), in)
	h.respond(w, r, b, err)
}

// AddItems adds several lines in one request.
func (h *Handler) AddItems(w http.ResponseWriter, r *http.Request) {
	var req AddItemsRequest
	if !h.decode(w, r, &req) {
		return
	}
	inputs := make([]ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		in, err := item.Input()
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		inputs = append(inputs, in)
	}
	b, err := h.Svc.AddItems(r.Context(), h.id(r), inputs)
	h.respond(w, r, b, err)
}

// RemoveItem removes the line for the productId path parameter.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		h.writeError(w, r, ValidationErrors{"productId": {"productId must be a valid UUID."}})
		return
	}
	b, err := h.Svc.RemoveItem(r.Context(), h.id(r), productID)
	h.respond(w, r, b, err)
}

// TotalWithoutVAT returns the net total.
func (h *Handler) TotalWithoutVAT(w http.ResponseWriter, r *http.Request) {
	total, err := h.Svc.TotalWithoutVAT(r.Context(), h.id(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, total)
}

// TotalWithVAT returns the gross total. An optional vatRate query parameter
// overrides the configured rate.
func (h *Handler) TotalWithVAT(w http.ResponseWriter, r *http.Request) {
	var rate *decimal.Decimal
	if raw := strings.TrimSpace(r.URL.Query().Get("vatRate")); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			h.writeError(w, r, ValidationErrors{"vatRate": {"vatRate must be a decimal number."}})
			return
		}
		rate = &parsed
	}
	total, err := h.Svc.TotalWithVAT(r.Context(), h.id(r), rate)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, total)
}

// ApplyDiscountCode applies a basket-wide discount code.
func (h *Handler) ApplyDiscountCode(w http.ResponseWriter, r *http.Request) {
	var req ApplyDiscountCodeRequest
	if !h.decode(w, r, &req) {
		return
	}
	b, err := h.Svc.ApplyDiscountCode(r.Context(), h.id(r), req.Code)
	h.respond(w, r, b, err)
}

// SetShipping prices shipping to the requested country.
func (h *Handler) SetShipping(w http.ResponseWriter, r *http.Request) {
	var req SetShippingRequest
	if !h.decode(w, r, &req) {
		return
	}
	b, err := h.Svc.SetShipping(r.Context(), h.id(r), req.CountryCode)
	h.respond(w, r, b, err)
}

func (h *Handler) id(r *http.Request) uuid.UUID {
	if id, ok := IDFromContext(r.Context()); ok {
		return id
	}
	id, _, _ := h.basketID(r)
	return id
}

// decode reads and validates a JSON body, writing the error response itself.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		msg := "The request body is not valid JSON."
		if errors.Is(err, io.EOF) {
			msg = "A non-empty request body is required."
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			common.WriteProblem(w, common.Problem{
				Title:  "Request body too large",
				Status: http.StatusRequestEntityTooLarge,
			})
			return false
		}
		common.ValidationProblem(w, map[string][]string{"body": {msg}})
		return false
	}
	if verrs := Validate(dst); verrs != nil {
		common.ValidationProblem(w, verrs)
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, b *Basket, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, NewView(b))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := h.log()
	var verrs ValidationErrors
	switch {
	case errors.As(err, &verrs):
		common.ValidationProblem(w, verrs)
	case IsBusinessRule(err):
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("business rule violation")
		common.BadRequest(w, err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("unexpected error")
		common.InternalError(w)
	}
}

func (h *Handler) log() *zerolog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	nop := zerolog.Nop()
	return &nop
}
