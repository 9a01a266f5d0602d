package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/azizikri/coupon-distributor/internal/auth"
	"github.com/azizikri/coupon-distributor/internal/domain"
	"github.com/azizikri/coupon-distributor/internal/usecase"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	claims    *usecase.ClaimService
	provision *usecase.ProvisionService
	users     *usecase.UserService
	tokens    *auth.Manager
	log       *zap.Logger
}

func NewHandler(claims *usecase.ClaimService, provision *usecase.ProvisionService, users *usecase.UserService, tokens *auth.Manager, log *zap.Logger) *Handler {
	return &Handler{
		claims:    claims,
		provision: provision,
		users:     users,
		tokens:    tokens,
		log:       log,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)

			r.Group(func(r chi.Router) {
				r.Use(h.authenticate)
				r.Get("/profile", h.Profile)
				r.Put("/profile", h.UpdateProfile)

				r.Group(func(r chi.Router) {
					r.Use(h.requireCapability(domain.CapAdmin))
					r.Get("/capabilities", h.Capabilities)
					r.Post("/add", h.AddUser)
					r.Get("/list", h.ListUsers)
					r.Put("/update", h.UpdateUser)
					r.Delete("/delete/{id}", h.DeleteUser)
				})
			})
		})

		r.Route("/coupon", func(r chi.Router) {
			r.Use(h.authenticate)
			r.Get("/types", h.CouponTypes)

			r.Group(func(r chi.Router) {
				r.Use(h.requireCapability(domain.CapInventory))
				r.Get("/list", h.ListCoupons)
				r.Get("/detail/{id}", h.CouponDetail)
				r.Post("/add", h.AddCoupon)
				r.Post("/import", h.ImportCoupons)
				r.Put("/update", h.UpdateCoupon)
				r.Delete("/delete/{id}", h.DeleteCoupon)
			})
		})

		r.Route("/my-coupon", func(r chi.Router) {
			r.Use(h.authenticate)
			r.Get("/stock", h.Stock)
			r.Get("/list", h.MyCoupons)
			r.Get("/detail/{id}", h.MyCouponDetail)

			r.Group(func(r chi.Router) {
				r.Use(h.requireCapability(domain.CapClaim))
				r.Post("/take", h.Take)
			})
		})
	})
}

// pagination clamps page to >=1 and size to 1..100, defaulting to 1/10.
func pagination(r *http.Request) (page, size, offset int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	size, _ = strconv.Atoi(r.URL.Query().Get("size"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10
	}
	return page, size, (page - 1) * size
}

func typeFilter(r *http.Request) *int {
	if typeStr := r.URL.Query().Get("type"); typeStr != "" {
		if t, err := strconv.Atoi(typeStr); err == nil {
			return &t
		}
	}
	return nil
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// ---- coupon types ----

func (h *Handler) CouponTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"list": domain.AllCouponTypes()})
}

// ---- admin inventory ----

type CouponItem struct {
	ID        int64      `json:"id"`
	Code      string     `json:"code"`
	Type      int        `json:"type"`
	TypeName  string     `json:"type_name"`
	Creator   int64      `json:"creator"`
	Claimed   bool       `json:"claimed"`
	ClaimedBy int64      `json:"claimed_by,omitempty"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func toCouponItem(c domain.Coupon) CouponItem {
	return CouponItem{
		ID:        c.ID,
		Code:      c.Code,
		Type:      c.Type,
		TypeName:  domain.TypeName(c.Type),
		Creator:   c.Creator,
		Claimed:   c.Claimed,
		ClaimedBy: c.ClaimedBy,
		ClaimedAt: c.ClaimedAt,
		CreatedAt: c.CreatedAt,
	}
}

func (h *Handler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	page, size, offset := pagination(r)

	filter := domain.CouponFilter{Type: typeFilter(r)}
	if takenStr := r.URL.Query().Get("taken"); takenStr != "" {
		taken := takenStr == "1"
		filter.Claimed = &taken
	}

	coupons, total, err := h.provision.List(r.Context(), identityFrom(r.Context()), filter, offset, size)
	if err != nil {
		h.writeError(w, err)
		return
	}

	list := make([]CouponItem, 0, len(coupons))
	for _, c := range coupons {
		list = append(list, toCouponItem(c))
	}
	writeJSON(w, http.StatusOK, pageResponse{List: list, Total: total, Page: page, Size: size})
}

func (h *Handler) CouponDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid coupon id")
		return
	}

	coupon, err := h.provision.Detail(r.Context(), identityFrom(r.Context()), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCouponItem(coupon))
}

type AddCouponRequest struct {
	Coupon string `json:"coupon"`
	Type   int    `json:"type"`
}

func (h *Handler) AddCoupon(w http.ResponseWriter, r *http.Request) {
	var req AddCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Coupon == "" {
		badRequest(w, "coupon code is required")
		return
	}

	coupon, err := h.provision.Add(r.Context(), identityFrom(r.Context()), req.Coupon, req.Type)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCouponItem(coupon))
}

type ImportRequest struct {
	Coupons string `json:"coupons"`
	Type    int    `json:"type"`
}

func (h *Handler) ImportCoupons(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	summary, err := h.provision.ImportBatch(r.Context(), identityFrom(r.Context()), req.Coupons, req.Type)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type UpdateCouponRequest struct {
	ID     int64   `json:"id"`
	Coupon *string `json:"coupon"`
	Type   *int    `json:"type"`
}

func (h *Handler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	var req UpdateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.ID == 0 {
		badRequest(w, "coupon id is required")
		return
	}
	if req.Coupon == nil && req.Type == nil {
		badRequest(w, "nothing to update")
		return
	}
	if req.Coupon != nil && *req.Coupon == "" {
		badRequest(w, "coupon code cannot be empty")
		return
	}

	if err := h.provision.Update(r.Context(), identityFrom(r.Context()), req.ID, req.Coupon, req.Type); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (h *Handler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid coupon id")
		return
	}

	if err := h.provision.Delete(r.Context(), identityFrom(r.Context()), id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

// ---- my coupons ----

func (h *Handler) Stock(w http.ResponseWriter, r *http.Request) {
	typeStr := r.URL.Query().Get("type")
	if typeStr == "" {
		badRequest(w, "missing type parameter")
		return
	}
	typeID, err := strconv.Atoi(typeStr)
	if err != nil {
		badRequest(w, "invalid coupon type")
		return
	}

	count, err := h.claims.Stock(r.Context(), typeID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"type":      typeID,
		"type_name": domain.TypeName(typeID),
		"stock":     count,
	})
}

type TakeRequest struct {
	Type int `json:"type"`
}

type TakeResponse struct {
	Result string          `json:"result"`
	Coupon *ClaimedPayload `json:"coupon,omitempty"`
}

type ClaimedPayload struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Type      int       `json:"type"`
	TypeName  string    `json:"type_name"`
	ClaimedAt time.Time `json:"claimed_at"`
}

// Take runs the claim. Exhaustion is a 200 with a distinct result value: the
// claimant lost a fair race, nothing went wrong.
func (h *Handler) Take(w http.ResponseWriter, r *http.Request) {
	var req TakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	claimed, err := h.claims.Claim(r.Context(), identityFrom(r.Context()), req.Type)
	if err != nil {
		if errors.Is(err, domain.ErrStockExhausted) {
			writeJSON(w, http.StatusOK, TakeResponse{Result: "exhausted"})
			return
		}
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TakeResponse{
		Result: "claimed",
		Coupon: &ClaimedPayload{
			ID:        claimed.ID,
			Code:      claimed.Code,
			Type:      claimed.Type,
			TypeName:  claimed.TypeName,
			ClaimedAt: claimed.ClaimedAt,
		},
	})
}

type MyCouponItem struct {
	ID        int64      `json:"id"`
	Type      int        `json:"type"`
	TypeName  string     `json:"type_name"`
	ClaimedAt *time.Time `json:"claimed_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (h *Handler) MyCoupons(w http.ResponseWriter, r *http.Request) {
	page, size, offset := pagination(r)

	coupons, total, err := h.claims.MyCoupons(r.Context(), identityFrom(r.Context()), typeFilter(r), offset, size)
	if err != nil {
		h.writeError(w, err)
		return
	}

	// The code itself stays out of the listing; it is only shown on detail.
	list := make([]MyCouponItem, 0, len(coupons))
	for _, c := range coupons {
		list = append(list, MyCouponItem{
			ID:        c.ID,
			Type:      c.Type,
			TypeName:  domain.TypeName(c.Type),
			ClaimedAt: c.ClaimedAt,
			CreatedAt: c.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, pageResponse{List: list, Total: total, Page: page, Size: size})
}

func (h *Handler) MyCouponDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid coupon id")
		return
	}

	coupon, err := h.claims.MyCouponDetail(r.Context(), identityFrom(r.Context()), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCouponItem(coupon))
}
