package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/azizikri/coupon-distributor/internal/domain"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Account  string `json:"account"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Name == "" || req.Account == "" || req.Password == "" {
		badRequest(w, "name, account and password are required")
		return
	}

	user, err := h.users.Register(r.Context(), req.Name, req.Account, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": user.ID, "account": user.Account})
}

type LoginRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token        string            `json:"token"`
	ExpiresIn    int64             `json:"expires_in"`
	Name         string            `json:"name"`
	Capabilities domain.Capability `json:"capabilities"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Account == "" || req.Password == "" {
		badRequest(w, "account and password are required")
		return
	}

	result, err := h.users.Login(r.Context(), req.Account, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{
		Token:        result.Token,
		ExpiresIn:    result.ExpiresIn,
		Name:         result.Name,
		Capabilities: result.Capabilities,
	})
}

type UserItem struct {
	ID           int64             `json:"id"`
	Name         string            `json:"name"`
	Account      string            `json:"account"`
	Capabilities domain.Capability `json:"capabilities"`
	CreatedAt    time.Time         `json:"created_at"`
}

func toUserItem(u domain.User) UserItem {
	return UserItem{
		ID:           u.ID,
		Name:         u.Name,
		Account:      u.Account,
		Capabilities: u.Capabilities,
		CreatedAt:    u.CreatedAt,
	}
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Profile(r.Context(), identityFrom(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserItem(user))
}

type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Name == nil && req.Password == nil {
		badRequest(w, "nothing to update")
		return
	}

	if err := h.users.UpdateProfile(r.Context(), identityFrom(r.Context()), req.Name, req.Password); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (h *Handler) Capabilities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"list": domain.AllCapabilities()})
}

type AddUserRequest struct {
	Name         string             `json:"name"`
	Account      string             `json:"account"`
	Password     string             `json:"password"`
	Capabilities *domain.Capability `json:"capabilities"`
}

func (h *Handler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req AddUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Name == "" || req.Account == "" || req.Password == "" {
		badRequest(w, "name, account and password are required")
		return
	}

	user, err := h.users.AddUser(r.Context(), identityFrom(r.Context()), req.Name, req.Account, req.Password, req.Capabilities)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserItem(user))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, size, offset := pagination(r)

	users, total, err := h.users.ListUsers(r.Context(), identityFrom(r.Context()), offset, size)
	if err != nil {
		h.writeError(w, err)
		return
	}

	list := make([]UserItem, 0, len(users))
	for _, u := range users {
		list = append(list, toUserItem(u))
	}
	writeJSON(w, http.StatusOK, pageResponse{List: list, Total: total, Page: page, Size: size})
}

type UpdateUserRequest struct {
	ID           int64              `json:"id"`
	Name         *string            `json:"name"`
	Account      *string            `json:"account"`
	Password     *string            `json:"password"`
	Capabilities *domain.Capability `json:"capabilities"`
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.ID == 0 {
		badRequest(w, "user id is required")
		return
	}
	if req.Name == nil && req.Account == nil && req.Password == nil && req.Capabilities == nil {
		badRequest(w, "nothing to update")
		return
	}

	err := h.users.UpdateUser(r.Context(), identityFrom(r.Context()), req.ID, req.Name, req.Account, req.Password, req.Capabilities)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid user id")
		return
	}

	if err := h.users.DeleteUser(r.Context(), identityFrom(r.Context()), id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}
