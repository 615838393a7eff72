// Package handler содержит HTTP-обработчики API сервиса автосервиса.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/avtomir/autoservice-system/internal/catalog"
	"github.com/avtomir/autoservice-system/internal/middleware"
	"github.com/avtomir/autoservice-system/internal/model"
	"github.com/avtomir/autoservice-system/internal/storage"
	"github.com/avtomir/autoservice-system/internal/validation"
	"github.com/avtomir/autoservice-system/internal/wizard"
)

// SessionStore определяет операции сессии, используемые HTTP-обработчиками.
type SessionStore interface {
	Login(ctx context.Context, email, password string) (model.User, error)
	Register(ctx context.Context, name, email, password string) (model.User, error)
	Logout(ctx context.Context) error
}

// CartStore определяет операции корзины, используемые HTTP-обработчиками.
type CartStore interface {
	Items() []model.CartItem
	Count() int
	AddItem(ctx context.Context, part model.Part, quantity int) error
	RemoveItem(ctx context.Context, partID string) error
	UpdateQuantity(ctx context.Context, partID string, quantity int) error
	Clear(ctx context.Context) error
}

// AccountStore определяет операции кабинета, используемые HTTP-обработчиками.
type AccountStore interface {
	Cars(ctx context.Context, userID string) []model.UserCar
	RepairHistory(ctx context.Context, userID string) []model.RepairRecord
	PaymentMethods(ctx context.Context, userID string) []model.PaymentMethod
	AddCar(ctx context.Context, plateNumber, carModel, userID string) (model.UserCar, error)
	RemoveCar(ctx context.Context, userID, id string) error
	AddPaymentMethod(ctx context.Context, methodType model.PaymentMethodType, title, userID, last4 string) (model.PaymentMethod, error)
	SetDefaultPaymentMethod(ctx context.Context, userID, id string) error
	RemovePaymentMethod(ctx context.Context, userID, id string) error
}

// Handler реализует HTTP-обработчики API сервиса автосервиса.
type Handler struct {
	session        SessionStore
	cart           CartStore
	accounts       AccountStore
	wizards        *wizard.Manager
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(session SessionStore, cart CartStore, accounts AccountStore, wizards *wizard.Manager, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		session:        session,
		cart:           cart,
		accounts:       accounts,
		wizards:        wizards,
		logger:         logger,
		authMiddleware: auth,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register обрабатывает регистрацию нового пользователя.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	user, err := h.session.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, storage.ErrEmptyCredentials) {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		h.logger.Error("register user error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.authMiddleware.SetAuthCookie(w, user.Email)
	h.writeJSON(w, http.StatusOK, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login выполняет вход пользователя и установку cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	user, err := h.session.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, storage.ErrEmptyCredentials) {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		h.logger.Error("login user error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.authMiddleware.SetAuthCookie(w, user.Email)
	h.writeJSON(w, http.StatusOK, user)
}

// Logout завершает сессию пользователя и сбрасывает cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Logout(r.Context()); err != nil {
		h.logger.Error("logout error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.authMiddleware.ClearAuthCookie(w)
	w.WriteHeader(http.StatusOK)
}

// GetCatalogParts возвращает список запчастей каталога.
func (h *Handler) GetCatalogParts(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, catalog.Parts())
}

// GetCatalogServices возвращает перечень услуг.
func (h *Handler) GetCatalogServices(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, catalog.Services())
}

type cartResponse struct {
	Items []model.CartItem `json:"items"`
	Count int              `json:"count"`
}

// GetCart возвращает содержимое корзины.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, cartResponse{
		Items: h.cart.Items(),
		Count: h.cart.Count(),
	})
}

type addCartItemRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// AddCartItem добавляет запчасть каталога в корзину.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	part, ok := catalog.PartByID(req.ID)
	if !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	if err := h.cart.AddItem(r.Context(), part, req.Quantity); err != nil {
		h.logger.Error("add cart item error", zap.Error(err), zap.String("part", req.ID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, cartResponse{Items: h.cart.Items(), Count: h.cart.Count()})
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem устанавливает количество для позиции корзины.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	partID := pathParam(r, "id")

	var req updateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.cart.UpdateQuantity(r.Context(), partID, req.Quantity); err != nil {
		h.logger.Error("update cart item error", zap.Error(err), zap.String("part", partID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, cartResponse{Items: h.cart.Items(), Count: h.cart.Count()})
}

// RemoveCartItem удаляет позицию корзины. Отсутствие позиции не ошибка.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	partID := pathParam(r, "id")

	if err := h.cart.RemoveItem(r.Context(), partID); err != nil {
		h.logger.Error("remove cart item error", zap.Error(err), zap.String("part", partID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, cartResponse{Items: h.cart.Items(), Count: h.cart.Count()})
}

// ClearCart опустошает корзину.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context()); err != nil {
		h.logger.Error("clear cart error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetCars возвращает автомобили текущего пользователя.
func (h *Handler) GetCars(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	h.writeJSON(w, http.StatusOK, h.accounts.Cars(r.Context(), userID))
}

type addCarRequest struct {
	PlateNumber string `json:"plateNumber"`
	Model       string `json:"model"`
}

// AddCar добавляет автомобиль текущему пользователю. Формат гос. номера
// проверяется до обращения к хранилищу.
func (h *Handler) AddCar(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req addCarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Model == "" || !validation.IsValidPlate(req.PlateNumber) {
		http.Error(w, "Неверный формат гос. номера", http.StatusUnprocessableEntity)
		return
	}

	car, err := h.accounts.AddCar(r.Context(), req.PlateNumber, req.Model, userID)
	if err != nil {
		h.logger.Error("add car error", zap.Error(err), zap.String("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, car)
}

// RemoveCar удаляет автомобиль и каскадно связанные записи истории ремонтов.
func (h *Handler) RemoveCar(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if err := h.accounts.RemoveCar(r.Context(), userID, pathParam(r, "id")); err != nil {
		h.logger.Error("remove car error", zap.Error(err), zap.String("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetRepairHistory возвращает историю ремонтов текущего пользователя.
func (h *Handler) GetRepairHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	h.writeJSON(w, http.StatusOK, h.accounts.RepairHistory(r.Context(), userID))
}

// GetPaymentMethods возвращает способы оплаты текущего пользователя.
func (h *Handler) GetPaymentMethods(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	h.writeJSON(w, http.StatusOK, h.accounts.PaymentMethods(r.Context(), userID))
}

type addPaymentMethodRequest struct {
	Type  model.PaymentMethodType `json:"type"`
	Title string                  `json:"title"`
	Last4 string                  `json:"last4"`
}

// AddPaymentMethod добавляет способ оплаты текущему пользователю.
// Последние четыре цифры номера обязательны для банковской карты и
// не принимаются для остальных типов.
func (h *Handler) AddPaymentMethod(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req addPaymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	switch req.Type {
	case model.PaymentMethodCard:
		if len(req.Last4) != 4 {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
	case model.PaymentMethodSBP, model.PaymentMethodCash:
		if req.Last4 != "" {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
	default:
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Title == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	method, err := h.accounts.AddPaymentMethod(r.Context(), req.Type, req.Title, userID, req.Last4)
	if err != nil {
		h.logger.Error("add payment method error", zap.Error(err), zap.String("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, method)
}

// SetDefaultPaymentMethod делает способ оплаты способом по умолчанию.
func (h *Handler) SetDefaultPaymentMethod(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if err := h.accounts.SetDefaultPaymentMethod(r.Context(), userID, pathParam(r, "id")); err != nil {
		h.logger.Error("set default payment method error", zap.Error(err), zap.String("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// RemovePaymentMethod удаляет способ оплаты.
func (h *Handler) RemovePaymentMethod(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if err := h.accounts.RemovePaymentMethod(r.Context(), userID, pathParam(r, "id")); err != nil {
		h.logger.Error("remove payment method error", zap.Error(err), zap.String("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
