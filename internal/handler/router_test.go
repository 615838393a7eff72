package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/avtomir/autoservice-system/internal/kv"
	"github.com/avtomir/autoservice-system/internal/middleware"
	"github.com/avtomir/autoservice-system/internal/model"
	"github.com/avtomir/autoservice-system/internal/storage"
	"github.com/avtomir/autoservice-system/internal/wizard"
)

// testClient гоняет запросы через полный роутер с настоящими хранилищами
// поверх kv.Memory, сохраняя cookie авторизации между запросами.
type testClient struct {
	t       *testing.T
	srv     *httptest.Server
	cookies []*http.Cookie
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()

	ctx := context.Background()
	store := kv.NewMemory()

	session := storage.NewSession(ctx, store)
	cart := storage.NewCart(ctx, store)
	accounts := storage.NewAccount(store)
	wizards := wizard.NewManager(accounts, cart)

	auth := middleware.NewAuthMiddleware("test-secret")
	h := NewHandler(session, cart, accounts, wizards, zap.NewNop(), auth)

	srv := httptest.NewServer(h.SetupRouter())
	t.Cleanup(srv.Close)

	return &testClient{t: t, srv: srv}
}

func (c *testClient) do(method, path string, body any) (int, []byte) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.srv.URL+path, reader)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()

	if cookies := res.Cookies(); len(cookies) > 0 {
		c.cookies = cookies
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		c.t.Fatalf("read body: %v", err)
	}
	return res.StatusCode, raw
}

func TestRouterRepairFlow(t *testing.T) {
	c := newTestClient(t)

	status, _ := c.do(http.MethodPost, "/api/user/register", map[string]string{
		"name": "Ivan", "email": "ivan@example.com", "password": "x",
	})
	if status != http.StatusOK {
		t.Fatalf("register: status %d", status)
	}

	status, body := c.do(http.MethodPost, "/api/repair/", nil)
	if status != http.StatusCreated {
		t.Fatalf("start repair: status %d, body %s", status, body)
	}
	var snap wizard.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}

	base := "/api/repair/" + snap.ID

	status, body = c.do(http.MethodPost, base+"/service", map[string]string{"id": "service-3"})
	if status != http.StatusOK {
		t.Fatalf("select service: status %d, body %s", status, body)
	}

	// Добавление автомобиля прямо из заявки сразу выбирает его.
	status, body = c.do(http.MethodPost, base+"/car/new", map[string]string{
		"plateNumber": "а 123 ве 777", "model": "Toyota Camry",
	})
	if status != http.StatusOK {
		t.Fatalf("create car: status %d, body %s", status, body)
	}
	if err := json.Unmarshal(body, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Step != wizard.StepParts {
		t.Fatalf("step = %s, want %s", snap.Step, wizard.StepParts)
	}

	status, _ = c.do(http.MethodPost, base+"/parts", map[string]string{"source": "catalog", "id": "part-1"})
	if status != http.StatusOK {
		t.Fatalf("add part: status %d", status)
	}

	status, body = c.do(http.MethodPost, base+"/submit", nil)
	if status != http.StatusOK {
		t.Fatalf("submit: status %d, body %s", status, body)
	}
	var record model.RepairRecord
	if err := json.Unmarshal(body, &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record.Description != "Ремонт подвески" || record.Amount != 5000 {
		t.Fatalf("record = %+v", record)
	}

	// Оформленная заявка исчезает из менеджера.
	status, _ = c.do(http.MethodGet, base, nil)
	if status != http.StatusNotFound {
		t.Fatalf("get after submit: status %d, want %d", status, http.StatusNotFound)
	}

	status, body = c.do(http.MethodGet, "/api/account/repairs", nil)
	if status != http.StatusOK {
		t.Fatalf("repairs: status %d", status)
	}
	var history []model.RepairRecord
	if err := json.Unmarshal(body, &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 1 || history[0].ID != record.ID {
		t.Fatalf("history = %+v", history)
	}
}

func TestRouterRepairInvalidPlate(t *testing.T) {
	c := newTestClient(t)

	c.do(http.MethodPost, "/api/user/register", map[string]string{
		"name": "Ivan", "email": "ivan@example.com", "password": "x",
	})

	_, body := c.do(http.MethodPost, "/api/repair/", nil)
	var snap wizard.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}

	base := "/api/repair/" + snap.ID
	c.do(http.MethodPost, base+"/service", map[string]string{"id": "service-3"})

	status, _ := c.do(http.MethodPost, base+"/car/new", map[string]string{
		"plateNumber": "123", "model": "Toyota Camry",
	})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("invalid plate: status %d, want %d", status, http.StatusUnprocessableEntity)
	}

	// Кабинет не изменился.
	status, body = c.do(http.MethodGet, "/api/account/cars", nil)
	if status != http.StatusOK {
		t.Fatalf("cars: status %d", status)
	}
	var cars []model.UserCar
	if err := json.Unmarshal(body, &cars); err != nil {
		t.Fatalf("decode cars: %v", err)
	}
	if len(cars) != 0 {
		t.Fatalf("cars = %+v, want empty", cars)
	}
}

func TestRouterCartAnonymous(t *testing.T) {
	c := newTestClient(t)

	status, _ := c.do(http.MethodPost, "/api/cart/items", map[string]any{"id": "part-2", "quantity": 2})
	if status != http.StatusOK {
		t.Fatalf("add to cart without auth: status %d", status)
	}

	status, body := c.do(http.MethodGet, "/api/cart/", nil)
	if status != http.StatusOK {
		t.Fatalf("get cart: status %d", status)
	}
	var resp cartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("count = %d, want 2", resp.Count)
	}
}

func TestRouterAccountRequiresAuth(t *testing.T) {
	c := newTestClient(t)

	status, _ := c.do(http.MethodGet, "/api/account/cars", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", status, http.StatusUnauthorized)
	}
}

func TestRouterPaymentMethods(t *testing.T) {
	c := newTestClient(t)

	c.do(http.MethodPost, "/api/user/register", map[string]string{
		"name": "Ivan", "email": "ivan@example.com", "password": "x",
	})

	status, body := c.do(http.MethodPost, "/api/account/payment-methods", map[string]string{
		"type": "card", "title": "Карта Мир", "last4": "1234",
	})
	if status != http.StatusOK {
		t.Fatalf("add payment method: status %d, body %s", status, body)
	}
	var method model.PaymentMethod
	if err := json.Unmarshal(body, &method); err != nil {
		t.Fatalf("decode method: %v", err)
	}
	if !method.IsDefault {
		t.Fatalf("first method must be default: %+v", method)
	}

	// Карта без последних четырёх цифр отклоняется.
	status, _ = c.do(http.MethodPost, "/api/account/payment-methods", map[string]string{
		"type": "card", "title": "Ещё карта",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("card without last4: status %d, want %d", status, http.StatusBadRequest)
	}

	// Последние цифры номера есть только у карты: для других типов поле отклоняется.
	status, _ = c.do(http.MethodPost, "/api/account/payment-methods", map[string]string{
		"type": "sbp", "title": "СБП", "last4": "9999",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("sbp with last4: status %d, want %d", status, http.StatusBadRequest)
	}

	status, _ = c.do(http.MethodPost, "/api/account/payment-methods", map[string]string{
		"type": "sbp", "title": "СБП",
	})
	if status != http.StatusOK {
		t.Fatalf("sbp without last4: status %d, want %d", status, http.StatusOK)
	}
}
