// Package model содержит доменные сущности сервиса автосервиса.
package model

// User представляет текущую авторизованную учётную запись.
// Email одновременно служит идентификатором пользователя.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Part описывает запчасть из каталога. Справочные данные, не изменяются.
type Part struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Price    string `json:"price"`
	Delivery string `json:"delivery"`
	Hot      bool   `json:"hot,omitempty"`
}

// CartItem описывает позицию корзины: запчасть и её количество.
// Количество всегда не меньше единицы.
type CartItem struct {
	Part
	Quantity int `json:"quantity"`
}

// UserCar описывает автомобиль пользователя.
type UserCar struct {
	ID          string `json:"id"`
	PlateNumber string `json:"plateNumber"`
	Model       string `json:"model"`
	UserID      string `json:"userId"`
}

// RepairRecord описывает запись в истории ремонтов.
// Создаётся только завершённой заявкой на ремонт и никогда не изменяется.
type RepairRecord struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	CarID       string `json:"carId"`
	Amount      int    `json:"amount"`
	UserID      string `json:"userId"`
}

// PaymentMethodType задаёт тип способа оплаты.
type PaymentMethodType string

const (
	PaymentMethodCard PaymentMethodType = "card"
	PaymentMethodSBP  PaymentMethodType = "sbp"
	PaymentMethodCash PaymentMethodType = "cash"
)

// PaymentMethod описывает сохранённый способ оплаты пользователя.
// У пользователя не больше одного способа с IsDefault = true.
type PaymentMethod struct {
	ID        string            `json:"id"`
	Type      PaymentMethodType `json:"type"`
	Title     string            `json:"title"`
	Last4     string            `json:"last4,omitempty"`
	IsDefault bool              `json:"isDefault"`
	UserID    string            `json:"userId"`
}

// Service описывает услугу автосервиса. Справочные данные, не изменяются.
type Service struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         int    `json:"price"`
	RequiresParts bool   `json:"requiresParts"`
	Category      string `json:"category"`
}

// PartSource задаёт происхождение запчасти, выбранной в заявке на ремонт.
type PartSource string

const (
	PartSourceUser    PartSource = "user"
	PartSourceCatalog PartSource = "catalog"
	PartSourceCart    PartSource = "cart"
)

// SelectedPart описывает запчасть, выбранную в рамках заявки на ремонт.
// Существует только внутри активной заявки и не сохраняется в хранилище.
type SelectedPart struct {
	PartID   string     `json:"partId"`
	Name     string     `json:"name"`
	Brand    string     `json:"brand"`
	Price    string     `json:"price"`
	Quantity int        `json:"quantity"`
	Source   PartSource `json:"source"`
}
