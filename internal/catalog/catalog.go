// Package catalog содержит справочные данные витрины: список запчастей и
// перечень услуг автосервиса. Данные только читаются, идентификаторы
// стабильны в течение всего времени работы сервиса.
package catalog

import "github.com/avtomir/autoservice-system/internal/model"

var parts = []model.Part{
	{ID: "part-1", Name: "Тормозные колодки Brembo", Brand: "BMW 5 Series", Price: "8 500 ₽", Delivery: "В наличии", Hot: true},
	{ID: "part-2", Name: "Масляный фильтр Mann", Brand: "Toyota Camry", Price: "1 200 ₽", Delivery: "В наличии"},
	{ID: "part-3", Name: "Амортизатор KYB", Brand: "Honda CR-V", Price: "12 400 ₽", Delivery: "2-3 дня"},
	{ID: "part-4", Name: "Свечи зажигания NGK", Brand: "Volkswagen Golf", Price: "3 800 ₽", Delivery: "В наличии", Hot: true},
}

var services = []model.Service{
	{ID: "service-1", Name: "Замена масла", Description: "Замена моторного масла и масляного фильтра", Price: 1500, RequiresParts: true, Category: "Обслуживание"},
	{ID: "service-2", Name: "Диагностика", Description: "Компьютерная диагностика всех систем автомобиля", Price: 2000, RequiresParts: false, Category: "Диагностика"},
	{ID: "service-3", Name: "Ремонт подвески", Description: "Замена амортизаторов, стоек, сайлентблоков", Price: 5000, RequiresParts: true, Category: "Ремонт"},
	{ID: "service-4", Name: "Замена тормозных колодок", Description: "Замена передних и задних тормозных колодок", Price: 2500, RequiresParts: true, Category: "Ремонт"},
	{ID: "service-5", Name: "Ремонт двигателя", Description: "Диагностика и ремонт двигателя", Price: 10000, RequiresParts: true, Category: "Ремонт"},
	{ID: "service-6", Name: "Шиномонтаж", Description: "Монтаж и балансировка колес", Price: 1200, RequiresParts: false, Category: "Обслуживание"},
}

// Parts возвращает список запчастей каталога.
func Parts() []model.Part {
	out := make([]model.Part, len(parts))
	copy(out, parts)
	return out
}

// Services возвращает перечень услуг.
func Services() []model.Service {
	out := make([]model.Service, len(services))
	copy(out, services)
	return out
}

// PartByID возвращает запчасть по идентификатору.
func PartByID(id string) (model.Part, bool) {
	for _, p := range parts {
		if p.ID == id {
			return p, true
		}
	}
	return model.Part{}, false
}

// ServiceByID возвращает услугу по идентификатору.
func ServiceByID(id string) (model.Service, bool) {
	for _, s := range services {
		if s.ID == id {
			return s, true
		}
	}
	return model.Service{}, false
}
