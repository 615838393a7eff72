// Package storage реализует хранилища состояния сервиса поверх key-value порта:
// сессию пользователя, корзину и данные личного кабинета.
//
// Все хранилища читают состояние в режиме fail-open: отсутствующее или
// нечитаемое значение по ключу означает пустое состояние и никогда не
// приводит к ошибке.
package storage

// Раскладка ключей в key-value хранилище. Схема совпадает с раскладкой
// клиентского приложения: один фиксированный ключ для сессии, один для
// анонимной корзины и по ключу на пользователя для данных кабинета.
const (
	sessionKey       = "autoservice-user"
	cartKey          = "autoservice-cart"
	accountKeyPrefix = "autoservice-account-"
)

func accountKey(userID string) string {
	return accountKeyPrefix + userID
}
