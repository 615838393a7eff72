// Package kv определяет порт key-value хранилища и его реализации.
//
// Все пользовательские данные сервиса хранятся как строковые значения по
// строковым ключам. Читающая сторона обязана трактовать отсутствующее или
// нечитаемое значение как пустое состояние, а не как ошибку.
package kv

import "context"

// Store описывает контракт key-value хранилища.
type Store interface {
	// Get возвращает значение по ключу. Второй результат false, если значение отсутствует.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set записывает значение по ключу, перезаписывая существующее.
	Set(ctx context.Context, key, value string) error
	// Delete удаляет значение по ключу. Отсутствие ключа не является ошибкой.
	Delete(ctx context.Context, key string) error
	// Close освобождает ресурсы хранилища.
	Close() error
}
