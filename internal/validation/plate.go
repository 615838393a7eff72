// Package validation содержит функции валидации входных данных.
package validation

import (
	"regexp"
	"strings"
	"unicode"
)

// Формат российского гос. номера: буква, три цифры, две буквы, код региона.
// Допустимы только буквы, имеющие латинские начертания.
var plateRe = regexp.MustCompile(`^[АВЕКМНОРСТУХ]\d{3}[АВЕКМНОРСТУХ]{2}\d{2,3}$`)

// NormalizePlate приводит гос. номер к каноническому виду: удаляет все
// пробельные символы и переводит буквы в верхний регистр. Повторная
// нормализация не меняет результат.
func NormalizePlate(plate string) string {
	var b strings.Builder
	for _, r := range plate {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// IsValidPlate проверяет корректность гос. номера. Номер предварительно
// нормализуется, так что проверка не зависит от регистра и пробелов.
func IsValidPlate(plate string) bool {
	return plateRe.MatchString(NormalizePlate(plate))
}
