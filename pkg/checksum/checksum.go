// File: pkg/checksum/checksum.go

// Package checksum вычисляет 32-битные контрольные суммы для
// контентно-адресуемых строк хранилища (items, shops).
//
// Сумма используется только для сужения поиска по индексу: коллизии
// разрешаются точным сравнением колонок в WHERE-условии, поэтому
// криптографическая стойкость не требуется. Используется xxh3,
// усечённый до младших 32 бит.
package checksum

import (
	"github.com/zeebo/xxh3"
)

// Sum32 вычисляет контрольную сумму одной строки.
// Эквивалентна Join32("", text).
func Sum32(text string) int32 {
	return int32(uint32(xxh3.HashString(text)))
}

// Join32 вычисляет контрольную сумму частей, соединённых разделителем.
//
// Части хешируются в UTF-8 представлении; отсутствующие значения
// кодируются пустой строкой на стороне вызывающего. Пустой разделитель
// означает простую конкатенацию: Join32("", "a", "b") == Sum32("ab").
// Результат — беззнаковая 32-битная сумма, представленная знаковым
// int32 (в таком виде она хранится в колонке INTEGER).
func Join32(delimiter string, parts ...string) int32 {
	h := xxh3.New()
	for i, part := range parts {
		if i > 0 && delimiter != "" {
			_, _ = h.WriteString(delimiter)
		}
		_, _ = h.WriteString(part)
	}
	return int32(uint32(h.Sum64()))
}
