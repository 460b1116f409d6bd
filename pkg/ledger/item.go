// File: pkg/ledger/item.go

package ledger

import (
	"bytes"
	"fmt"

	"github.com/ruslano69/tradelog/pkg/checksum"
)

// ItemInfo описывает предмет, участвовавший в сделке: идентификатор
// типа, непрозрачный сериализованный блоб данных и количество.
//
// Data может быть nil: сериализация данных предмета отключается
// конфигурацией, тип при этом сохраняется всегда.
type ItemInfo struct {
	Type   string
	Data   []byte
	Amount int
}

// NewItemInfo создает предмет с валидацией.
func NewItemInfo(itemType string, data []byte, amount int) (ItemInfo, error) {
	i := ItemInfo{Type: itemType, Data: data, Amount: amount}
	if err := i.Validate(); err != nil {
		return ItemInfo{}, err
	}
	return i, nil
}

// Validate проверяет инварианты предмета: присутствующий предмет всегда
// имеет непустой тип и количество > 0.
func (i ItemInfo) Validate() error {
	if i.Type == "" {
		return fmt.Errorf("item: type is empty")
	}
	if i.Amount <= 0 {
		return fmt.Errorf("item %q: amount %d is not positive", i.Type, i.Amount)
	}
	return nil
}

// Checksum возвращает 32-битную сумму идентичности хранения: тип и
// данные без разделителя, так что сумма предмета без данных совпадает
// с суммой только типа. Коллизии разрешаются точным сравнением колонок
// при поиске.
func (i ItemInfo) Checksum() int32 {
	return checksum.Join32("", i.Type, string(i.Data))
}

// ContentEquals сравнивает контентную идентичность (тип и данные),
// без учёта количества.
func (i ItemInfo) ContentEquals(other ItemInfo) bool {
	return i.Type == other.Type && bytes.Equal(i.Data, other.Data)
}

// Equals сравнивает предметы целиком, включая количество.
func (i ItemInfo) Equals(other ItemInfo) bool {
	return i.Amount == other.Amount && i.ContentEquals(other)
}
