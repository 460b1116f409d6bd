// File: pkg/ledger/world.go

package ledger

import "fmt"

// WorldInfo описывает мир, в котором находится магазин. Несколько
// серверов могут использовать одну базу, поэтому мир идентифицируется
// парой (сервер, имя мира).
//
// Пустое WorldName моделирует "виртуальный" магазин без привязки к
// миру; в хранилище оно кодируется пустой строкой.
type WorldInfo struct {
	ServerID  string
	WorldName string
}

// NewWorldInfo создает описание мира с валидацией.
func NewWorldInfo(serverID, worldName string) (WorldInfo, error) {
	w := WorldInfo{ServerID: serverID, WorldName: worldName}
	if err := w.Validate(); err != nil {
		return WorldInfo{}, err
	}
	return w, nil
}

// Validate проверяет инварианты.
func (w WorldInfo) Validate() error {
	if w.ServerID == "" {
		return fmt.Errorf("world: server id is empty")
	}
	return nil
}

// HasWorld сообщает, привязан ли магазин к конкретному миру.
func (w WorldInfo) HasWorld() bool {
	return w.WorldName != ""
}
