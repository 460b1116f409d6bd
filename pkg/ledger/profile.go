// File: pkg/ledger/profile.go

// Package ledger содержит модель данных журнала торговли: неизменяемые
// снимки (PlayerProfile, ItemInfo, ShopInfo, WorldInfo, LoggedTrade),
// алгебры селекторов запроса истории и контракт пагинации Range.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PlayerProfile — общие сведения об игроке. Снимок: данные могли
// устареть относительно живой сессии.
//
// Нулевые FirstSeen/LastSeen означают "неизвестно".
// Инвариант: FirstSeen <= LastSeen.
type PlayerProfile struct {
	UUID      uuid.UUID
	Name      string
	FirstSeen time.Time
	LastSeen  time.Time
}

// NewProfile создает профиль с неизвестными временами появления.
func NewProfile(id uuid.UUID, name string) (PlayerProfile, error) {
	p := PlayerProfile{UUID: id, Name: name}
	if err := p.Validate(); err != nil {
		return PlayerProfile{}, err
	}
	return p, nil
}

// Validate проверяет инварианты профиля.
func (p PlayerProfile) Validate() error {
	if p.UUID == uuid.Nil {
		return fmt.Errorf("profile: uuid is empty")
	}
	if p.Name == "" {
		return fmt.Errorf("profile %s: name is empty", p.UUID)
	}
	if !p.FirstSeen.IsZero() && !p.LastSeen.IsZero() && p.FirstSeen.After(p.LastSeen) {
		return fmt.Errorf("profile %s: first seen after last seen", p.UUID)
	}
	return nil
}

// Session — сведения живой директории о конкретном игроке.
type Session struct {
	Name        string
	Online      bool
	FirstPlayed time.Time // нулевое значение = неизвестно
	LastPlayed  time.Time
}

// SessionDirectory — внешний коллаборатор: директория подключённых
// игроков, используемая для актуализации профилей.
type SessionDirectory interface {
	// Lookup возвращает сведения об игроке, false если игрок
	// директории не известен
	Lookup(id uuid.UUID) (Session, bool)
}

// Merge актуализирует профиль сведениями живой директории: у игрока
// онлайн LastSeen всегда "сейчас" и текущее имя побеждает; FirstSeen
// берёт минимум известных значений.
func (p PlayerProfile) Merge(dir SessionDirectory) PlayerProfile {
	if dir == nil {
		return p
	}
	session, ok := dir.Lookup(p.UUID)
	if !ok {
		return p
	}

	merged := p
	if !session.FirstPlayed.IsZero() {
		if merged.FirstSeen.IsZero() || session.FirstPlayed.Before(merged.FirstSeen) {
			merged.FirstSeen = session.FirstPlayed
		}
	}
	if session.Online {
		merged.LastSeen = time.Now()
		if session.Name != "" {
			merged.Name = session.Name
		}
	} else if !session.LastPlayed.IsZero() && session.LastPlayed.After(merged.LastSeen) {
		merged.LastSeen = session.LastPlayed
		if session.Name != "" {
			merged.Name = session.Name
		}
	}
	return merged
}
