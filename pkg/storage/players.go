// File: pkg/storage/players.go

package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ruslano69/tradelog/pkg/connector"
	"github.com/ruslano69/tradelog/pkg/ledger"
)

// storedProfile — профиль игрока вместе с его ключом в БД. Ключ
// нужен только внутри хранилища: наружу уходит ledger.PlayerProfile.
type storedProfile struct {
	id      int64
	profile ledger.PlayerProfile
}

// PlayerStorage хранит профили игроков. Все операции сериализуются
// общим коннектором.
type PlayerStorage struct {
	c  *connector.Connector
	st *statements
}

func newPlayerStorage(c *connector.Connector, st *statements) *PlayerStorage {
	return &PlayerStorage{c: c, st: st}
}

// GetOrInsertProfile возвращает ключ профиля, создавая запись при
// первом обращении.
func (ps *PlayerStorage) GetOrInsertProfile(ctx context.Context, profile ledger.PlayerProfile) (int64, error) {
	if err := profile.Validate(); err != nil {
		return 0, err
	}
	return connector.ExecuteResult(ctx, ps.c, "get or insert player profile", func(ctx context.Context) (int64, error) {
		return ps.getOrInsertProfileID(ctx, profile)
	})
}

// getOrInsertProfileID — вариант для вызова изнутри Execute.
func (ps *PlayerStorage) getOrInsertProfileID(ctx context.Context, profile ledger.PlayerProfile) (int64, error) {
	uuidText := profile.UUID.String()
	return ps.c.GetOrInsertID(ctx, "player profile",
		ps.st.getPlayerIDByUUID, []any{uuidText},
		ps.st.addPlayer, []any{
			uuidText,
			profile.Name,
			formatTime(profile.FirstSeen),
			formatTime(profile.LastSeen),
		})
}

// GetProfile возвращает профиль по uuid или nil, если профиля нет.
func (ps *PlayerStorage) GetProfile(ctx context.Context, playerUUID uuid.UUID) (*ledger.PlayerProfile, error) {
	stored, err := connector.ExecuteResult(ctx, ps.c, "get player profile", func(ctx context.Context) (*storedProfile, error) {
		return ps.getProfileByUUID(ctx, playerUUID)
	})
	if err != nil || stored == nil {
		return nil, err
	}
	profile := stored.profile
	return &profile, nil
}

func (ps *PlayerStorage) getProfileByUUID(ctx context.Context, playerUUID uuid.UUID) (*storedProfile, error) {
	rows, err := ps.c.Query(ctx, ps.st.getPlayerByUUID, playerUUID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, rows.Err()
	}
	values, err := scanRowValues(rows)
	if err != nil {
		return nil, err
	}
	return parseStoredProfile("", values)
}

// GetProfiles возвращает профили с данным именем, самые недавние
// первыми. Имена не уникальны: игрок мог смениться, а имя
// переиспользовано.
func (ps *PlayerStorage) GetProfiles(ctx context.Context, playerName string) ([]ledger.PlayerProfile, error) {
	stored, err := connector.ExecuteResult(ctx, ps.c, "get player profiles", func(ctx context.Context) ([]*storedProfile, error) {
		return ps.getProfilesByName(ctx, playerName)
	})
	if err != nil {
		return nil, err
	}
	profiles := make([]ledger.PlayerProfile, 0, len(stored))
	for _, sp := range stored {
		profiles = append(profiles, sp.profile)
	}
	return profiles, nil
}

func (ps *PlayerStorage) getProfilesByName(ctx context.Context, playerName string) ([]*storedProfile, error) {
	rows, err := ps.c.Query(ctx, ps.st.getPlayersByName, playerName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var profiles []*storedProfile
	for rows.Next() {
		values, err := scanRowValues(rows)
		if err != nil {
			return nil, err
		}
		sp, err := parseStoredProfile("", values)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, sp)
	}
	return profiles, rows.Err()
}

// UpdateProfile обновляет профиль, если хранимая запись старее.
// Сначала пробуется UPDATE: неудачные INSERT расходуют
// автоинкрементные ключи, да и UPDATE здесь вероятнее. Если ни одна
// строка не обновилась, профиль либо отсутствует, либо хранимая
// запись новее — тогда он создаётся при необходимости.
func (ps *PlayerStorage) UpdateProfile(ctx context.Context, profile ledger.PlayerProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	return ps.c.Execute(ctx, "update player profile", func(ctx context.Context) error {
		return ps.c.Transaction(ctx, func(ctx context.Context) error {
			lastSeen := formatTime(profile.LastSeen)
			res, err := ps.c.Exec(ctx, ps.st.updatePlayer,
				profile.Name,
				formatTime(profile.FirstSeen),
				lastSeen,
				profile.UUID.String(),
				lastSeen,
			)
			if err != nil {
				return err
			}
			updated, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if updated > 0 {
				return nil
			}
			_, err = ps.getOrInsertProfileID(ctx, profile)
			return err
		})
	})
}

// RemoveProfile удаляет профиль. Отсутствие профиля — ошибка
// ErrNotFound.
func (ps *PlayerStorage) RemoveProfile(ctx context.Context, playerUUID uuid.UUID) error {
	return ps.c.Execute(ctx, "remove player profile", func(ctx context.Context) error {
		res, err := ps.c.Exec(ctx, ps.st.removePlayer, playerUUID.String())
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("player %s: %w", playerUUID, ErrNotFound)
		}
		return nil
	})
}

// PlayerCount возвращает число хранимых профилей.
func (ps *PlayerStorage) PlayerCount(ctx context.Context) (int, error) {
	return connector.ExecuteResult(ctx, ps.c, "player count", func(ctx context.Context) (int, error) {
		row, err := ps.c.QueryRow(ctx, ps.st.playerCount)
		if err != nil {
			return 0, err
		}
		var count int
		if err := row.Scan(&count); err != nil {
			return 0, err
		}
		return count, nil
	})
}

// parseStoredProfile разбирает профиль из строки результата.
// prefix задаёт ролевой префикс колонок и может быть пустым.
// NULL uuid у встроенного профиля (например, владельца
// административного магазина) означает отсутствие игрока.
func parseStoredProfile(prefix string, row *rowValues) (*storedProfile, error) {
	if row.isNull(prefix + colUUID) {
		return nil, nil
	}
	id, err := row.intValue(prefix + colID)
	if err != nil {
		return nil, err
	}
	uuidText, err := row.stringValue(prefix + colUUID)
	if err != nil {
		return nil, err
	}
	playerUUID, err := uuid.Parse(uuidText)
	if err != nil {
		return nil, fmt.Errorf("player uuid: %w", err)
	}
	name, err := row.stringValue(prefix + colName)
	if err != nil {
		return nil, err
	}
	firstSeen, err := row.timeValue(prefix + colFirstSeen)
	if err != nil {
		return nil, err
	}
	lastSeen, err := row.timeValue(prefix + colLastSeen)
	if err != nil {
		return nil, err
	}
	return &storedProfile{
		id: id,
		profile: ledger.PlayerProfile{
			UUID:      playerUUID,
			Name:      name,
			FirstSeen: firstSeen,
			LastSeen:  lastSeen,
		},
	}, nil
}
