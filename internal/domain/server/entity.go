// Package server содержит доменную модель сообщества Discord.
package server

import (
	"context"
	"fmt"
	"time"
)

// GlobalServerID - идентификатор синтетического глобального сообщества.
// В нём состоят все участники; настройки отображения там анонимные
// по умолчанию.
const GlobalServerID int64 = 0

// ══════════════════════════════════════════════════════════════════════════════
// SERVER ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Server представляет сообщество Discord, в котором ведётся
// таблица лидеров.
type Server struct {
	// ID - идентификатор гильдии Discord. 0 зарезервирован
	// за глобальным сообществом.
	ID int64

	// Timezone - IANA-зона для отображения времени. Все расчёты
	// границ периодов выполняются в UTC независимо от неё.
	Timezone string

	// NotifyChannelIDs - каналы для объявления победителей и других
	// уведомлений. Пустой набор означает, что объявления отключены.
	NotifyChannelIDs []int64

	// LastRefreshStartedAt и LastRefreshAt - начало и завершение
	// последнего цикла обновления статистики, затронувшего сообщество.
	LastRefreshStartedAt time.Time
	LastRefreshAt        time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewServer создаёт сообщество с валидацией.
func NewServer(id int64, timezone string) (*Server, error) {
	if id < 0 {
		return nil, fmt.Errorf("invalid server id: %d", id)
	}
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	now := time.Now().UTC()
	return &Server{
		ID:        id,
		Timezone:  timezone,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsGlobal сообщает, является ли сообщество глобальным.
func (s *Server) IsGlobal() bool {
	return s.ID == GlobalServerID
}

// MarkRefreshed фиксирует границы последнего цикла обновления.
func (s *Server) MarkRefreshed(startedAt, finishedAt time.Time) {
	s.LastRefreshStartedAt = startedAt.UTC()
	s.LastRefreshAt = finishedAt.UTC()
	s.UpdatedAt = finishedAt.UTC()
}

// AddNotifyChannel добавляет канал уведомлений.
// Возвращает false, если канал уже был в наборе.
func (s *Server) AddNotifyChannel(id int64) bool {
	for _, existing := range s.NotifyChannelIDs {
		if existing == id {
			return false
		}
	}
	s.NotifyChannelIDs = append(s.NotifyChannelIDs, id)
	s.UpdatedAt = time.Now().UTC()
	return true
}

// RemoveNotifyChannel убирает канал уведомлений.
// Возвращает false, если канала в наборе не было.
func (s *Server) RemoveNotifyChannel(id int64) bool {
	for i, existing := range s.NotifyChannelIDs {
		if existing == id {
			s.NotifyChannelIDs = append(s.NotifyChannelIDs[:i], s.NotifyChannelIDs[i+1:]...)
			s.UpdatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}

// Location возвращает часовой пояс сообщества для отображения.
func (s *Server) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// String возвращает строковое представление для логирования.
func (s *Server) String() string {
	return fmt.Sprintf("Server{ID: %d, TZ: %s}", s.ID, s.Timezone)
}

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет контракт хранилища сообществ.
type Repository interface {
	// Create сохраняет новое сообщество.
	Create(ctx context.Context, s *Server) error

	// GetByID возвращает сообщество по идентификатору.
	// Возвращает shared.ErrServerNotFound, если сообщество не найдено.
	GetByID(ctx context.Context, id int64) (*Server, error)

	// GetAll возвращает все сообщества, включая глобальное.
	GetAll(ctx context.Context) ([]*Server, error)

	// Save сохраняет изменённое сообщество.
	Save(ctx context.Context, s *Server) error

	// Delete удаляет сообщество и связанные профили.
	Delete(ctx context.Context, id int64) error
}
