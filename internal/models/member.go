// Package models содержит доменные структуры сервиса доступа в зал:
// участников, абонементы, бронирования, токены двери и записи журнала доступа.
package models

import (
	"strings"
	"time"
)

// MemberStatus — статус участника клуба.
type MemberStatus string

const (
	StatusActive    MemberStatus = "active"
	StatusFrozen    MemberStatus = "frozen"
	StatusCancelled MemberStatus = "cancelled"
	StatusLead      MemberStatus = "lead"
)

// Role — роль участника. Роли команды не проходят проверки абонемента и бронирования.
type Role string

const (
	RoleMember Role = "member"
	RoleCoach  Role = "coach"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

// IsTeam сообщает, относится ли роль к команде клуба.
func (r Role) IsTeam() bool {
	switch r {
	case RoleCoach, RoleStaff, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// CanIssueForOthers сообщает, может ли роль выпускать токены для других участников.
func (r Role) CanIssueForOthers() bool {
	switch r {
	case RoleStaff, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// Member представляет участника клуба. Запись принадлежит CRM,
// сервис доступа только читает её и обновляет LastCheckinAt.
type Member struct {
	ID                string       // UUID участника
	AuthUserID        *string      // Связь с пользователем авторизации
	FirstName         string       // Имя
	LastName          string       // Фамилия
	Status            MemberStatus // Статус участника
	Role              Role         // Роль
	DoorAccessEnabled bool         // Разрешён ли доступ через дверь
	LastCheckinAt     *time.Time   // Время последнего прохода
}

// DisplayName возвращает имя для отображения на сканере и в приложении.
func (m *Member) DisplayName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// Subscription описывает абонемент участника. EndDate == nil означает бессрочный абонемент.
type Subscription struct {
	ID        string
	MemberID  string
	Status    string
	StartDate time.Time
	EndDate   *time.Time
}

// Reservation описывает бронь участника на занятие, объединённую с расписанием.
// StartTime хранится строкой "HH:MM[:SS]" и может отсутствовать.
type Reservation struct {
	ID        string
	MemberID  string
	Status    string
	ClassDate time.Time
	StartTime *string
}
