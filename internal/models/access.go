package models

import "time"

// AccessMode — режим доступа клуба для участников без роли команды.
type AccessMode string

const (
	ModeSubscriptionOnly    AccessMode = "subscription_only"
	ModeReservationRequired AccessMode = "reservation_required"
	ModeOpenGym             AccessMode = "open_gym"
)

// Значения по умолчанию для настроек доступа.
const (
	DefaultMinutesBeforeClass = 30
	DefaultGracePeriodMinutes = 10
)

// OpenGymHours — окно свободного посещения для дня недели (0 — воскресенье).
type OpenGymHours struct {
	DayOfWeek int    `json:"day_of_week"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
}

// AccessSettings хранит снимок настроек доступа клуба на момент запроса.
type AccessSettings struct {
	AccessMode         AccessMode     `json:"access_mode"`
	MinutesBeforeClass int            `json:"minutes_before_class"`
	GracePeriodMinutes int            `json:"grace_period_minutes"`
	OpenGymHours       []OpenGymHours `json:"open_gym_hours"`
}

// DefaultAccessSettings возвращает настройки, применяемые при их отсутствии.
func DefaultAccessSettings() AccessSettings {
	return AccessSettings{
		AccessMode:         ModeSubscriptionOnly,
		MinutesBeforeClass: DefaultMinutesBeforeClass,
		GracePeriodMinutes: DefaultGracePeriodMinutes,
		OpenGymHours:       []OpenGymHours{},
	}
}

// Reason — код причины решения о доступе.
type Reason string

// Причины, возвращаемые сканеру.
const (
	ReasonInvalidToken         Reason = "invalid_token"
	ReasonRateLimited          Reason = "rate_limited"
	ReasonTokenExpired         Reason = "token_expired"
	ReasonMemberNotFound       Reason = "member_not_found"
	ReasonAccessDisabled       Reason = "access_disabled"
	ReasonMemberInactive       Reason = "member_inactive"
	ReasonNoActiveSubscription Reason = "no_active_subscription"
	ReasonNoReservation        Reason = "no_reservation"
	ReasonOutsideHours         Reason = "outside_hours"
	ReasonUnknownMode          Reason = "unknown_mode"
	ReasonSystemError          Reason = "system_error"
)

// Причины, которые пишутся только в журнал доступа.
const (
	LogReasonEmptyToken    Reason = "empty_token"
	LogReasonTokenNotFound Reason = "token_not_found"
	LogReasonTokenUsed     Reason = "token_used"
)

// AccessLogEntry описывает запись журнала попыток прохода. Записи только добавляются.
type AccessLogEntry struct {
	ID               int64     `json:"id"`
	MemberID         *string   `json:"member_id,omitempty"`
	TokenFingerprint string    `json:"token_fingerprint"`
	Allowed          bool      `json:"allowed"`
	Reason           *Reason   `json:"reason,omitempty"`
	DoorLocation     string    `json:"door_location"`
	CreatedAt        time.Time `json:"created_at"`
}
