package models

// ConnectionState состояние логического push-соединения сессии
type ConnectionState int

const (
	StateIdle         ConnectionState = iota // StateIdle соединение еще ни разу не открывалось
	StateConnecting                          // StateConnecting идет установка соединения
	StateOpen                                // StateOpen соединение установлено
	StateReconnecting                        // StateReconnecting соединение потеряно, запланирована повторная попытка
	StateClosed                              // StateClosed соединение закрыто владельцем, терминальное состояние
)

func (s ConnectionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Active возвращает true, если соединение открыто или находится в процессе (пере)подключения
func (s ConnectionState) Active() bool {
	return s == StateConnecting || s == StateOpen || s == StateReconnecting
}
