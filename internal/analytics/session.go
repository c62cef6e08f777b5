package analytics

import "github.com/oklog/ulid/v2"

// SessionContext даёт контекст события, которым владеет остальное приложение.
type SessionContext interface {
	// SubjectID возвращает текущую точку интереса или "".
	SubjectID() string
	Language() string
}

// newSessionID возвращает идентификатор с префиксом времени и случайной частью.
func newSessionID() string {
	return ulid.Make().String()
}
