// Package feed разбирает фреймы push-канала в типизированные события изменений.
package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/communitysync/internal/models"
)

var (
	// ErrEmptyFrame фрейм не содержит данных
	ErrEmptyFrame = errors.New("empty frame")

	// ErrMissingCollection во фрейме нет поля collection
	ErrMissingCollection = errors.New("frame has no collection")

	// ErrUnknownOperation поле type содержит неизвестную операцию
	ErrUnknownOperation = errors.New("unknown operation")
)

// DecodeError описывает фрейм, который не удалось превратить в ChangeEvent.
// Ошибка не фатальна: вызывающий код логирует ее и отбрасывает фрейм.
type DecodeError struct {
	Err   error
	Frame string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode frame %q: %v", e.Frame, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// maxFrameInError ограничивает размер фрейма, попадающего в текст ошибки и логи
const maxFrameInError = 256

// frame формат уведомления на проводе: {collection, type, data}.
// Уведомления об удалении могут нести только id на верхнем уровне.
type frame struct {
	Data       json.RawMessage `json:"data"`
	Collection string          `json:"collection"`
	Type       string          `json:"type"`
	ID         json.RawMessage `json:"id"`
}

// Decode разбирает сырой фрейм push-канала.
// Функция чистая: не хранит состояние и не имеет побочных эффектов.
func Decode(raw []byte) (*models.ChangeEvent, error) {
	return DecodeAt(raw, time.Now())
}

// DecodeAt то же, что Decode, но с явным временем получения фрейма
func DecodeAt(raw []byte, receivedAt time.Time) (*models.ChangeEvent, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, newDecodeError(raw, ErrEmptyFrame)
	}

	var f frame
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil, newDecodeError(raw, fmt.Errorf("malformed json: %w", err))
	}

	if f.Collection == "" {
		return nil, newDecodeError(raw, ErrMissingCollection)
	}

	// Сервер в основном присылает только create; отсутствие type трактуем так же
	op := models.OperationCreate
	if f.Type != "" {
		op = models.Operation(f.Type)
	}
	if !op.Valid() {
		return nil, newDecodeError(raw, fmt.Errorf("%w: %s", ErrUnknownOperation, f.Type))
	}

	record, err := decodeRecord(f)
	if err != nil {
		return nil, newDecodeError(raw, err)
	}
	if record != nil {
		record.ReceivedAt = receivedAt
	}

	return &models.ChangeEvent{
		Collection: f.Collection,
		Operation:  op,
		Record:     record,
		ReceivedAt: receivedAt,
	}, nil
}

// decodeRecord извлекает запись из data. Отсутствующий или null data допустим,
// в этом случае запись строится из id верхнего уровня (если он есть).
func decodeRecord(f frame) (*models.Record, error) {
	if len(f.Data) > 0 && !bytes.Equal(f.Data, []byte("null")) {
		var fields map[string]any
		if err := json.Unmarshal(f.Data, &fields); err != nil {
			return nil, fmt.Errorf("data is not an object: %w", err)
		}
		return models.NewRecord(f.Collection, fields), nil
	}

	if len(f.ID) > 0 {
		var id any
		if err := json.Unmarshal(f.ID, &id); err != nil {
			return nil, fmt.Errorf("malformed id: %w", err)
		}
		return models.NewRecord(f.Collection, map[string]any{models.FieldID: id}), nil
	}

	return nil, nil
}

func newDecodeError(raw []byte, err error) *DecodeError {
	s := string(raw)
	if len(s) > maxFrameInError {
		s = s[:maxFrameInError] + "..."
	}
	return &DecodeError{Frame: s, Err: err}
}
