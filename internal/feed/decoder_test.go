package feed

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/communitysync/internal/models"
)

func TestDecode_ValidFrames(t *testing.T) {
	receivedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		raw            string
		wantCollection string
		wantOp         models.Operation
		wantID         string
	}{
		{
			name:           "create post",
			raw:            `{"collection":"posts","type":"create","data":{"id":"p1","content":"hello","createdAt":"2024-06-01T11:00:00Z"}}`,
			wantCollection: models.CollectionPosts,
			wantOp:         models.OperationCreate,
			wantID:         "p1",
		},
		{
			name:           "type defaults to create",
			raw:            `{"collection":"messages","data":{"id":"m1","content":"hi"}}`,
			wantCollection: models.CollectionMessages,
			wantOp:         models.OperationCreate,
			wantID:         "m1",
		},
		{
			name:           "update comment",
			raw:            `{"collection":"comments","type":"update","data":{"id":"c1","postId":"p1"}}`,
			wantCollection: models.CollectionComments,
			wantOp:         models.OperationUpdate,
			wantID:         "c1",
		},
		{
			name:           "delete with top level id",
			raw:            `{"collection":"likes","type":"delete","id":"l1"}`,
			wantCollection: models.CollectionLikes,
			wantOp:         models.OperationDelete,
			wantID:         "l1",
		},
		{
			name:           "unknown collection is still decoded",
			raw:            `{"collection":"polls","type":"create","data":{"id":"x"}}`,
			wantCollection: "polls",
			wantOp:         models.OperationCreate,
			wantID:         "x",
		},
		{
			name:           "surrounding whitespace",
			raw:            "  \n{\"collection\":\"groups\",\"type\":\"create\",\"data\":{\"id\":\"g1\"}}\n",
			wantCollection: models.CollectionGroups,
			wantOp:         models.OperationCreate,
			wantID:         "g1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := DecodeAt([]byte(tt.raw), receivedAt)
			require.NoError(t, err)
			require.NotNil(t, event)

			assert.Equal(t, tt.wantCollection, event.Collection)
			assert.Equal(t, tt.wantOp, event.Operation)
			assert.Equal(t, tt.wantID, event.RecordID())
			assert.Equal(t, receivedAt, event.ReceivedAt)
			assert.Equal(t, receivedAt, event.Record.ReceivedAt)
			assert.Equal(t, tt.wantCollection, event.Record.Collection)
		})
	}
}

func TestDecode_NoRecord(t *testing.T) {
	event, err := Decode([]byte(`{"collection":"posts","type":"create"}`))
	require.NoError(t, err)
	assert.Nil(t, event.Record)
	assert.Equal(t, "", event.RecordID())
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		raw     string
	}{
		{name: "empty", raw: "", wantErr: ErrEmptyFrame},
		{name: "whitespace only", raw: "   ", wantErr: ErrEmptyFrame},
		{name: "not json", raw: "hello", wantErr: nil},
		{name: "json array", raw: `[1,2,3]`, wantErr: nil},
		{name: "null", raw: `null`, wantErr: ErrMissingCollection},
		{name: "missing collection", raw: `{"type":"create","data":{"id":"1"}}`, wantErr: ErrMissingCollection},
		{name: "empty collection", raw: `{"collection":"","data":{}}`, wantErr: ErrMissingCollection},
		{name: "unknown operation", raw: `{"collection":"posts","type":"upsert","data":{}}`, wantErr: ErrUnknownOperation},
		{name: "data not an object", raw: `{"collection":"posts","type":"create","data":[1]}`, wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := Decode([]byte(tt.raw))
			require.Error(t, err)
			assert.Nil(t, event)

			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestDecodeError_TruncatesFrame(t *testing.T) {
	raw := strings.Repeat("x", 1000)
	_, err := Decode([]byte(raw))
	require.Error(t, err)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Len(t, decodeErr.Frame, maxFrameInError+3)
	assert.Contains(t, decodeErr.Error(), "decode frame")
}
