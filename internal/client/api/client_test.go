package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linekeeper/linekeeper/internal/common"
)

func TestIssueToken_InstallsToken(t *testing.T) {
	var gotPath, gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		switch r.URL.Path {
		case "/api/v1/auth/token":
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
		default:
			gotAuth = r.Header.Get("Authorization")
			_ = json.NewEncoder(w).Encode(map[string]int64{"count": 0})
		}
	}))
	defer ts.Close()

	c := NewClient(ts.URL + "/")
	ctx := context.Background()

	tok, err := c.IssueToken(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok)
	assert.Equal(t, "/api/v1/auth/token", gotPath)

	_, err = c.LineCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"bad request", http.StatusBadRequest, common.ErrInvalidInput},
		{"unauthorized", http.StatusUnauthorized, common.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, common.ErrForbidden},
		{"not found", http.StatusNotFound, common.ErrNotFound},
		{"conflict", http.StatusConflict, common.ErrAlreadyMember},
		{"server error", http.StatusInternalServerError, common.ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": tt.name})
			}))
			defer ts.Close()

			c := NewClient(ts.URL)
			err := c.Join(context.Background(), 1)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPostAndMessage_RoundTripBase64(t *testing.T) {
	stored := map[string]string{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			stored["ciphertext"] = req["ciphertext"]
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]int64{"seq": 0})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"seq": 0, "sender": "alice", "ciphertext": stored["ciphertext"],
			})
		}
	}))
	defer ts.Close()

	c := NewClient(ts.URL)
	ctx := context.Background()

	ct := []byte{0x00, 0xff, 0x10}
	seq, err := c.Post(ctx, 1, ct)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	m, err := c.Message(ctx, 1, seq)
	require.NoError(t, err)
	assert.Equal(t, ct, m.Ciphertext)
	assert.Equal(t, "alice", m.Sender)
}

func TestLine(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/lines/7", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"line_id": 7, "name": "ops", "creator": "alice",
			"member_count": 2, "message_count": 5,
		})
	}))
	defer ts.Close()

	c := NewClient(ts.URL)
	line, err := c.Line(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), line.LineID)
	assert.Equal(t, "ops", line.Name)
	assert.Equal(t, int64(2), line.MemberCount)
}
