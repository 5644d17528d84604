package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linekeeper/linekeeper/internal/cipherx"
	"github.com/linekeeper/linekeeper/internal/common"
	"github.com/linekeeper/linekeeper/internal/enclave"
	"github.com/linekeeper/linekeeper/internal/logging"
	"github.com/linekeeper/linekeeper/internal/server/events"
	"github.com/linekeeper/linekeeper/internal/server/repositories/repomanager"
)

func newTestService(t *testing.T) (*LineService, *enclave.Local, *events.ChannelEmitter) {
	t.Helper()

	engine := enclave.NewLocal()
	emitter := events.NewChannelEmitter(64)
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc := NewLineService(repomanager.NewInMemoryRepositoryManager(), engine, emitter, logger)
	return svc, engine, emitter
}

func drainEvents(e *events.ChannelEmitter) []events.Event {
	var out []events.Event
	for {
		select {
		case ev := <-e.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestCreateLine_SequentialIDs(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		id, err := svc.CreateLine(ctx, fmt.Sprintf("line-%d", want), "alice")
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	n, err := svc.LineCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestCreateLine_EmptyName(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateLine(context.Background(), "   ", "alice")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	n, err := svc.LineCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateLine_CreatorIsMemberWithGrant(t *testing.T) {
	svc, engine, emitter := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateLine(ctx, "ops", "alice")
	require.NoError(t, err)

	member, err := svc.IsMember(ctx, id, "alice")
	require.NoError(t, err)
	assert.True(t, member)

	info, err := svc.GetLine(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.MemberCount)
	assert.Equal(t, int64(0), info.MessageCount)

	handle, err := svc.SecretHandle(ctx, id, "alice")
	require.NoError(t, err)

	secret, err := engine.Decrypt(ctx, handle, "alice")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, secret, enclave.SecretMin)
	assert.LessOrEqual(t, secret, enclave.SecretMax)

	evs := drainEvents(emitter)
	require.Len(t, evs, 1)
	assert.Equal(t, "line.created", evs[0].EventType())
}

func TestJoinLine(t *testing.T) {
	svc, engine, emitter := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateLine(ctx, "ops", "alice")
	require.NoError(t, err)
	drainEvents(emitter)

	require.NoError(t, svc.JoinLine(ctx, id, "bob"))

	member, err := svc.IsMember(ctx, id, "bob")
	require.NoError(t, err)
	assert.True(t, member)

	info, err := svc.GetLine(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.MemberCount)

	// Both members decrypt the same shared secret.
	handle, err := svc.SecretHandle(ctx, id, "bob")
	require.NoError(t, err)
	sa, err := engine.Decrypt(ctx, handle, "alice")
	require.NoError(t, err)
	sb, err := engine.Decrypt(ctx, handle, "bob")
	require.NoError(t, err)
	assert.Equal(t, sa, sb)

	evs := drainEvents(emitter)
	require.Len(t, evs, 1)
	joined, ok := evs[0].(events.LineJoined)
	require.True(t, ok)
	assert.Equal(t, "bob", joined.Identity)
}

func TestJoinLine_UnknownLine(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.JoinLine(context.Background(), 42, "bob")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestJoinLine_Twice(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateLine(ctx, "ops", "alice")
	require.NoError(t, err)

	require.NoError(t, svc.JoinLine(ctx, id, "bob"))
	assert.ErrorIs(t, svc.JoinLine(ctx, id, "bob"), common.ErrAlreadyMember)

	info, err := svc.GetLine(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.MemberCount)
}

func TestJoinLine_CreatorRejoin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateLine(ctx, "ops", "alice")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.JoinLine(ctx, id, "alice"), common.ErrAlreadyMember)
}

func TestJoinLine_Concurrent_ExactlyOneWins(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateLine(ctx, "ops", "alice")
	require.NoError(t, err)

	const workers = 16
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.JoinLine(ctx, id, "bob")
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, common.ErrAlreadyMember)
		}
	}
	assert.Equal(t, 1, succeeded)

	info, err := svc.GetLine(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.MemberCount)
}

func TestPostMessage_SequencesFromZero(t *testing.T) {
	svc, _, emitter := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateLine(ctx, "ops", "alice")
	require.NoError(t, err)
	drainEvents(emitter)

	for want := int64(0); want < 3; want++ {
		seq, err := svc.PostMessage(ctx, id, "alice", []byte{0x01, byte(want)})
		require.NoError(t, err)
		assert.Equal(t, want, seq)
	}

	n, err := svc.MessageCount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	evs := drainEvents(emitter)
	require.Len(t, evs, 3)
	for i, ev := range evs {
		sent, ok := ev.(events.MessageSent)
		require.True(t, ok)
		assert.Equal(t, int64(i), sent.MessageID)
	}
}

func TestPostMessage_NonMemberForbidden(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateLine(ctx, "ops", "alice")
	require.NoError(t, err)

	_, err = svc.PostMessage(ctx, id, "mallory", []byte{0xde, 0xad})
	assert.ErrorIs(t, err, common.ErrForbidden)

	n, err := svc.MessageCount(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPostMessage_UnknownLine(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.PostMessage(context.Background(), 99, "alice", []byte{0x01})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPostMessage_EmptyCiphertext(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateLine(ctx, "ops", "alice")
	require.NoError(t, err)

	_, err = svc.PostMessage(ctx, id, "alice", nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestGetMessage_RoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateLine(ctx, "ops", "alice")
	require.NoError(t, err)

	ct := []byte{0x10, 0x20, 0x30}
	seq, err := svc.PostMessage(ctx, id, "alice", ct)
	require.NoError(t, err)

	m, err := svc.GetMessage(ctx, id, seq)
	require.NoError(t, err)
	assert.Equal(t, ct, m.Ciphertext)
	assert.Equal(t, "alice", m.Sender)

	_, err = svc.GetMessage(ctx, id, seq+1)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestIsMember_UnknownLine(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.IsMember(context.Background(), 5, "alice")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSecretHandle_NonMemberForbidden(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateLine(ctx, "ops", "alice")
	require.NoError(t, err)

	_, err = svc.SecretHandle(ctx, id, "mallory")
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestGetLine_UnknownLine(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetLine(context.Background(), 1)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestLinesAreIsolated(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.CreateLine(ctx, "ward-a", "alice")
	require.NoError(t, err)
	b, err := svc.CreateLine(ctx, "ward-b", "bob")
	require.NoError(t, err)

	_, err = svc.PostMessage(ctx, a, "alice", []byte{0x01})
	require.NoError(t, err)

	// Membership and messages of one line do not leak into another.
	member, err := svc.IsMember(ctx, b, "alice")
	require.NoError(t, err)
	assert.False(t, member)

	n, err := svc.MessageCount(ctx, b)
	require.NoError(t, err)
	assert.Zero(t, n)

	// Each line has its own secret.
	ha, err := svc.SecretHandle(ctx, a, "alice")
	require.NoError(t, err)
	hb, err := svc.SecretHandle(ctx, b, "bob")
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}

// The night-shift scenario: a charge nurse opens a handover line, a
// colleague joins, both exchange encrypted notes and each side decrypts
// the other's traffic with the shared secret.
func TestNightShiftHandover(t *testing.T) {
	svc, engine, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateLine(ctx, "night-shift", "elena")
	require.NoError(t, err)

	require.NoError(t, svc.JoinLine(ctx, id, "marcus"))

	handle, err := svc.SecretHandle(ctx, id, "elena")
	require.NoError(t, err)
	secret, err := engine.Decrypt(ctx, handle, "elena")
	require.NoError(t, err)

	note := []byte("bed 4: check vitals at 02:00")
	seq, err := svc.PostMessage(ctx, id, "elena", cipherx.Encrypt(secret, note))
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	// Marcus resolves the same secret through his own grant and reads.
	mh, err := svc.SecretHandle(ctx, id, "marcus")
	require.NoError(t, err)
	msecret, err := engine.Decrypt(ctx, mh, "marcus")
	require.NoError(t, err)
	require.Equal(t, secret, msecret)

	stored, err := svc.GetMessage(ctx, id, seq)
	require.NoError(t, err)
	assert.NotEqual(t, note, stored.Ciphertext)
	assert.Equal(t, note, cipherx.Decrypt(msecret, stored.Ciphertext))

	reply := []byte("ack, taking over at 23:00")
	seq2, err := svc.PostMessage(ctx, id, "marcus", cipherx.Encrypt(msecret, reply))
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq2)

	stored2, err := svc.GetMessage(ctx, id, seq2)
	require.NoError(t, err)
	assert.Equal(t, reply, cipherx.Decrypt(secret, stored2.Ciphertext))

	info, err := svc.GetLine(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.MemberCount)
	assert.Equal(t, int64(2), info.MessageCount)
}

func TestDeterministicClock(t *testing.T) {
	svc, _, _ := newTestService(t)
	fixed := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	id, err := svc.CreateLine(ctx, "ops", "alice")
	require.NoError(t, err)

	info, err := svc.GetLine(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, fixed, info.CreatedAt)

	seq, err := svc.PostMessage(ctx, id, "alice", []byte{0x01})
	require.NoError(t, err)
	m, err := svc.GetMessage(ctx, id, seq)
	require.NoError(t, err)
	assert.Equal(t, fixed, m.SentAt)
}

func TestEngineErrorsSurface(t *testing.T) {
	engine := enclave.NewLocal()

	// Decrypt without a grant is forbidden even with a valid handle.
	ctx := context.Background()
	handle, err := engine.GenerateSecret(ctx, enclave.SecretMin, enclave.SecretMax)
	require.NoError(t, err)
	_, err = engine.Decrypt(ctx, handle, "stranger")
	assert.True(t, errors.Is(err, common.ErrForbidden))
}
