package memstore

import (
	"context"
	"fmt"
	"time"

	"github.com/linekeeper/linekeeper/internal/common"
	"github.com/linekeeper/linekeeper/internal/enclave"
	"github.com/linekeeper/linekeeper/internal/server/models"
)

// LineRepo implements lines.Repository.
type LineRepo struct {
	s *Store
}

func (r *LineRepo) Create(_ context.Context, name, creator string, createdAt time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id := r.s.nextLineID
	r.s.nextLineID++

	r.s.lines[id] = &models.Line{ID: id, Name: name, Creator: creator, CreatedAt: createdAt}
	r.s.members[id] = make(map[string]time.Time)
	r.s.grants[id] = make(map[string]time.Time)

	return id, nil
}

func (r *LineRepo) Get(_ context.Context, id int64) (*models.Line, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	line, ok := r.s.lines[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	snapshot := *line
	return &snapshot, nil
}

func (r *LineRepo) Exists(_ context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.lines[id]
	return ok, nil
}

func (r *LineRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return int64(len(r.s.lines)), nil
}

func (r *LineRepo) NextMessageSeq(_ context.Context, id int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.lines[id]; !ok {
		return 0, common.ErrNotFound
	}
	seq := r.s.messageSeq[id]
	r.s.messageSeq[id] = seq + 1
	return seq, nil
}

// MemberRepo implements members.Repository.
type MemberRepo struct {
	s *Store
}

func (r *MemberRepo) Add(_ context.Context, lineID int64, identity string, joinedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	set, ok := r.s.members[lineID]
	if !ok {
		return common.ErrNotFound
	}
	if _, present := set[identity]; present {
		return common.ErrAlreadyMember
	}
	set[identity] = joinedAt
	return nil
}

func (r *MemberRepo) IsMember(_ context.Context, lineID int64, identity string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	set, ok := r.s.members[lineID]
	if !ok {
		return false, nil
	}
	_, present := set[identity]
	return present, nil
}

func (r *MemberRepo) Count(_ context.Context, lineID int64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return int64(len(r.s.members[lineID])), nil
}

// SecretRepo implements secrets.Repository.
type SecretRepo struct {
	s *Store
}

func (r *SecretRepo) Create(_ context.Context, lineID int64, handle enclave.Handle, createdAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.secrets[lineID]; ok {
		return common.ErrAlreadyInitialized
	}
	r.s.secrets[lineID] = &models.Secret{LineID: lineID, Handle: handle, CreatedAt: createdAt}
	return nil
}

func (r *SecretRepo) GetHandle(_ context.Context, lineID int64) (enclave.Handle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	secret, ok := r.s.secrets[lineID]
	if !ok {
		return "", common.ErrNotFound
	}
	return secret.Handle, nil
}

func (r *SecretRepo) Grant(_ context.Context, lineID int64, identity string, grantedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	set, ok := r.s.grants[lineID]
	if !ok {
		return fmt.Errorf("line %d: %w", lineID, common.ErrNotFound)
	}
	if _, present := set[identity]; !present {
		set[identity] = grantedAt
	}
	return nil
}

// MessageRepo implements messages.Repository.
type MessageRepo struct {
	s *Store
}

func (r *MessageRepo) Append(_ context.Context, m *models.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.lines[m.LineID]; !ok {
		return common.ErrNotFound
	}
	stored := *m
	r.s.messages[m.LineID] = append(r.s.messages[m.LineID], &stored)
	return nil
}

func (r *MessageRepo) Get(_ context.Context, lineID, seq int64) (*models.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	log := r.s.messages[lineID]
	if seq < 0 || seq >= int64(len(log)) {
		return nil, common.ErrNotFound
	}
	snapshot := *log[seq]
	return &snapshot, nil
}

func (r *MessageRepo) Count(_ context.Context, lineID int64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return int64(len(r.s.messages[lineID])), nil
}
