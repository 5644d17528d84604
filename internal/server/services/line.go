// Package services implements the access-control coordinator. It is the
// only layer allowed to combine the line directory, membership registry,
// secret vault, message ledger and the secret engine; handlers stay thin.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/linekeeper/linekeeper/internal/common"
	"github.com/linekeeper/linekeeper/internal/dbx"
	"github.com/linekeeper/linekeeper/internal/enclave"
	"github.com/linekeeper/linekeeper/internal/logging"
	"github.com/linekeeper/linekeeper/internal/server/events"
	"github.com/linekeeper/linekeeper/internal/server/models"
	"github.com/linekeeper/linekeeper/internal/server/repositories/repomanager"
)

// LineService orchestrates every public operation on lines. Mutations run
// inside one repository-manager transaction each, with all precondition
// checks before the first write.
type LineService struct {
	rm      repomanager.RepositoryManager
	engine  enclave.Engine
	emitter events.Emitter
	logger  logging.Logger
	now     func() time.Time
}

func NewLineService(rm repomanager.RepositoryManager, engine enclave.Engine, emitter events.Emitter, logger logging.Logger) *LineService {
	return &LineService{
		rm:      rm,
		engine:  engine,
		emitter: emitter,
		logger:  logger.With("module", "lines"),
		now:     time.Now,
	}
}

// CreateLine provisions a new line: a fresh shared secret in the engine,
// the line record, the creator's membership and the creator's decrypt
// grant, all in one transaction. Returns the new line id.
func (s *LineService) CreateLine(ctx context.Context, name, creator string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: line name must not be empty", common.ErrInvalidInput)
	}
	if creator == "" {
		return 0, fmt.Errorf("%w: creator must not be empty", common.ErrInvalidInput)
	}

	// The secret is generated before the transaction opens; an orphaned
	// engine entry on rollback is harmless, a committed line without a
	// secret is not.
	handle, err := s.engine.GenerateSecret(ctx, enclave.SecretMin, enclave.SecretMax)
	if err != nil {
		return 0, fmt.Errorf("generating line secret: %w", err)
	}

	now := s.now()
	var lineID int64
	err = s.rm.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		lineID, err = s.rm.Lines(tx).Create(ctx, name, creator, now)
		if err != nil {
			return err
		}
		if err = s.rm.Secrets(tx).Create(ctx, lineID, handle, now); err != nil {
			return err
		}
		if err = s.rm.Members(tx).Add(ctx, lineID, creator, now); err != nil {
			return err
		}
		return s.rm.Secrets(tx).Grant(ctx, lineID, creator, now)
	})
	if err != nil {
		return 0, err
	}

	s.grantDecrypt(ctx, lineID, handle, creator)
	s.emitter.Emit(ctx, events.LineCreated{Base: events.NewBase(now), LineID: lineID, Creator: creator, Name: name})
	s.logger.Info(ctx, "line created", "line_id", lineID, "creator", creator)

	return lineID, nil
}

// JoinLine adds identity to the line's membership and records a decrypt
// grant for the shared secret. Joining an unknown line is ErrNotFound;
// joining twice is ErrAlreadyMember.
func (s *LineService) JoinLine(ctx context.Context, lineID int64, identity string) error {
	if identity == "" {
		return fmt.Errorf("%w: identity must not be empty", common.ErrInvalidInput)
	}

	now := s.now()
	var handle enclave.Handle
	err := s.rm.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		exists, err := s.rm.Lines(tx).Exists(ctx, lineID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("line %d: %w", lineID, common.ErrNotFound)
		}
		if handle, err = s.rm.Secrets(tx).GetHandle(ctx, lineID); err != nil {
			return err
		}
		if err = s.rm.Members(tx).Add(ctx, lineID, identity, now); err != nil {
			return err
		}
		return s.rm.Secrets(tx).Grant(ctx, lineID, identity, now)
	})
	if err != nil {
		return err
	}

	s.grantDecrypt(ctx, lineID, handle, identity)
	s.emitter.Emit(ctx, events.LineJoined{Base: events.NewBase(now), LineID: lineID, Identity: identity})
	s.logger.Info(ctx, "line joined", "line_id", lineID, "identity", identity)

	return nil
}

// PostMessage appends one encrypted entry to the line's ledger on behalf of
// sender and returns the entry's sequence number. Only members may post.
func (s *LineService) PostMessage(ctx context.Context, lineID int64, sender string, ciphertext []byte) (int64, error) {
	if len(ciphertext) == 0 {
		return 0, fmt.Errorf("%w: ciphertext must not be empty", common.ErrInvalidInput)
	}

	now := s.now()
	var seq int64
	err := s.rm.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		exists, err := s.rm.Lines(tx).Exists(ctx, lineID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("line %d: %w", lineID, common.ErrNotFound)
		}
		member, err := s.rm.Members(tx).IsMember(ctx, lineID, sender)
		if err != nil {
			return err
		}
		if !member {
			return fmt.Errorf("%w: %s is not a member of line %d", common.ErrForbidden, sender, lineID)
		}
		if seq, err = s.rm.Lines(tx).NextMessageSeq(ctx, lineID); err != nil {
			return err
		}
		return s.rm.Messages(tx).Append(ctx, &models.Message{
			LineID:     lineID,
			Seq:        seq,
			Sender:     sender,
			Ciphertext: ciphertext,
			SentAt:     now,
		})
	})
	if err != nil {
		return 0, err
	}

	s.emitter.Emit(ctx, events.MessageSent{Base: events.NewBase(now), LineID: lineID, MessageID: seq, Sender: sender})
	s.logger.Info(ctx, "message posted", "line_id", lineID, "message_id", seq, "sender", sender)

	return seq, nil
}

// GetLine returns the line's metadata together with its current member and
// message counts.
func (s *LineService) GetLine(ctx context.Context, lineID int64) (*models.LineInfo, error) {
	db := s.rm.Conn()

	line, err := s.rm.Lines(db).Get(ctx, lineID)
	if err != nil {
		return nil, err
	}
	memberCount, err := s.rm.Members(db).Count(ctx, lineID)
	if err != nil {
		return nil, err
	}
	messageCount, err := s.rm.Messages(db).Count(ctx, lineID)
	if err != nil {
		return nil, err
	}

	return &models.LineInfo{Line: *line, MemberCount: memberCount, MessageCount: messageCount}, nil
}

// LineCount returns the total number of lines ever created.
func (s *LineService) LineCount(ctx context.Context) (int64, error) {
	return s.rm.Lines(s.rm.Conn()).Count(ctx)
}

// IsMember reports whether identity belongs to the line. An unknown line
// is ErrNotFound, not a false answer.
func (s *LineService) IsMember(ctx context.Context, lineID int64, identity string) (bool, error) {
	db := s.rm.Conn()

	exists, err := s.rm.Lines(db).Exists(ctx, lineID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, fmt.Errorf("line %d: %w", lineID, common.ErrNotFound)
	}

	return s.rm.Members(db).IsMember(ctx, lineID, identity)
}

// GetMessage returns the ledger entry at (lineID, seq).
func (s *LineService) GetMessage(ctx context.Context, lineID, seq int64) (*models.Message, error) {
	return s.rm.Messages(s.rm.Conn()).Get(ctx, lineID, seq)
}

// MessageCount returns the number of ledger entries for the line, or
// ErrNotFound for an unknown line.
func (s *LineService) MessageCount(ctx context.Context, lineID int64) (int64, error) {
	db := s.rm.Conn()

	exists, err := s.rm.Lines(db).Exists(ctx, lineID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("line %d: %w", lineID, common.ErrNotFound)
	}

	return s.rm.Messages(db).Count(ctx, lineID)
}

// SecretHandle returns the opaque engine handle of the line's shared
// secret. Only members may ask; resolving the handle to a plaintext secret
// is the engine's business, gated by its own grants.
func (s *LineService) SecretHandle(ctx context.Context, lineID int64, identity string) (enclave.Handle, error) {
	db := s.rm.Conn()

	member, err := s.IsMember(ctx, lineID, identity)
	if err != nil {
		return "", err
	}
	if !member {
		return "", fmt.Errorf("%w: %s is not a member of line %d", common.ErrForbidden, identity, lineID)
	}

	return s.rm.Secrets(db).GetHandle(ctx, lineID)
}

// grantDecrypt mirrors a committed storage grant into the engine. The
// storage row is the source of truth; an engine failure here is logged and
// never fails the operation.
func (s *LineService) grantDecrypt(ctx context.Context, lineID int64, handle enclave.Handle, identity string) {
	if err := s.engine.GrantDecrypt(ctx, handle, identity); err != nil {
		s.logger.Warn(ctx, "engine grant failed", "line_id", lineID, "identity", identity, "error", err)
	}
}
