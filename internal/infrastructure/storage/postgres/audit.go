package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"retailops/internal/core/id"
	"retailops/internal/domain/audit"
)

// CompressionAlgo specifies the compression applied to stored changes.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

const defaultCompressThreshold = 10 * 1024

var _ audit.Sink = (*AuditSink)(nil)

// AuditSink persists audit entries to sys_audit. Changes larger than the
// threshold are stored zstd-compressed.
type AuditSink struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewAuditSink creates an audit sink.
func NewAuditSink(txManager *TxManager) (*AuditSink, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditSink{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: defaultCompressThreshold,
	}, nil
}

type encodedChanges struct {
	plain      []byte
	compressed []byte
	algo       CompressionAlgo
}

func (s *AuditSink) encode(e audit.Entry) (encodedChanges, error) {
	raw, err := json.Marshal(map[string]any{"old": e.OldValue, "new": e.NewValue})
	if err != nil {
		return encodedChanges{}, fmt.Errorf("marshal changes: %w", err)
	}
	if len(raw) <= s.compressThreshold {
		return encodedChanges{plain: raw, algo: CompressionNone}, nil
	}
	return encodedChanges{compressed: s.encoder.EncodeAll(raw, nil), algo: CompressionZstd}, nil
}

func (s *AuditSink) decode(plain, compressed []byte, algo CompressionAlgo) (json.RawMessage, error) {
	if algo != CompressionZstd {
		return plain, nil
	}
	out, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress changes: %w", err)
	}
	return out, nil
}

// Record implements audit.Sink.
func (s *AuditSink) Record(ctx context.Context, e audit.Entry) error {
	changes, err := s.encode(e)
	if err != nil {
		return err
	}
	at := e.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	_, err = s.txManager.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO sys_audit (
			id, action, entity_type, entity_id, store_id, user_id,
			changes, changes_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		id.New(), string(e.Action), e.Entity, e.EntityID, e.StoreID, e.ActorID,
		changes.plain, changes.compressed, changes.algo, at,
	)
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}
