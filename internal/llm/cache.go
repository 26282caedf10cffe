package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/agenthands/stargraph/internal/core/model"
)

// CachedAnswerer stores answers on disk so a resumed or repeated
// evaluation does not ask the model the same question twice. Only pairs
// missing from the cache are forwarded, in their original order.
type CachedAnswerer struct {
	next      Answerer
	db        *badger.DB
	namespace string
	log       *zap.Logger
}

// NewCachedAnswerer opens a badger store at dir. An empty dir keeps the
// cache in memory. namespace separates answers of different models.
func NewCachedAnswerer(next Answerer, dir string, namespace string, log *zap.Logger) (*CachedAnswerer, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedAnswerer{next: next, db: db, namespace: namespace, log: log}, nil
}

func (c *CachedAnswerer) key(req model.QARequest) []byte {
	h := sha256.New()
	h.Write([]byte(c.namespace))
	h.Write([]byte{0})
	h.Write([]byte(req.Context))
	h.Write([]byte{0})
	h.Write([]byte(req.Question))
	return []byte("answer:" + hex.EncodeToString(h.Sum(nil)))
}

func (c *CachedAnswerer) Answer(ctx context.Context, batch []model.QARequest) ([]model.QAResponse, error) {
	responses := make([]model.QAResponse, len(batch))
	var missing []int

	err := c.db.View(func(txn *badger.Txn) error {
		for i, req := range batch {
			item, err := txn.Get(c.key(req))
			if errors.Is(err, badger.ErrKeyNotFound) {
				missing = append(missing, i)
				continue
			}
			if err != nil {
				return err
			}
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &responses[i])
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read answer cache: %w", err)
	}

	c.log.Debug("answer cache lookup",
		zap.Int("batch", len(batch)),
		zap.Int("hits", len(batch)-len(missing)))
	if len(missing) == 0 {
		return responses, nil
	}

	pending := make([]model.QARequest, len(missing))
	for j, i := range missing {
		pending[j] = batch[i]
	}
	fresh, err := c.next.Answer(ctx, pending)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(pending) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBatchSize, len(fresh), len(pending))
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		for j, i := range missing {
			responses[i] = fresh[j]
			val, err := json.Marshal(fresh[j])
			if err != nil {
				return err
			}
			if err := txn.Set(c.key(batch[i]), val); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write answer cache: %w", err)
	}
	return responses, nil
}

func (c *CachedAnswerer) Close() error {
	return c.db.Close()
}
