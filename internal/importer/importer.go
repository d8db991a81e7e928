// Package importer loads restaurant dumps (JSON array or one JSON object per
// line) into a store.
package importer

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"restaurant_map/internal/models"
	"restaurant_map/internal/store"
)

const DefaultBatchSize = 500

type Result struct {
	Read     int
	Imported int
	Skipped  int
}

type Importer struct {
	store     store.Store
	batchSize int
}

func New(s store.Store, batchSize int) *Importer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Importer{store: s, batchSize: batchSize}
}

// Run streams r into the store. Records that fail to decode or validate are
// skipped and counted; store failures abort the run.
func (im *Importer) Run(ctx context.Context, r io.Reader) (Result, error) {
	var res Result
	br := bufio.NewReader(r)
	isArray, err := startsWithArray(br)
	if err != nil {
		return res, err
	}
	dec := json.NewDecoder(br)
	if isArray {
		if _, err := dec.Token(); err != nil {
			return res, fmt.Errorf("read array start: %w", err)
		}
	}

	batch := make([]models.Restaurant, 0, im.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := im.write(ctx, batch)
		res.Imported += n
		batch = batch[:0]
		return err
	}

	for dec.More() {
		var raw rawRestaurant
		if err := dec.Decode(&raw); err != nil {
			// Only a type mismatch leaves the stream usable.
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &typeErr) {
				return res, fmt.Errorf("record %d: %w", res.Read+1, err)
			}
			res.Read++
			res.Skipped++
			logrus.WithError(err).WithField("record", res.Read).Warn("skipping undecodable record")
			continue
		}
		res.Read++

		rec, err := raw.toModel()
		if err == nil {
			rec.Normalize()
			err = rec.Validate()
		}
		if err != nil {
			res.Skipped++
			logrus.WithError(err).WithFields(logrus.Fields{
				"record": res.Read,
				"name":   raw.Name,
			}).Warn("skipping invalid record")
			continue
		}

		batch = append(batch, rec)
		if len(batch) == im.batchSize {
			if err := flush(); err != nil {
				return res, err
			}
		}
	}
	if err := flush(); err != nil {
		return res, err
	}
	return res, nil
}

func (im *Importer) write(ctx context.Context, batch []models.Restaurant) (int, error) {
	if bulk, ok := im.store.(store.BulkCreator); ok {
		n, err := bulk.CreateMany(ctx, batch)
		logrus.WithFields(logrus.Fields{"batch": len(batch), "inserted": n}).Debug("batch written")
		return n, err
	}
	for i := range batch {
		if err := im.store.Create(ctx, &batch[i]); err != nil {
			return i, err
		}
	}
	return len(batch), nil
}

func startsWithArray(br *bufio.Reader) (bool, error) {
	for {
		b, err := br.Peek(1)
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			br.ReadByte()
		case '[':
			return true, nil
		default:
			return false, nil
		}
	}
}
