// SPDX-License-Identifier: Apache-2.0

package store

import (
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/krasnovkir/go-sync-cache/models"
)

// Serialization adapters between the in-memory tree types and the JSON
// shapes persisted in row values. The wire shapes are part of the on-disk
// contract and must not drift:
//
//	server-cache row   canonical JSON export of the node value
//	pending write      {"p": "<path>", "s": <value>}  overwrite
//	                   {"p": "<path>", "m": {"<child>": <value>, ...}}  merge
//	tracked query      {"id": ..., "path": ..., "active": ..., "lastUse": ...}

// wirePendingWrite is the persisted shape of a pending user write. Exactly
// one of Set and Merge is present.
type wirePendingWrite struct {
	Path  string          `json:"p"`
	Set   json.RawMessage `json:"s,omitempty"`
	Merge map[string]any  `json:"m,omitempty"`
}

// marshalTreeValue serializes a tree value in its canonical export form:
// unfiltered, unordered JSON.
func marshalTreeValue(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodingValue, err)
	}
	return data, nil
}

// unmarshalTreeValue restores a tree value from its canonical export form.
func unmarshalTreeValue(data []byte) (any, error) {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodingRow, err)
	}
	return value, nil
}

// marshalOperation serializes a tree operation into its pending-write row
// shape.
func marshalOperation(op models.Operation) ([]byte, error) {
	wire := wirePendingWrite{Path: op.Path.String()}
	switch op.Type {
	case models.OperationOverwrite:
		set, err := json.Marshal(op.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncodingValue, err)
		}
		wire.Set = set
	case models.OperationMerge:
		wire.Merge = op.Children
		if wire.Merge == nil {
			wire.Merge = map[string]any{}
		}
	}

	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodingValue, err)
	}
	return data, nil
}

// unmarshalOperation restores a tree operation from a pending-write row.
// A row with an "m" field is a merge; anything else is an overwrite.
func unmarshalOperation(data []byte) (models.Operation, error) {
	var wire wirePendingWrite
	if err := json.Unmarshal(data, &wire); err != nil {
		return models.Operation{}, fmt.Errorf("%w: %w", ErrDecodingRow, err)
	}

	path := models.NewPath(wire.Path)
	if wire.Merge != nil {
		return models.NewMerge(path, wire.Merge), nil
	}

	var value any
	if len(wire.Set) > 0 {
		if err := json.Unmarshal(wire.Set, &value); err != nil {
			return models.Operation{}, fmt.Errorf("%w: %w", ErrDecodingRow, err)
		}
	}
	return models.NewOverwrite(path, value), nil
}

// marshalTrackedQuery serializes a tracked-query record.
func marshalTrackedQuery(query models.TrackedQuery) ([]byte, error) {
	data, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodingValue, err)
	}
	return data, nil
}

// unmarshalTrackedQuery restores a tracked-query record.
func unmarshalTrackedQuery(data []byte) (models.TrackedQuery, error) {
	var query models.TrackedQuery
	if err := json.Unmarshal(data, &query); err != nil {
		return models.TrackedQuery{}, fmt.Errorf("%w: %w", ErrDecodingRow, err)
	}
	return query, nil
}

// valueFingerprint hashes a serialized tree value for cheap equality checks
// in the flush diff. Fingerprints never leave memory.
func valueFingerprint(serialized []byte) [32]byte {
	return blake2b.Sum256(serialized)
}
