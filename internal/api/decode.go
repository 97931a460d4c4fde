package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Veraticus/spendsync/internal/model"
)

// decodeSnapshot accepts the /api/data payload. The server answers `{}` until
// it has stored anything, which is an empty snapshot.
func decodeSnapshot(body []byte) (model.Snapshot, error) {
	snap := model.Snapshot{}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &snap); err != nil {
			return model.Snapshot{}, fmt.Errorf("malformed snapshot: %w", err)
		}
	}
	if snap.Accounts == nil {
		snap.Accounts = []model.Account{}
	}
	if snap.Transactions == nil {
		snap.Transactions = []model.Transaction{}
	}
	return snap, nil
}

// decodeEntity reads an entity that is either wrapped as
// {"status": ..., "<key>": {...}} or sent bare. It reports whether one was found.
func decodeEntity(body []byte, key string, dst any) bool {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return false
	}
	if raw, ok := envelope[key]; ok {
		return json.Unmarshal(raw, dst) == nil
	}
	if _, ok := envelope["id"]; ok {
		return json.Unmarshal(body, dst) == nil
	}
	return false
}
