package cache

import (
	"encoding/json"

	"github.com/shevchenkoxx/lore-mcp/internal/store"
)

func marshalConflict(info store.ConflictInfo) ([]byte, error) {
	return json.Marshal(info)
}

func unmarshalConflict(b []byte) (store.ConflictInfo, error) {
	var info store.ConflictInfo
	err := json.Unmarshal(b, &info)
	return info, err
}
