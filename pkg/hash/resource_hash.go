package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// bookkeeping columns that change on every refresh without the resource changing
var metadataFields = []string{
	"id",
	"create_time",
	"update_time",
	"resource_hash",
	"last_sync_time",
	"creator",
	"modifier",
}

// CalculateResourceHash hashes the JSON form of obj without its bookkeeping fields.
// encoding/json writes map keys sorted, so equal content always gives the same hash.
func CalculateResourceHash(obj interface{}, exclude ...string) (string, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return "", err
	}
	for _, f := range metadataFields {
		delete(fields, f)
	}
	for _, f := range exclude {
		delete(fields, f)
	}

	canonical, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
