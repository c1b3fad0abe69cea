// Package fetch implements the cache and dedup engine, the per-provider
// rate governor, the concurrent batch dispatcher, and the query service
// that ties them to the provider registry.
package fetch

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/GamblerIX/duanju/internal/provider"
)

// Fingerprint derives the cache identity of one upstream fetch from the
// provider id, the operation, and the normalized request parameters.
// Parameter order does not matter. Results fetched through different
// providers never share an entry.
func Fingerprint(providerID string, op provider.Operation, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := fnv.New64a()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%s;", k, params[k])
	}

	return fmt.Sprintf("%s:%s:%016x", providerID, op, h.Sum64())
}
