package collector

import (
	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/ytcomments/internal/types"
)

// Dedup drops rows whose comment_id was already seen, keeping the first
// occurrence and the original order.
func Dedup(rows []types.Record) []types.Record {
	seen := orderedmap.NewOrderedMap[string, types.Record]()
	for _, r := range rows {
		if _, ok := seen.Get(r.CommentID); ok {
			continue
		}
		seen.Set(r.CommentID, r)
	}
	return values(seen)
}

func values(m *orderedmap.OrderedMap[string, types.Record]) []types.Record {
	out := make([]types.Record, 0, m.Len())
	for el := m.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}
