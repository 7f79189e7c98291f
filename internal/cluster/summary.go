package cluster

import (
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/dbsmedya/ytcomments/internal/output"
)

// RepresentativeLimit is the number of characters kept from a cluster's
// representative text.
const RepresentativeLimit = 300

// Summary describes one cluster.
type Summary struct {
	ClusterID      int
	Size           int
	TopLikes       int64
	Representative string
}

// SummaryColumns is the header of the summary CSV.
var SummaryColumns = []string{"cluster_id", "size", "top_likes", "representative"}

// Summarize builds one Summary per cluster id, sorted by size descending
// and then by id. The representative is the member with the most likes,
// ties going to the longest text.
func Summarize(items []Item, ids []int) []Summary {
	byID := make(map[int]*Summary)
	best := make(map[int]Item)
	for i, id := range ids {
		it := items[i]
		s, ok := byID[id]
		if !ok {
			s = &Summary{ClusterID: id}
			byID[id] = s
			best[id] = it
		} else if better(it, best[id]) {
			best[id] = it
		}
		s.Size++
	}

	out := make([]Summary, 0, len(byID))
	for id, s := range byID {
		rep := best[id]
		s.TopLikes = rep.LikeCount
		s.Representative = Truncate(rep.Text, RepresentativeLimit)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Size != out[j].Size {
			return out[i].Size > out[j].Size
		}
		return out[i].ClusterID < out[j].ClusterID
	})
	return out
}

func better(a, b Item) bool {
	if a.LikeCount != b.LikeCount {
		return a.LikeCount > b.LikeCount
	}
	return utf8.RuneCountInString(a.Text) > utf8.RuneCountInString(b.Text)
}

// Truncate keeps the first limit characters of s and appends an ellipsis
// when anything was cut.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "…"
}

// SummaryTable lays summaries out under SummaryColumns.
func SummaryTable(summaries []Summary) *output.Table {
	t := &output.Table{Header: append([]string(nil), SummaryColumns...)}
	for _, s := range summaries {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(s.ClusterID),
			strconv.Itoa(s.Size),
			strconv.FormatInt(s.TopLikes, 10),
			s.Representative,
		})
	}
	return t
}
