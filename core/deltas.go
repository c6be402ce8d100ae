package core

import (
	"sort"

	"github.com/huangsam/gitlake/core/algo"
	"github.com/huangsam/gitlake/schema"
)

// sequencedDelta remembers where the newer commit sat in the source log.
type sequencedDelta struct {
	delta schema.Delta
	pos   int
}

// ComputeDeltas returns the gap between consecutive commits of each author.
//
// Commits are partitioned by author email and stably sorted by commit time, so
// commits sharing a timestamp keep their source-log order. The result is
// ordered by timestamp, ties broken by the source position of the newer commit.
func ComputeDeltas(commits []schema.CommitRecord) []schema.Delta {
	type positioned struct {
		rec schema.CommitRecord
		pos int
	}

	// 1. Partition by author, remembering first-seen order for determinism
	byAuthor := make(map[string][]positioned)
	var authors []string
	for i, c := range commits {
		if _, seen := byAuthor[c.AuthorEmail]; !seen {
			authors = append(authors, c.AuthorEmail)
		}
		byAuthor[c.AuthorEmail] = append(byAuthor[c.AuthorEmail], positioned{rec: c, pos: i})
	}

	// 2. Walk consecutive pairs per author
	var sequenced []sequencedDelta
	for _, author := range authors {
		group := byAuthor[author]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].rec.CommittedAt < group[j].rec.CommittedAt
		})
		for k := 1; k < len(group); k++ {
			prev, curr := group[k-1].rec, group[k].rec
			sequenced = append(sequenced, sequencedDelta{
				delta: schema.Delta{
					CommittedAt:  curr.CommittedAt,
					CycleMinutes: algo.RoundTo(float64(curr.CommittedAt-prev.CommittedAt)/60.0, 2),
					CommitID:     curr.ID,
				},
				pos: group[k].pos,
			})
		}
	}

	// 3. Order the combined stream by time, then by source position
	sort.SliceStable(sequenced, func(i, j int) bool {
		if sequenced[i].delta.CommittedAt != sequenced[j].delta.CommittedAt {
			return sequenced[i].delta.CommittedAt < sequenced[j].delta.CommittedAt
		}
		return sequenced[i].pos < sequenced[j].pos
	})

	deltas := make([]schema.Delta, len(sequenced))
	for i, s := range sequenced {
		deltas[i] = s.delta
	}
	return deltas
}
