package services

import (
	"strconv"
	"strings"

	"github.com/vsinha/methodtree/pkg/domain/entities"
)

// GenerateBOMIDs assigns dotted position identifiers (1, 1.1, 1.2.1, ...) to a
// pre-order flattened tree. Ids depend only on order and level.
func GenerateBOMIDs[T any](flat []entities.FlatTreeItem[T]) []string {
	ids := make([]string, len(flat))
	var counters []int

	for i, item := range flat {
		level := levelOf(item)
		for len(counters) <= level {
			counters = append(counters, 0)
		}

		counters[level]++
		for deeper := level + 1; deeper < len(counters); deeper++ {
			counters[deeper] = 0
		}

		ids[i] = joinCounters(counters[:level+1])
	}

	return ids
}

func joinCounters(counters []int) string {
	var b strings.Builder
	for i, c := range counters {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(c))
	}
	return b.String()
}
