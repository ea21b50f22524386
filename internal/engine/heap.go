package engine

import "container/heap"

// eventHeap is a min-heap ordered by fire time. It implements heap.Interface;
// callers go through container/heap except for peek.
type eventHeap []*event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool { return h[i].at.Before(h[j].at) }

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x any) {
	ev := x.(*event)
	ev.index = len(*h)
	*h = append(*h, ev)
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return ev
}

func (h eventHeap) peek() *event { return h[0] }

// removeChain drops every pending event belonging to the given chain and
// returns how many were removed. A chain has at most one pending event, but
// scanning the whole heap keeps no extra index and removal is rare.
func (h *eventHeap) removeChain(chain int64) int {
	removed := 0
	for i := 0; i < h.Len(); {
		if (*h)[i].chain == chain {
			heap.Remove(h, i)
			removed++
			continue
		}
		i++
	}
	return removed
}
