package asyncx

import "testing"

func TestPriorityQueue(t *testing.T) {
	t.Run("Overall", func(t *testing.T) {
		var pq priorityqueue[*laneJob]

		for _, r := range "abcdefgh" {
			pq.Push(&laneJob{lane: Lane(r)})
		}

		for _, r := range "abcd" {
			if u := pq.Pop(); u.lane != Lane(r) {
				t.FailNow()
			}
		}

		for _, r := range "ijk" {
			pq.Push(&laneJob{lane: Lane(r)})
		}

		pq.Push(&laneJob{lane: Lane('d')})

		if u := pq.Pop(); u.lane != Lane('d') {
			t.FailNow()
		}

		pq.Push(&laneJob{lane: Lane('g')})
		pq.Push(&laneJob{lane: Lane('f')})

		for _, r := range "effgghijk" {
			if u := pq.Pop(); u.lane != Lane(r) {
				t.FailNow()
			}
		}

		if !pq.Empty() {
			t.FailNow()
		}
	})
	t.Run("FIFO", func(t *testing.T) {
		var pq priorityqueue[*laneJob]

		u := &laneJob{lane: Background, seq: 0}
		v := &laneJob{lane: Background, seq: 1}
		w := &laneJob{lane: Background, seq: 2}

		pq.Push(u)
		pq.Push(v)
		pq.Push(w)

		if pq.Pop() != u || pq.Pop() != v || pq.Pop() != w {
			t.FailNow()
		}
	})
}
