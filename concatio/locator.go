package concatio

import "sort"

// locator maps logical positions to segments. ends[i] is the logical
// offset one past segment i, so ends is non-decreasing and its last
// element is the view's size.
type locator struct {
	ends []int64
}

func newLocator(sizes []int64) locator {
	ends := make([]int64, len(sizes))
	var end int64
	for i, n := range sizes {
		end += n
		ends[i] = end
	}
	return locator{ends}
}

func (l *locator) total() int64 {
	if len(l.ends) == 0 {
		return 0
	}
	return l.ends[len(l.ends)-1]
}

func (l *locator) start(i int) int64 {
	if i == 0 {
		return 0
	}
	return l.ends[i-1]
}

func (l *locator) size(i int) int64 {
	return l.ends[i] - l.start(i)
}

// locate returns the segment owning pos and the offset of pos within
// it, or (-1, 0) if pos is at or past the end. Empty segments never own
// a position.
func (l *locator) locate(pos int64) (int, int64) {
	if pos < 0 {
		return -1, 0
	}
	i := sort.Search(len(l.ends), func(i int) bool { return l.ends[i] > pos })
	if i == len(l.ends) {
		return -1, 0
	}
	return i, pos - l.start(i)
}

// resize sets the size of segment i, shifting the segments after it.
func (l *locator) resize(i int, size int64) {
	delta := size - l.size(i)
	for j := i; j < len(l.ends); j++ {
		l.ends[j] += delta
	}
}

// sizes returns the current segment sizes.
func (l *locator) sizes() []int64 {
	s := make([]int64, len(l.ends))
	for i := range s {
		s[i] = l.size(i)
	}
	return s
}
