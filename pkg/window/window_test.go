package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayout_Columns(t *testing.T) {
	l := DefaultLayout()

	tests := []struct {
		width int
		want  int
	}{
		{0, 1},
		{639, 1},
		{640, 2},
		{1023, 2},
		{1024, 3},
		{1279, 3},
		{1280, 4},
		{2560, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, l.Columns(tt.width), tt.width)
	}
}

func TestLayout_RangeFromTop(t *testing.T) {
	l := DefaultLayout()
	const (
		count    = 100
		columns  = 4
		viewport = 900
	)

	start, end := l.Range(count, columns, 0, viewport)

	visibleRows := (viewport + DefaultRowHeight - 1) / DefaultRowHeight
	assert.Equal(t, 0, start)
	assert.GreaterOrEqual(t, end, columns*(visibleRows+DefaultOverscan))
	assert.LessOrEqual(t, end, count)
}

func TestLayout_RangeCoversVisibleItems(t *testing.T) {
	const count = 100

	for _, overscan := range []int{0, 1, 2, 5} {
		l := NewLayout(DefaultRowHeight, overscan, nil)

		for _, columns := range []int{1, 2, 3, 4} {
			for scroll := 0; scroll < 30*DefaultRowHeight; scroll += 137 {
				for _, viewport := range []int{1, 300, 424, 1000} {
					start, end := l.Range(count, columns, scroll, viewport)

					firstVisibleRow := scroll / DefaultRowHeight
					lastVisibleRow := (scroll + viewport - 1) / DefaultRowHeight
					firstVisible := firstVisibleRow * columns
					lastVisible := min(count, (lastVisibleRow+1)*columns)

					if firstVisible >= count {
						continue
					}
					assert.LessOrEqual(t, start, firstVisible, "overscan=%d columns=%d scroll=%d viewport=%d", overscan, columns, scroll, viewport)
					assert.GreaterOrEqual(t, end, lastVisible, "overscan=%d columns=%d scroll=%d viewport=%d", overscan, columns, scroll, viewport)
					assert.GreaterOrEqual(t, start, 0)
					assert.LessOrEqual(t, end, count)
				}
			}
		}
	}
}

func TestLayout_RangeIncludesPartiallyVisibleRow(t *testing.T) {
	l := NewLayout(DefaultRowHeight, 0, nil)

	// пиксели 100..524 задевают строки 0 и 1
	start, end := l.Range(100, 4, 100, DefaultRowHeight)
	assert.Equal(t, [2]int{0, 8}, [2]int{start, end})

	start, end = l.Range(100, 4, 0, DefaultRowHeight)
	assert.Equal(t, [2]int{0, 4}, [2]int{start, end})

	start, end = l.Range(100, 4, 100, 0)
	assert.Equal(t, [2]int{0, 0}, [2]int{start, end})
}

func TestLayout_RangeEdgeCases(t *testing.T) {
	l := DefaultLayout()

	start, end := l.Range(0, 4, 0, 1000)
	assert.Equal(t, [2]int{0, 0}, [2]int{start, end})

	start, end = l.Range(10, 4, 1_000_000, 1000)
	assert.Equal(t, [2]int{0, 0}, [2]int{start, end})

	start, end = l.Range(10, 0, -5, 1000)
	assert.Equal(t, 0, start)
	assert.Equal(t, 5, end)

	start, end = l.Range(3, 4, 0, 1000)
	assert.Equal(t, [2]int{0, 3}, [2]int{start, end})
}

func TestLayout_RangeScrolled(t *testing.T) {
	l := DefaultLayout()

	// смещение на 5 пикселей: видны строки 10..13, запас по 2
	start, end := l.Range(100, 4, 10*DefaultRowHeight+5, 3*DefaultRowHeight)
	assert.Equal(t, 8*4, start)
	assert.Equal(t, 16*4, end)
}

func TestNewLayout_Defaults(t *testing.T) {
	l := NewLayout(0, -1, nil)
	assert.Equal(t, DefaultRowHeight, l.RowHeight)
	assert.Equal(t, 0, l.Overscan)
	assert.Equal(t, DefaultBreakpoints(), l.Breakpoints)

	unsorted := NewLayout(100, 1, []Breakpoint{{MinWidth: 800, Columns: 3}, {MinWidth: 0, Columns: 1}})
	assert.Equal(t, 3, unsorted.Columns(900))
	assert.Equal(t, 1, unsorted.Columns(799))
}

func TestTracker(t *testing.T) {
	tr := NewTracker(DefaultLayout())

	w := tr.Resize(1300, 900)
	assert.Equal(t, 4, w.Columns)
	assert.Equal(t, 0, w.End)

	w = tr.SetCount(100)
	assert.Equal(t, 0, w.Start)
	assert.Equal(t, 25*DefaultRowHeight, w.TotalHeight)

	w = tr.Scroll(10 * DefaultRowHeight)
	assert.Equal(t, 32, w.Start)

	tr.SetCount(100)
	assert.Equal(t, 10*DefaultRowHeight, tr.ScrollOffset())

	w = tr.SetCount(40)
	assert.Equal(t, 0, tr.ScrollOffset())
	assert.Equal(t, 0, w.Start)

	w = tr.Resize(700, 900)
	assert.Equal(t, 2, w.Columns)
	assert.Equal(t, w, tr.Window())
}
