// Package window вычисляет диапазон элементов сетки, которые нужно отрисовать
// при прокрутке длинного списка. Рендерятся только видимые строки и запас сверху и снизу.
package window

import "sort"

const (
	// DefaultRowHeight складывается из высоты карточки 400 и отступа 24.
	DefaultRowHeight = 424
	// DefaultOverscan задаёт число строк, которые дорисовываются за пределами видимой области.
	DefaultOverscan = 2
)

// Breakpoint задаёт число колонок начиная с минимальной ширины области просмотра.
type Breakpoint struct {
	MinWidth int
	Columns  int
}

// Layout описывает сетку.
type Layout struct {
	RowHeight   int
	Overscan    int
	Breakpoints []Breakpoint
}

// DefaultBreakpoints: 1 колонка, 2 от 640, 3 от 1024, 4 от 1280.
func DefaultBreakpoints() []Breakpoint {
	return []Breakpoint{
		{MinWidth: 0, Columns: 1},
		{MinWidth: 640, Columns: 2},
		{MinWidth: 1024, Columns: 3},
		{MinWidth: 1280, Columns: 4},
	}
}

func DefaultLayout() Layout {
	return NewLayout(DefaultRowHeight, DefaultOverscan, DefaultBreakpoints())
}

// NewLayout создаёт сетку. Некорректные значения заменяются значениями по умолчанию.
func NewLayout(rowHeight int, overscan int, breakpoints []Breakpoint) Layout {
	if rowHeight <= 0 {
		rowHeight = DefaultRowHeight
	}
	if overscan < 0 {
		overscan = 0
	}
	if len(breakpoints) == 0 {
		breakpoints = DefaultBreakpoints()
	}

	sorted := make([]Breakpoint, len(breakpoints))
	copy(sorted, breakpoints)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinWidth < sorted[j].MinWidth })

	return Layout{
		RowHeight:   rowHeight,
		Overscan:    overscan,
		Breakpoints: sorted,
	}
}

// Columns возвращает число колонок для ширины области просмотра, минимум 1.
func (l Layout) Columns(viewportWidth int) int {
	columns := 1
	for _, bp := range l.Breakpoints {
		if viewportWidth >= bp.MinWidth && bp.Columns > 0 {
			columns = bp.Columns
		}
	}

	return columns
}

// Range возвращает полуоткрытый диапазон индексов [start, end) для отрисовки.
// Диапазон всегда включает все видимые элементы.
func (l Layout) Range(count int, columns int, scrollOffset int, viewportHeight int) (int, int) {
	if count <= 0 {
		return 0, 0
	}
	if columns < 1 {
		columns = 1
	}
	if scrollOffset < 0 {
		scrollOffset = 0
	}
	if viewportHeight < 0 {
		viewportHeight = 0
	}

	rowHeight := l.RowHeight
	if rowHeight <= 0 {
		rowHeight = DefaultRowHeight
	}

	totalRows := (count + columns - 1) / columns
	startRow := scrollOffset / rowHeight
	// endRow: строка после последней хотя бы частично видимой
	endRow := startRow
	if viewportHeight > 0 {
		endRow = (scrollOffset+viewportHeight-1)/rowHeight + 1
	}

	first := max(0, startRow-l.Overscan)
	last := min(totalRows, endRow+l.Overscan)
	if first >= last {
		return 0, 0
	}

	return first * columns, min(count, last*columns)
}

// TotalHeight возвращает полную высоту сетки в пикселях.
func (l Layout) TotalHeight(count int, columns int) int {
	if count <= 0 {
		return 0
	}
	if columns < 1 {
		columns = 1
	}

	return ((count + columns - 1) / columns) * l.RowHeight
}

// Window — результат расчёта: диапазон элементов и параметры сетки.
type Window struct {
	Start       int `json:"start"`
	End         int `json:"end"`
	Columns     int `json:"columns"`
	TotalHeight int `json:"totalHeight"`
}

// Tracker хранит последние входные данные и пересчитывает окно при их изменении.
// Смена числа элементов сбрасывает прокрутку в 0.
type Tracker struct {
	layout Layout

	count          int
	columns        int
	scrollOffset   int
	viewportHeight int
	window         Window
}

func NewTracker(layout Layout) *Tracker {
	return &Tracker{layout: layout, columns: 1}
}

// Resize обновляет размеры области просмотра.
func (t *Tracker) Resize(viewportWidth int, viewportHeight int) Window {
	t.columns = t.layout.Columns(viewportWidth)
	t.viewportHeight = viewportHeight
	return t.recompute()
}

// SetCount обновляет число элементов. При изменении прокрутка сбрасывается.
func (t *Tracker) SetCount(count int) Window {
	if count != t.count {
		t.count = count
		t.scrollOffset = 0
	}
	return t.recompute()
}

// Scroll обновляет смещение прокрутки.
func (t *Tracker) Scroll(offset int) Window {
	t.scrollOffset = max(0, offset)
	return t.recompute()
}

func (t *Tracker) ScrollOffset() int {
	return t.scrollOffset
}

func (t *Tracker) Window() Window {
	return t.window
}

func (t *Tracker) recompute() Window {
	start, end := t.layout.Range(t.count, t.columns, t.scrollOffset, t.viewportHeight)
	t.window = Window{
		Start:       start,
		End:         end,
		Columns:     t.columns,
		TotalHeight: t.layout.TotalHeight(t.count, t.columns),
	}

	return t.window
}
