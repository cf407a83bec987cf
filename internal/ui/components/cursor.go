package components

// Cursor tracks a selection in a list longer than the rows that fit on
// screen. The window scrolls just enough to keep the selection visible.
type Cursor struct {
	pos    int
	offset int
	count  int
	window int
}

// NewCursor returns a cursor showing window rows at a time.
func NewCursor(window int) *Cursor {
	return &Cursor{window: max(window, 1)}
}

// Reset moves the cursor to the top of a list of count items.
func (c *Cursor) Reset(count int) {
	c.count = max(count, 0)
	c.pos = 0
	c.offset = 0
}

// Next selects the following item, if any.
func (c *Cursor) Next() {
	if c.pos >= c.count-1 {
		return
	}
	c.pos++
	if c.pos >= c.offset+c.window {
		c.offset = c.pos - c.window + 1
	}
}

// Prev selects the preceding item, if any.
func (c *Cursor) Prev() {
	if c.pos == 0 {
		return
	}
	c.pos--
	if c.pos < c.offset {
		c.offset = c.pos
	}
}

// Index is the selected item, or -1 when the list is empty.
func (c *Cursor) Index() int {
	if c.count == 0 {
		return -1
	}
	return c.pos
}

// Window returns the half-open range of visible items.
func (c *Cursor) Window() (start, end int) {
	return c.offset, min(c.offset+c.window, c.count)
}
