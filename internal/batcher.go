package internal

type Batcher struct {
	// each nested batch increases the depth by 1
	// if depth > 0, work is queued until the outermost batch is complete
	depth int
}

func NewBatcher() *Batcher {
	return &Batcher{
		depth: 0,
	}
}

func (b *Batcher) IsBatching() bool {
	return b.depth > 0
}

// Batch runs fn; nested batches run inline and onComplete only fires when the outermost one ends.
func (b *Batcher) Batch(fn, onComplete func()) {
	b.depth++
	defer func() {
		b.depth--
		if b.depth == 0 && onComplete != nil {
			onComplete()
		}
	}()

	fn()
}

// Exclusive runs fn only if no batch is in progress, wrapped by onStart and onComplete.
// onComplete runs even if fn panics. It reports whether fn ran.
func (b *Batcher) Exclusive(fn, onStart, onComplete func()) bool {
	if b.depth > 0 {
		return false
	}

	b.depth++
	defer func() {
		b.depth--
		if onComplete != nil {
			onComplete()
		}
	}()

	if onStart != nil {
		onStart()
	}
	fn()

	return true
}
