package scanner

// Progress receives progress updates from long-running stages.
// Increment may be called from several goroutines.
type Progress interface {
	// Start announces a stage and the number of items it will process.
	Start(stage string, total int)

	// Increment marks one item as processed.
	Increment()

	// Done ends the current stage.
	Done()
}

type noopProgress struct{}

func (noopProgress) Start(string, int) {}
func (noopProgress) Increment()        {}
func (noopProgress) Done()             {}
