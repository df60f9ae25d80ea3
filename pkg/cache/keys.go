package cache

// Keyer derives cache keys for the artifact kinds the tool produces. Keys
// are stable across runs and processes so a warm cache survives restarts.
type Keyer interface {
	// PlotKey identifies a complete plot set for one board content hash
	// and the option fields that change plot output.
	PlotKey(boardHash string, opts PlotKeyOpts) string

	// StackupKey identifies one rendered stackup diagram.
	StackupKey(opts StackupKeyOpts) string
}

// PlotKeyOpts are the option fields that affect plot-set bytes. Anything
// not listed here must not change output, or stale hits follow.
type PlotKeyOpts struct {
	Format    string
	Layers    []string
	Protel    bool
	X1Compat  bool
	AuxOrigin bool
	JobFile   bool
}

// StackupKeyOpts identify one stackup rendering.
type StackupKeyOpts struct {
	CopperCount int
	Format      string
	Detailed    bool
}

// DefaultKeyer hashes the identifying fields into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// PlotKey generates a key for a plot set.
func (k *DefaultKeyer) PlotKey(boardHash string, opts PlotKeyOpts) string {
	return hashKey("plot", boardHash, opts)
}

// StackupKey generates a key for a stackup rendering.
func (k *DefaultKeyer) StackupKey(opts StackupKeyOpts) string {
	return hashKey("stackup", opts)
}
