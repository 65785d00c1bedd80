package ports

// BlockProducer drives the chain height forward on its own schedule. It is
// only wired in simnet mode, where no real chain provides the heights.
type BlockProducer interface {
	Start()
	Stop()
}
