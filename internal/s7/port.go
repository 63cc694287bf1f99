package s7

// MemoryPort is the access port to a block-addressable PLC memory space.
// Implementations are stateful: Connect must succeed before ReadDB/WriteDB,
// Disconnect is idempotent. A port must not be shared between concurrent
// plan executions; the runner owns it for the duration of one run.
type MemoryPort interface {
	Connect() error
	Disconnect() error

	// ReadDB returns exactly size bytes from the data block at the given
	// byte offset.
	ReadDB(dbNumber, start, size int) ([]byte, error)

	// WriteDB writes len(data) bytes into the data block at the given
	// byte offset.
	WriteDB(dbNumber, start int, data []byte) error
}
