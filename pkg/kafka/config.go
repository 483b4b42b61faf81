package kafka

// Config holds Kafka connection parameters. The servicing engine only ever
// produces; consumer-side settings live with the consumers.
type Config struct {
	Brokers []string
}
