package rabbitmq

// ExchangeParking — direct-обменник событий парковки.
const ExchangeParking = "parking"

// Ключи маршрутизации событий.
const (
	RoutingKeyClosed   = "closed"
	RoutingKeyOverstay = "overstay"
)

// QueueConfig описывает очередь и ключ, с которым она привязана к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetParkingQueues возвращает очереди событий парковки.
func GetParkingQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "parking.closed", RoutingKey: RoutingKeyClosed},
		{QueueName: "parking.overstay", RoutingKey: RoutingKeyOverstay},
	}
}
