package kafka

import (
	"encoding/json"
	"log"
	"time"

	"github.com/IBM/sarama"

	"github.com/Wirelextechs/datagod/model"
)

const orderPaidTopic = "order.paid"

// Producer publishes order lifecycle events for the fulfilment pipeline.
// A nil *Producer is a valid no-op; publish failures are logged, never
// returned, because fulfilment must not be able to fail a payment.
type Producer struct {
	sp sarama.SyncProducer
}

// NewProducer returns nil (and logs) when broker is empty or Kafka cannot
// be reached after a few attempts.
func NewProducer(broker string) *Producer {
	if broker == "" {
		return nil
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	var sp sarama.SyncProducer
	var err error
	for i := 1; i <= 5; i++ {
		sp, err = sarama.NewSyncProducer([]string{broker}, config)
		if err == nil {
			log.Printf("Kafka producer connected to %s", broker)
			return &Producer{sp: sp}
		}
		log.Printf("Failed to connect to Kafka (try %d/5): %v", i, err)
		time.Sleep(3 * time.Second)
	}

	log.Printf("Kafka unavailable, running without paid events: %v", err)
	return nil
}

// OrderPaid publishes an order.paid event keyed by short id.
func (p *Producer) OrderPaid(order model.Order, paidMinor int64) {
	if p == nil {
		return
	}

	event := map[string]any{
		"event_type": "order.paid",
		"data": map[string]any{
			"short_id":          order.ShortID,
			"gateway_reference": order.GatewayReference,
			"customer_phone":    order.CustomerPhone,
			"package_details":   order.PackageDetails,
			"package_gb":        order.PackageGB,
			"amount_paid":       paidMinor,
		},
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal order.paid event: %v", err)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: orderPaidTopic,
		Key:   sarama.StringEncoder(order.ShortID),
		Value: sarama.ByteEncoder(messageBytes),
	}

	if _, _, err := p.sp.SendMessage(msg); err != nil {
		log.Printf("Failed to send order.paid event for %s: %v", order.ShortID, err)
	}
}
