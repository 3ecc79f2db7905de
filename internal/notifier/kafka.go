package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"bashare-server/config"
	"bashare-server/internal/model"

	"github.com/segmentio/kafka-go"
)

// RegistrationEvent публикуется в Kafka после успешной регистрации,
// потребитель отправляет письмо с подтверждением
type RegistrationEvent struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type RegistrationNotifier struct {
	writer *kafka.Writer
}

func NewRegistrationNotifier(cfg *config.KafkaConfig) *RegistrationNotifier {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &RegistrationNotifier{writer: writer}
}

func (n *RegistrationNotifier) NotifyRegistered(ctx context.Context, user *model.User) error {
	event := RegistrationEvent{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: ошибка сериализации события: %w", err)
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(user.ID, 10)),
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("kafka: не удалось отправить событие: %w", err)
	}

	return nil
}

func (n *RegistrationNotifier) Close() error {
	return n.writer.Close()
}
