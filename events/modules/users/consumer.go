package userevents

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"

	"github.com/userdesk/console-backend/database"
)

// AuditEntry is the persisted form of a user audit event.
type AuditEntry struct {
	Key           string    `json:"_key,omitempty"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`
	UserID        string    `json:"user_id"`
	Email         string    `json:"email"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// HandleUserEvent validates one audit message and stores it in the audit
// collection. Event IDs double as document keys, so redelivery is idempotent.
func HandleUserEvent(ctx context.Context, db database.DBConnection, msg []byte) error {
	var event UserChangedEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		return fmt.Errorf("failed to unmarshal user event: %w", err)
	}

	if event.EventType == "" || event.EventID == "" {
		return fmt.Errorf("invalid event: missing required fields")
	}

	entry := AuditEntry{
		Key:           event.EventID,
		EventType:     event.EventType,
		EventID:       event.EventID,
		EventTime:     event.EventTime,
		SchemaVersion: event.SchemaVersion,
		UserID:        event.UserID,
		Email:         event.Email,
		RecordedAt:    time.Now().UTC(),
	}

	if _, err := db.Collections["audit"].CreateDocument(ctx, entry); err != nil {
		if existing, lookupErr := auditEntryExists(ctx, db, event.EventID); lookupErr == nil && existing {
			return nil
		}
		return fmt.Errorf("failed to store audit entry %s: %w", event.EventID, err)
	}
	return nil
}

func auditEntryExists(ctx context.Context, db database.DBConnection, eventID string) (bool, error) {
	query := `
		FOR a IN audit
			FILTER a._key == @key
			LIMIT 1
			RETURN a._key
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": eventID},
	})
	if err != nil {
		return false, err
	}
	defer cursor.Close()
	return cursor.HasMore(), nil
}

// RunAuditConsumer starts the background consumer persisting audit events.
// Returns without starting when no brokers are configured. SASL/PLAIN over
// TLS is used when credentials are present, matching the producer side.
func RunAuditConsumer(ctx context.Context, db database.DBConnection) error {
	brokersEnv := database.GetEnvDefault("KAFKA_BROKERS", "")
	if brokersEnv == "" {
		return nil
	}
	brokers := strings.Split(brokersEnv, ",")
	topic := database.GetEnvDefault("KAFKA_USER_EVENTS_TOPIC", "userdesk.user-events")

	username := database.GetEnvDefault("KAFKA_API_KEY", "")
	password := database.GetEnvDefault("KAFKA_API_SECRET", "")

	var dialer *kafka.Dialer
	if username != "" && password != "" {
		dialer = &kafka.Dialer{
			Timeout:       10 * time.Second,
			DualStack:     true,
			SASLMechanism: plain.Mechanism{Username: username, Password: password},
			TLS:           &tls.Config{},
		}
	} else {
		dialer = &kafka.Dialer{
			Timeout:   10 * time.Second,
			DualStack: true,
		}
	}

	var conn *kafka.Conn
	var err error
	for i := 1; i <= 3; i++ {
		conn, err = dialer.DialContext(ctx, "tcp", brokers[0])
		if err == nil {
			conn.Close()
			break
		}
		if i < 3 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		return err
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  "userdesk-audit-worker",
		Topic:    topic,
		MaxBytes: 10e6,
		Dialer:   dialer,
	})

	go func() {
		defer reader.Close()
		logger.Sugar().Infof("Audit consumer started on topic '%s'", topic)

		for {
			select {
			case <-ctx.Done():
				return
			default:
				msg, err := reader.ReadMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					continue
				}
				if err := HandleUserEvent(ctx, db, msg.Value); err != nil {
					logger.Sugar().Warnf("Audit event dropped: %v", err)
				}
			}
		}
	}()

	return nil
}
