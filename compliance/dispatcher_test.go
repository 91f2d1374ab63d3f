package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"checkout-service/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOutbox struct {
	rows []models.ComplianceOutbox
}

func (f *fakeOutbox) Enqueue(_ context.Context, event *models.ComplianceOutbox) error {
	event.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, *event)
	return nil
}

func (f *fakeOutbox) FetchPending(_ context.Context, limit int) ([]models.ComplianceOutbox, error) {
	var out []models.ComplianceOutbox
	for _, row := range f.rows {
		if row.SentAt == nil {
			out = append(out, row)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeOutbox) MarkSent(_ context.Context, id int64) error {
	now := time.Now().UTC()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].SentAt = &now
		}
	}
	return nil
}

func (f *fakeOutbox) MarkFailed(_ context.Context, id int64, lastError string) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Attempts++
			f.rows[i].LastError = lastError
		}
	}
	return nil
}

type fakePublisher struct {
	published [][]byte
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, _ string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, payload)
	return nil
}

type fakeSNS struct {
	topics   []string
	payloads [][]byte
}

func (f *fakeSNS) Publish(_ context.Context, topicArn string, payload []byte) error {
	f.topics = append(f.topics, topicArn)
	f.payloads = append(f.payloads, payload)
	return nil
}

func seedOutbox(outbox *fakeOutbox, eventType string) models.ComplianceOutbox {
	orderID := uuid.New()
	row := models.ComplianceOutbox{
		EventType:    eventType,
		DispensaryID: uuid.New(),
		OrderID:      &orderID,
		Payload:      []byte(`{"event_type":"` + eventType + `"}`),
	}
	_ = outbox.Enqueue(context.Background(), &row)
	return row
}

func TestDispatchOnce_MarksSent(t *testing.T) {
	outbox := &fakeOutbox{}
	seedOutbox(outbox, models.EventSale)
	seedOutbox(outbox, models.EventStatusChange)
	publisher := &fakePublisher{}

	d := NewDispatcher(outbox, publisher, nil, "", time.Second, 10, zap.NewNop())
	sent, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Len(t, publisher.published, 2)
	for _, row := range outbox.rows {
		assert.NotNil(t, row.SentAt)
	}

	// Nothing left on the next poll.
	sent, err = d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestDispatchOnce_FailureKeepsRowPending(t *testing.T) {
	outbox := &fakeOutbox{}
	seedOutbox(outbox, models.EventSale)
	publisher := &fakePublisher{err: errors.New("broker unreachable")}

	d := NewDispatcher(outbox, publisher, nil, "", time.Second, 10, zap.NewNop())
	sent, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)

	row := outbox.rows[0]
	assert.Nil(t, row.SentAt)
	assert.Equal(t, 1, row.Attempts)
	assert.Equal(t, "broker unreachable", row.LastError)

	// The row is retried once the sink recovers.
	publisher.err = nil
	sent, err = d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.NotNil(t, outbox.rows[0].SentAt)
}

func TestDispatchOnce_MirrorsSaleEventsToSNS(t *testing.T) {
	outbox := &fakeOutbox{}
	seedOutbox(outbox, models.EventSale)
	seedOutbox(outbox, models.EventStatusChange)
	sns := &fakeSNS{}

	d := NewDispatcher(outbox, &fakePublisher{}, sns, "arn:aws:sns:us-east-1:000000000000:compliance", time.Second, 10, zap.NewNop())
	sent, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	// Only the sale event is mirrored.
	require.Len(t, sns.payloads, 1)
	assert.Contains(t, string(sns.payloads[0]), models.EventSale)
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:compliance", sns.topics[0])
}

func TestDispatchOnce_RespectsBatchSize(t *testing.T) {
	outbox := &fakeOutbox{}
	for i := 0; i < 5; i++ {
		seedOutbox(outbox, models.EventSale)
	}

	d := NewDispatcher(outbox, &fakePublisher{}, nil, "", time.Second, 2, zap.NewNop())
	sent, err := d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
}

func TestEventKey(t *testing.T) {
	orderID := uuid.New()
	dispensaryID := uuid.New()
	assert.Equal(t, orderID.String(), eventKey(models.ComplianceOutbox{OrderID: &orderID, DispensaryID: dispensaryID}))
	assert.Equal(t, dispensaryID.String(), eventKey(models.ComplianceOutbox{DispensaryID: dispensaryID}))
}
