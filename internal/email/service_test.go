package email

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"fitclub/internal/booking"
	"fitclub/internal/calendar"
	"fitclub/internal/logger"
	"fitclub/internal/metrics"

	"github.com/go-redis/redismock/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()

	code := m.Run()
	os.Exit(code)
}

type fakeSender struct {
	err  error
	sent []Job
}

func (f *fakeSender) SendMail(job Job) error {
	f.sent = append(f.sent, job)
	return f.err
}

func newTestService(rdb *redis.Client, sender Sender) *Service {
	return &Service{
		redis:    rdb,
		sender:   sender,
		pollWait: time.Second,
	}
}

func queued(t *testing.T, job Job) string {
	data, err := json.Marshal(job)
	require.NoError(t, err)
	return string(data)
}

var class = booking.GroupClass{
	ID:            7,
	ClassName:     "Morning Yoga",
	ScheduledDate: calendar.NewDate(2025, time.January, 10),
	StartTime:     calendar.NewTimeOfDay(9, 0),
	EndTime:       calendar.NewTimeOfDay(10, 0),
}

func TestSend(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp().ExpectLPush(queueKey, `.*`).SetVal(1)

	svc := newTestService(db, &fakeSender{})

	err := svc.Send(context.Background(), TypeSessionScheduled, "cara@fitclub.test", "Cara", "Hello", "Body")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSend_QueueError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp().ExpectLPush(queueKey, `.*`).SetErr(errors.New("redis down"))

	svc := newTestService(db, &fakeSender{})

	err := svc.Send(context.Background(), TypeSessionScheduled, "cara@fitclub.test", "Cara", "Hello", "Body")
	assert.Error(t, err)
}

func TestNotifyClassCancelled(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp().ExpectLPush(queueKey, `.*`).SetVal(1)
	mock.Regexp().ExpectLPush(queueKey, `.*`).SetVal(2)

	svc := newTestService(db, &fakeSender{})

	before := testutil.ToFloat64(metrics.EmailsSentTotal.WithLabelValues(TypeClassCancelled, "queued"))
	err := svc.NotifyClassCancelled(context.Background(), class, []booking.Contact{
		{MemberID: 1, Name: "Cara Diaz", Email: "cara@fitclub.test"},
		{MemberID: 2, Name: "Ben Ode", Email: "ben@fitclub.test"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.EmailsSentTotal.WithLabelValues(TypeClassCancelled, "queued")))
}

func TestNotifyClassCancelled_NoRecipients(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := newTestService(db, &fakeSender{})

	assert.NoError(t, svc.NotifyClassCancelled(context.Background(), class, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifySessionScheduled(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp().ExpectLPush(queueKey, `.*`).SetVal(1)

	svc := newTestService(db, &fakeSender{})

	session := booking.PTSession{
		ID:            3,
		ScheduledDate: calendar.NewDate(2025, time.January, 12),
		StartTime:     calendar.NewTimeOfDay(7, 0),
		EndTime:       calendar.NewTimeOfDay(8, 0),
	}
	err := svc.NotifySessionScheduled(context.Background(), session, booking.Contact{MemberID: 1, Name: "Cara", Email: "cara@fitclub.test"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNext_Delivers(t *testing.T) {
	db, mock := redismock.NewClientMock()
	sender := &fakeSender{}
	svc := newTestService(db, sender)

	job := Job{Type: TypeSessionScheduled, To: "cara@fitclub.test", Subject: "PT Session Confirmed"}
	mock.ExpectBRPop(time.Second, queueKey).SetVal([]string{queueKey, queued(t, job)})

	svc.processNext(context.Background())

	require.Len(t, sender.sent, 1)
	assert.Equal(t, 1, sender.sent[0].Tries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNext_RetriesThenParks(t *testing.T) {
	db, mock := redismock.NewClientMock()
	sender := &fakeSender{err: errors.New("smtp refused")}
	svc := newTestService(db, sender)

	first := Job{Type: TypeClassCancelled, To: "cara@fitclub.test"}
	mock.ExpectBRPop(time.Second, queueKey).SetVal([]string{queueKey, queued(t, first)})
	mock.Regexp().ExpectLPush(queueKey, `.*`).SetVal(1)

	svc.processNext(context.Background())

	last := Job{Type: TypeClassCancelled, To: "cara@fitclub.test", Tries: maxTries - 1}
	mock.ExpectBRPop(time.Second, queueKey).SetVal([]string{queueKey, queued(t, last)})
	mock.Regexp().ExpectLPush(failedKey, `.*`).SetVal(1)

	svc.processNext(context.Background())

	assert.Len(t, sender.sent, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNext_EmptyQueue(t *testing.T) {
	db, mock := redismock.NewClientMock()
	sender := &fakeSender{}
	svc := newTestService(db, sender)

	mock.ExpectBRPop(time.Second, queueKey).RedisNil()

	svc.processNext(context.Background())
	assert.Empty(t, sender.sent)
}

func TestQueueLength(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectLLen(queueKey).SetVal(4)

	svc := newTestService(db, &fakeSender{})

	assert.Equal(t, int64(4), svc.QueueLength(context.Background()))
	assert.Equal(t, float64(4), testutil.ToFloat64(metrics.EmailQueueLength))
}

func TestStart_StopsOnCancel(t *testing.T) {
	db, _ := redismock.NewClientMock()
	svc := newTestService(db, &fakeSender{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
