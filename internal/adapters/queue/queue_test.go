package queue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conferencecentral/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingHandler collects handled tasks and fails those whose kind is in fail.
type recordingHandler struct {
	mu      sync.Mutex
	handled []domain.Task
	fail    map[domain.TaskKind]bool
	done    chan struct{}
}

func newRecordingHandler(expect int) *recordingHandler {
	return &recordingHandler{fail: map[domain.TaskKind]bool{}, done: make(chan struct{}, expect)}
}

func (h *recordingHandler) Handle(ctx context.Context, task domain.Task) error {
	h.mu.Lock()
	h.handled = append(h.handled, task)
	h.mu.Unlock()
	defer func() { h.done <- struct{}{} }()
	if h.fail[task.Kind] {
		return errors.New("handler failed")
	}
	return nil
}

func (h *recordingHandler) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-h.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("handled %d of %d tasks", i, n)
		}
	}
}

func TestMemoryQueue_RunHandlesTasksInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewMemory(4, testLogger())
	h := newRecordingHandler(3)
	h.fail[domain.TaskSetAnnouncement] = true

	require.NoError(t, q.Enqueue(ctx, domain.Task{Kind: domain.TaskSetFeaturedSpeaker, Speaker: "A"}))
	require.NoError(t, q.Enqueue(ctx, domain.Task{Kind: domain.TaskSetAnnouncement}))
	require.NoError(t, q.Enqueue(ctx, domain.Task{Kind: domain.TaskSetFeaturedSpeaker, Speaker: "B"}))

	errCh := make(chan error, 1)
	go func() { errCh <- q.Run(ctx, h) }()
	h.wait(t, 3)
	cancel()
	require.NoError(t, <-errCh)

	require.Len(t, h.handled, 3)
	assert.Equal(t, "A", h.handled[0].Speaker)
	assert.Equal(t, "B", h.handled[2].Speaker)
}

func TestMemoryQueue_EnqueueFull(t *testing.T) {
	q := NewMemory(1, testLogger())
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, domain.Task{Kind: domain.TaskSetAnnouncement}))
	assert.ErrorIs(t, q.Enqueue(ctx, domain.Task{Kind: domain.TaskSetAnnouncement}), ErrQueueFull)
}

type fakeSQS struct {
	mu       sync.Mutex
	sent     []*sqs.SendMessageInput
	batches  [][]types.Message
	deleted  []string
	sendErr  error
	received chan struct{}
}

func (f *fakeSQS) SendMessage(ctx context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, in)
	return &sqs.SendMessageOutput{MessageId: aws.String("m")}, nil
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	if len(f.batches) > 0 {
		batch := f.batches[0]
		f.batches = f.batches[1:]
		f.mu.Unlock()
		return &sqs.ReceiveMessageOutput{Messages: batch}, nil
	}
	f.mu.Unlock()
	select {
	case f.received <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, aws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func TestSQSQueue_Enqueue(t *testing.T) {
	client := &fakeSQS{}
	q := &SQSQueue{client: client, queueURL: "https://sqs.local/tasks", logger: testLogger()}

	task := domain.Task{Kind: domain.TaskSendConfirmationEmail, Email: "o@example.com", ConferenceInfo: "Name: X"}
	require.NoError(t, q.Enqueue(context.Background(), task))
	require.Len(t, client.sent, 1)

	in := client.sent[0]
	assert.Equal(t, "https://sqs.local/tasks", aws.ToString(in.QueueUrl))
	assert.Equal(t, "send_confirmation_email", aws.ToString(in.MessageAttributes["kind"].StringValue))
	var decoded domain.Task
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.MessageBody)), &decoded))
	assert.Equal(t, task, decoded)

	client.sendErr = errors.New("denied")
	assert.Error(t, q.Enqueue(context.Background(), task))
}

func TestSQSQueue_RunDeletesOnlyHandledMessages(t *testing.T) {
	msg := func(handle string, task any) types.Message {
		body, _ := json.Marshal(task)
		return types.Message{MessageId: aws.String(handle), ReceiptHandle: aws.String(handle), Body: aws.String(string(body))}
	}
	client := &fakeSQS{
		received: make(chan struct{}, 1),
		batches: [][]types.Message{{
			msg("ok", domain.Task{Kind: domain.TaskSetFeaturedSpeaker, Speaker: "Dr. X"}),
			msg("fails", domain.Task{Kind: domain.TaskSetAnnouncement}),
			{MessageId: aws.String("junk"), ReceiptHandle: aws.String("junk"), Body: aws.String("{not json")},
		}},
	}
	q := &SQSQueue{client: client, queueURL: "https://sqs.local/tasks", logger: testLogger()}
	h := newRecordingHandler(2)
	h.fail[domain.TaskSetAnnouncement] = true

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- q.Run(ctx, h) }()

	h.wait(t, 2)
	select {
	case <-client.received:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not poll again")
	}
	cancel()
	require.NoError(t, <-errCh)

	client.mu.Lock()
	defer client.mu.Unlock()
	assert.ElementsMatch(t, []string{"ok", "junk"}, client.deleted)
}

func TestNewSQS_RequiresURL(t *testing.T) {
	_, err := NewSQS(context.Background(), SQSConfig{Region: "us-east-1"}, testLogger())
	assert.Error(t, err)

	q, err := NewSQS(context.Background(), SQSConfig{QueueURL: "https://sqs.local/tasks", Region: "us-east-1"}, testLogger())
	require.NoError(t, err)
	assert.NotNil(t, q)
}
