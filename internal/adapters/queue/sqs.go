package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"conferencecentral/internal/adapters/awsconf"
	"conferencecentral/internal/domain"
)

const (
	receiveBatch    = 10
	receiveWaitSecs = 20
	receiveBackoff  = 5 * time.Second
	kindAttribute   = "kind"
)

// sqsAPI is the part of the SQS client the queue uses.
type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSConfig holds the queue location and credentials. Empty keys fall back
// to the SDK's default credential chain.
type SQSConfig struct {
	QueueURL        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// SQSQueue publishes tasks as JSON messages and consumes them with long
// polling. A task whose handler fails stays on the queue and is redelivered
// after the visibility timeout.
type SQSQueue struct {
	client   sqsAPI
	queueURL string
	logger   *slog.Logger
}

func NewSQS(ctx context.Context, cfg SQSConfig, logger *slog.Logger) (*SQSQueue, error) {
	if cfg.QueueURL == "" {
		return nil, fmt.Errorf("SQS queue URL is required")
	}
	awsCfg, err := awsconf.Load(ctx, cfg.Region, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		return nil, err
	}
	return &SQSQueue{client: sqs.NewFromConfig(awsCfg), queueURL: cfg.QueueURL, logger: logger}, nil
}

var _ domain.TaskQueue = (*SQSQueue)(nil)

func (q *SQSQueue) Enqueue(ctx context.Context, task domain.Task) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			kindAttribute: {DataType: aws.String("String"), StringValue: aws.String(string(task.Kind))},
		},
	})
	if err != nil {
		return fmt.Errorf("send task to SQS: %w", err)
	}
	return nil
}

// Run polls the queue until ctx is cancelled.
func (q *SQSQueue) Run(ctx context.Context, handler domain.TaskHandler) error {
	q.logger.Info("starting SQS task consumer", "queue_url", q.queueURL)
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := q.poll(ctx, handler); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			q.logger.Error("failed to receive tasks from SQS", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(receiveBackoff):
			}
		}
	}
}

func (q *SQSQueue) poll(ctx context.Context, handler domain.TaskHandler) error {
	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: receiveBatch,
		WaitTimeSeconds:     receiveWaitSecs,
	})
	if err != nil {
		return err
	}
	for _, msg := range out.Messages {
		q.process(ctx, handler, msg)
	}
	return nil
}

func (q *SQSQueue) process(ctx context.Context, handler domain.TaskHandler, msg types.Message) {
	var task domain.Task
	if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &task); err != nil {
		// Malformed bodies are never retried.
		q.logger.Error("dropping malformed task message", "message_id", aws.ToString(msg.MessageId), "error", err)
		q.delete(ctx, msg)
		return
	}
	if err := handle(ctx, handler, task, q.logger); err != nil {
		return
	}
	q.delete(ctx, msg)
}

func (q *SQSQueue) delete(ctx context.Context, msg types.Message) {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		q.logger.Error("failed to delete SQS message", "message_id", aws.ToString(msg.MessageId), "error", err)
	}
}
