package publisher

import "context"

//go:generate go run go.uber.org/mock/mockgen -source=publisher.go -destination=mocks/mock.go
type Client interface {
	// Start schedules the recurring job that publishes due posts.
	Start(ctx context.Context) error

	// PublishDue processes every scheduled post whose instant has passed,
	// returning the number published.
	PublishDue(ctx context.Context) (int, error)
}
