package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/domain"
)

const testNotificationMessage = "This is a test notification from the system."

type ListNotificationsOutput struct {
	Body []*NotificationBody
}

type UnreadCountOutput struct {
	Body struct {
		Count int `json:"count"`
	}
}

type NotificationPathInput struct {
	ID uuid.UUID `path:"id" doc:"Notification ID"`
}

type NotificationOutput struct {
	Body *NotificationBody
}

func RegisterNotificationRoutes(api huma.API, notifications NotificationService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-notifications",
		Method:      http.MethodGet,
		Path:        "/notifications",
		Summary:     "List the caller's notifications, newest first",
		Tags:        []string{"Notifications"},
	}, func(ctx context.Context, _ *struct{}) (*ListNotificationsOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		list, err := notifications.List(ctx, userID)
		if err != nil {
			return nil, serviceError(err, "list notifications")
		}
		return &ListNotificationsOutput{Body: mapSlice(list, toNotificationBody)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "unread-notification-count",
		Method:      http.MethodGet,
		Path:        "/notifications/unread-count",
		Summary:     "Count the caller's unread notifications",
		Tags:        []string{"Notifications"},
	}, func(ctx context.Context, _ *struct{}) (*UnreadCountOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		count, err := notifications.UnreadCount(ctx, userID)
		if err != nil {
			return nil, serviceError(err, "count notifications")
		}
		out := &UnreadCountOutput{}
		out.Body.Count = count
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "mark-notification-read",
		Method:      http.MethodPut,
		Path:        "/notifications/{id}/read",
		Summary:     "Mark one notification read",
		Tags:        []string{"Notifications"},
	}, func(ctx context.Context, input *NotificationPathInput) (*NotificationOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		n, err := notifications.MarkRead(ctx, userID, input.ID)
		if err != nil {
			return nil, serviceError(err, "mark notification read")
		}
		return &NotificationOutput{Body: toNotificationBody(n)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "mark-all-notifications-read",
		Method:        http.MethodPut,
		Path:          "/notifications/read-all",
		Summary:       "Mark every notification of the caller read",
		Tags:          []string{"Notifications"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		if err := notifications.MarkAllRead(ctx, userID); err != nil {
			return nil, serviceError(err, "mark notifications read")
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-test-notification",
		Method:        http.MethodPost,
		Path:          "/notifications/test",
		Summary:       "Send the caller a system notification",
		Tags:          []string{"Notifications"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, _ *struct{}) (*NotificationOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		n, err := notifications.Create(ctx, &domain.Notification{
			UserID:  userID,
			Type:    domain.NotificationSystem,
			Message: testNotificationMessage,
		})
		if err != nil {
			return nil, serviceError(err, "create notification")
		}
		return &NotificationOutput{Body: toNotificationBody(n)}, nil
	})
}
