package entity_repo

import (
	"taskhive/internal/domain/notification"
	"taskhive/internal/infrastructure/storage/postgres"
	"taskhive/internal/infrastructure/storage/postgres/soft_repo"
)

const notificationTable = "notifications"

// NotificationRepo implements notification.Repository.
type NotificationRepo struct {
	*soft_repo.Repo[*notification.Notification]
}

// NewNotificationRepo creates a new notification repository.
func NewNotificationRepo(txm *postgres.TxManager) *NotificationRepo {
	return &NotificationRepo{
		Repo: soft_repo.NewRepo(
			txm,
			notificationTable,
			notification.EntityType,
			[]string{"message"},
			func() *notification.Notification { return &notification.Notification{} },
		),
	}
}
