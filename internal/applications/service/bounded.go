package service

import (
	"context"
	"time"

	"instructorhub/internal/applications/models"
	dErrors "instructorhub/pkg/domain-errors"
	txcontext "instructorhub/pkg/platform/tx"
)

// boundedStore gives every application store call its own deadline.
type boundedStore struct {
	next    Store
	timeout time.Duration
}

func (b boundedStore) Create(ctx context.Context, app *models.Application, notice models.AdminNotification) error {
	return txcontext.Bounded(ctx, b.timeout, func(ctx context.Context) error {
		return b.next.Create(ctx, app, notice)
	})
}

func (b boundedStore) FindByID(ctx context.Context, id string) (*models.Application, error) {
	var app *models.Application
	err := txcontext.Bounded(ctx, b.timeout, func(ctx context.Context) (err error) {
		app, err = b.next.FindByID(ctx, id)
		return err
	})
	return app, err
}

func (b boundedStore) List(ctx context.Context, status models.Status) ([]models.Application, error) {
	var apps []models.Application
	err := txcontext.Bounded(ctx, b.timeout, func(ctx context.Context) (err error) {
		apps, err = b.next.List(ctx, status)
		return err
	})
	return apps, err
}

func (b boundedStore) Decide(ctx context.Context, id string, status models.Status, reason string, at time.Time) (*models.Application, error) {
	var app *models.Application
	err := txcontext.Bounded(ctx, b.timeout, func(ctx context.Context) (err error) {
		app, err = b.next.Decide(ctx, id, status, reason, at)
		return err
	})
	return app, err
}

func (b boundedStore) ListNotifications(ctx context.Context) ([]models.AdminNotification, error) {
	var feed []models.AdminNotification
	err := txcontext.Bounded(ctx, b.timeout, func(ctx context.Context) (err error) {
		feed, err = b.next.ListNotifications(ctx)
		return err
	})
	return feed, err
}

func storeError(err error, message string) error {
	if dErrors.HasCode(err, dErrors.CodeTimeout) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "Storage timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, message)
}
