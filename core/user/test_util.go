package user

import (
	"context"

	"github.com/campushq/backoffice/core"
)

type serviceMock struct {
	Service
}

// NewServiceMock returns a Service that sends password reset mails
// synchronously so tests can assert on the outbox.
func NewServiceMock(repo Repository, mailSvc core.EmailService) ServiceInterface {
	return &serviceMock{
		Service: Service{
			repo:    repo,
			mailSvc: mailSvc,
		},
	}
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	// run synchronously
	svc.sendPasswordResetMail(usr)
	return nil
}
